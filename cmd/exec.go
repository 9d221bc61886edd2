package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payment-collection/config"
	"payment-collection/handlers"
	"payment-collection/internal/gateway/finpay"
	"payment-collection/services"
	"payment-collection/utils"
)

func Start() error {
	// Load configuration
	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize the collection gateway client
	gw, err := finpay.New(ctx, &finpay.Config{
		BaseURL:        cfg.GatewayBaseURL,
		AccessTokenURL: cfg.GatewayTokenURL,
		ClientID:       cfg.GatewayClientID,
		ClientSecret:   cfg.GatewaySecret,
		PartnerID:      cfg.GatewayPartner,
		KeyID:          cfg.GatewayKeyID,
		HMacKey:        cfg.GatewayHMACKey,
	})
	if err != nil {
		return err
	}

	sessions := services.NewSessionStore(redisClient, cfg.SessionTTL)

	var notifier services.Notifier
	if cfg.PubNubPublishKey != "" {
		notifier = services.NewPubNubNotifier(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.AgentID)
	}

	receipts := services.NewReceiptService(gw)
	artifacts := services.NewArtifactService(gw, services.DirSaver(cfg.DownloadDir))
	payments := services.NewPaymentService(gw, receipts, artifacts, sessions, notifier, cfg.AgentID)

	e := echo.New()
	handlers.NewPaymentHandler(payments).Register(e)

	// Metrics server
	if cfg.EnableMetrics {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(":"+cfg.MetricsPort, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go func() {
		log.Printf("collection payment server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
