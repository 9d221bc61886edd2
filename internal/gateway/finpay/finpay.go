package finpay

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"payment-collection/internal/gateway"
	"payment-collection/models"
	"payment-collection/utils"
)

var _ gateway.Gateway = (*finpay)(nil)

type (
	Config struct {
		BaseURL        string `json:"base_url" mapstructure:"base_url"`
		AccessTokenURL string `json:"access_token_url" mapstructure:"access_token_url"`

		ClientID     string `json:"client_id" mapstructure:"client_id"`
		ClientSecret string `json:"client_secret" mapstructure:"client_secret"`

		PartnerID string `json:"partner_id" mapstructure:"partner_id"`
		KeyID     string `json:"key_id" mapstructure:"key_id"`
		HMacKey   string `json:"hmac_key" mapstructure:"hmac_key"`
	}

	finpay struct {
		baseURL            string
		accessTokenBaseURL string

		// clientID is the client id of the collection gateway.
		clientID     string
		clientSecret string

		// partnerID is the partner id of the collection gateway.
		partnerID string
		keyID     string
		hmacKey   string

		// accessToken is used to authenticate with the gateway.
		accessToken string

		// mu is used to lock access token.
		mu sync.Mutex

		// toggleTokenRefresher is used to notify token refresher to refresh token.
		toggleTokenRefresher chan struct{}

		// cb trips when the gateway keeps failing.
		cb *utils.CircuitBreaker

		// hc is the http client.
		hc *http.Client
	}
)

// New creates a new collection gateway client.
func New(ctx context.Context, cfg *Config) (gateway.Gateway, error) {
	client := &finpay{
		baseURL:            cfg.BaseURL,
		accessTokenBaseURL: cfg.AccessTokenURL,
		clientID:           cfg.ClientID,
		clientSecret:       cfg.ClientSecret,
		partnerID:          cfg.PartnerID,
		keyID:              cfg.KeyID,
		hmacKey:            cfg.HMacKey,

		// make a buffered channel to avoid blocking.
		toggleTokenRefresher: make(chan struct{}, 1),

		cb: utils.NewCircuitBreaker("finpay"),

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	token, err := client.connect(ctx)
	if err != nil {
		return nil, err
	}
	client.setAccessToken(token)

	go client.notifyAccessTokenExpired(ctx)

	return client, nil
}

func (f *finpay) InitiatePayment(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
	refID, _ := utils.GenerateCode(4)

	q := &initiateReq{
		ServiceType:         string(req.ServiceType),
		Amount:              req.Amount,
		MobileNumber:        req.MobileNumber,
		InstrumentType:      string(req.InstrumentType),
		InstrumentReference: req.InstrumentReference,
		Memo:                req.Message,
		CaseID:              req.CaseID,
		LoanAccountNumber:   req.LoanAccountNumber,
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		ReferenceNumber:     fmt.Sprintf("%s-%s", req.CaseID, refID),

		reqTxUUID: uuid.New().String(),
	}

	data, err := f.initiatePayment(ctx, q)
	if err != nil {
		return nil, err
	}

	return data.toDomain(), nil
}

func (f *finpay) QueryPaymentStatus(ctx context.Context, serviceType models.ServiceType, transactionID string) (*models.PaymentResponse, error) {
	data, err := f.queryStatus(ctx, string(serviceType), transactionID)
	if err != nil {
		return nil, err
	}

	return data.toDomain(), nil
}

func (f *finpay) CancelPayment(ctx context.Context, serviceType models.ServiceType, transactionID, reason string) (*models.PaymentResponse, error) {
	data, err := f.cancelPayment(ctx, string(serviceType), transactionID, reason)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	return data.toDomain(), nil
}

func (f *finpay) GenerateReceipt(ctx context.Context, transactionID string) (*models.ReceiptDetails, error) {
	data, err := f.generateReceipt(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	return data.toDomain(), nil
}

func (f *finpay) FetchReceiptDetails(ctx context.Context, receiptID string) (*models.ReceiptDetails, error) {
	data, err := f.fetchReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	return data.toDomain(), nil
}

func (f *finpay) DownloadReceiptBlob(ctx context.Context, target gateway.BlobTarget) ([]byte, error) {
	if target.ReceiptID != "" {
		return f.downloadBlob(ctx, fmt.Sprintf("/collections/api/v1/receipts/%s/document.service", target.ReceiptID))
	}

	return f.downloadBlob(ctx, fmt.Sprintf("/collections/api/v1/payments/%s/receipt.service", target.TransactionID))
}
