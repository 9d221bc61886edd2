package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"payment-collection/internal/status"
	"payment-collection/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
	}
}

func (h *PaymentHandler) Register(e *echo.Echo) {
	g := e.Group("/api/collections/payments")
	g.POST("", h.Initiate)
	g.GET("", h.Current)
	g.POST("/refresh", h.Refresh)
	g.POST("/cancel", h.Cancel)
	g.POST("/new", h.NewPayment)
	g.POST("/receipt", h.GenerateReceipt)
	g.POST("/receipt/download", h.Download)
}

// Initiate - start a collection attempt
func (h *PaymentHandler) Initiate(c echo.Context) error {
	var form services.PaymentForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request"})
	}

	resp, err := h.payments.Initiate(c.Request().Context(), &form)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": ve.Reason, "field": ve.Field})
		}
		if errors.Is(err, status.ErrTransactionActive) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "A payment is already in progress"})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"error": h.payments.LastError()})
	}

	return c.JSON(http.StatusOK, map[string]any{"payment": resp})
}

// Refresh - user-triggered status refresh
func (h *PaymentHandler) Refresh(c echo.Context) error {
	resp, err := h.payments.RefreshStatus(c.Request().Context())
	if err != nil {
		if errors.Is(err, status.ErrNoActiveTransaction) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "No active payment"})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"error": h.payments.LastError()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"payment": resp,
		"receipt": h.payments.Receipt(),
	})
}

// Cancel - cancel the active payment via the gateway
func (h *PaymentHandler) Cancel(c echo.Context) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid request"})
	}

	if err := h.payments.Cancel(c.Request().Context(), req.Reason); err != nil {
		if errors.Is(err, status.ErrNoActiveTransaction) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "No active payment"})
		}
		if errors.Is(err, status.ErrTransactionTerminal) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "Payment already settled"})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"error": h.payments.LastError()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Payment cancelled",
		"payment": h.payments.CurrentPayment(),
	})
}

// NewPayment - reset the flow, keeping the carried-over case context
func (h *PaymentHandler) NewPayment(c echo.Context) error {
	caseCtx, err := h.payments.NewPayment(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "Payment still in progress"})
	}

	return c.JSON(http.StatusOK, map[string]any{"case": caseCtx})
}

// GenerateReceipt - manual receipt retry after a silent failure
func (h *PaymentHandler) GenerateReceipt(c echo.Context) error {
	receipt, err := h.payments.GenerateReceipt(c.Request().Context())
	if err != nil {
		if errors.Is(err, status.ErrNoActiveTransaction) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "No active payment"})
		}
		if errors.Is(err, status.ErrReceiptNotReady) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "Payment not successful yet"})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"error": h.payments.LastError()})
	}

	if receipt == nil {
		return c.JSON(http.StatusAccepted, map[string]any{"message": "Receipt not available yet"})
	}

	return c.JSON(http.StatusOK, map[string]any{"receipt": receipt})
}

// Download - fetch the receipt document and hand it to the saver
func (h *PaymentHandler) Download(c echo.Context) error {
	if err := h.payments.Download(c.Request().Context()); err != nil {
		if errors.Is(err, status.ErrNoActiveTransaction) || errors.Is(err, status.ErrReceiptNotReady) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "Receipt not available"})
		}
		return c.JSON(http.StatusBadGateway, map[string]any{"error": h.payments.LastError()})
	}

	payment := h.payments.CurrentPayment()
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Receipt downloaded",
		"file":    h.payments.Receipt().FileName(payment.TransactionID),
	})
}

// Current - read-only view of the live transaction context
func (h *PaymentHandler) Current(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"payment":    h.payments.CurrentPayment(),
		"receipt":    h.payments.Receipt(),
		"case":       h.payments.Case(),
		"last_error": h.payments.LastError(),
	})
}
