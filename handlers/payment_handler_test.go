package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-collection/internal/gateway"
	"payment-collection/models"
	"payment-collection/services"
	"payment-collection/utils"
)

// stubGateway backs the handler tests with canned gateway behavior.
type stubGateway struct {
	initiate func(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error)
	query    func(ctx context.Context, serviceType models.ServiceType, transactionID string) (*models.PaymentResponse, error)
}

func (s *stubGateway) InitiatePayment(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
	if s.initiate == nil {
		return nil, errors.New("unexpected InitiatePayment")
	}
	return s.initiate(ctx, req)
}

func (s *stubGateway) QueryPaymentStatus(ctx context.Context, serviceType models.ServiceType, transactionID string) (*models.PaymentResponse, error) {
	if s.query == nil {
		return nil, errors.New("unexpected QueryPaymentStatus")
	}
	return s.query(ctx, serviceType, transactionID)
}

func (s *stubGateway) CancelPayment(ctx context.Context, serviceType models.ServiceType, transactionID, reason string) (*models.PaymentResponse, error) {
	return nil, errors.New("unexpected CancelPayment")
}

func (s *stubGateway) GenerateReceipt(ctx context.Context, transactionID string) (*models.ReceiptDetails, error) {
	return nil, errors.New("unexpected GenerateReceipt")
}

func (s *stubGateway) FetchReceiptDetails(ctx context.Context, receiptID string) (*models.ReceiptDetails, error) {
	return nil, errors.New("unexpected FetchReceiptDetails")
}

func (s *stubGateway) DownloadReceiptBlob(ctx context.Context, target gateway.BlobTarget) ([]byte, error) {
	return nil, errors.New("unexpected DownloadReceiptBlob")
}

func newTestServer(gw gateway.Gateway) *echo.Echo {
	payments := services.NewPaymentService(
		gw,
		services.NewReceiptService(gw),
		services.NewArtifactService(gw, func(h *utils.BlobHandle) error { return nil }),
		nil,
		nil,
		"agent-1",
	)

	e := echo.New()
	NewPaymentHandler(payments).Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPaymentHandler_Initiate(t *testing.T) {
	gw := &stubGateway{
		initiate: func(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
			return &models.PaymentResponse{
				ServiceType:   models.ServiceDynamicQR,
				TransactionID: "TXN1",
				Status:        models.StatusInitiated,
				Amount:        req.Amount,
				QRCodeBase64:  "Q1",
			}, nil
		},
	}
	e := newTestServer(gw)

	rec := doJSON(e, http.MethodPost, "/api/collections/payments",
		`{"service_type":"DYNAMIC_QR","amount":"500","case_id":"42"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var reply struct {
		Payment models.PaymentResponse `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "TXN1", reply.Payment.TransactionID)
	assert.Equal(t, "Q1", reply.Payment.QRCodeBase64)
}

func TestPaymentHandler_Initiate_ValidationError(t *testing.T) {
	e := newTestServer(&stubGateway{})

	rec := doJSON(e, http.MethodPost, "/api/collections/payments",
		`{"service_type":"DYNAMIC_QR","amount":"0"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var reply map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "amount", reply["field"])
}

func TestPaymentHandler_Initiate_Conflict(t *testing.T) {
	gw := &stubGateway{
		initiate: func(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
			return &models.PaymentResponse{
				ServiceType:   models.ServiceDynamicQR,
				TransactionID: "TXN1",
				Status:        models.StatusInitiated,
			}, nil
		},
	}
	e := newTestServer(gw)

	rec := doJSON(e, http.MethodPost, "/api/collections/payments",
		`{"service_type":"DYNAMIC_QR","amount":"500"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/collections/payments",
		`{"service_type":"DYNAMIC_QR","amount":"500"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPaymentHandler_Refresh_NoActivePayment(t *testing.T) {
	e := newTestServer(&stubGateway{})

	rec := doJSON(e, http.MethodPost, "/api/collections/payments/refresh", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPaymentHandler_Refresh_GatewayError(t *testing.T) {
	gw := &stubGateway{
		initiate: func(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
			return &models.PaymentResponse{
				ServiceType:   models.ServiceDynamicQR,
				TransactionID: "TXN1",
				Status:        models.StatusInitiated,
			}, nil
		},
		query: func(ctx context.Context, serviceType models.ServiceType, transactionID string) (*models.PaymentResponse, error) {
			return nil, errors.New("gateway down")
		},
	}
	e := newTestServer(gw)

	rec := doJSON(e, http.MethodPost, "/api/collections/payments",
		`{"service_type":"DYNAMIC_QR","amount":"500"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/collections/payments/refresh", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var reply map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "Unable to refresh payment status", reply["error"])
}

func TestPaymentHandler_Current_EmptyState(t *testing.T) {
	e := newTestServer(&stubGateway{})

	rec := doJSON(e, http.MethodGet, "/api/collections/payments", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var reply struct {
		Payment *models.PaymentResponse `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Nil(t, reply.Payment)
}

func TestPaymentHandler_GenerateReceipt_NotReady(t *testing.T) {
	gw := &stubGateway{
		initiate: func(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error) {
			return &models.PaymentResponse{
				ServiceType:   models.ServiceDynamicQR,
				TransactionID: "TXN1",
				Status:        models.StatusPending,
			}, nil
		},
	}
	e := newTestServer(gw)

	rec := doJSON(e, http.MethodPost, "/api/collections/payments",
		`{"service_type":"DYNAMIC_QR","amount":"500"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/collections/payments/receipt", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
