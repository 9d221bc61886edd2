package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_IsTerminal(t *testing.T) {
	terminal := []PaymentStatus{
		StatusSuccess, StatusCompleted, StatusFailed,
		StatusCancelled, StatusExpired, StatusRefunded,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "expected %s to be terminal", s)
	}

	nonTerminal := []PaymentStatus{StatusInitiated, StatusPending}
	for _, s := range nonTerminal {
		assert.False(t, s.IsTerminal(), "expected %s to be non-terminal", s)
	}
}

func TestPaymentStatus_IsSuccessful(t *testing.T) {
	assert.True(t, StatusSuccess.IsSuccessful())
	assert.True(t, StatusCompleted.IsSuccessful())

	assert.False(t, StatusFailed.IsSuccessful())
	assert.False(t, StatusCancelled.IsSuccessful())
	assert.False(t, StatusPending.IsSuccessful())
	assert.False(t, StatusInitiated.IsSuccessful())
}

func TestPaymentResponse_Merge_PreservesDisplayFields(t *testing.T) {
	previous := PaymentResponse{
		ServiceType:   ServiceDynamicQR,
		TransactionID: "TXN1",
		Status:        StatusInitiated,
		QRCodeBase64:  "ABC",
		QRCodeURL:     "http://qr",
		PaymentLink:   "http://x",
	}

	fresh := PaymentResponse{
		ServiceType:   ServiceDynamicQR,
		TransactionID: "TXN1",
		Status:        StatusPending,
	}

	merged := previous.Merge(fresh)

	assert.Equal(t, StatusPending, merged.Status)
	assert.Equal(t, "ABC", merged.QRCodeBase64)
	assert.Equal(t, "http://qr", merged.QRCodeURL)
	assert.Equal(t, "http://x", merged.PaymentLink)
}

func TestPaymentResponse_Merge_FreshDisplayFieldsWin(t *testing.T) {
	previous := PaymentResponse{
		TransactionID: "TXN1",
		Status:        StatusInitiated,
		QRCodeBase64:  "OLD",
		PaymentLink:   "http://old",
	}

	fresh := PaymentResponse{
		TransactionID: "TXN1",
		Status:        StatusPending,
		QRCodeBase64:  "NEW",
		PaymentLink:   "http://new",
	}

	merged := previous.Merge(fresh)

	assert.Equal(t, "NEW", merged.QRCodeBase64)
	assert.Equal(t, "http://new", merged.PaymentLink)
}

func TestReceiptDetails_FileName(t *testing.T) {
	receipt := &ReceiptDetails{
		ID:              "77",
		RepaymentNumber: "RCPT-77",
		Amount:          decimal.NewFromInt(500),
	}
	assert.Equal(t, "receipt_RCPT-77.pdf", receipt.FileName("TXN1"))

	// fallback to the transaction id
	assert.Equal(t, "receipt_TXN1.pdf", (&ReceiptDetails{ID: "77"}).FileName("TXN1"))

	var missing *ReceiptDetails
	assert.Equal(t, "receipt_TXN1.pdf", missing.FileName("TXN1"))
}
