package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType is the collection mechanism offered to the payer.
type ServiceType string

const (
	ServiceDynamicQR   ServiceType = "DYNAMIC_QR"
	ServicePaymentLink ServiceType = "PAYMENT_LINK"
	ServiceCollectCall ServiceType = "COLLECT_CALL"
)

// InstrumentType identifies the target of a collect call request.
type InstrumentType string

const (
	InstrumentVPA    InstrumentType = "VPA"
	InstrumentMobile InstrumentType = "MOBILE"
)

// PaymentStatus is the gateway-reported state of a collection attempt.
type PaymentStatus string

const (
	StatusInitiated PaymentStatus = "INITIATED"
	StatusPending   PaymentStatus = "PENDING"
	StatusSuccess   PaymentStatus = "SUCCESS"
	StatusCompleted PaymentStatus = "COMPLETED"
	StatusFailed    PaymentStatus = "FAILED"
	StatusCancelled PaymentStatus = "CANCELLED"
	StatusExpired   PaymentStatus = "EXPIRED"
	StatusRefunded  PaymentStatus = "REFUNDED"
)

// IsTerminal reports whether no further transition is expected
// without starting a new payment.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusCompleted, StatusFailed, StatusCancelled, StatusExpired, StatusRefunded:
		return true
	default:
		return false
	}
}

// IsSuccessful reports whether the payment has been collected.
func (s PaymentStatus) IsSuccessful() bool {
	return s == StatusSuccess || s == StatusCompleted
}

// PaymentRequest is a validated initiation request. Instrument fields are only
// populated for COLLECT_CALL, mobile number only for PAYMENT_LINK.
type PaymentRequest struct {
	ServiceType         ServiceType     `json:"service_type"`
	Amount              decimal.Decimal `json:"amount"`
	MobileNumber        string          `json:"mobile_number,omitempty"`
	InstrumentType      InstrumentType  `json:"instrument_type,omitempty"`
	InstrumentReference string          `json:"instrument_reference,omitempty"`
	Message             string          `json:"message,omitempty"`
	CaseID              string          `json:"case_id,omitempty"`
	LoanAccountNumber   string          `json:"loan_account_number,omitempty"`
	CustomerName        string          `json:"customer_name,omitempty"`
	CustomerEmail       string          `json:"customer_email,omitempty"`
}

// PaymentResponse is the transaction context of the active collection attempt.
type PaymentResponse struct {
	ServiceType   ServiceType     `json:"service_type"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	Message       string          `json:"message,omitempty"`
	PaymentLink   string          `json:"payment_link,omitempty"`
	QRCodeBase64  string          `json:"qr_code_base64,omitempty"`
	QRCodeURL     string          `json:"qr_code_url,omitempty"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
}

// Merge applies a fresh status reply on top of this one. The fresh reply wins
// except for display fields the status endpoint may omit on later inquiries:
// a QR or link already rendered to the payer is never replaced by an empty value.
func (p PaymentResponse) Merge(fresh PaymentResponse) PaymentResponse {
	merged := fresh
	if merged.QRCodeBase64 == "" {
		merged.QRCodeBase64 = p.QRCodeBase64
	}
	if merged.QRCodeURL == "" {
		merged.QRCodeURL = p.QRCodeURL
	}
	if merged.PaymentLink == "" {
		merged.PaymentLink = p.PaymentLink
	}
	return merged
}

// CaseContext is the customer/case information handed in from the case page,
// e.g. via deep link. It survives a payment reset, unlike the form fields the
// agent typed for the previous transaction.
type CaseContext struct {
	CaseID            string `json:"case_id,omitempty"`
	LoanAccountNumber string `json:"loan_account_number,omitempty"`
	CustomerName      string `json:"customer_name,omitempty"`
}
