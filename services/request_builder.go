package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"payment-collection/models"
)

// PaymentForm carries the raw fields the agent filled in, plus the case
// context handed over from the case page. Nothing here is trusted yet.
type PaymentForm struct {
	ServiceType         models.ServiceType    `json:"service_type"`
	Amount              decimal.Decimal       `json:"amount"`
	MobileNumber        string                `json:"mobile_number"`
	InstrumentType      models.InstrumentType `json:"instrument_type"`
	InstrumentReference string                `json:"instrument_reference"`
	Message             string                `json:"message"`
	CaseID              string                `json:"case_id"`
	LoanAccountNumber   string                `json:"loan_account_number"`
	CustomerName        string                `json:"customer_name"`
	CustomerEmail       string                `json:"customer_email"`
}

// ValidationError is a local, pre-submission rejection. It never reaches the
// gateway and is shown inline next to the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// BuildPaymentRequest validates the form per service type and produces the
// request sent to the gateway. Pure and synchronous, no network I/O.
//
// Rules: amount must be positive for every service type; PAYMENT_LINK needs a
// mobile number to deliver the link; COLLECT_CALL needs both the instrument
// type and the instrument reference. Instrument fields are stripped for the
// other service types, the gateway rejects them there.
func BuildPaymentRequest(form *PaymentForm) (*models.PaymentRequest, error) {
	if !form.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "invalid amount"}
	}

	switch form.ServiceType {
	case models.ServiceDynamicQR:

	case models.ServicePaymentLink:
		if strings.TrimSpace(form.MobileNumber) == "" {
			return nil, &ValidationError{Field: "mobile_number", Reason: "mobile required"}
		}

	case models.ServiceCollectCall:
		if form.InstrumentType == "" || strings.TrimSpace(form.InstrumentReference) == "" {
			return nil, &ValidationError{Field: "instrument", Reason: "instrument required"}
		}

	default:
		return nil, &ValidationError{Field: "service_type", Reason: "unknown service type"}
	}

	req := &models.PaymentRequest{
		ServiceType:         form.ServiceType,
		Amount:              form.Amount,
		MobileNumber:        strings.TrimSpace(form.MobileNumber),
		InstrumentType:      form.InstrumentType,
		InstrumentReference: strings.TrimSpace(form.InstrumentReference),
		Message:             form.Message,
		CaseID:              form.CaseID,
		LoanAccountNumber:   form.LoanAccountNumber,
		CustomerName:        form.CustomerName,
		CustomerEmail:       form.CustomerEmail,
	}

	if form.ServiceType != models.ServiceCollectCall {
		req.InstrumentType = ""
		req.InstrumentReference = ""
	}

	return req, nil
}
