package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptDetails is the server-generated proof of a successful collection.
type ReceiptDetails struct {
	ID                string          `json:"id"`
	RepaymentNumber   string          `json:"repayment_number,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMode       string          `json:"payment_mode,omitempty"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty"`
	CustomerName      string          `json:"customer_name,omitempty"`
	LoanAccountNumber string          `json:"loan_account_number,omitempty"`
	CaseNumber        string          `json:"case_number,omitempty"`
	Status            string          `json:"status,omitempty"`
}

// FileName synthesizes the artifact name offered on download. The repayment
// number is preferred; the transaction id is the fallback when details are
// missing or incomplete.
func (r *ReceiptDetails) FileName(transactionID string) string {
	if r != nil && r.RepaymentNumber != "" {
		return fmt.Sprintf("receipt_%s.pdf", r.RepaymentNumber)
	}
	return fmt.Sprintf("receipt_%s.pdf", transactionID)
}
