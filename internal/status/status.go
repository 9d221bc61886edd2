package status

import "errors"

var (
	ErrNoActiveTransaction = errors.New("payment: no active transaction")
	ErrTransactionActive   = errors.New("payment: transaction already active")
	ErrTransactionTerminal = errors.New("payment: transaction already terminal")
	ErrReceiptNotReady     = errors.New("receipt: payment not successful yet")
	ErrPaymentNotFound     = errors.New("payment: transaction not found")
)
