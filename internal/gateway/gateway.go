package gateway

import (
	"context"

	"payment-collection/models"
)

// Gateway is the collection gateway contract the orchestrator consumes.
// All calls are synchronous network calls and honor the passed context.
type Gateway interface {
	// InitiatePayment starts a collection attempt for a validated request.
	InitiatePayment(ctx context.Context, req *models.PaymentRequest) (*models.PaymentResponse, error)

	// QueryPaymentStatus fetches the current gateway state of a transaction.
	QueryPaymentStatus(ctx context.Context, serviceType models.ServiceType, transactionID string) (*models.PaymentResponse, error)

	// CancelPayment cancels a non-terminal transaction. The returned response
	// is nil when the gateway acknowledges without a confirmed status.
	CancelPayment(ctx context.Context, serviceType models.ServiceType, transactionID, reason string) (*models.PaymentResponse, error)

	// GenerateReceipt creates (or re-requests) the receipt for a transaction.
	// The call is idempotent server-side.
	GenerateReceipt(ctx context.Context, transactionID string) (*models.ReceiptDetails, error)

	// FetchReceiptDetails loads receipt details by receipt id.
	FetchReceiptDetails(ctx context.Context, receiptID string) (*models.ReceiptDetails, error)

	// DownloadReceiptBlob fetches the receipt document as raw bytes.
	DownloadReceiptBlob(ctx context.Context, target BlobTarget) ([]byte, error)
}

// BlobTarget selects the receipt document endpoint: by receipt id when the
// details are known, by transaction id as the direct gateway fallback.
type BlobTarget struct {
	ReceiptID     string
	TransactionID string
}
