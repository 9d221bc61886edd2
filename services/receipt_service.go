package services

import (
	"context"
	"log"

	"payment-collection/internal/gateway"
	"payment-collection/models"
)

type ReceiptService struct {
	gateway gateway.Gateway
}

func NewReceiptService(gw gateway.Gateway) *ReceiptService {
	return &ReceiptService{gateway: gw}
}

// Generate asks the gateway for the receipt of a successful transaction and
// fetches its details using the identifier generation returned. When
// generation returns no identifier the generation reply itself is kept as the
// details.
//
// Failures are logged and swallowed: the receipt is a convenience, not a
// correctness requirement of the payment. The agent can retry manually.
// Repeated calls for the same transaction are safe, the gateway returns the
// same logical receipt.
func (s *ReceiptService) Generate(ctx context.Context, transactionID string) *models.ReceiptDetails {
	receipt, err := s.gateway.GenerateReceipt(ctx, transactionID)
	if err != nil {
		log.Printf("generateReceipt: txn %s: %v", transactionID, err)
		return nil
	}
	if receipt == nil {
		return nil
	}
	if receipt.ID == "" {
		return receipt
	}

	details, err := s.gateway.FetchReceiptDetails(ctx, receipt.ID)
	if err != nil {
		log.Printf("fetchReceiptDetails: receipt %s: %v", receipt.ID, err)
		return receipt
	}

	return details
}
