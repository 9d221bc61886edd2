package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"payment-collection/internal/gateway"
	"payment-collection/models"
	"payment-collection/utils"
)

// Saver delivers a downloaded artifact to the agent. It must not retain the
// handle: the handle is released as soon as Saver returns.
type Saver func(h *utils.BlobHandle) error

// DirSaver copies the artifact into dir under its user-facing name.
func DirSaver(dir string) Saver {
	return func(h *utils.BlobHandle) error {
		src, err := os.Open(h.Path())
		if err != nil {
			return fmt.Errorf("DirSaver: os.Open: %w", err)
		}
		defer src.Close()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("DirSaver: os.MkdirAll: %w", err)
		}

		dst, err := os.Create(filepath.Join(dir, h.Name()))
		if err != nil {
			return fmt.Errorf("DirSaver: os.Create: %w", err)
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("DirSaver: io.Copy: %w", err)
		}

		return nil
	}
}

type ArtifactService struct {
	gateway gateway.Gateway
	saver   Saver
}

func NewArtifactService(gw gateway.Gateway, saver Saver) *ArtifactService {
	return &ArtifactService{
		gateway: gw,
		saver:   saver,
	}
}

// Download fetches the receipt document, wraps it in a revocable local handle
// named after the repayment number (or the transaction id when details are
// missing), hands it to the saver, and releases the handle on every exit
// path. The receipt id endpoint is preferred; the transaction id endpoint is
// the direct gateway fallback.
func (s *ArtifactService) Download(ctx context.Context, receipt *models.ReceiptDetails, transactionID string) error {
	target := gateway.BlobTarget{TransactionID: transactionID}
	if receipt != nil && receipt.ID != "" {
		target.ReceiptID = receipt.ID
	}

	blob, err := s.gateway.DownloadReceiptBlob(ctx, target)
	if err != nil {
		return fmt.Errorf("download receipt: %w", err)
	}

	handle, err := utils.NewBlobHandle(receipt.FileName(transactionID), blob)
	if err != nil {
		return fmt.Errorf("download receipt: %w", err)
	}
	defer handle.Release()

	if err := s.saver(handle); err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}

	return nil
}
