package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"payment-collection/internal/gateway"
	"payment-collection/internal/status"
	"payment-collection/models"
	"payment-collection/monitoring"
)

// PaymentService orchestrates the digital payment collection flow: it owns
// the single live transaction context and at most one receipt, and drives the
// gateway through initiate, user-triggered status refresh, receipt
// generation, artifact download, cancel and reset.
//
// State machine: none -> INITIATED -> (PENDING <-> INITIATED) -> terminal.
// Terminal statuses are absorbing until NewPayment clears the context. The
// source UI is single-threaded; this port serializes operations with a mutex
// instead, one operation per transaction at a time.
type PaymentService struct {
	mu sync.Mutex

	gateway   gateway.Gateway
	receipts  *ReceiptService
	artifacts *ArtifactService

	// sessions and notifier are optional collaborators.
	sessions *SessionStore
	notifier Notifier

	agentID string

	caseCtx models.CaseContext
	current *models.PaymentResponse
	receipt *models.ReceiptDetails

	// receiptRequested flips when generation has run for the current
	// transaction's transition into a success status, so refreshes after
	// success do not re-generate.
	receiptRequested bool

	lastError string
}

func NewPaymentService(gw gateway.Gateway, receipts *ReceiptService, artifacts *ArtifactService, sessions *SessionStore, notifier Notifier, agentID string) *PaymentService {
	return &PaymentService{
		gateway:   gw,
		receipts:  receipts,
		artifacts: artifacts,
		sessions:  sessions,
		notifier:  notifier,
		agentID:   agentID,
	}
}

// Initiate validates the form and starts a collection attempt. Valid only
// when no transaction is live; a failed gateway call leaves the state empty.
func (s *PaymentService) Initiate(ctx context.Context, form *PaymentForm) (*models.PaymentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, status.ErrTransactionActive
	}

	req, err := BuildPaymentRequest(form)
	if err != nil {
		s.lastError = err.Error()
		monitoring.TrackOperation("initiate", "validation_error")
		return nil, err
	}

	resp, err := s.gateway.InitiatePayment(ctx, req)
	if err != nil {
		s.lastError = "Unable to initiate payment"
		monitoring.TrackOperation("initiate", "gateway_error")
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	s.caseCtx = models.CaseContext{
		CaseID:            req.CaseID,
		LoanAccountNumber: req.LoanAccountNumber,
		CustomerName:      req.CustomerName,
	}
	s.current = resp
	s.receipt = nil
	s.receiptRequested = false
	s.lastError = ""
	monitoring.TrackOperation("initiate", "ok")

	// Some gateways settle collect calls synchronously.
	s.afterTransition(ctx)
	s.mirrorSession(ctx)

	copied := *s.current
	return &copied, nil
}

// RefreshStatus queries the gateway and merges the fresh reply into the
// transaction context without regressing display fields. Valid only while a
// transaction is live; a failed query leaves the context untouched.
func (s *PaymentService) RefreshStatus(ctx context.Context) (*models.PaymentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, status.ErrNoActiveTransaction
	}

	fresh, err := s.gateway.QueryPaymentStatus(ctx, s.current.ServiceType, s.current.TransactionID)
	if err != nil {
		s.lastError = "Unable to refresh payment status"
		monitoring.TrackOperation("refresh", "gateway_error")
		return nil, fmt.Errorf("refresh status: %w", err)
	}

	merged := s.current.Merge(*fresh)
	s.current = &merged
	s.lastError = ""
	monitoring.TrackOperation("refresh", "ok")

	s.afterTransition(ctx)
	s.mirrorSession(ctx)

	copied := *s.current
	return &copied, nil
}

// afterTransition runs the success and terminal hooks for the current
// context. Caller holds the lock.
func (s *PaymentService) afterTransition(ctx context.Context) {
	if s.current == nil {
		return
	}

	if s.current.Status.IsSuccessful() && !s.receiptRequested {
		s.receiptRequested = true
		s.receipt = s.receipts.Generate(ctx, s.current.TransactionID)
	}

	if s.current.Status.IsTerminal() && s.notifier != nil {
		s.notifier.PaymentStatusChanged(s.agentID, s.current)
	}
}

// Cancel cancels the live transaction via the gateway. Valid only while the
// current status is non-terminal; calling it on a terminal transaction is a
// caller bug and never reaches the gateway.
//
// When the gateway confirms a terminal status the context keeps it so the UI
// can show it; otherwise the context is cleared to none, matching the source
// behavior of dropping straight back to the empty form.
func (s *PaymentService) Cancel(ctx context.Context, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return status.ErrNoActiveTransaction
	}
	if s.current.Status.IsTerminal() {
		return status.ErrTransactionTerminal
	}

	resp, err := s.gateway.CancelPayment(ctx, s.current.ServiceType, s.current.TransactionID, reason)
	if err != nil {
		s.lastError = "Unable to cancel payment"
		monitoring.TrackOperation("cancel", "gateway_error")
		return fmt.Errorf("cancel payment: %w", err)
	}

	s.lastError = ""
	monitoring.TrackOperation("cancel", "ok")

	if resp != nil && resp.Status.IsTerminal() {
		merged := s.current.Merge(*resp)
		s.current = &merged
		s.afterTransition(ctx)
		s.mirrorSession(ctx)
		return nil
	}

	s.clearTransaction(ctx)
	return nil
}

// NewPayment resets the flow for another collection attempt. Valid from a
// terminal state or when nothing is live. The case context survives; form
// fields belonging to the previous transaction do not.
func (s *PaymentService) NewPayment(ctx context.Context) (models.CaseContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && !s.current.Status.IsTerminal() {
		return models.CaseContext{}, status.ErrTransactionActive
	}

	s.clearTransaction(ctx)
	s.lastError = ""
	monitoring.TrackOperation("new_payment", "ok")

	return s.caseCtx, nil
}

// GenerateReceipt is the manual retry for receipt generation, usable after a
// silent failure of the automatic path. Safe to repeat; the gateway returns
// the same logical receipt. A nil receipt with nil error means the receipt is
// still unavailable.
func (s *PaymentService) GenerateReceipt(ctx context.Context) (*models.ReceiptDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, status.ErrNoActiveTransaction
	}
	if !s.current.Status.IsSuccessful() {
		return nil, status.ErrReceiptNotReady
	}

	s.receiptRequested = true
	s.receipt = s.receipts.Generate(ctx, s.current.TransactionID)
	monitoring.TrackOperation("receipt_generate", "ok")

	return s.receipt, nil
}

// Download fetches the receipt document and hands it to the configured saver.
func (s *PaymentService) Download(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return status.ErrNoActiveTransaction
	}
	if !s.current.Status.IsSuccessful() {
		return status.ErrReceiptNotReady
	}

	if err := s.artifacts.Download(ctx, s.receipt, s.current.TransactionID); err != nil {
		s.lastError = "Unable to download receipt"
		monitoring.TrackOperation("download", "error")
		return err
	}

	s.lastError = ""
	monitoring.TrackOperation("download", "ok")
	return nil
}

// clearTransaction drops the live context and its session mirror. Caller
// holds the lock.
func (s *PaymentService) clearTransaction(ctx context.Context) {
	s.current = nil
	s.receipt = nil
	s.receiptRequested = false

	if s.sessions != nil && s.caseCtx.CaseID != "" {
		if err := s.sessions.Clear(ctx, s.caseCtx.CaseID); err != nil {
			log.Printf("clearTransaction: %v", err)
		}
	}
}

// mirrorSession writes the live context through to redis. Caller holds the
// lock. Mirror failures never affect the payment flow.
func (s *PaymentService) mirrorSession(ctx context.Context) {
	if s.sessions == nil || s.current == nil || s.caseCtx.CaseID == "" {
		return
	}

	if err := s.sessions.SaveTransaction(ctx, s.caseCtx.CaseID, s.current); err != nil {
		log.Printf("mirrorSession: %v", err)
	}
}

// CurrentPayment returns a copy of the live transaction context, nil when none.
func (s *PaymentService) CurrentPayment() *models.PaymentResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}

	copied := *s.current
	return &copied
}

// Receipt returns a copy of the fetched receipt details, nil when none.
func (s *PaymentService) Receipt() *models.ReceiptDetails {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.receipt == nil {
		return nil
	}

	copied := *s.receipt
	return &copied
}

// Case returns the carried-over case context.
func (s *PaymentService) Case() models.CaseContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.caseCtx
}

// LastError returns the last user-facing error message, empty when the last
// operation succeeded.
func (s *PaymentService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastError
}
