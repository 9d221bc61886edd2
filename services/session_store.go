package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payment-collection/models"
)

// SessionStore mirrors the active transaction context into redis so a
// reloaded page can resume an in-flight payment. Write-through only: the
// in-memory context stays the source of truth.
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewSessionStore(redisClient *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		redis: redisClient,
		ttl:   ttl,
		now:   time.Now,
	}
}

func sessionKey(caseID string) string {
	return fmt.Sprintf("collection:txn:%s", caseID)
}

// SaveTransaction upserts the mirrored transaction hash and refreshes its TTL.
func (s *SessionStore) SaveTransaction(ctx context.Context, caseID string, resp *models.PaymentResponse) error {
	key := sessionKey(caseID)

	if err := s.redis.HSet(ctx, key,
		"transaction_id", resp.TransactionID,
		"service_type", string(resp.ServiceType),
		"status", string(resp.Status),
		"amount", resp.Amount.String(),
		"payment_link", resp.PaymentLink,
		"qr_code_url", resp.QRCodeURL,
		"updated_at", s.now().Unix(),
	).Err(); err != nil {
		return fmt.Errorf("SaveTransaction: redis.HSet: %w", err)
	}

	if err := s.redis.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("SaveTransaction: redis.Expire: %w", err)
	}

	return nil
}

// ActiveTransaction returns the mirrored hash, empty when nothing is live.
func (s *SessionStore) ActiveTransaction(ctx context.Context, caseID string) (map[string]string, error) {
	data, err := s.redis.HGetAll(ctx, sessionKey(caseID)).Result()
	if err != nil {
		return nil, fmt.Errorf("ActiveTransaction: redis.HGetAll: %w", err)
	}

	return data, nil
}

// Clear drops the mirrored transaction for a case.
func (s *SessionStore) Clear(ctx context.Context, caseID string) error {
	if err := s.redis.Del(ctx, sessionKey(caseID)).Err(); err != nil {
		return fmt.Errorf("Clear: redis.Del: %w", err)
	}

	return nil
}
