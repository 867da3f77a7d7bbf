package postgres

import (
	"context"
	"fmt"

	"producers-avenue/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// PaymentEventRepo implements ports.PaymentEventRepository. It is the
// durable half of the webhook dedup guard: inserting the (provider,
// event_id) pair inside the processing transaction makes replays fail
// on the unique constraint even if the cache entry expired.
type PaymentEventRepo struct {
	pool Pool
}

// NewPaymentEventRepo creates a new PaymentEventRepo.
func NewPaymentEventRepo(pool Pool) *PaymentEventRepo {
	return &PaymentEventRepo{pool: pool}
}

// Create records a processed provider event within a database transaction.
func (r *PaymentEventRepo) Create(ctx context.Context, tx pgx.Tx, ev *domain.PaymentEvent) error {
	query := `INSERT INTO payment_events (provider, event_id, event_type, processed_at)
		VALUES ($1, $2, $3, $4)`

	_, err := tx.Exec(ctx, query, ev.Provider, ev.EventID, ev.EventType, ev.ProcessedAt)
	if err != nil {
		return fmt.Errorf("insert payment event: %w", err)
	}
	return nil
}

// Exists reports whether a provider event was already processed.
func (r *PaymentEventRepo) Exists(ctx context.Context, provider domain.PaymentProvider, eventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_events WHERE provider = $1 AND event_id = $2)`,
		provider, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check payment event: %w", err)
	}
	return exists, nil
}
