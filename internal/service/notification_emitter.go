package service

import (
	"context"
	"time"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
)

const emitTimeout = 5 * time.Second

// PooledNotificationEmitter implements ports.NotificationEmitter on an ants
// worker pool. Inserts run in the background; failures are logged and
// swallowed because notification delivery is never part of the success
// criteria of the flow that emitted it.
type PooledNotificationEmitter struct {
	repo ports.NotificationRepository
	pool *ants.Pool
	log  zerolog.Logger
}

// NewPooledNotificationEmitter creates an emitter backed by a worker pool of
// the given size.
func NewPooledNotificationEmitter(repo ports.NotificationRepository, size int, log zerolog.Logger) (*PooledNotificationEmitter, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &PooledNotificationEmitter{repo: repo, pool: pool, log: log}, nil
}

// Emit schedules the notification insert on the pool. Errors never propagate
// to the caller.
func (e *PooledNotificationEmitter) Emit(n *domain.Notification) {
	err := e.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()

		if err := e.repo.Create(ctx, n); err != nil {
			e.log.Warn().Err(err).
				Str("user_id", n.UserID.String()).
				Str("type", string(n.Type)).
				Msg("failed to persist notification")
		}
	})
	if err != nil {
		e.log.Warn().Err(err).
			Str("user_id", n.UserID.String()).
			Msg("failed to schedule notification")
	}
}

// Shutdown drains the pool and releases its workers.
func (e *PooledNotificationEmitter) Shutdown() {
	e.pool.Release()
}
