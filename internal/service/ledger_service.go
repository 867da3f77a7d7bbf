package service

import (
	"context"
	"fmt"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"
)

// LedgerServiceImpl implements ports.LedgerService. Writes to the ledger are
// internal to the order, webhook and payout flows; this service only reads.
type LedgerServiceImpl struct {
	txRepo ports.TransactionRepository
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(txRepo ports.TransactionRepository) *LedgerServiceImpl {
	return &LedgerServiceImpl{txRepo: txRepo}
}

// ListTransactions fetches the user's own ledger entries.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}
