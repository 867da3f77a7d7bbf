package service

import (
	"context"
	"fmt"
	"time"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	payoutRepo ports.PayoutRepository
	txRepo     ports.TransactionRepository
	encSvc     ports.EncryptionService
	transactor ports.DBTransactor
	notifier   ports.NotificationEmitter
	minPayout  decimal.Decimal
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	payoutRepo ports.PayoutRepository,
	txRepo ports.TransactionRepository,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	notifier ports.NotificationEmitter,
	minPayout decimal.Decimal,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		payoutRepo: payoutRepo,
		txRepo:     txRepo,
		encSvc:     encSvc,
		transactor: transactor,
		notifier:   notifier,
		minPayout:  minPayout,
		log:        log,
	}
}

// ensureWallet fetches a user's wallet, creating a zero-balance row on first
// access. The repo insert is conflict-tolerant, so a concurrent first access
// resolves to one row.
func ensureWallet(ctx context.Context, repo ports.WalletRepository, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	now := time.Now().UTC()
	wallet = &domain.Wallet{
		ID:             uuid.New(),
		UserID:         userID,
		Balance:        decimal.Zero,
		PendingBalance: decimal.Zero,
		TotalEarned:    decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.Create(ctx, wallet); err != nil {
		return nil, err
	}
	// Re-read in case a concurrent create won the insert.
	return repo.GetByUserID(ctx, userID)
}

// GetWallet fetches the user's wallet, creating it lazily on first read.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := ensureWallet(ctx, s.walletRepo, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ensure wallet: %w", err))
	}
	return wallet, nil
}

// RequestPayout reserves funds for withdrawal: balance moves to
// pending_balance under a row lock, a pending payout ledger entry is
// appended and the payout record stores the destination encrypted.
func (s *WalletServiceImpl) RequestPayout(ctx context.Context, req ports.PayoutRequest) (*domain.Payout, error) {
	if req.Amount.LessThan(s.minPayout) {
		return nil, apperror.ErrBelowPayoutMinimum(s.minPayout.StringFixed(2))
	}

	if _, err := ensureWallet(ctx, s.walletRepo, req.UserID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ensure wallet: %w", err))
	}

	detailsEnc, err := s.encSvc.Encrypt(req.PayoutDetails)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt payout details: %w", err))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	if !wallet.CanDebit(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}

	now := time.Now().UTC()
	wallet.Balance = wallet.Balance.Sub(req.Amount)
	wallet.PendingBalance = wallet.PendingBalance.Add(req.Amount)
	wallet.UpdatedAt = now

	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reserve funds: %w", err))
	}

	payoutID := uuid.New()
	txn := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Type:        domain.TransactionTypePayout,
		Amount:      req.Amount.Neg(),
		Status:      domain.TransactionStatusPending,
		ReferenceID: &payoutID,
		Description: "Payout request",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payout entry: %w", err))
	}

	payout := &domain.Payout{
		ID:               payoutID,
		UserID:           req.UserID,
		Amount:           req.Amount,
		Status:           domain.PayoutStatusPending,
		Method:           req.Method,
		PayoutDetailsEnc: detailsEnc,
		TransactionID:    txn.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.payoutRepo.Create(ctx, dbTx, payout); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payout: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifier.Emit(&domain.Notification{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      domain.NotificationTypePayout,
		Title:     "Payout requested",
		Message:   fmt.Sprintf("Withdrawal of %s is being processed", req.Amount.StringFixed(2)),
		CreatedAt: now,
	})

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("amount", req.Amount.StringFixed(2)).
		Msg("payout requested")

	return payout, nil
}

// CancelPayout cancels a pending payout, returning the reserved funds to the
// available balance. Only the owner may cancel, and only while pending.
func (s *WalletServiceImpl) CancelPayout(ctx context.Context, userID, payoutID uuid.UUID) (*domain.Payout, error) {
	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}
	if payout.UserID != userID {
		return nil, apperror.ErrNotOwner()
	}
	if !payout.IsCancellable() {
		return nil, apperror.ErrPayoutNotCancellable()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	now := time.Now().UTC()
	wallet.Balance = wallet.Balance.Add(payout.Amount)
	wallet.PendingBalance = wallet.PendingBalance.Sub(payout.Amount)
	wallet.UpdatedAt = now

	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("restore funds: %w", err))
	}
	if err := s.payoutRepo.UpdateStatus(ctx, dbTx, payout.ID, domain.PayoutStatusCancelled); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("cancel payout: %w", err))
	}
	if err := s.txRepo.UpdateStatus(ctx, dbTx, payout.TransactionID, domain.TransactionStatusCancelled); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("cancel payout entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	payout.Status = domain.PayoutStatusCancelled
	payout.UpdatedAt = now

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("user_id", userID.String()).
		Msg("payout cancelled")

	return payout, nil
}

// CompletePayout finalises a pending payout after the provider confirms the
// transfer: the reservation leaves pending_balance and total_withdrawn grows.
// It writes inside dbTx and never commits; the caller owns the transaction
// and notifies the user once it has committed. Driven by the webhook flow,
// not exposed over HTTP.
func (s *WalletServiceImpl) CompletePayout(ctx context.Context, dbTx pgx.Tx, payoutID uuid.UUID) (*domain.Payout, error) {
	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find payout: %w", err))
	}
	if payout == nil {
		return nil, apperror.ErrNotFound("payout")
	}
	if payout.Status != domain.PayoutStatusPending {
		return nil, apperror.ErrPayoutNotCancellable()
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, payout.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	now := time.Now().UTC()
	wallet.PendingBalance = wallet.PendingBalance.Sub(payout.Amount)
	wallet.TotalWithdrawn = wallet.TotalWithdrawn.Add(payout.Amount)
	wallet.UpdatedAt = now

	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("settle payout funds: %w", err))
	}
	if err := s.payoutRepo.UpdateStatus(ctx, dbTx, payout.ID, domain.PayoutStatusCompleted); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("complete payout: %w", err))
	}
	if err := s.txRepo.UpdateStatus(ctx, dbTx, payout.TransactionID, domain.TransactionStatusCompleted); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("complete payout entry: %w", err))
	}

	payout.Status = domain.PayoutStatusCompleted
	payout.UpdatedAt = now

	s.log.Info().
		Str("payout_id", payout.ID.String()).
		Str("user_id", payout.UserID.String()).
		Msg("payout completed")

	return payout, nil
}

// ListPayouts fetches the user's payout history.
func (s *WalletServiceImpl) ListPayouts(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Payout, int64, error) {
	payouts, total, err := s.payoutRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list payouts: %w", err))
	}
	return payouts, total, nil
}
