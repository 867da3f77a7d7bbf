package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const eventCacheTTL = 48 * time.Hour

// WebhookServiceImpl implements ports.WebhookService. It applies verified
// provider events to orders, wallets and the ledger. Duplicate deliveries
// are detected twice: a Redis SET NX fast path backed by the payment_events
// table, which is written inside the same transaction as the event's effects.
type WebhookServiceImpl struct {
	orderRepo      ports.OrderRepository
	txRepo         ports.TransactionRepository
	walletRepo     ports.WalletRepository
	eventRepo      ports.PaymentEventRepository
	walletSvc      ports.WalletService
	eventCache     ports.EventCache
	transactor     ports.DBTransactor
	notifier       ports.NotificationEmitter
	commissionRate decimal.Decimal
	log            zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl.
func NewWebhookService(
	orderRepo ports.OrderRepository,
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	eventRepo ports.PaymentEventRepository,
	walletSvc ports.WalletService,
	eventCache ports.EventCache,
	transactor ports.DBTransactor,
	notifier ports.NotificationEmitter,
	commissionRate decimal.Decimal,
	log zerolog.Logger,
) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		orderRepo:      orderRepo,
		txRepo:         txRepo,
		walletRepo:     walletRepo,
		eventRepo:      eventRepo,
		walletSvc:      walletSvc,
		eventCache:     eventCache,
		transactor:     transactor,
		notifier:       notifier,
		commissionRate: commissionRate,
		log:            log,
	}
}

// Process applies one provider event. Duplicate events and unrecognised
// event types return nil so the HTTP adapter acknowledges with 200 and the
// provider stops retrying.
func (s *WebhookServiceImpl) Process(ctx context.Context, ev ports.ProviderEvent) error {
	key := domain.BuildEventKey(ev.Provider, ev.EventID)

	// Layer 1: Redis duplicate check. If this delivery set the key but then
	// fails before its effects commit, the key is cleared again so the
	// provider's retry is processed instead of acknowledged.
	marked := false
	fresh, err := s.eventCache.CheckAndSet(ctx, key, eventCacheTTL)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("key", key).Msg("redis event check failed, falling through to DB")
	case !fresh:
		s.log.Info().Str("key", key).Msg("duplicate webhook event acknowledged")
		return nil
	default:
		marked = true
	}

	// Layer 2: DB duplicate check
	exists, err := s.eventRepo.Exists(ctx, ev.Provider, ev.EventID)
	if err != nil {
		s.unmarkEvent(ctx, key, marked)
		return apperror.InternalError(fmt.Errorf("db event check: %w", err))
	}
	if exists {
		s.log.Info().Str("key", key).Msg("duplicate webhook event acknowledged")
		return nil
	}

	switch ev.EventType {
	case domain.EventPaymentCaptured:
		err = s.handlePaymentCaptured(ctx, ev)
	case domain.EventPaymentDenied:
		err = s.handlePaymentDenied(ctx, ev)
	case domain.EventPaymentRefunded:
		err = s.handlePaymentRefunded(ctx, ev)
	case domain.EventPayoutPaid:
		err = s.handlePayoutPaid(ctx, ev)
	default:
		s.log.Info().
			Str("provider", string(ev.Provider)).
			Str("event_type", ev.EventType).
			Msg("unrecognised webhook event type acknowledged")
		return nil
	}
	if err != nil {
		s.unmarkEvent(ctx, key, marked)
	}
	return err
}

// unmarkEvent drops the Redis dedup key set by this delivery after a failure
// whose effects never committed.
func (s *WebhookServiceImpl) unmarkEvent(ctx context.Context, key string, marked bool) {
	if !marked {
		return
	}
	if err := s.eventCache.Clear(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to clear event key after failed delivery")
	}
}

// handlePaymentCaptured settles every pending order under the payment
// reference: orders become completed/paid, sellers are credited net of
// commission and a sale ledger entry is appended per order. All of it plus
// the dedup record commit in one transaction.
func (s *WebhookServiceImpl) handlePaymentCaptured(ctx context.Context, ev ports.ProviderEvent) error {
	orders, err := s.ordersForRef(ctx, ev.Ref)
	if err != nil || len(orders) == 0 {
		return err
	}

	var pending []domain.Order
	for _, o := range orders {
		if o.PaymentStatus == domain.PaymentStatusUnpaid {
			pending = append(pending, o)
		}
	}
	if len(pending) == 0 {
		return s.recordEventOnly(ctx, ev)
	}

	for _, o := range pending {
		for _, it := range o.Items {
			if _, err := ensureWallet(ctx, s.walletRepo, it.SellerID); err != nil {
				return apperror.InternalError(fmt.Errorf("ensure seller wallet: %w", err))
			}
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallets, err := s.lockSellerWallets(ctx, dbTx, pending)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	type saleNote struct {
		sellerID uuid.UUID
		orderID  uuid.UUID
		amount   decimal.Decimal
	}
	var notes []saleNote

	for _, o := range pending {
		if err := s.orderRepo.UpdateStatus(ctx, dbTx, o.ID, domain.OrderStatusCompleted); err != nil {
			return apperror.InternalError(fmt.Errorf("complete order: %w", err))
		}
		if err := s.orderRepo.UpdatePaymentStatus(ctx, dbTx, o.ID, domain.PaymentStatusPaid); err != nil {
			return apperror.InternalError(fmt.Errorf("mark order paid: %w", err))
		}

		commission := o.Amount.Mul(s.commissionRate).Round(2)
		sellerNet := o.Amount.Sub(commission)
		sellerID := o.Items[0].SellerID

		wallet := wallets[sellerID]
		wallet.Balance = wallet.Balance.Add(sellerNet)
		wallet.TotalEarned = wallet.TotalEarned.Add(sellerNet)
		wallet.UpdatedAt = now

		orderID := o.ID
		sale := &domain.Transaction{
			ID:          uuid.New(),
			UserID:      sellerID,
			Type:        domain.TransactionTypeSale,
			Amount:      sellerNet,
			Status:      domain.TransactionStatusCompleted,
			ReferenceID: &orderID,
			Description: "Sale settled by " + string(ev.Provider),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.txRepo.Create(ctx, dbTx, sale); err != nil {
			return apperror.InternalError(fmt.Errorf("create sale entry: %w", err))
		}

		notes = append(notes, saleNote{sellerID: sellerID, orderID: o.ID, amount: o.Amount})
	}

	for _, w := range wallets {
		if err := s.walletRepo.Update(ctx, dbTx, w); err != nil {
			return apperror.InternalError(fmt.Errorf("credit seller wallet: %w", err))
		}
	}

	if err := s.recordEvent(ctx, dbTx, ev, now); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	for _, n := range notes {
		s.notifier.Emit(&domain.Notification{
			ID:        uuid.New(),
			UserID:    n.sellerID,
			Type:      domain.NotificationTypeSale,
			Title:     "New sale",
			Message:   fmt.Sprintf("Order %s paid: %s", shortID(n.orderID), n.amount.StringFixed(2)),
			Link:      "/orders/" + n.orderID.String(),
			CreatedAt: now,
		})
	}

	s.log.Info().
		Str("provider", string(ev.Provider)).
		Str("ref", ev.Ref).
		Int("orders", len(pending)).
		Msg("payment captured")

	return nil
}

// handlePaymentDenied marks every order under the reference payment-failed.
func (s *WebhookServiceImpl) handlePaymentDenied(ctx context.Context, ev ports.ProviderEvent) error {
	orders, err := s.ordersForRef(ctx, ev.Ref)
	if err != nil || len(orders) == 0 {
		return err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	for _, o := range orders {
		if o.PaymentStatus != domain.PaymentStatusUnpaid {
			continue
		}
		if err := s.orderRepo.UpdatePaymentStatus(ctx, dbTx, o.ID, domain.PaymentStatusFailed); err != nil {
			return apperror.InternalError(fmt.Errorf("mark order failed: %w", err))
		}
	}

	if err := s.recordEvent(ctx, dbTx, ev, now); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("provider", string(ev.Provider)).
		Str("ref", ev.Ref).
		Msg("payment denied")

	return nil
}

// handlePaymentRefunded reverses settled orders: the seller is debited the
// net amount they were credited, a negative refund entry is appended and the
// original sale entry is marked refunded in place. The buyer is notified but
// receives no ledger entry.
func (s *WebhookServiceImpl) handlePaymentRefunded(ctx context.Context, ev ports.ProviderEvent) error {
	orders, err := s.ordersForRef(ctx, ev.Ref)
	if err != nil || len(orders) == 0 {
		return err
	}

	var settled []domain.Order
	for _, o := range orders {
		if o.PaymentStatus == domain.PaymentStatusPaid {
			settled = append(settled, o)
		}
	}
	if len(settled) == 0 {
		return s.recordEventOnly(ctx, ev)
	}

	// Resolve the original sale entries before opening the transaction.
	sales := make(map[uuid.UUID]*domain.Transaction, len(settled))
	for _, o := range settled {
		sale, err := s.txRepo.GetSaleByOrderAndUser(ctx, o.ID, o.Items[0].SellerID)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("find sale entry: %w", err))
		}
		if sale == nil {
			return apperror.ErrNotFound("sale transaction")
		}
		sales[o.ID] = sale
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallets, err := s.lockSellerWallets(ctx, dbTx, settled)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, o := range settled {
		sale := sales[o.ID]
		sellerID := o.Items[0].SellerID

		if err := s.orderRepo.UpdateStatus(ctx, dbTx, o.ID, domain.OrderStatusRefunded); err != nil {
			return apperror.InternalError(fmt.Errorf("mark order refunded: %w", err))
		}
		if err := s.orderRepo.UpdatePaymentStatus(ctx, dbTx, o.ID, domain.PaymentStatusRefunded); err != nil {
			return apperror.InternalError(fmt.Errorf("mark payment refunded: %w", err))
		}

		wallet := wallets[sellerID]
		wallet.Balance = wallet.Balance.Sub(sale.Amount)
		wallet.TotalEarned = wallet.TotalEarned.Sub(sale.Amount)
		wallet.UpdatedAt = now

		orderID := o.ID
		refund := &domain.Transaction{
			ID:          uuid.New(),
			UserID:      sellerID,
			Type:        domain.TransactionTypeRefund,
			Amount:      sale.Amount.Neg(),
			Status:      domain.TransactionStatusCompleted,
			ReferenceID: &orderID,
			Description: "Refund for order " + shortID(o.ID),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.txRepo.Create(ctx, dbTx, refund); err != nil {
			return apperror.InternalError(fmt.Errorf("create refund entry: %w", err))
		}
		if err := s.txRepo.UpdateStatus(ctx, dbTx, sale.ID, domain.TransactionStatusRefunded); err != nil {
			return apperror.InternalError(fmt.Errorf("mark sale refunded: %w", err))
		}
	}

	for _, w := range wallets {
		if err := s.walletRepo.Update(ctx, dbTx, w); err != nil {
			return apperror.InternalError(fmt.Errorf("debit seller wallet: %w", err))
		}
	}

	if err := s.recordEvent(ctx, dbTx, ev, now); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	for _, o := range settled {
		s.notifier.Emit(&domain.Notification{
			ID:        uuid.New(),
			UserID:    o.BuyerID,
			Type:      domain.NotificationTypeRefund,
			Title:     "Order refunded",
			Message:   fmt.Sprintf("Order %s was refunded: %s", shortID(o.ID), o.Amount.StringFixed(2)),
			Link:      "/orders/" + o.ID.String(),
			CreatedAt: now,
		})
	}

	s.log.Info().
		Str("provider", string(ev.Provider)).
		Str("ref", ev.Ref).
		Int("orders", len(settled)).
		Msg("payment refunded")

	return nil
}

// handlePayoutPaid completes the payout named by the event reference. The
// wallet movement, the payout status and the dedup record commit together.
func (s *WebhookServiceImpl) handlePayoutPaid(ctx context.Context, ev ports.ProviderEvent) error {
	payoutID, err := uuid.Parse(ev.Ref)
	if err != nil {
		s.log.Warn().
			Str("provider", string(ev.Provider)).
			Str("ref", ev.Ref).
			Msg("payout event with unparseable reference acknowledged")
		return nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	payout, err := s.walletSvc.CompletePayout(ctx, dbTx, payoutID)
	if err != nil {
		return err
	}
	if err := s.recordEvent(ctx, dbTx, ev, now); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.notifier.Emit(&domain.Notification{
		ID:        uuid.New(),
		UserID:    payout.UserID,
		Type:      domain.NotificationTypePayout,
		Title:     "Payout sent",
		Message:   fmt.Sprintf("Withdrawal of %s has been paid out", payout.Amount.StringFixed(2)),
		CreatedAt: now,
	})

	return nil
}

// ordersForRef loads the orders behind a payment reference. An unknown
// reference is logged and acknowledged, not an error.
func (s *WebhookServiceImpl) ordersForRef(ctx context.Context, ref string) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListByProviderRef(ctx, ref)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find orders: %w", err))
	}
	if len(orders) == 0 {
		s.log.Warn().Str("ref", ref).Msg("webhook event for unknown payment reference acknowledged")
	}
	return orders, nil
}

// lockSellerWallets locks the distinct seller wallets across the orders in
// user-id order so concurrent events cannot deadlock.
func (s *WebhookServiceImpl) lockSellerWallets(ctx context.Context, dbTx pgx.Tx, orders []domain.Order) (map[uuid.UUID]*domain.Wallet, error) {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.SellerID]; !ok {
				seen[it.SellerID] = struct{}{}
				ids = append(ids, it.SellerID)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	wallets := make(map[uuid.UUID]*domain.Wallet, len(ids))
	for _, id := range ids {
		w, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, id)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
		}
		if w == nil {
			return nil, apperror.ErrNotFound("wallet")
		}
		wallets[id] = w
	}
	return wallets, nil
}

// recordEvent writes the dedup row inside the caller's transaction.
func (s *WebhookServiceImpl) recordEvent(ctx context.Context, dbTx pgx.Tx, ev ports.ProviderEvent, now time.Time) error {
	record := &domain.PaymentEvent{
		Provider:    ev.Provider,
		EventID:     ev.EventID,
		EventType:   ev.EventType,
		ProcessedAt: now,
	}
	if err := s.eventRepo.Create(ctx, dbTx, record); err != nil {
		return apperror.InternalError(fmt.Errorf("record event: %w", err))
	}
	return nil
}

// recordEventOnly writes the dedup row in its own transaction, for events
// whose effects were a no-op.
func (s *WebhookServiceImpl) recordEventOnly(ctx context.Context, ev ports.ProviderEvent) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.recordEvent(ctx, dbTx, ev, time.Now().UTC()); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}
