package service

import (
	"context"
	"fmt"
	"time"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	orderRepo      ports.OrderRepository
	txRepo         ports.TransactionRepository
	walletRepo     ports.WalletRepository
	listingRepo    ports.ListingRepository
	transactor     ports.DBTransactor
	notifier       ports.NotificationEmitter
	commissionRate decimal.Decimal
	log            zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl.
func NewOrderService(
	orderRepo ports.OrderRepository,
	txRepo ports.TransactionRepository,
	walletRepo ports.WalletRepository,
	listingRepo ports.ListingRepository,
	transactor ports.DBTransactor,
	notifier ports.NotificationEmitter,
	commissionRate decimal.Decimal,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		orderRepo:      orderRepo,
		txRepo:         txRepo,
		walletRepo:     walletRepo,
		listingRepo:    listingRepo,
		transactor:     transactor,
		notifier:       notifier,
		commissionRate: commissionRate,
		log:            log,
	}
}

// Checkout creates one order plus one line item per submitted cart line.
// Lines are settled independently: a failure on line N leaves lines 1..N-1
// committed, and the orders created so far are returned alongside the error.
func (s *OrderServiceImpl) Checkout(ctx context.Context, req ports.CheckoutRequest) ([]domain.Order, error) {
	if len(req.Lines) == 0 {
		return nil, apperror.Validation("cart is empty")
	}
	// An order stored without a reference could never be settled by a
	// webhook, so reject it up front.
	if req.PaymentMethod != ports.PaymentMethodWallet && req.ProviderRef == "" {
		return nil, apperror.Validation("provider_ref is required for provider payments")
	}

	var orders []domain.Order
	for _, line := range req.Lines {
		order, err := s.checkoutLine(ctx, req, line)
		if err != nil {
			return orders, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// checkoutLine creates and, for wallet payments, settles a single cart line.
// The order, its item and any wallet movement commit or roll back together.
func (s *OrderServiceImpl) checkoutLine(ctx context.Context, req ports.CheckoutRequest, line ports.CartLine) (*domain.Order, error) {
	if line.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be positive")
	}

	listing, err := s.listingRepo.GetByID(ctx, line.ItemID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve listing: %w", err))
	}
	if listing == nil {
		return nil, apperror.ErrNotFound("listing")
	}
	if !listing.IsPurchasable() {
		return nil, apperror.ErrListingUnavailable()
	}
	if listing.Kind != line.ItemType {
		return nil, apperror.Validation("item_type does not match listing")
	}
	if listing.SellerID == req.BuyerID {
		return nil, apperror.ErrOwnListing()
	}

	// Price snapshot: the order amount is fixed now and never recomputed
	// from live listing data.
	amount := listing.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            uuid.New(),
		BuyerID:       req.BuyerID,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Amount:        amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.PaymentMethod != ports.PaymentMethodWallet {
		ref := req.ProviderRef
		order.ProviderRef = &ref
	}
	order.Items = []domain.OrderItem{{
		ID:       uuid.New(),
		OrderID:  order.ID,
		ItemID:   listing.ID,
		ItemType: listing.Kind,
		SellerID: listing.SellerID,
		Price:    listing.Price,
		Quantity: line.Quantity,
	}}

	if req.PaymentMethod == ports.PaymentMethodWallet {
		// Wallet rows may not exist yet; make sure both do before locking.
		if _, err := ensureWallet(ctx, s.walletRepo, req.BuyerID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("ensure buyer wallet: %w", err))
		}
		if _, err := ensureWallet(ctx, s.walletRepo, listing.SellerID); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("ensure seller wallet: %w", err))
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if req.PaymentMethod == ports.PaymentMethodWallet {
		order.Status = domain.OrderStatusCompleted
		order.PaymentStatus = domain.PaymentStatusPaid

		// Lock wallets in user-id order so crossed purchases cannot deadlock.
		first, second := req.BuyerID, listing.SellerID
		if second.String() < first.String() {
			first, second = second, first
		}
		locked := map[uuid.UUID]*domain.Wallet{}
		for _, id := range []uuid.UUID{first, second} {
			w, err := s.walletRepo.GetByUserIDForUpdate(ctx, dbTx, id)
			if err != nil {
				return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
			}
			if w == nil {
				return nil, apperror.ErrNotFound("wallet")
			}
			locked[id] = w
		}
		buyerWallet, sellerWallet := locked[req.BuyerID], locked[listing.SellerID]

		if !buyerWallet.CanDebit(amount) {
			return nil, apperror.ErrInsufficientFunds()
		}

		commission := amount.Mul(s.commissionRate).Round(2)
		sellerNet := amount.Sub(commission)

		buyerWallet.Balance = buyerWallet.Balance.Sub(amount)
		buyerWallet.UpdatedAt = now
		sellerWallet.Balance = sellerWallet.Balance.Add(sellerNet)
		sellerWallet.TotalEarned = sellerWallet.TotalEarned.Add(sellerNet)
		sellerWallet.UpdatedAt = now

		if err := s.walletRepo.Update(ctx, dbTx, buyerWallet); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("debit buyer wallet: %w", err))
		}
		if err := s.walletRepo.Update(ctx, dbTx, sellerWallet); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit seller wallet: %w", err))
		}

		if err := s.orderRepo.Create(ctx, dbTx, order); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create order: %w", err))
		}

		orderID := order.ID
		purchase := &domain.Transaction{
			ID:          uuid.New(),
			UserID:      req.BuyerID,
			Type:        domain.TransactionTypePurchase,
			Amount:      amount.Neg(),
			Status:      domain.TransactionStatusCompleted,
			ReferenceID: &orderID,
			Description: "Purchase: " + listing.Title,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.txRepo.Create(ctx, dbTx, purchase); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create purchase entry: %w", err))
		}

		sale := &domain.Transaction{
			ID:          uuid.New(),
			UserID:      listing.SellerID,
			Type:        domain.TransactionTypeSale,
			Amount:      sellerNet,
			Status:      domain.TransactionStatusCompleted,
			ReferenceID: &orderID,
			Description: "Sale: " + listing.Title,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.txRepo.Create(ctx, dbTx, sale); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create sale entry: %w", err))
		}
	} else {
		if err := s.orderRepo.Create(ctx, dbTx, order); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create order: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if req.PaymentMethod == ports.PaymentMethodWallet {
		s.notifier.Emit(&domain.Notification{
			ID:        uuid.New(),
			UserID:    listing.SellerID,
			Type:      domain.NotificationTypeSale,
			Title:     "New sale",
			Message:   fmt.Sprintf("%s sold for %s", listing.Title, amount.StringFixed(2)),
			Link:      "/orders/" + order.ID.String(),
			CreatedAt: now,
		})
	}

	s.log.Info().
		Str("order_id", order.ID.String()).
		Str("buyer_id", req.BuyerID.String()).
		Str("method", string(req.PaymentMethod)).
		Str("amount", amount.StringFixed(2)).
		Msg("order created")

	return order, nil
}

// UpdateStatus moves an order to the target status. The caller must be the
// buyer or one of the sellers on the order's line items. No transition table
// is enforced between statuses.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, callerID, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, apperror.ErrInvalidOrderStatus()
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if !order.IsParty(callerID) {
		return nil, apperror.ErrNotOrderParty()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.orderRepo.UpdateStatus(ctx, dbTx, orderID, status); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update status: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	// Notify the counter-parties: sellers when the buyer acted, the buyer
	// otherwise.
	recipients := order.SellerIDs()
	if callerID != order.BuyerID {
		recipients = []uuid.UUID{order.BuyerID}
	}
	for _, uid := range recipients {
		s.notifier.Emit(&domain.Notification{
			ID:        uuid.New(),
			UserID:    uid,
			Type:      domain.NotificationTypeOrderStatus,
			Title:     "Order update",
			Message:   fmt.Sprintf("Order %s is now %s", shortID(order.ID), status),
			Link:      "/orders/" + order.ID.String(),
			CreatedAt: order.UpdatedAt,
		})
	}

	return order, nil
}

// Get fetches a single order; only the buyer or a seller may read it.
func (s *OrderServiceImpl) Get(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("order")
	}
	if !order.IsParty(callerID) {
		return nil, apperror.ErrNotOrderParty()
	}
	return order, nil
}

// List fetches the caller's orders as buyer or seller.
func (s *OrderServiceImpl) List(ctx context.Context, params ports.OrderListParams) ([]domain.Order, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list orders: %w", err))
	}
	return orders, total, nil
}

// shortID renders the first UUID segment for human-readable messages.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
