package service

import (
	"context"
	"testing"
	"time"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/internal/core/ports/mocks"
	"producers-avenue/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

type orderServiceDeps struct {
	orderRepo   *mocks.MockOrderRepository
	txRepo      *mocks.MockTransactionRepository
	walletRepo  *mocks.MockWalletRepository
	listingRepo *mocks.MockListingRepository
	transactor  *mocks.MockDBTransactor
	notifier    *mocks.MockNotificationEmitter
}

func setupOrderService(t *testing.T) (*OrderServiceImpl, *orderServiceDeps, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	d := &orderServiceDeps{
		orderRepo:   mocks.NewMockOrderRepository(ctrl),
		txRepo:      mocks.NewMockTransactionRepository(ctrl),
		walletRepo:  mocks.NewMockWalletRepository(ctrl),
		listingRepo: mocks.NewMockListingRepository(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		notifier:    mocks.NewMockNotificationEmitter(ctrl),
	}
	svc := NewOrderService(
		d.orderRepo, d.txRepo, d.walletRepo, d.listingRepo,
		d.transactor, d.notifier, decimal.NewFromFloat(0.10), zerolog.Nop(),
	)
	return svc, d, ctrl
}

func activeListing(sellerID uuid.UUID, price float64) *domain.Listing {
	return &domain.Listing{
		ID:       uuid.New(),
		SellerID: sellerID,
		Kind:     domain.ItemTypeProduct,
		Title:    "Trap pack vol 2",
		Price:    decimal.NewFromFloat(price),
		Status:   domain.ListingStatusActive,
	}
}

func walletWithBalance(userID uuid.UUID, balance float64) *domain.Wallet {
	return &domain.Wallet{
		ID:      uuid.New(),
		UserID:  userID,
		Balance: decimal.NewFromFloat(balance),
	}
}

func TestOrderService_Checkout_WalletSuccess(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	sellerID := uuid.New()
	listing := activeListing(sellerID, 100)
	tx := &mockTx{}

	buyerWallet := walletWithBalance(buyerID, 250)
	sellerWallet := walletWithBalance(sellerID, 0)

	d.listingRepo.EXPECT().GetByID(ctx, listing.ID).Return(listing, nil)
	// Lazy wallet resolution before the transaction
	d.walletRepo.EXPECT().GetByUserID(ctx, buyerID).Return(buyerWallet, nil)
	d.walletRepo.EXPECT().GetByUserID(ctx, sellerID).Return(sellerWallet, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, buyerID).Return(buyerWallet, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, sellerID).Return(sellerWallet, nil)
	d.walletRepo.EXPECT().Update(ctx, tx, buyerWallet).Return(nil)
	d.walletRepo.EXPECT().Update(ctx, tx, sellerWallet).Return(nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			assert.Equal(t, domain.OrderStatusCompleted, o.Status)
			assert.Equal(t, domain.PaymentStatusPaid, o.PaymentStatus)
			assert.True(t, o.Amount.Equal(decimal.NewFromInt(200)))
			require.Len(t, o.Items, 1)
			assert.Equal(t, 2, o.Items[0].Quantity)
			assert.True(t, o.Items[0].Price.Equal(listing.Price))
			return nil
		})

	var entries []*domain.Transaction
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, tr *domain.Transaction) error {
			entries = append(entries, tr)
			return nil
		}).Times(2)
	d.notifier.EXPECT().Emit(gomock.Any())

	orders, err := svc.Checkout(ctx, ports.CheckoutRequest{
		BuyerID:       buyerID,
		PaymentMethod: ports.PaymentMethodWallet,
		Lines: []ports.CartLine{
			{ItemID: listing.ID, ItemType: domain.ItemTypeProduct, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	// Buyer debited the gross amount, seller credited net of 10% commission.
	assert.True(t, buyerWallet.Balance.Equal(decimal.NewFromInt(50)))
	assert.True(t, sellerWallet.Balance.Equal(decimal.NewFromInt(180)))
	assert.True(t, sellerWallet.TotalEarned.Equal(decimal.NewFromInt(180)))

	require.Len(t, entries, 2)
	assert.Equal(t, domain.TransactionTypePurchase, entries[0].Type)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(-200)))
	assert.Equal(t, domain.TransactionTypeSale, entries[1].Type)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(180)))
}

func TestOrderService_Checkout_InsufficientFunds(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	sellerID := uuid.New()
	listing := activeListing(sellerID, 100)
	tx := &mockTx{}

	buyerWallet := walletWithBalance(buyerID, 20)
	sellerWallet := walletWithBalance(sellerID, 0)

	d.listingRepo.EXPECT().GetByID(ctx, listing.ID).Return(listing, nil)
	d.walletRepo.EXPECT().GetByUserID(ctx, buyerID).Return(buyerWallet, nil)
	d.walletRepo.EXPECT().GetByUserID(ctx, sellerID).Return(sellerWallet, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, buyerID).Return(buyerWallet, nil)
	d.walletRepo.EXPECT().GetByUserIDForUpdate(ctx, tx, sellerID).Return(sellerWallet, nil)

	orders, err := svc.Checkout(ctx, ports.CheckoutRequest{
		BuyerID:       buyerID,
		PaymentMethod: ports.PaymentMethodWallet,
		Lines: []ports.CartLine{
			{ItemID: listing.ID, ItemType: domain.ItemTypeProduct, Quantity: 1},
		},
	})
	assert.Empty(t, orders)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "WLT_001", appErr.Code)
}

func TestOrderService_Checkout_OwnListing(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	listing := activeListing(buyerID, 50)

	d.listingRepo.EXPECT().GetByID(ctx, listing.ID).Return(listing, nil)

	_, err := svc.Checkout(ctx, ports.CheckoutRequest{
		BuyerID:       buyerID,
		PaymentMethod: ports.PaymentMethodWallet,
		Lines: []ports.CartLine{
			{ItemID: listing.ID, ItemType: domain.ItemTypeProduct, Quantity: 1},
		},
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_005", appErr.Code)
}

func TestOrderService_Checkout_InactiveListing(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	listing := activeListing(uuid.New(), 50)
	listing.Status = domain.ListingStatusInactive

	d.listingRepo.EXPECT().GetByID(ctx, listing.ID).Return(listing, nil)

	_, err := svc.Checkout(ctx, ports.CheckoutRequest{
		BuyerID:       uuid.New(),
		PaymentMethod: ports.PaymentMethodWallet,
		Lines: []ports.CartLine{
			{ItemID: listing.ID, ItemType: domain.ItemTypeProduct, Quantity: 1},
		},
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_004", appErr.Code)
}

func TestOrderService_Checkout_ProviderMethodStaysPending(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	listing := activeListing(uuid.New(), 75)
	tx := &mockTx{}

	d.listingRepo.EXPECT().GetByID(ctx, listing.ID).Return(listing, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			assert.Equal(t, domain.OrderStatusPending, o.Status)
			assert.Equal(t, domain.PaymentStatusUnpaid, o.PaymentStatus)
			require.NotNil(t, o.ProviderRef)
			assert.Equal(t, "pi_3abc", *o.ProviderRef)
			return nil
		})

	orders, err := svc.Checkout(ctx, ports.CheckoutRequest{
		BuyerID:       buyerID,
		PaymentMethod: ports.PaymentMethodStripe,
		ProviderRef:   "pi_3abc",
		Lines: []ports.CartLine{
			{ItemID: listing.ID, ItemType: domain.ItemTypeProduct, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestOrderService_Checkout_ProviderWithoutRefRejected(t *testing.T) {
	svc, _, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	// No reference means no webhook can ever settle the order.
	_, err := svc.Checkout(context.Background(), ports.CheckoutRequest{
		BuyerID:       uuid.New(),
		PaymentMethod: ports.PaymentMethodStripe,
		Lines: []ports.CartLine{
			{ItemID: uuid.New(), ItemType: domain.ItemTypeProduct, Quantity: 1},
		},
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestOrderService_Checkout_PartialFailureKeepsCommittedLines(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	first := activeListing(uuid.New(), 30)
	missingID := uuid.New()
	tx := &mockTx{}

	d.listingRepo.EXPECT().GetByID(ctx, first.ID).Return(first, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	// Second line fails resolution; the first order stays committed.
	d.listingRepo.EXPECT().GetByID(ctx, missingID).Return(nil, nil)

	orders, err := svc.Checkout(ctx, ports.CheckoutRequest{
		BuyerID:       buyerID,
		PaymentMethod: ports.PaymentMethodPayPal,
		ProviderRef:   "PAYID-1",
		Lines: []ports.CartLine{
			{ItemID: first.ID, ItemType: domain.ItemTypeProduct, Quantity: 1},
			{ItemID: missingID, ItemType: domain.ItemTypeProduct, Quantity: 1},
		},
	})
	require.Error(t, err)
	require.Len(t, orders, 1)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_001", appErr.Code)
}

func TestOrderService_UpdateStatus_Success(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	buyerID := uuid.New()
	sellerID := uuid.New()
	order := &domain.Order{
		ID:      uuid.New(),
		BuyerID: buyerID,
		Status:  domain.OrderStatusPending,
		Items:   []domain.OrderItem{{SellerID: sellerID}},
	}
	tx := &mockTx{}

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().UpdateStatus(ctx, tx, order.ID, domain.OrderStatusProcessing).Return(nil)
	// Buyer acted, so the seller is notified.
	d.notifier.EXPECT().Emit(gomock.Any()).Do(func(n *domain.Notification) {
		assert.Equal(t, sellerID, n.UserID)
		assert.Equal(t, domain.NotificationTypeOrderStatus, n.Type)
	})

	updated, err := svc.UpdateStatus(ctx, buyerID, order.ID, domain.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
}

func TestOrderService_UpdateStatus_InvalidStatus(t *testing.T) {
	svc, _, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), "shipped")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_002", appErr.Code)
}

func TestOrderService_UpdateStatus_NotParty(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	order := &domain.Order{
		ID:      uuid.New(),
		BuyerID: uuid.New(),
		Items:   []domain.OrderItem{{SellerID: uuid.New()}},
	}

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil)

	_, err := svc.UpdateStatus(ctx, uuid.New(), order.ID, domain.OrderStatusCancelled)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_003", appErr.Code)
}

func TestOrderService_Get_PartyCheck(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	sellerID := uuid.New()
	order := &domain.Order{
		ID:      uuid.New(),
		BuyerID: uuid.New(),
		Items:   []domain.OrderItem{{SellerID: sellerID}},
	}

	d.orderRepo.EXPECT().GetByID(ctx, order.ID).Return(order, nil).Times(2)

	// A seller on the order may read it.
	got, err := svc.Get(ctx, sellerID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// A stranger may not.
	_, err = svc.Get(ctx, uuid.New(), order.ID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ORD_003", appErr.Code)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	svc, _, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	_, err := svc.Checkout(context.Background(), ports.CheckoutRequest{
		BuyerID:       uuid.New(),
		PaymentMethod: ports.PaymentMethodWallet,
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
}

func TestOrderService_Checkout_KindMismatch(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	listing := activeListing(uuid.New(), 60)

	d.listingRepo.EXPECT().GetByID(ctx, listing.ID).Return(listing, nil)

	_, err := svc.Checkout(ctx, ports.CheckoutRequest{
		BuyerID:       uuid.New(),
		PaymentMethod: ports.PaymentMethodWallet,
		Lines: []ports.CartLine{
			{ItemID: listing.ID, ItemType: domain.ItemTypeService, Quantity: 1},
		},
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
}

// Guard against the time-dependent fields leaking zero values.
func TestOrderService_Checkout_SetsTimestamps(t *testing.T) {
	svc, d, ctrl := setupOrderService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	listing := activeListing(uuid.New(), 10)
	tx := &mockTx{}

	d.listingRepo.EXPECT().GetByID(ctx, listing.ID).Return(listing, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.orderRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, o *domain.Order) error {
			assert.WithinDuration(t, time.Now().UTC(), o.CreatedAt, time.Minute)
			return nil
		})

	_, err := svc.Checkout(ctx, ports.CheckoutRequest{
		BuyerID:       uuid.New(),
		PaymentMethod: ports.PaymentMethodStripe,
		ProviderRef:   "pi_ts",
		Lines: []ports.CartLine{
			{ItemID: listing.ID, ItemType: domain.ItemTypeProduct, Quantity: 1},
		},
	})
	require.NoError(t, err)
}
