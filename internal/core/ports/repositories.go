package ports

import (
	"context"

	"producers-avenue/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for creator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// OrderRepository defines persistence operations for orders and their line
// items. Methods accepting pgx.Tx run inside transaction blocks so an order
// and its item commit or roll back together.
type OrderRepository interface {
	Create(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// ListByProviderRef fetches every order tied to a provider payment
	// reference. A multi-line checkout shares one reference across orders.
	ListByProviderRef(ctx context.Context, ref string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus) error
	List(ctx context.Context, params OrderListParams) ([]domain.Order, int64, error)
}

// OrderListParams holds filter + pagination for listing orders.
type OrderListParams struct {
	UserID   uuid.UUID
	AsSeller bool // false = orders the user bought, true = orders the user sold on
	Status   *domain.OrderStatus
	Page     int
	PageSize int
}

// TransactionRepository defines persistence for signed ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus) error
	// GetSaleByOrderAndUser finds the seller's sale entry for an order,
	// used by the refund flow to mark the original entry refunded.
	GetSaleByOrderAndUser(ctx context.Context, orderID, userID uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing ledger entries.
type TransactionListParams struct {
	UserID   uuid.UUID
	Type     *domain.TransactionType
	Status   *domain.TransactionStatus
	Page     int
	PageSize int
}

// WalletRepository defines persistence for wallets. All mutations go through
// Update inside a transaction that previously locked the row with
// GetByUserIDForUpdate; there is no unlocked write path.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Wallet, error)
	Update(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
}

// PayoutRepository defines persistence for withdrawal requests.
type PayoutRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payout *domain.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payout, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PayoutStatus) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Payout, int64, error)
}

// NotificationRepository defines persistence for user-facing notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ListingRepository defines persistence for marketplace listings.
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	Update(ctx context.Context, l *domain.Listing) error
	List(ctx context.Context, params ListingListParams) ([]domain.Listing, int64, error)
}

// ListingListParams holds filter + pagination for listing queries.
type ListingListParams struct {
	Kind     *domain.ItemType
	SellerID *uuid.UUID
	Status   *domain.ListingStatus
	Page     int
	PageSize int
}

// PostRepository defines persistence for social feed posts.
type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, pageSize int) ([]domain.Post, int64, error)
}

// PaymentEventRepository defines persistence for processed webhook events
// (DB layer of the duplicate-delivery guard).
type PaymentEventRepository interface {
	Create(ctx context.Context, tx pgx.Tx, ev *domain.PaymentEvent) error
	Exists(ctx context.Context, provider domain.PaymentProvider, eventID string) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
