package ports

import (
	"context"
	"time"

	"producers-avenue/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// EncryptionService handles AES-256-GCM encryption/decryption of sensitive
// payout destination details.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

// WebhookVerifier checks a provider's signature over a raw webhook body.
// Implementations must perform no state mutation; a request that fails
// verification is rejected before anything else runs.
type WebhookVerifier interface {
	Verify(payload []byte, headers map[string]string, now time.Time) error
}

// EventCache is the Redis fast path of the duplicate webhook event guard.
type EventCache interface {
	// CheckAndSet atomically records a provider event key.
	// Returns true if the key is new, false if it was already seen.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Clear drops a previously set key so the provider's retry of a failed
	// delivery is processed instead of acknowledged as a duplicate.
	Clear(ctx context.Context, key string) error
}

// --- Service Ports (Business Logic) ---

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

// OrderService defines order bookkeeping logic.
type OrderService interface {
	Checkout(ctx context.Context, req CheckoutRequest) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, callerID, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	Get(ctx context.Context, callerID, orderID uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, params OrderListParams) ([]domain.Order, int64, error)
}

// CheckoutRequest holds validated input for checkout.
type CheckoutRequest struct {
	BuyerID       uuid.UUID
	PaymentMethod PaymentMethod
	ProviderRef   string // provider checkout/intent reference, provider methods only
	Lines         []CartLine
}

// PaymentMethod selects how a checkout is settled.
type PaymentMethod string

const (
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// CartLine is one submitted cart entry. The price is resolved server-side
// from the listing at creation time.
type CartLine struct {
	ItemID   uuid.UUID
	ItemType domain.ItemType
	Quantity int
}

// WalletService defines wallet and payout bookkeeping logic.
type WalletService interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	RequestPayout(ctx context.Context, req PayoutRequest) (*domain.Payout, error)
	CancelPayout(ctx context.Context, userID, payoutID uuid.UUID) (*domain.Payout, error)
	// CompletePayout runs inside the caller's transaction so the caller can
	// commit the wallet movement together with its own bookkeeping.
	CompletePayout(ctx context.Context, dbTx pgx.Tx, payoutID uuid.UUID) (*domain.Payout, error)
	ListPayouts(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Payout, int64, error)
}

// PayoutRequest holds validated input for a withdrawal request.
type PayoutRequest struct {
	UserID        uuid.UUID
	Amount        decimal.Decimal
	Method        domain.PayoutMethod
	PayoutDetails string // plaintext destination details, encrypted before storage
}

// LedgerService exposes read access to a user's ledger entries.
type LedgerService interface {
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// WebhookService applies verified provider events to orders, the ledger and
// wallets. Duplicate events are acknowledged without effect; unrecognised
// event types are logged and acknowledged.
type WebhookService interface {
	Process(ctx context.Context, ev ProviderEvent) error
}

// ProviderEvent is a provider webhook event normalised by the HTTP adapter.
type ProviderEvent struct {
	Provider  domain.PaymentProvider
	EventID   string
	EventType string // provider's raw event type string
	Ref       string // provider payment reference, or payout id for payout events
}

// NotificationEmitter records user-facing notifications, best-effort.
type NotificationEmitter interface {
	// Emit schedules the insert on a background worker; it never returns
	// an error because notification delivery is not part of the success
	// criteria of the parent operation.
	Emit(n *domain.Notification)
	Shutdown()
}

// NotificationService exposes a recipient's notification feed.
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, int64, int64, error) // items, total, unread
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// CatalogService defines the social and marketplace surfaces.
type CatalogService interface {
	CreateListing(ctx context.Context, l *domain.Listing) error
	GetListing(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	UpdateListing(ctx context.Context, sellerID uuid.UUID, l *domain.Listing) (*domain.Listing, error)
	DeactivateListing(ctx context.Context, sellerID, id uuid.UUID) error
	ListListings(ctx context.Context, params ListingListParams) ([]domain.Listing, int64, error)

	CreatePost(ctx context.Context, p *domain.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	DeletePost(ctx context.Context, authorID, id uuid.UUID) error
	ListPosts(ctx context.Context, page, pageSize int) ([]domain.Post, int64, error)
}
