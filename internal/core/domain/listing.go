package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingStatus represents the visibility of a listing.
type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
)

// Listing is a purchasable item offered by a seller: either a product
// (beat, sample pack) or a service (mixing, mastering). Checkout resolves
// prices from here; the resolved price is then snapshotted onto the order
// item and never read back.
type Listing struct {
	ID           uuid.UUID       `json:"id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	Kind         ItemType        `json:"kind"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Status       ListingStatus   `json:"status"`
	DeliveryDays int             `json:"delivery_days,omitempty"` // services only
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsPurchasable returns true if the listing can be added to a cart.
func (l *Listing) IsPurchasable() bool {
	return l.Status == ListingStatusActive
}
