package dto

import (
	"producers-avenue/internal/core/domain"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CartLineRequest is one submitted cart entry.
type CartLineRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	ItemType string `json:"item_type" binding:"required,oneof=product service"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest is the request body for checkout. Provider payments must
// carry the provider's checkout reference; wallet payments settle without one.
type CheckoutRequest struct {
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=wallet stripe paypal"`
	ProviderRef   string            `json:"provider_ref" binding:"required_unless=PaymentMethod wallet,max=255"`
	Lines         []CartLineRequest `json:"lines" binding:"required,min=1,max=50,dive"`
}

// UpdateOrderStatusRequest is the request body for order status changes.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing completed cancelled refunded"`
}

// PayoutRequestBody is the request body for requesting a withdrawal.
type PayoutRequestBody struct {
	Amount        string `json:"amount" binding:"required,decimal_amount"`
	Method        string `json:"method" binding:"required,oneof=bank_transfer paypal"`
	PayoutDetails string `json:"payout_details" binding:"required,min=1,max=500"`
}

// CreateListingRequest is the request body for publishing a listing.
type CreateListingRequest struct {
	Kind         string `json:"kind" binding:"required,oneof=product service"`
	Title        string `json:"title" binding:"required,min=1,max=200"`
	Description  string `json:"description" binding:"max=5000"`
	Price        string `json:"price" binding:"required,decimal_amount"`
	DeliveryDays int    `json:"delivery_days" binding:"omitempty,gte=0,lte=365"`
}

// UpdateListingRequest is the request body for editing a listing.
type UpdateListingRequest struct {
	Title        string `json:"title" binding:"required,min=1,max=200"`
	Description  string `json:"description" binding:"max=5000"`
	Price        string `json:"price" binding:"required,decimal_amount"`
	Status       string `json:"status" binding:"omitempty,oneof=active inactive"`
	DeliveryDays int    `json:"delivery_days" binding:"omitempty,gte=0,lte=365"`
}

// CreatePostRequest is the request body for publishing a feed post.
type CreatePostRequest struct {
	Content  string  `json:"content" binding:"required,min=1,max=2000"`
	MediaURL *string `json:"media_url" binding:"omitempty,safe_url,max=2048"`
}

// ListResponse wraps any paginated collection.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewListResponse builds the pagination envelope.
func NewListResponse(items interface{}, total int64, page, pageSize int) ListResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return ListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// NotificationListResponse adds the unread counter to the feed page.
type NotificationListResponse struct {
	ListResponse
	Unread int64 `json:"unread"`
}

// WebhookAck is the acknowledgement body returned to providers.
type WebhookAck struct {
	Received bool `json:"received"`
}

// ToItemType converts a validated item type string.
func ToItemType(s string) domain.ItemType {
	return domain.ItemType(s)
}
