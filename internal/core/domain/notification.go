package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType categorises user-facing event records.
type NotificationType string

const (
	NotificationTypeSale        NotificationType = "sale"
	NotificationTypeOrderStatus NotificationType = "order_status"
	NotificationTypeRefund      NotificationType = "refund"
	NotificationTypePayout      NotificationType = "payout"
)

// Notification is a user-facing event record. Delivery is best-effort:
// emit failures are logged and swallowed, never surfaced to the flow that
// triggered them. Read transitions false→true only.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
