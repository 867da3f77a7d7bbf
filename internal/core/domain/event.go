package domain

import "time"

// PaymentProvider identifies the external payment processor.
type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "stripe"
	ProviderPayPal PaymentProvider = "paypal"
)

// Webhook event types recognised by the adapter. Anything else is logged
// and acknowledged without action so providers stop retrying.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentDenied   = "payment.denied"
	EventPaymentRefunded = "payment.refunded"
	EventPayoutPaid      = "payout.paid"
)

// PaymentEvent records a processed webhook event so provider retries are
// acknowledged without re-applying their effects.
type PaymentEvent struct {
	Provider    PaymentProvider `json:"provider"`
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// BuildEventKey constructs the idempotency key for a provider event.
func BuildEventKey(provider PaymentProvider, eventID string) string {
	return string(provider) + ":" + eventID
}
