package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutStatus represents the state of a withdrawal request.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusCancelled PayoutStatus = "cancelled"
	PayoutStatusCompleted PayoutStatus = "completed"
)

// PayoutMethod is the destination rail for a withdrawal.
type PayoutMethod string

const (
	PayoutMethodBankTransfer PayoutMethod = "bank_transfer"
	PayoutMethodPayPal       PayoutMethod = "paypal"
)

// Payout is a withdrawal request against a wallet's available balance.
// PayoutDetailsEnc stores the destination details (IBAN, PayPal address)
// AES-256-GCM encrypted; the plaintext is never persisted.
type Payout struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	Amount           decimal.Decimal `json:"amount"`
	Status           PayoutStatus    `json:"status"`
	Method           PayoutMethod    `json:"payout_method"`
	PayoutDetailsEnc string          `json:"-"`
	TransactionID    uuid.UUID       `json:"transaction_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsCancellable returns true while the payout has not been settled.
func (p *Payout) IsCancellable() bool {
	return p.Status == PayoutStatusPending
}
