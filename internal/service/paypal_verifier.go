package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"time"

	"producers-avenue/pkg/apperror"
)

// PayPal transmission headers.
const (
	HeaderPayPalTransmissionID   = "Paypal-Transmission-Id"
	HeaderPayPalTransmissionTime = "Paypal-Transmission-Time"
	HeaderPayPalTransmissionSig  = "Paypal-Transmission-Sig"
)

// PayPalVerifier implements ports.WebhookVerifier for PayPal's transmission
// scheme: the signature covers "<id>|<time>|<webhook_id>|<crc32(body)>".
type PayPalVerifier struct {
	webhookID string
	secret    []byte
}

// NewPayPalVerifier creates a verifier bound to the configured webhook id.
func NewPayPalVerifier(webhookID, secret string) *PayPalVerifier {
	return &PayPalVerifier{webhookID: webhookID, secret: []byte(secret)}
}

// Verify checks the transmission signature against the raw body.
func (v *PayPalVerifier) Verify(payload []byte, headers map[string]string, now time.Time) error {
	transmissionID := headers[HeaderPayPalTransmissionID]
	transmissionTime := headers[HeaderPayPalTransmissionTime]
	signature := headers[HeaderPayPalTransmissionSig]
	if transmissionID == "" || transmissionTime == "" || signature == "" {
		return apperror.ErrInvalidWebhookSignature()
	}

	message := fmt.Sprintf("%s|%s|%s|%d",
		transmissionID, transmissionTime, v.webhookID, crc32.ChecksumIEEE(payload))

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(message))
	expected := mac.Sum(nil)

	decoded, err := hex.DecodeString(signature)
	if err != nil {
		return apperror.ErrInvalidWebhookSignature()
	}
	if !hmac.Equal(expected, decoded) {
		return apperror.ErrInvalidWebhookSignature()
	}
	return nil
}
