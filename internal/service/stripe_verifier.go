package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"producers-avenue/pkg/apperror"
)

// HeaderStripeSignature is the header carrying Stripe's signed payload scheme.
const HeaderStripeSignature = "Stripe-Signature"

// StripeVerifier implements ports.WebhookVerifier for Stripe's signing
// scheme: the header carries "t=<unix>,v1=<hex>" where v1 is
// HMAC-SHA256(secret, "<t>.<body>").
type StripeVerifier struct {
	secret    []byte
	tolerance time.Duration
}

// NewStripeVerifier creates a verifier for the endpoint's signing secret.
func NewStripeVerifier(secret string, tolerance time.Duration) *StripeVerifier {
	return &StripeVerifier{secret: []byte(secret), tolerance: tolerance}
}

// Verify checks the signature header against the raw body. It mutates no
// state; callers reject the request outright on error.
func (v *StripeVerifier) Verify(payload []byte, headers map[string]string, now time.Time) error {
	header := headers[HeaderStripeSignature]
	if header == "" {
		return apperror.ErrInvalidWebhookSignature()
	}

	timestamp, signatures, err := parseStripeHeader(header)
	if err != nil {
		return apperror.ErrInvalidWebhookSignature()
	}

	if v.tolerance > 0 {
		age := now.Sub(time.Unix(timestamp, 0))
		if age > v.tolerance || age < -v.tolerance {
			return apperror.ErrInvalidWebhookSignature()
		}
	}

	mac := hmac.New(sha256.New, v.secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			return nil
		}
	}
	return apperror.ErrInvalidWebhookSignature()
}

// parseStripeHeader splits "t=<unix>,v1=<hex>[,v1=<hex>...]".
func parseStripeHeader(header string) (int64, []string, error) {
	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		k, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("parsing timestamp: %w", err)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, val)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("missing timestamp or signature")
	}
	return timestamp, signatures, nil
}
