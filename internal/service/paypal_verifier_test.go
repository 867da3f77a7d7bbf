package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"testing"
	"time"

	"producers-avenue/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	paypalTestWebhookID = "8PT59735JN779430N"
	paypalTestSecret    = "paypal_test_secret"
)

func signPayPal(t *testing.T, secret, transmissionID, transmissionTime, webhookID string, payload []byte) string {
	t.Helper()
	message := fmt.Sprintf("%s|%s|%s|%d",
		transmissionID, transmissionTime, webhookID, crc32.ChecksumIEEE(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func paypalHeaders(t *testing.T, secret, webhookID string, payload []byte) map[string]string {
	t.Helper()
	id := "86b4b290-86b4-11ee-a320-0d2adcbf7335"
	ts := "2026-08-31T12:00:00Z"
	return map[string]string{
		HeaderPayPalTransmissionID:   id,
		HeaderPayPalTransmissionTime: ts,
		HeaderPayPalTransmissionSig:  signPayPal(t, secret, id, ts, webhookID, payload),
	}
}

func TestPayPalVerifier_Verify_Valid(t *testing.T) {
	v := NewPayPalVerifier(paypalTestWebhookID, paypalTestSecret)
	payload := []byte(`{"id":"WH-1","event_type":"PAYMENT.CAPTURE.COMPLETED"}`)

	headers := paypalHeaders(t, paypalTestSecret, paypalTestWebhookID, payload)
	require.NoError(t, v.Verify(payload, headers, time.Now()))
}

func TestPayPalVerifier_Verify_WrongSecret(t *testing.T) {
	v := NewPayPalVerifier(paypalTestWebhookID, paypalTestSecret)
	payload := []byte(`{"id":"WH-2"}`)

	headers := paypalHeaders(t, "other_secret", paypalTestWebhookID, payload)
	err := v.Verify(payload, headers, time.Now())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "HOOK_001", appErr.Code)
}

func TestPayPalVerifier_Verify_WrongWebhookID(t *testing.T) {
	// A signature minted for a different endpoint must not validate here.
	v := NewPayPalVerifier(paypalTestWebhookID, paypalTestSecret)
	payload := []byte(`{"id":"WH-3"}`)

	headers := paypalHeaders(t, paypalTestSecret, "0WH20923AN5551234", payload)
	err := v.Verify(payload, headers, time.Now())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "HOOK_001", appErr.Code)
}

func TestPayPalVerifier_Verify_TamperedPayload(t *testing.T) {
	v := NewPayPalVerifier(paypalTestWebhookID, paypalTestSecret)

	headers := paypalHeaders(t, paypalTestSecret, paypalTestWebhookID, []byte(`{"amount":"10.00"}`))
	err := v.Verify([]byte(`{"amount":"9999.00"}`), headers, time.Now())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "HOOK_001", appErr.Code)
}

func TestPayPalVerifier_Verify_MissingHeaders(t *testing.T) {
	v := NewPayPalVerifier(paypalTestWebhookID, paypalTestSecret)
	payload := []byte(`{}`)
	full := paypalHeaders(t, paypalTestSecret, paypalTestWebhookID, payload)

	for _, missing := range []string{
		HeaderPayPalTransmissionID,
		HeaderPayPalTransmissionTime,
		HeaderPayPalTransmissionSig,
	} {
		headers := map[string]string{}
		for k, v := range full {
			if k != missing {
				headers[k] = v
			}
		}
		err := v.Verify(payload, headers, time.Now())
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr, "missing %s", missing)
		assert.Equal(t, "HOOK_001", appErr.Code)
	}
}

func TestPayPalVerifier_Verify_NonHexSignature(t *testing.T) {
	v := NewPayPalVerifier(paypalTestWebhookID, paypalTestSecret)
	payload := []byte(`{}`)
	headers := paypalHeaders(t, paypalTestSecret, paypalTestWebhookID, payload)
	headers[HeaderPayPalTransmissionSig] = "zzzz-not-hex"

	err := v.Verify(payload, headers, time.Now())
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "HOOK_001", appErr.Code)
}
