package handler

import (
	"encoding/json"
	"io"
	"time"

	"producers-avenue/internal/adapter/http/dto"
	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/internal/service"
	"producers-avenue/pkg/apperror"
	"producers-avenue/pkg/response"

	"github.com/gin-gonic/gin"
)

// Provider event types mapped to the internal vocabulary. Unmapped types are
// passed through verbatim; the service logs and acknowledges them.
var stripeEventTypes = map[string]string{
	"payment_intent.succeeded":      domain.EventPaymentCaptured,
	"payment_intent.payment_failed": domain.EventPaymentDenied,
	"charge.refunded":               domain.EventPaymentRefunded,
	"payout.paid":                   domain.EventPayoutPaid,
}

var paypalEventTypes = map[string]string{
	"PAYMENT.CAPTURE.COMPLETED":      domain.EventPaymentCaptured,
	"PAYMENT.CAPTURE.DENIED":         domain.EventPaymentDenied,
	"PAYMENT.CAPTURE.REFUNDED":       domain.EventPaymentRefunded,
	"PAYMENT.PAYOUTS-ITEM.SUCCEEDED": domain.EventPayoutPaid,
}

// WebhookHandler receives and verifies provider webhook deliveries.
type WebhookHandler struct {
	webhookSvc     ports.WebhookService
	stripeVerifier ports.WebhookVerifier
	paypalVerifier ports.WebhookVerifier
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService, stripeVerifier, paypalVerifier ports.WebhookVerifier) *WebhookHandler {
	return &WebhookHandler{
		webhookSvc:     webhookSvc,
		stripeVerifier: stripeVerifier,
		paypalVerifier: paypalVerifier,
	}
}

// stripeEvent is the subset of Stripe's event envelope the adapter reads.
type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			PaymentIntent string            `json:"payment_intent"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// paypalEvent is the subset of PayPal's event envelope the adapter reads.
type paypalEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"`
	} `json:"resource"`
}

// Stripe handles POST /api/v1/webhooks/stripe.
func (h *WebhookHandler) Stripe(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.ErrMalformedWebhookPayload())
		return
	}

	headers := map[string]string{
		service.HeaderStripeSignature: c.GetHeader(service.HeaderStripeSignature),
	}
	if err := h.stripeVerifier.Verify(body, headers, time.Now()); err != nil {
		response.Error(c, err)
		return
	}

	var ev stripeEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" || ev.Type == "" {
		response.Error(c, apperror.ErrMalformedWebhookPayload())
		return
	}

	eventType := ev.Type
	if mapped, ok := stripeEventTypes[ev.Type]; ok {
		eventType = mapped
	}

	// Payouts carry our payout id in metadata; payments reference the intent.
	ref := ev.Data.Object.ID
	if ev.Data.Object.PaymentIntent != "" {
		ref = ev.Data.Object.PaymentIntent
	}
	if pid := ev.Data.Object.Metadata["payout_id"]; pid != "" {
		ref = pid
	}
	// An empty reference can never match an order; acknowledge so the
	// provider stops retrying.
	if ref == "" {
		response.OK(c, dto.WebhookAck{Received: true})
		return
	}

	if err := h.webhookSvc.Process(c.Request.Context(), ports.ProviderEvent{
		Provider:  domain.ProviderStripe,
		EventID:   ev.ID,
		EventType: eventType,
		Ref:       ref,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WebhookAck{Received: true})
}

// PayPal handles POST /api/v1/webhooks/paypal.
func (h *WebhookHandler) PayPal(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.ErrMalformedWebhookPayload())
		return
	}

	headers := map[string]string{
		service.HeaderPayPalTransmissionID:   c.GetHeader(service.HeaderPayPalTransmissionID),
		service.HeaderPayPalTransmissionTime: c.GetHeader(service.HeaderPayPalTransmissionTime),
		service.HeaderPayPalTransmissionSig:  c.GetHeader(service.HeaderPayPalTransmissionSig),
	}
	if err := h.paypalVerifier.Verify(body, headers, time.Now()); err != nil {
		response.Error(c, err)
		return
	}

	var ev paypalEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" || ev.EventType == "" {
		response.Error(c, apperror.ErrMalformedWebhookPayload())
		return
	}

	eventType := ev.EventType
	if mapped, ok := paypalEventTypes[ev.EventType]; ok {
		eventType = mapped
	}

	// custom_id carries our reference when set on the provider side.
	ref := ev.Resource.ID
	if ev.Resource.CustomID != "" {
		ref = ev.Resource.CustomID
	}
	if ref == "" {
		response.OK(c, dto.WebhookAck{Received: true})
		return
	}

	if err := h.webhookSvc.Process(c.Request.Context(), ports.ProviderEvent{
		Provider:  domain.ProviderPayPal,
		EventID:   ev.ID,
		EventType: eventType,
		Ref:       ref,
	}); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WebhookAck{Received: true})
}
