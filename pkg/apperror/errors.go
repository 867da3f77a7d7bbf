package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountSuspended() *AppError {
	return New("AUTH_004", "Account is suspended", http.StatusForbidden)
}

// ---- Orders & Catalog (ORD) ----

func ErrNotFound(entity string) *AppError {
	return New("ORD_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidOrderStatus() *AppError {
	return New("ORD_002", "Invalid order status", http.StatusBadRequest)
}

func ErrNotOrderParty() *AppError {
	return New("ORD_003", "Caller is neither the buyer nor a seller on this order", http.StatusForbidden)
}

func ErrListingUnavailable() *AppError {
	return New("ORD_004", "Listing is not available for purchase", http.StatusGone)
}

func ErrOwnListing() *AppError {
	return New("ORD_005", "Cannot purchase your own listing", http.StatusBadRequest)
}

func ErrNotOwner() *AppError {
	return New("ORD_006", "Caller does not own this resource", http.StatusForbidden)
}

// ---- Wallet & Payouts (WLT) ----

func ErrInsufficientFunds() *AppError {
	return New("WLT_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WLT_002", "Invalid amount", http.StatusBadRequest)
}

func ErrBelowPayoutMinimum(min string) *AppError {
	return New("WLT_003", fmt.Sprintf("Payout amount below minimum of %s", min), http.StatusUnprocessableEntity)
}

func ErrPayoutNotCancellable() *AppError {
	return New("WLT_004", "Payout is not pending and cannot be cancelled", http.StatusConflict)
}

// ---- Webhooks (HOOK) ----

func ErrInvalidWebhookSignature() *AppError {
	return New("HOOK_001", "Invalid webhook signature", http.StatusUnauthorized)
}

func ErrMalformedWebhookPayload() *AppError {
	return New("HOOK_002", "Malformed webhook payload", http.StatusBadRequest)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}

// Validation returns a 400 validation error with the given message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
