package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"producers-avenue/internal/adapter/http/dto"
	"producers-avenue/internal/adapter/http/middleware"
	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/internal/core/ports/mocks"
	"producers-avenue/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonRequest(t *testing.T, w *httptest.ResponseRecorder, method string, body interface{}) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, "/", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func authed(c *gin.Context, userID uuid.UUID) {
	c.Set(middleware.CtxUserID, userID)
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	userID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Username:    "beatmaker99",
		Email:       "bm@example.com",
		Password:    "password123",
		DisplayName: "Beat Maker",
	}).Return(&domain.User{
		ID:          userID,
		Username:    "beatmaker99",
		DisplayName: "Beat Maker",
		Status:      domain.UserStatusActive,
	}, nil)

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.RegisterRequest{
		Username:    "beatmaker99",
		Email:       "bm@example.com",
		Password:    "password123",
		DisplayName: "Beat Maker",
	})

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, userID.String(), data["id"])
	assert.Equal(t, "beatmaker99", data["username"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, map[string]string{})

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrUsernameExists())

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.RegisterRequest{
		Username:    "taken",
		Email:       "taken@example.com",
		Password:    "password123",
		DisplayName: "Taken",
	})

	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "beatmaker99", "password123").Return("jwt-token-123", expiry, nil)

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.LoginRequest{
		Username: "beatmaker99",
		Password: "password123",
	})

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad", "bad").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.LoginRequest{Username: "bad", Password: "bad"})

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Order Handler Tests ---

func TestCheckout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrder := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrder)

	buyerID := uuid.New()
	itemID := uuid.New()

	mockOrder.EXPECT().Checkout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.CheckoutRequest) ([]domain.Order, error) {
			assert.Equal(t, buyerID, req.BuyerID)
			assert.Equal(t, ports.PaymentMethodWallet, req.PaymentMethod)
			require.Len(t, req.Lines, 1)
			assert.Equal(t, itemID, req.Lines[0].ItemID)
			return []domain.Order{{ID: uuid.New(), BuyerID: buyerID}}, nil
		})

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.CheckoutRequest{
		PaymentMethod: "wallet",
		Lines: []dto.CartLineRequest{
			{ItemID: itemID.String(), ItemType: "product", Quantity: 1},
		},
	})
	authed(c, buyerID)

	h.Checkout(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCheckout_EmptyLinesRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewOrderHandler(mocks.NewMockOrderService(ctrl))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.CheckoutRequest{
		PaymentMethod: "wallet",
		Lines:         []dto.CartLineRequest{},
	})
	authed(c, uuid.New())

	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_ProviderWithoutRefRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// A stripe checkout with no provider_ref would create an order no
	// webhook could ever settle; binding rejects it before the service runs.
	h := NewOrderHandler(mocks.NewMockOrderService(ctrl))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.CheckoutRequest{
		PaymentMethod: "stripe",
		Lines: []dto.CartLineRequest{
			{ItemID: uuid.NewString(), ItemType: "product", Quantity: 1},
		},
	})
	authed(c, uuid.New())

	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder_NotParty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrder := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrder)

	userID := uuid.New()
	orderID := uuid.New()
	mockOrder.EXPECT().Get(gomock.Any(), userID, orderID).Return(nil, apperror.ErrNotOrderParty())

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodGet, nil)
	c.Params = gin.Params{{Key: "id", Value: orderID.String()}}
	authed(c, userID)

	h.Get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrder := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrder)

	userID := uuid.New()
	orderID := uuid.New()
	mockOrder.EXPECT().UpdateStatus(gomock.Any(), userID, orderID, domain.OrderStatusCancelled).
		Return(&domain.Order{ID: orderID, Status: domain.OrderStatusCancelled}, nil)

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPatch, dto.UpdateOrderStatusRequest{Status: "cancelled"})
	c.Params = gin.Params{{Key: "id", Value: orderID.String()}}
	authed(c, userID)

	h.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListOrders_InvalidStatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewOrderHandler(mocks.NewMockOrderService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?status=shipped", nil)
	authed(c, uuid.New())

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Wallet Handler Tests ---

func TestGetWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet, mocks.NewMockLedgerService(ctrl))

	userID := uuid.New()
	mockWallet.EXPECT().GetWallet(gomock.Any(), userID).Return(&domain.Wallet{
		ID:      uuid.New(),
		UserID:  userID,
		Balance: decimal.NewFromInt(125),
	}, nil)

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodGet, nil)
	authed(c, userID)

	h.GetWallet(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "125", data["balance"])
}

func TestRequestPayout_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet, mocks.NewMockLedgerService(ctrl))

	userID := uuid.New()
	mockWallet.EXPECT().RequestPayout(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req ports.PayoutRequest) (*domain.Payout, error) {
			assert.Equal(t, userID, req.UserID)
			assert.True(t, req.Amount.Equal(decimal.NewFromFloat(150.50)))
			return &domain.Payout{ID: uuid.New(), UserID: userID, Amount: req.Amount}, nil
		})

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.PayoutRequestBody{
		Amount:        "150.50",
		Method:        "bank_transfer",
		PayoutDetails: "IBAN DE89...",
	})
	authed(c, userID)

	h.RequestPayout(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestPayout_BelowMinimum(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet, mocks.NewMockLedgerService(ctrl))

	mockWallet.EXPECT().RequestPayout(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrBelowPayoutMinimum("10.00"))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.PayoutRequestBody{
		Amount:        "5.00",
		Method:        "paypal",
		PayoutDetails: "payer@example.com",
	})
	authed(c, uuid.New())

	h.RequestPayout(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCancelPayout_Conflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet, mocks.NewMockLedgerService(ctrl))

	userID := uuid.New()
	payoutID := uuid.New()
	mockWallet.EXPECT().CancelPayout(gomock.Any(), userID, payoutID).
		Return(nil, apperror.ErrPayoutNotCancellable())

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodDelete, nil)
	c.Params = gin.Params{{Key: "id", Value: payoutID.String()}}
	authed(c, userID)

	h.CancelPayout(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mocks.NewMockWalletService(ctrl), mockLedger)

	userID := uuid.New()
	mockLedger.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
			assert.Equal(t, userID, params.UserID)
			require.NotNil(t, params.Type)
			assert.Equal(t, domain.TransactionTypeSale, *params.Type)
			return []domain.Transaction{{ID: uuid.New(), UserID: userID}}, 1, nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?type=sale", nil)
	authed(c, userID)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

// --- Webhook Handler Tests ---

func TestStripeWebhook_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWebhookService(ctrl)
	mockStripe := mocks.NewMockWebhookVerifier(ctrl)
	h := NewWebhookHandler(mockSvc, mockStripe, mocks.NewMockWebhookVerifier(ctrl))

	mockStripe.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mockSvc.EXPECT().Process(gomock.Any(), ports.ProviderEvent{
		Provider:  domain.ProviderStripe,
		EventID:   "evt_123",
		EventType: domain.EventPaymentCaptured,
		Ref:       "pi_3abc",
	}).Return(nil)

	body := `{"id":"evt_123","type":"payment_intent.succeeded","data":{"object":{"id":"pi_3abc"}}}`

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Stripe-Signature", "t=1,v1=aa")

	h.Stripe(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["received"])
}

func TestStripeWebhook_InvalidSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWebhookService(ctrl)
	mockStripe := mocks.NewMockWebhookVerifier(ctrl)
	h := NewWebhookHandler(mockSvc, mockStripe, mocks.NewMockWebhookVerifier(ctrl))

	// Process must never run on a failed signature.
	mockStripe.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(apperror.ErrInvalidWebhookSignature())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"id":"evt_x","type":"t"}`)))

	h.Stripe(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStripeWebhook_MalformedPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStripe := mocks.NewMockWebhookVerifier(ctrl)
	h := NewWebhookHandler(mocks.NewMockWebhookService(ctrl), mockStripe, mocks.NewMockWebhookVerifier(ctrl))

	mockStripe.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`not json`)))

	h.Stripe(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhook_PayoutMetadataRef(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWebhookService(ctrl)
	mockStripe := mocks.NewMockWebhookVerifier(ctrl)
	h := NewWebhookHandler(mockSvc, mockStripe, mocks.NewMockWebhookVerifier(ctrl))

	payoutID := uuid.New()
	mockStripe.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mockSvc.EXPECT().Process(gomock.Any(), ports.ProviderEvent{
		Provider:  domain.ProviderStripe,
		EventID:   "evt_po",
		EventType: domain.EventPayoutPaid,
		Ref:       payoutID.String(),
	}).Return(nil)

	body := fmt.Sprintf(
		`{"id":"evt_po","type":"payout.paid","data":{"object":{"id":"po_1","metadata":{"payout_id":"%s"}}}}`,
		payoutID)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))

	h.Stripe(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStripeWebhook_EmptyRefAcknowledged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWebhookService(ctrl)
	mockStripe := mocks.NewMockWebhookVerifier(ctrl)
	h := NewWebhookHandler(mockSvc, mockStripe, mocks.NewMockWebhookVerifier(ctrl))

	// No reference anywhere in the envelope: acknowledged without Process,
	// so it can never match the orders of a blank provider_ref.
	mockStripe.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	body := `{"id":"evt_noref","type":"payment_intent.succeeded","data":{"object":{}}}`

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))

	h.Stripe(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPayPalWebhook_EmptyRefAcknowledged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWebhookService(ctrl)
	mockPayPal := mocks.NewMockWebhookVerifier(ctrl)
	h := NewWebhookHandler(mockSvc, mocks.NewMockWebhookVerifier(ctrl), mockPayPal)

	mockPayPal.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	body := `{"id":"WH-NOREF","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{}}`

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))

	h.PayPal(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPayPalWebhook_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockWebhookService(ctrl)
	mockPayPal := mocks.NewMockWebhookVerifier(ctrl)
	h := NewWebhookHandler(mockSvc, mocks.NewMockWebhookVerifier(ctrl), mockPayPal)

	mockPayPal.EXPECT().Verify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mockSvc.EXPECT().Process(gomock.Any(), ports.ProviderEvent{
		Provider:  domain.ProviderPayPal,
		EventID:   "WH-1",
		EventType: domain.EventPaymentCaptured,
		Ref:       "PAYID-77",
	}).Return(nil)

	body := `{"id":"WH-1","event_type":"PAYMENT.CAPTURE.COMPLETED","resource":{"id":"2GG1","custom_id":"PAYID-77"}}`

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))

	h.PayPal(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Notification Handler Tests ---

func TestListNotifications_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockNotificationService(ctrl)
	h := NewNotificationHandler(mockSvc)

	userID := uuid.New()
	mockSvc.EXPECT().List(gomock.Any(), userID, 1, 20).Return([]domain.Notification{
		{ID: uuid.New(), UserID: userID, Type: domain.NotificationTypeSale},
	}, int64(1), int64(1), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	authed(c, userID)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["unread"])
}

func TestMarkNotificationRead_NotRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockNotificationService(ctrl)
	h := NewNotificationHandler(mockSvc)

	userID := uuid.New()
	id := uuid.New()
	mockSvc.EXPECT().MarkRead(gomock.Any(), userID, id).Return(apperror.ErrNotOwner())

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPatch, nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	authed(c, userID)

	h.MarkRead(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Catalog Handler Tests ---

func TestCreateListing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockSvc)

	sellerID := uuid.New()
	mockSvc.EXPECT().CreateListing(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, l *domain.Listing) error {
			assert.Equal(t, sellerID, l.SellerID)
			assert.Equal(t, domain.ItemTypeProduct, l.Kind)
			assert.True(t, l.Price.Equal(decimal.NewFromFloat(29.99)))
			return nil
		})

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.CreateListingRequest{
		Kind:  "product",
		Title: "Lo-fi drum kit",
		Price: "29.99",
	})
	authed(c, sellerID)

	h.CreateListing(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateListing_BadPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewCatalogHandler(mocks.NewMockCatalogService(ctrl))

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.CreateListingRequest{
		Kind:  "product",
		Title: "Pack",
		Price: "-5",
	})
	authed(c, uuid.New())

	h.CreateListing(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListListings_DefaultsToActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockSvc)

	mockSvc.EXPECT().ListListings(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, params ports.ListingListParams) ([]domain.Listing, int64, error) {
			require.NotNil(t, params.Status)
			assert.Equal(t, domain.ListingStatusActive, *params.Status)
			return nil, 0, nil
		})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.ListListings(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePost_SanitizesContent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockSvc)

	authorID := uuid.New()
	mockSvc.EXPECT().CreatePost(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, p *domain.Post) error {
			assert.Equal(t, "&lt;b&gt;new pack&lt;/b&gt;", p.Content)
			return nil
		})

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodPost, dto.CreatePostRequest{
		Content: "  <b>new pack</b>  ",
	})
	authed(c, authorID)

	h.CreatePost(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDeletePost_NotAuthor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockSvc)

	userID := uuid.New()
	postID := uuid.New()
	mockSvc.EXPECT().DeletePost(gomock.Any(), userID, postID).Return(apperror.ErrNotOwner())

	w := httptest.NewRecorder()
	c := jsonRequest(t, w, http.MethodDelete, nil)
	c.Params = gin.Params{{Key: "id", Value: postID.String()}}
	authed(c, userID)

	h.DeletePost(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- Health Check Test ---

func TestHealthCheck_NoCheckers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
