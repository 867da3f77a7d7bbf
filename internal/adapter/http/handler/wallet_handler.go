package handler

import (
	"producers-avenue/internal/adapter/http/dto"
	"producers-avenue/internal/adapter/http/middleware"
	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"
	"producers-avenue/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet, payout and ledger endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
	ledgerSvc ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService, ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc, ledgerSvc: ledgerSvc}
}

// GetWallet handles GET /api/v1/wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, err := h.walletSvc.GetWallet(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, wallet)
}

// RequestPayout handles POST /api/v1/wallet/payouts.
func (h *WalletHandler) RequestPayout(c *gin.Context) {
	var req dto.PayoutRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	payout, err := h.walletSvc.RequestPayout(c.Request.Context(), ports.PayoutRequest{
		UserID:        middleware.UserID(c),
		Amount:        amount,
		Method:        domain.PayoutMethod(req.Method),
		PayoutDetails: req.PayoutDetails,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, payout)
}

// CancelPayout handles DELETE /api/v1/wallet/payouts/:id.
func (h *WalletHandler) CancelPayout(c *gin.Context) {
	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payout id"))
		return
	}

	payout, err := h.walletSvc.CancelPayout(c.Request.Context(), middleware.UserID(c), payoutID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, payout)
}

// ListPayouts handles GET /api/v1/wallet/payouts.
func (h *WalletHandler) ListPayouts(c *gin.Context) {
	page, pageSize := pagination(c)

	payouts, total, err := h.walletSvc.ListPayouts(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewListResponse(payouts, total, page, pageSize))
}

// ListTransactions handles GET /api/v1/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	page, pageSize := pagination(c)

	params := ports.TransactionListParams{
		UserID:   middleware.UserID(c),
		Page:     page,
		PageSize: pageSize,
	}
	if t := c.Query("type"); t != "" {
		txType := domain.TransactionType(t)
		params.Type = &txType
	}
	if s := c.Query("status"); s != "" {
		status := domain.TransactionStatus(s)
		params.Status = &status
	}

	txns, total, err := h.ledgerSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewListResponse(txns, total, page, pageSize))
}
