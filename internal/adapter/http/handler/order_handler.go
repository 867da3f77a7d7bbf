package handler

import (
	"strconv"

	"producers-avenue/internal/adapter/http/dto"
	"producers-avenue/internal/adapter/http/middleware"
	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"
	"producers-avenue/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order endpoints.
type OrderHandler struct {
	orderSvc ports.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc ports.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// Checkout handles POST /api/v1/orders/checkout.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	lines := make([]ports.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		itemID, err := uuid.Parse(l.ItemID)
		if err != nil {
			response.Error(c, apperror.Validation("invalid item_id"))
			return
		}
		lines = append(lines, ports.CartLine{
			ItemID:   itemID,
			ItemType: dto.ToItemType(l.ItemType),
			Quantity: l.Quantity,
		})
	}

	orders, err := h.orderSvc.Checkout(c.Request.Context(), ports.CheckoutRequest{
		BuyerID:       middleware.UserID(c),
		PaymentMethod: ports.PaymentMethod(req.PaymentMethod),
		ProviderRef:   req.ProviderRef,
		Lines:         lines,
	})
	if err != nil {
		// Committed lines stay committed; the client re-submits the rest.
		response.Error(c, err)
		return
	}

	response.Created(c, orders)
}

// UpdateStatus handles PATCH /api/v1/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	order, err := h.orderSvc.UpdateStatus(c.Request.Context(), middleware.UserID(c), orderID, domain.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid order id"))
		return
	}

	order, err := h.orderSvc.Get(c.Request.Context(), middleware.UserID(c), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, order)
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	params := ports.OrderListParams{
		UserID:   middleware.UserID(c),
		AsSeller: c.Query("role") == "seller",
		Page:     page,
		PageSize: pageSize,
	}
	if s := c.Query("status"); s != "" {
		status := domain.OrderStatus(s)
		if !domain.ValidOrderStatus(status) {
			response.Error(c, apperror.Validation("invalid status filter"))
			return
		}
		params.Status = &status
	}

	orders, total, err := h.orderSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewListResponse(orders, total, page, pageSize))
}

// pagination parses page/page_size query params with sane bounds.
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
