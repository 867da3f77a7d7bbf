package handler

import (
	"producers-avenue/internal/adapter/http/dto"
	"producers-avenue/internal/adapter/http/middleware"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"
	"producers-avenue/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationHandler handles notification feed endpoints.
type NotificationHandler struct {
	notificationSvc ports.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationSvc ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// List handles GET /api/v1/notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	items, total, unread, err := h.notificationSvc.List(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NotificationListResponse{
		ListResponse: dto.NewListResponse(items, total, page, pageSize),
		Unread:       unread,
	})
}

// MarkRead handles PATCH /api/v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid notification id"))
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), middleware.UserID(c), notificationID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"read": true})
}
