package service

import (
	"context"
	"fmt"

	"producers-avenue/internal/core/domain"
	"producers-avenue/internal/core/ports"
	"producers-avenue/pkg/apperror"

	"github.com/google/uuid"
)

// NotificationServiceImpl implements ports.NotificationService.
type NotificationServiceImpl struct {
	repo ports.NotificationRepository
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(repo ports.NotificationRepository) *NotificationServiceImpl {
	return &NotificationServiceImpl{repo: repo}
}

// List fetches the user's notifications with the unread count.
func (s *NotificationServiceImpl) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, int64, int64, error) {
	items, total, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, 0, apperror.InternalError(fmt.Errorf("list notifications: %w", err))
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, 0, apperror.InternalError(fmt.Errorf("count unread: %w", err))
	}
	return items, total, unread, nil
}

// MarkRead marks a notification as read. Recipient only; transitions
// false→true only, re-marking an already-read row is a no-op.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find notification: %w", err))
	}
	if n == nil {
		return apperror.ErrNotFound("notification")
	}
	if n.UserID != userID {
		return apperror.ErrNotOwner()
	}
	if n.Read {
		return nil
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return apperror.InternalError(fmt.Errorf("mark read: %w", err))
	}
	return nil
}
