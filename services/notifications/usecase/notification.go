package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/services/notifications"
)

// NotificationUC implements the notification logic
type NotificationUC struct {
	notificationRepo notifications.NotificationRepo
}

// NewNotificationUC creates a new notification usecase
func NewNotificationUC(notificationRepo notifications.NotificationRepo) *NotificationUC {
	return &NotificationUC{
		notificationRepo: notificationRepo,
	}
}

// ListUserNotifications lists the caller's notifications
func (uc *NotificationUC) ListUserNotifications(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	return uc.notificationRepo.ListByUserID(ctx, userID)
}

// MarkRead flags one notification as read
func (uc *NotificationUC) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return uc.notificationRepo.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead flags all of the caller's notifications as read
func (uc *NotificationUC) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}
