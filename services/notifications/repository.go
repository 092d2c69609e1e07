package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// NotificationRepo defines the data access contract for notifications.
// Other services write notification rows inside their own transactions;
// this repository only reads and flags them.
type NotificationRepo interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
