package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// UserRepo defines the data access contract for users
type UserRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}
