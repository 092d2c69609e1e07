package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/spotroute/backend/internal/pkg/models"
)

// AuthUC defines the interface for authentication business logic
type AuthUC interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}
