package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	jwtpkg "github.com/spotroute/backend/internal/pkg/jwt"
	"github.com/spotroute/backend/internal/pkg/logger"
	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/services/auth"
)

const minPasswordLength = 8

// AuthUC implements the authentication business logic
type AuthUC struct {
	cfg      *models.Config
	userRepo auth.UserRepo
}

// NewAuthUC creates a new auth usecase
func NewAuthUC(cfg *models.Config, userRepo auth.UserRepo) *AuthUC {
	return &AuthUC{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// Register creates a rider or driver account and signs them in
func (uc *AuthUC) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Name == "" || req.Email == "" || req.Phone == "" {
		return nil, apperrors.InvalidInput("name, email and phone are required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput("password must be at least 8 characters")
	}
	if req.Role != models.RoleRider && req.Role != models.RoleDriver {
		return nil, apperrors.InvalidInput("role must be RIDER or DRIVER")
	}
	if req.Role == models.RoleDriver && (req.CarModel == nil || req.CarPlate == nil) {
		return nil, apperrors.InvalidInput("drivers must provide car_model and car_plate")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		CarModel:     req.CarModel,
		CarPlate:     req.CarPlate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("User registered",
		logger.String("user_id", user.ID.String()),
		logger.String("role", user.Role))

	return uc.issueToken(user)
}

// Login verifies credentials and signs the user in
func (uc *AuthUC) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Forbidden("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Forbidden("invalid email or password")
	}

	return uc.issueToken(user)
}

// GetProfile fetches the authenticated user's profile
func (uc *AuthUC) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return uc.userRepo.GetUserByID(ctx, userID)
}

func (uc *AuthUC) issueToken(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := jwtpkg.GenerateToken(user.ID, user.Email, user.Role, uc.cfg)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
