package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	if _, exists := m.users[user.Email]; exists {
		return apperrors.InvalidInput("email is already registered")
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.users[email]; ok {
		return user, nil
	}
	return nil, apperrors.NotFound("user not found")
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func testConfig() *models.Config {
	return &models.Config{
		JWT: models.JWTConfig{
			Secret:     "test-secret",
			Expiration: 60,
			Issuer:     "spotroute-test",
		},
	}
}

func carPtr(s string) *string { return &s }

func TestRegister(t *testing.T) {
	riderReq := models.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Phone:    "08030000001",
		Password: "supersecret",
		Role:     models.RoleRider,
	}

	t.Run("registers rider and issues token", func(t *testing.T) {
		uc := NewAuthUC(testConfig(), newMockUserRepo())

		resp, err := uc.Register(context.Background(), riderReq)

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Greater(t, resp.ExpiresAt, time.Now().Unix())
		assert.Equal(t, models.RoleRider, resp.User.Role)
		assert.NotEqual(t, "supersecret", resp.User.PasswordHash)
	})

	t.Run("normalizes email", func(t *testing.T) {
		repo := newMockUserRepo()
		uc := NewAuthUC(testConfig(), repo)

		req := riderReq
		req.Email = "  Alice@Example.COM "
		resp, err := uc.Register(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", resp.User.Email)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		uc := NewAuthUC(testConfig(), newMockUserRepo())
		_, err := uc.Register(context.Background(), riderReq)
		require.NoError(t, err)

		_, err = uc.Register(context.Background(), riderReq)

		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})

	t.Run("rejects short password", func(t *testing.T) {
		uc := NewAuthUC(testConfig(), newMockUserRepo())

		req := riderReq
		req.Password = "short"
		_, err := uc.Register(context.Background(), req)

		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		uc := NewAuthUC(testConfig(), newMockUserRepo())

		req := riderReq
		req.Role = "ADMIN"
		_, err := uc.Register(context.Background(), req)

		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
	})

	t.Run("driver needs car details", func(t *testing.T) {
		uc := NewAuthUC(testConfig(), newMockUserRepo())

		req := riderReq
		req.Role = models.RoleDriver
		_, err := uc.Register(context.Background(), req)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

		req.CarModel = carPtr("Toyota Corolla")
		req.CarPlate = carPtr("ABC-123-XY")
		resp, err := uc.Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, models.RoleDriver, resp.User.Role)
	})
}

func TestLogin(t *testing.T) {
	repo := newMockUserRepo()
	hash, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	repo.users["bob@example.com"] = &models.User{
		ID:           uuid.New(),
		Email:        "bob@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleDriver,
	}
	uc := NewAuthUC(testConfig(), repo)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := uc.Login(context.Background(), models.LoginRequest{
			Email:    "Bob@Example.com",
			Password: "supersecret",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := uc.Login(context.Background(), models.LoginRequest{
			Email:    "bob@example.com",
			Password: "wrong",
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})

	t.Run("unknown email reads the same as wrong password", func(t *testing.T) {
		_, err := uc.Login(context.Background(), models.LoginRequest{
			Email:    "nobody@example.com",
			Password: "supersecret",
		})

		assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	})
}
