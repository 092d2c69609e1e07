package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

func newMockRepo(t *testing.T) (*NotificationRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "pgx")
	return NewNotificationRepository(&models.Config{}, sqlxDB), mock
}

func TestListByUserID(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "title", "message", "related_id", "is_read", "created_at"}).
		AddRow(uuid.New().String(), userID.String(), "BOOKING_CREATED", "New booking", "A rider booked 2 seats", uuid.New().String(), false, now).
		AddRow(uuid.New().String(), userID.String(), "PAYMENT_RECEIVED", "Payment received", "You earned 45.90", nil, true, now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT id, user_id, type, title, message, related_id, is_read, created_at`).
		WithArgs(userID).
		WillReturnRows(rows)

	list, err := repo.ListByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "BOOKING_CREATED", list[0].Type)
	assert.False(t, list[0].IsRead)
	assert.True(t, list[1].IsRead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead(t *testing.T) {
	t.Run("marks own notification", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		notificationID := uuid.New()
		userID := uuid.New()

		mock.ExpectExec(`UPDATE notifications SET is_read = TRUE WHERE id = \$1 AND user_id = \$2`).
			WithArgs(notificationID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkRead(context.Background(), notificationID, userID)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found for another user's notification", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec(`UPDATE notifications SET is_read = TRUE`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkRead(context.Background(), uuid.New(), uuid.New())
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})
}

func TestMarkAllRead(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE WHERE user_id = \$1 AND is_read = FALSE`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
