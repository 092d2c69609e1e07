package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

func newMockRepo(t *testing.T) (*RideRepo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRideRepository(&models.Config{}, sqlxDB), mock
}

func TestUpdateRideStatusGuards(t *testing.T) {
	rideID := uuid.New()
	driverID := uuid.New()

	tests := []struct {
		name      string
		driverID  uuid.UUID
		toStatus  models.RideStatus
		mockSetup func(mock sqlmock.Sqlmock)
		wantKind  apperrors.Kind
	}{
		{
			name:     "only the owner can update",
			driverID: uuid.New(),
			toStatus: models.RideStatusInProgress,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT driver_id, status FROM rides").
					WithArgs(rideID).
					WillReturnRows(sqlmock.NewRows([]string{"driver_id", "status"}).
						AddRow(driverID.String(), "SCHEDULED"))
				mock.ExpectRollback()
			},
			wantKind: apperrors.KindForbidden,
		},
		{
			name:     "completed ride cannot change",
			driverID: driverID,
			toStatus: models.RideStatusInProgress,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT driver_id, status FROM rides").
					WithArgs(rideID).
					WillReturnRows(sqlmock.NewRows([]string{"driver_id", "status"}).
						AddRow(driverID.String(), "COMPLETED"))
				mock.ExpectRollback()
			},
			wantKind: apperrors.KindInvalidState,
		},
		{
			name:     "scheduled cannot jump to completed",
			driverID: driverID,
			toStatus: models.RideStatusCompleted,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT driver_id, status FROM rides").
					WithArgs(rideID).
					WillReturnRows(sqlmock.NewRows([]string{"driver_id", "status"}).
						AddRow(driverID.String(), "SCHEDULED"))
				mock.ExpectRollback()
			},
			wantKind: apperrors.KindInvalidState,
		},
		{
			name:     "missing ride",
			driverID: driverID,
			toStatus: models.RideStatusInProgress,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELECT driver_id, status FROM rides").
					WithArgs(rideID).
					WillReturnRows(sqlmock.NewRows([]string{"driver_id", "status"}))
				mock.ExpectRollback()
			},
			wantKind: apperrors.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.mockSetup(mock)

			ride, err := repo.UpdateRideStatus(context.Background(), rideID, tt.driverID, tt.toStatus)

			assert.Nil(t, ride)
			assert.True(t, apperrors.IsKind(err, tt.wantKind))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from models.RideStatus
		to   models.RideStatus
		want bool
	}{
		{models.RideStatusScheduled, models.RideStatusInProgress, true},
		{models.RideStatusScheduled, models.RideStatusCancelled, true},
		{models.RideStatusScheduled, models.RideStatusCompleted, false},
		{models.RideStatusInProgress, models.RideStatusCompleted, true},
		{models.RideStatusInProgress, models.RideStatusCancelled, false},
		{models.RideStatusCompleted, models.RideStatusInProgress, false},
		{models.RideStatusCancelled, models.RideStatusScheduled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
