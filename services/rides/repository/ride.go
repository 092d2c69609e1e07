package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

// RideRepo owns ride persistence. Status changes lock the ride row so they
// serialize with booking transactions touching the same ride.
type RideRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewRideRepository creates a new ride repository
func NewRideRepository(cfg *models.Config, db *sqlx.DB) *RideRepo {
	return &RideRepo{
		cfg: cfg,
		db:  db,
	}
}

// CreateRide announces a ride on a route. Pickup points must belong to the
// route; the ride starts with all seats available.
func (r *RideRepo) CreateRide(ctx context.Context, driverID uuid.UUID, routeID uuid.UUID, departureTime time.Time, totalSeats int, pickupPointIDs []uuid.UUID) (*models.Ride, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.DependencyFailure("failed to begin transaction", err)
	}
	defer tx.Rollback()

	route := &models.Route{}
	err = tx.GetContext(ctx, route, `
		SELECT id, origin, destination, price, distance_km, duration_mins
		FROM routes WHERE id = $1
	`, routeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("route not found")
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	if len(pickupPointIDs) > 0 {
		var count int
		query, args, err := sqlx.In(`
			SELECT COUNT(*) FROM pickup_points WHERE route_id = ? AND id IN (?)
		`, routeID, pickupPointIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to build pickup point query: %w", err)
		}
		if err := tx.GetContext(ctx, &count, tx.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("failed to check pickup points: %w", err)
		}
		if count != len(pickupPointIDs) {
			return nil, apperrors.InvalidInput("one or more pickup points do not belong to this route")
		}
	}

	ride := &models.Ride{
		ID:             uuid.New(),
		DriverID:       driverID,
		RouteID:        routeID,
		DepartureTime:  departureTime,
		AvailableSeats: totalSeats,
		TotalSeats:     totalSeats,
		Status:         models.RideStatusScheduled,
		CreatedAt:      time.Now(),
		Route:          route,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rides (id, driver_id, route_id, departure_time, available_seats, total_seats, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, ride.ID, ride.DriverID, ride.RouteID, ride.DepartureTime,
		ride.AvailableSeats, ride.TotalSeats, ride.Status, ride.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ride: %w", err)
	}

	for _, pointID := range pickupPointIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ride_pickup_points (ride_id, pickup_point_id)
			VALUES ($1, $2)
		`, ride.ID, pointID)
		if err != nil {
			return nil, fmt.Errorf("failed to attach pickup point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.DependencyFailure("failed to commit ride", err)
	}

	points, err := r.getPickupPoints(ctx, ride.ID)
	if err != nil {
		return nil, err
	}
	ride.PickupPoints = points

	return ride, nil
}

// GetRideByID loads a ride with its route, driver and pickup points
func (r *RideRepo) GetRideByID(ctx context.Context, rideID uuid.UUID) (*models.Ride, error) {
	ride, err := r.scanRideRow(ctx, r.db.QueryRowxContext(ctx, rideSelect+` WHERE r.id = $1`, rideID))
	if err != nil {
		return nil, err
	}

	points, err := r.getPickupPoints(ctx, rideID)
	if err != nil {
		return nil, err
	}
	ride.PickupPoints = points

	return ride, nil
}

// ListAvailableRides lists upcoming rides with open seats, optionally
// filtered to one route, soonest departure first
func (r *RideRepo) ListAvailableRides(ctx context.Context, routeID *uuid.UUID, after time.Time) ([]*models.Ride, error) {
	query := rideSelect + `
		WHERE r.status = $1 AND r.available_seats > 0 AND r.departure_time >= $2
	`
	args := []interface{}{models.RideStatusScheduled, after}
	if routeID != nil {
		query += ` AND r.route_id = $3`
		args = append(args, *routeID)
	}
	query += ` ORDER BY r.departure_time ASC`

	return r.listRides(ctx, query, args...)
}

// ListDriverRides lists a driver's rides, newest first
func (r *RideRepo) ListDriverRides(ctx context.Context, driverID uuid.UUID) ([]*models.Ride, error) {
	return r.listRides(ctx, rideSelect+` WHERE r.driver_id = $1 ORDER BY r.departure_time DESC`, driverID)
}

// UpdateRideStatus moves a ride through its lifecycle. Completion also
// completes the ride's confirmed bookings and counts the trip on the
// driver's profile; cancellation cancels them and refunds their payments.
func (r *RideRepo) UpdateRideStatus(ctx context.Context, rideID, driverID uuid.UUID, status models.RideStatus) (*models.Ride, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.DependencyFailure("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var row struct {
		DriverID uuid.UUID `db:"driver_id"`
		Status   string    `db:"status"`
	}
	err = tx.GetContext(ctx, &row, `SELECT driver_id, status FROM rides WHERE id = $1 FOR UPDATE`, rideID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("ride not found")
		}
		return nil, fmt.Errorf("failed to lock ride: %w", err)
	}

	if row.DriverID != driverID {
		return nil, apperrors.Forbidden("only the ride driver can change its status")
	}
	if !validTransition(models.RideStatus(row.Status), status) {
		return nil, apperrors.InvalidState(fmt.Sprintf("cannot move ride from %s to %s", row.Status, status))
	}

	_, err = tx.ExecContext(ctx, `UPDATE rides SET status = $1 WHERE id = $2`, status, rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to update ride status: %w", err)
	}

	switch status {
	case models.RideStatusCompleted:
		_, err = tx.ExecContext(ctx, `
			UPDATE bookings SET status = $1 WHERE ride_id = $2 AND status = $3
		`, models.BookingStatusCompleted, rideID, models.BookingStatusConfirmed)
		if err != nil {
			return nil, fmt.Errorf("failed to complete bookings: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO driver_profiles (driver_id, trips_completed, join_date)
			VALUES ($1, 1, $2)
			ON CONFLICT (driver_id) DO UPDATE SET trips_completed = driver_profiles.trips_completed + 1
		`, driverID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to count trip: %w", err)
		}
	case models.RideStatusCancelled:
		_, err = tx.ExecContext(ctx, `
			UPDATE bookings SET status = $1, payment_status = $2 WHERE ride_id = $3 AND status = $4
		`, models.BookingStatusCancelled, models.PaymentStatusRefunded, rideID, models.BookingStatusConfirmed)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel bookings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.DependencyFailure("failed to commit status change", err)
	}

	return r.GetRideByID(ctx, rideID)
}

func validTransition(from, to models.RideStatus) bool {
	switch from {
	case models.RideStatusScheduled:
		return to == models.RideStatusInProgress || to == models.RideStatusCancelled
	case models.RideStatusInProgress:
		return to == models.RideStatusCompleted
	default:
		return false
	}
}

const rideSelect = `
	SELECT r.id, r.driver_id, r.route_id, r.departure_time, r.available_seats,
		r.total_seats, r.status, r.created_at,
		ro.origin, ro.destination, ro.price, ro.distance_km, ro.duration_mins,
		u.name AS driver_name, u.car_model, u.car_plate
	FROM rides r
	JOIN routes ro ON r.route_id = ro.id
	JOIN users u ON r.driver_id = u.id
`

type rideRow interface {
	Scan(dest ...interface{}) error
}

func (r *RideRepo) scanRideRow(ctx context.Context, row rideRow) (*models.Ride, error) {
	ride := &models.Ride{Route: &models.Route{}, Driver: &models.User{}}
	var price decimal.Decimal
	var carModel, carPlate sql.NullString

	err := row.Scan(
		&ride.ID, &ride.DriverID, &ride.RouteID, &ride.DepartureTime, &ride.AvailableSeats,
		&ride.TotalSeats, &ride.Status, &ride.CreatedAt,
		&ride.Route.Origin, &ride.Route.Destination, &price, &ride.Route.DistanceKm, &ride.Route.DurationMins,
		&ride.Driver.Name, &carModel, &carPlate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("ride not found")
		}
		return nil, fmt.Errorf("failed to scan ride: %w", err)
	}

	ride.Route.ID = ride.RouteID
	ride.Route.Price = price
	ride.Driver.ID = ride.DriverID
	ride.Driver.Role = models.RoleDriver
	if carModel.Valid {
		ride.Driver.CarModel = &carModel.String
	}
	if carPlate.Valid {
		ride.Driver.CarPlate = &carPlate.String
	}

	return ride, nil
}

func (r *RideRepo) listRides(ctx context.Context, query string, args ...interface{}) ([]*models.Ride, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}
	defer rows.Close()

	var rides []*models.Ride
	for rows.Next() {
		ride, err := r.scanRideRow(ctx, rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rides, nil
}

func (r *RideRepo) getPickupPoints(ctx context.Context, rideID uuid.UUID) ([]models.PickupPoint, error) {
	var points []models.PickupPoint
	err := r.db.SelectContext(ctx, &points, `
		SELECT p.id, p.route_id, p.name, p.lat, p.lng
		FROM pickup_points p
		JOIN ride_pickup_points rp ON rp.pickup_point_id = p.id
		WHERE rp.ride_id = $1
		ORDER BY p.name
	`, rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pickup points: %w", err)
	}
	return points, nil
}
