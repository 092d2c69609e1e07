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

// BookingRepo owns all booking transactions. Every mutation runs inside a
// single transaction holding an exclusive lock on the ride row (and the
// driver profile row for ratings), so concurrent requests against the same
// ride serialize on lock-acquisition order.
type BookingRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(cfg *models.Config, db *sqlx.DB) *BookingRepo {
	return &BookingRepo{
		cfg: cfg,
		db:  db,
	}
}

// recentRatingsCap bounds the per-driver recent-ratings list
const recentRatingsCap = 50

// CreateBooking reserves seats and inserts the booking atomically. The ride
// row is locked before the seat counter is read; the decrement, the booking
// insert and the driver notification commit together or not at all.
func (r *BookingRepo) CreateBooking(ctx context.Context, riderID uuid.UUID, req models.CreateBookingRequest) (*models.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.DependencyFailure("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var ride struct {
		ID             uuid.UUID       `db:"id"`
		DriverID       uuid.UUID       `db:"driver_id"`
		AvailableSeats int             `db:"available_seats"`
		TotalSeats     int             `db:"total_seats"`
		Status         string          `db:"status"`
		Price          decimal.Decimal `db:"price"`
	}

	query := `
		SELECT r.id, r.driver_id, r.available_seats, r.total_seats, r.status, ro.price
		FROM rides r
		JOIN routes ro ON r.route_id = ro.id
		WHERE r.id = $1
		FOR UPDATE OF r
	`
	if err := tx.GetContext(ctx, &ride, query, req.RideID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("ride not found")
		}
		return nil, fmt.Errorf("failed to lock ride: %w", err)
	}

	if ride.AvailableSeats <= 0 {
		return nil, apperrors.InsufficientSeats("no seats available on this ride")
	}
	if ride.AvailableSeats < req.SeatCount {
		return nil, apperrors.InsufficientSeats("not enough seats available")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE rides SET available_seats = available_seats - $1 WHERE id = $2`,
		req.SeatCount, req.RideID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve seats: %w", err)
	}

	booking := &models.Booking{
		ID:            uuid.New(),
		RideID:        req.RideID,
		UserID:        riderID,
		PickupPointID: req.PickupPointID,
		SeatCount:     req.SeatCount,
		TotalPrice:    ride.Price.Mul(decimal.NewFromInt(int64(req.SeatCount))),
		Status:        models.BookingStatusConfirmed,
		PaymentStatus: models.PaymentStatusPending,
		CreatedAt:     time.Now(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (id, ride_id, user_id, pickup_point_id, seat_count, total_price, status, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		booking.ID, booking.RideID, booking.UserID, booking.PickupPointID,
		booking.SeatCount, booking.TotalPrice, booking.Status, booking.PaymentStatus,
		booking.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking: %w", err)
	}

	var riderName string
	if err := tx.GetContext(ctx, &riderName, `SELECT name FROM users WHERE id = $1`, riderID); err != nil {
		riderName = "A rider"
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, related_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.New(), ride.DriverID, models.NotificationBookingConfirmed,
		"New Booking Confirmed",
		fmt.Sprintf("%s booked %d seat(s) on your ride", riderName, req.SeatCount),
		booking.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.DependencyFailure("failed to commit booking", err)
	}

	return booking, nil
}

// CancelBooking sets the booking CANCELLED/REFUNDED and releases its seats,
// clamped at the ride's total. Already-cancelled bookings are an idempotent
// no-op returning the current state.
func (r *BookingRepo) CancelBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*models.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.DependencyFailure("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var row struct {
		ID            uuid.UUID `db:"id"`
		RideID        uuid.UUID `db:"ride_id"`
		UserID        uuid.UUID `db:"user_id"`
		SeatCount     int       `db:"seat_count"`
		Status        string    `db:"status"`
		PaymentStatus string    `db:"payment_status"`
		DriverID      uuid.UUID `db:"driver_id"`
	}

	query := `
		SELECT b.id, b.ride_id, b.user_id, b.seat_count, b.status, b.payment_status, r.driver_id
		FROM bookings b
		JOIN rides r ON b.ride_id = r.id
		WHERE b.id = $1
		FOR UPDATE OF b, r
	`
	if err := tx.GetContext(ctx, &row, query, bookingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	if models.BookingStatus(row.Status) == models.BookingStatusCancelled {
		if err := tx.Commit(); err != nil {
			return nil, apperrors.DependencyFailure("failed to commit", err)
		}
		return r.GetBookingByID(ctx, bookingID)
	}

	if row.UserID != requesterID && row.DriverID != requesterID {
		return nil, apperrors.Forbidden("you are not allowed to cancel this booking")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, payment_status = $2 WHERE id = $3`,
		models.BookingStatusCancelled, models.PaymentStatusRefunded, bookingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE rides SET available_seats = LEAST(total_seats, available_seats + $1) WHERE id = $2`,
		row.SeatCount, row.RideID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.DependencyFailure("failed to commit cancellation", err)
	}

	return r.GetBookingByID(ctx, bookingID)
}

// RateBooking stores the rating on the booking and folds it into the
// driver's aggregate profile. The booking row and the driver profile row are
// both locked so concurrent ratings cannot lose updates; lock order is
// always booking then driver.
func (r *BookingRepo) RateBooking(ctx context.Context, bookingID, riderID uuid.UUID, req models.RateBookingRequest) (*models.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.DependencyFailure("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var row struct {
		ID          uuid.UUID     `db:"id"`
		UserID      uuid.UUID     `db:"user_id"`
		Status      string        `db:"status"`
		RatingValue sql.NullInt64 `db:"rating_value"`
		DriverID    uuid.UUID     `db:"driver_id"`
	}

	query := `
		SELECT b.id, b.user_id, b.status, b.rating_value, r.driver_id
		FROM bookings b
		JOIN rides r ON b.ride_id = r.id
		WHERE b.id = $1
		FOR UPDATE OF b
	`
	if err := tx.GetContext(ctx, &row, query, bookingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	if row.UserID != riderID {
		return nil, apperrors.Forbidden("you can only rate your own bookings")
	}
	if models.BookingStatus(row.Status) == models.BookingStatusCancelled {
		return nil, apperrors.InvalidState("cannot rate a cancelled booking")
	}
	if row.RatingValue.Valid {
		return nil, apperrors.InvalidState("you have already rated this booking")
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE bookings
		SET rating_value = $1, rating_compliment = $2, rating_comment = $3, rating_created_at = $4
		WHERE id = $5
	`, req.Rating, req.Compliment, req.Comment, now, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to store rating: %w", err)
	}

	// Default-construct the profile on first access, then lock it.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO driver_profiles (driver_id, join_date)
		VALUES ($1, $2)
		ON CONFLICT (driver_id) DO NOTHING
	`, row.DriverID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure driver profile: %w", err)
	}

	var profile struct {
		OverallRating float64 `db:"overall_rating"`
		TotalRatings  int     `db:"total_ratings"`
	}
	err = tx.GetContext(ctx, &profile, `
		SELECT overall_rating, total_ratings
		FROM driver_profiles
		WHERE driver_id = $1
		FOR UPDATE
	`, row.DriverID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock driver profile: %w", err)
	}

	newTotal := profile.TotalRatings + 1
	newAvg := roundTo2(((profile.OverallRating * float64(profile.TotalRatings)) + float64(req.Rating)) / float64(newTotal))

	_, err = tx.ExecContext(ctx, `
		UPDATE driver_profiles SET overall_rating = $1, total_ratings = $2 WHERE driver_id = $3
	`, newAvg, newTotal, row.DriverID)
	if err != nil {
		return nil, fmt.Errorf("failed to update driver profile: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO driver_ratings (id, driver_id, booking_id, rating, compliment, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New(), row.DriverID, bookingID, req.Rating, req.Compliment, req.Comment, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert driver rating: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM driver_ratings
		WHERE driver_id = $1
		AND id NOT IN (
			SELECT id FROM driver_ratings
			WHERE driver_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		)
	`, row.DriverID, recentRatingsCap)
	if err != nil {
		return nil, fmt.Errorf("failed to trim driver ratings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.DependencyFailure("failed to commit rating", err)
	}

	return r.GetBookingByID(ctx, bookingID)
}

// GetBookingByID retrieves a booking with its rating and ride summary
func (r *BookingRepo) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := r.scanBooking(ctx, `
		SELECT b.id, b.ride_id, b.user_id, b.pickup_point_id, b.seat_count, b.total_price,
			b.status, b.payment_status, b.created_at,
			b.rating_value, b.rating_compliment, b.rating_comment, b.rating_created_at
		FROM bookings b
		WHERE b.id = $1
	`, bookingID)
	if err != nil {
		return nil, err
	}

	ride, err := r.getRideSummary(ctx, booking.RideID)
	if err != nil {
		return nil, err
	}
	booking.Ride = ride

	return booking, nil
}

// ListByUserID lists a rider's bookings, newest first
func (r *BookingRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Booking, error) {
	return r.listBookings(ctx, `
		SELECT b.id, b.ride_id, b.user_id, b.pickup_point_id, b.seat_count, b.total_price,
			b.status, b.payment_status, b.created_at,
			b.rating_value, b.rating_compliment, b.rating_comment, b.rating_created_at
		FROM bookings b
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`, userID)
}

// ListByRideID lists all bookings on a ride, newest first
func (r *BookingRepo) ListByRideID(ctx context.Context, rideID uuid.UUID) ([]*models.Booking, error) {
	return r.listBookings(ctx, `
		SELECT b.id, b.ride_id, b.user_id, b.pickup_point_id, b.seat_count, b.total_price,
			b.status, b.payment_status, b.created_at,
			b.rating_value, b.rating_compliment, b.rating_comment, b.rating_created_at
		FROM bookings b
		WHERE b.ride_id = $1
		ORDER BY b.created_at DESC
	`, rideID)
}

// GetRideDriverID resolves the driver owning a ride
func (r *BookingRepo) GetRideDriverID(ctx context.Context, rideID uuid.UUID) (uuid.UUID, error) {
	var driverID uuid.UUID
	err := r.db.GetContext(ctx, &driverID, `SELECT driver_id FROM rides WHERE id = $1`, rideID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, apperrors.NotFound("ride not found")
		}
		return uuid.Nil, fmt.Errorf("failed to get ride driver: %w", err)
	}
	return driverID, nil
}

func (r *BookingRepo) scanBooking(ctx context.Context, query string, arg interface{}) (*models.Booking, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	booking := &models.Booking{}
	var pickupPointID *uuid.UUID
	var ratingValue sql.NullInt64
	var ratingCompliment, ratingComment sql.NullString
	var ratingCreatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.UserID,
		&pickupPointID,
		&booking.SeatCount,
		&booking.TotalPrice,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.CreatedAt,
		&ratingValue,
		&ratingCompliment,
		&ratingComment,
		&ratingCreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	booking.PickupPointID = pickupPointID
	booking.Rating = buildRating(ratingValue, ratingCompliment, ratingComment, ratingCreatedAt)

	return booking, nil
}

func (r *BookingRepo) listBookings(ctx context.Context, query string, arg interface{}) ([]*models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking := &models.Booking{}
		var pickupPointID *uuid.UUID
		var ratingValue sql.NullInt64
		var ratingCompliment, ratingComment sql.NullString
		var ratingCreatedAt sql.NullTime

		err := rows.Scan(
			&booking.ID,
			&booking.RideID,
			&booking.UserID,
			&pickupPointID,
			&booking.SeatCount,
			&booking.TotalPrice,
			&booking.Status,
			&booking.PaymentStatus,
			&booking.CreatedAt,
			&ratingValue,
			&ratingCompliment,
			&ratingComment,
			&ratingCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}

		booking.PickupPointID = pickupPointID
		booking.Rating = buildRating(ratingValue, ratingCompliment, ratingComment, ratingCreatedAt)
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepo) getRideSummary(ctx context.Context, rideID uuid.UUID) (*models.Ride, error) {
	var row struct {
		ID             uuid.UUID       `db:"id"`
		DriverID       uuid.UUID       `db:"driver_id"`
		RouteID        uuid.UUID       `db:"route_id"`
		DepartureTime  time.Time       `db:"departure_time"`
		AvailableSeats int             `db:"available_seats"`
		TotalSeats     int             `db:"total_seats"`
		Status         string          `db:"status"`
		CreatedAt      time.Time       `db:"created_at"`
		Origin         string          `db:"origin"`
		Destination    string          `db:"destination"`
		Price          decimal.Decimal `db:"price"`
		DistanceKm     float64         `db:"distance_km"`
		DurationMins   int             `db:"duration_mins"`
	}

	err := r.db.GetContext(ctx, &row, `
		SELECT r.id, r.driver_id, r.route_id, r.departure_time, r.available_seats,
			r.total_seats, r.status, r.created_at,
			ro.origin, ro.destination, ro.price, ro.distance_km, ro.duration_mins
		FROM rides r
		JOIN routes ro ON r.route_id = ro.id
		WHERE r.id = $1
	`, rideID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("ride not found")
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return &models.Ride{
		ID:             row.ID,
		DriverID:       row.DriverID,
		RouteID:        row.RouteID,
		DepartureTime:  row.DepartureTime,
		AvailableSeats: row.AvailableSeats,
		TotalSeats:     row.TotalSeats,
		Status:         models.RideStatus(row.Status),
		CreatedAt:      row.CreatedAt,
		Route: &models.Route{
			ID:           row.RouteID,
			Origin:       row.Origin,
			Destination:  row.Destination,
			Price:        row.Price,
			DistanceKm:   row.DistanceKm,
			DurationMins: row.DurationMins,
		},
	}, nil
}

func buildRating(value sql.NullInt64, compliment, comment sql.NullString, createdAt sql.NullTime) *models.Rating {
	if !value.Valid {
		return nil
	}

	rating := &models.Rating{Rating: int(value.Int64)}
	if compliment.Valid {
		rating.Compliment = &compliment.String
	}
	if comment.Valid {
		rating.Comment = &comment.String
	}
	if createdAt.Valid {
		rating.CreatedAt = createdAt.Time
	}

	return rating
}

func roundTo2(v float64) float64 {
	d := decimal.NewFromFloat(v)
	f, _ := d.Round(2).Float64()
	return f
}
