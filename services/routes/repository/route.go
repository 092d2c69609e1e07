package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/models"
)

// RouteRepo owns route catalog reads
type RouteRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(cfg *models.Config, db *sqlx.DB) *RouteRepo {
	return &RouteRepo{
		cfg: cfg,
		db:  db,
	}
}

// ListRoutes lists all routes
func (r *RouteRepo) ListRoutes(ctx context.Context) ([]*models.Route, error) {
	var routes []*models.Route
	err := r.db.SelectContext(ctx, &routes, `
		SELECT id, origin, destination, price, distance_km, duration_mins
		FROM routes
		ORDER BY origin, destination
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	return routes, nil
}

// GetRouteByID fetches one route
func (r *RouteRepo) GetRouteByID(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	route := &models.Route{}
	err := r.db.GetContext(ctx, route, `
		SELECT id, origin, destination, price, distance_km, duration_mins
		FROM routes
		WHERE id = $1
	`, routeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NotFound("route not found")
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return route, nil
}

// ListPickupPoints lists a route's pickup points
func (r *RouteRepo) ListPickupPoints(ctx context.Context, routeID uuid.UUID) ([]models.PickupPoint, error) {
	var points []models.PickupPoint
	err := r.db.SelectContext(ctx, &points, `
		SELECT id, route_id, name, lat, lng
		FROM pickup_points
		WHERE route_id = $1
		ORDER BY name
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pickup points: %w", err)
	}
	return points, nil
}
