package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
)

// PostgresStore persists routes in Postgres. Geometry is stored as an
// encoded polyline string, waypoints as a JSONB document.
type PostgresStore struct {
	pool     *pgxpool.Pool
	geoUtils geo.GeoUtils
}

// NewPostgresStore connects to the database and ensures the routes table
// exists
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{pool: pool, geoUtils: geo.NewGeoUtils()}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS routes (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			mode             TEXT NOT NULL,
			waypoints        JSONB NOT NULL,
			geometry         TEXT NOT NULL,
			distance_meters  DOUBLE PRECISION NOT NULL,
			duration_seconds DOUBLE PRECISION NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			updated_at       TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create routes table: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Save(ctx context.Context, route *planner.Route) error {
	waypoints, err := json.Marshal(route.Waypoints)
	if err != nil {
		return fmt.Errorf("failed to marshal waypoints: %w", err)
	}

	encoded := route.Geometry.EncodedPolyline
	if encoded == "" {
		encoded = s.geoUtils.EncodePolyline(route.Geometry.Points)
	}

	query := `
		INSERT INTO routes (id, name, description, mode, waypoints, geometry,
			distance_meters, duration_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			mode = EXCLUDED.mode,
			waypoints = EXCLUDED.waypoints,
			geometry = EXCLUDED.geometry,
			distance_meters = EXCLUDED.distance_meters,
			duration_seconds = EXCLUDED.duration_seconds,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.pool.Exec(ctx, query,
		route.ID, route.Name, route.Description, string(route.Mode),
		waypoints, encoded,
		route.DistanceMeters, route.DurationSeconds,
		route.CreatedAt, route.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save route %s: %w", route.ID, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*planner.Route, error) {
	query := `
		SELECT id, name, description, mode, waypoints, geometry,
			distance_meters, duration_seconds, created_at, updated_at
		FROM routes
		WHERE id = $1
	`

	var route planner.Route
	var mode string
	var waypoints []byte
	var encoded string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&route.ID, &route.Name, &route.Description, &mode, &waypoints, &encoded,
		&route.DistanceMeters, &route.DurationSeconds,
		&route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query route %s: %w", id, err)
	}

	route.Mode = planner.Mode(mode)
	if err := json.Unmarshal(waypoints, &route.Waypoints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal waypoints for route %s: %w", id, err)
	}

	points, err := s.geoUtils.DecodePolyline(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry for route %s: %w", id, err)
	}
	route.Geometry = geo.Polyline{EncodedPolyline: encoded, Points: points}

	return &route, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]RouteSummary, error) {
	query := `
		SELECT id, name, mode, jsonb_array_length(waypoints),
			distance_meters, duration_seconds
		FROM routes
		ORDER BY created_at DESC, id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	defer rows.Close()

	var summaries []RouteSummary
	for rows.Next() {
		var summary RouteSummary
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Mode,
			&summary.WaypointCount, &summary.DistanceMeters, &summary.DurationSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan route summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read route summaries: %w", err)
	}

	return summaries, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
