package store

import (
	"context"
	"errors"

	"github.com/openvelo/tournav/internal/lib/planner"
)

// ErrNotFound is returned when no saved route matches the requested id
var ErrNotFound = errors.New("route not found")

// RouteSummary is the listing view of a saved route, without the geometry
// payload
type RouteSummary struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Mode            string  `json:"mode"`
	WaypointCount   int     `json:"waypoint_count"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Store persists saved routes. Implementations must be safe for concurrent
// use.
type Store interface {
	// Save inserts the route, or replaces an existing route with the same id
	Save(ctx context.Context, route *planner.Route) error

	// Get returns the full route record, or ErrNotFound
	Get(ctx context.Context, id string) (*planner.Route, error)

	// List returns summaries of all saved routes, newest first
	List(ctx context.Context) ([]RouteSummary, error)

	// Delete removes a saved route. Deleting an unknown id returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error
}
