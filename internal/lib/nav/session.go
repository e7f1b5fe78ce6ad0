package nav

import (
	"time"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// Status is the navigation session lifecycle state
type Status string

const (
	StatusIdle   Status = "idle"
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

// Snapshot is an immutable view of the navigation session, published after
// every location update. Readers get a copy; nothing in it aliases the live
// session state.
type Snapshot struct {
	RouteID   string `json:"route_id"`
	RouteName string `json:"route_name"`
	Status    Status `json:"status"`

	CurrentLocation *geo.Point `json:"current_location,omitempty"`
	NearestIndex    int        `json:"nearest_index"`

	RawSpeedMps      float64 `json:"raw_speed_mps"`
	SmoothedSpeedMps float64 `json:"smoothed_speed_mps"`

	DistanceFromRouteMeters float64 `json:"distance_from_route_meters"`
	IsOffRoute              bool    `json:"is_off_route"`

	TotalDistanceMeters     float64 `json:"total_distance_meters"`
	DistanceTraveledMeters  float64 `json:"distance_traveled_meters"`
	DistanceRemainingMeters float64 `json:"distance_remaining_meters"`
	ProgressPercent         float64 `json:"progress_percent"`

	// ETASeconds is only meaningful when ETAKnown is true; below the
	// minimum moving speed the rider counts as stopped and no estimate
	// is reported.
	ETAKnown   bool    `json:"eta_known"`
	ETASeconds float64 `json:"eta_seconds,omitempty"`

	LastFixAt time.Time `json:"last_fix_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}
