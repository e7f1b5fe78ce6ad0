package planner

import (
	"context"
	"time"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// Mode selects how the planner turns waypoints into route geometry
type Mode string

const (
	// ModePointToPoint requests road-following geometry from the router
	ModePointToPoint Mode = "point_to_point"
	// ModeFreeform connects waypoints directly, no router involved
	ModeFreeform Mode = "freeform"
	// ModeModifyExisting edits a previously saved route, router-backed
	ModeModifyExisting Mode = "modify_existing"
)

// State is the planner lifecycle state
type State string

const (
	StateNotPlanning State = "not_planning"
	StatePlanning    State = "planning"
)

// WaypointKind classifies a waypoint's role within the ordered list
type WaypointKind string

const (
	KindStart WaypointKind = "start"
	KindVia   WaypointKind = "via"
	KindEnd   WaypointKind = "end"
)

// Waypoint is a user-placed routing anchor. Kind and Order are derived
// fields, re-assigned by the planner after every structural change.
type Waypoint struct {
	ID         string       `json:"id"`
	Coordinate geo.Point    `json:"coordinate"`
	Name       string       `json:"name,omitempty"`
	Kind       WaypointKind `json:"kind"`
	Order      int          `json:"order"`
}

// Route is the immutable record produced by PrepareForSave and consumed by
// the navigation engine and the persistence layer.
type Route struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	Mode            Mode         `json:"mode"`
	Waypoints       []Waypoint   `json:"waypoints"`
	Geometry        geo.Polyline `json:"geometry"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// RouteResult is what a Router returns for an ordered set of waypoints
type RouteResult struct {
	Points          []geo.Point
	DistanceMeters  float64
	DurationSeconds float64
}

// Router computes road-following geometry for an ordered coordinate list.
// Implemented by the external routing service client.
type Router interface {
	Route(ctx context.Context, points []geo.Point) (*RouteResult, error)
}

// SegmentMatch locates a pressed point on the route for drag-to-modify
type SegmentMatch struct {
	// SegmentIndex is the waypoint-to-waypoint segment the press falls in
	SegmentIndex int `json:"segment_index"`
	// InsertIndex is where a new via waypoint should be spliced in
	InsertIndex int `json:"insert_index"`
	// DistanceToRouteMeters is how far the press was from the geometry
	DistanceToRouteMeters float64 `json:"distance_to_route_meters"`
	// Snapped is the closest point on the route geometry
	Snapped geo.Point `json:"snapped"`
}
