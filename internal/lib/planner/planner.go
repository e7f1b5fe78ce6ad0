package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// Planner owns the in-progress route: mode, ordered waypoints, computed
// geometry and a bounded undo/redo history. All mutations are expected to
// run on a single goroutine; the planner does no internal locking.
type Planner struct {
	geoUtils geo.GeoUtils
	router   Router

	state State
	mode  Mode

	waypoints       []Waypoint
	geometry        geo.Polyline
	distanceMeters  float64
	durationSeconds float64

	history       *history
	gestureActive bool
	snapThreshold float64
}

// NewPlanner creates a planner backed by the given router. The router is
// only consulted in point-to-point and modify-existing modes.
func NewPlanner(router Router) *Planner {
	return &Planner{
		geoUtils:      geo.NewGeoUtils(),
		router:        router,
		state:         StateNotPlanning,
		history:       newHistory(defaultHistoryLimit),
		snapThreshold: defaultSnapThresholdMeters,
	}
}

// SetHistoryLimit overrides the undo history cap. Takes effect on the next
// StartPlanning or LoadExistingRoute.
func (p *Planner) SetHistoryLimit(limit int) {
	p.history = newHistory(limit)
}

// SetSnapThreshold overrides the drag-to-modify snap distance in meters
func (p *Planner) SetSnapThreshold(meters float64) {
	p.snapThreshold = meters
}

// State returns the planner lifecycle state
func (p *Planner) State() State { return p.state }

// Mode returns the active planning mode
func (p *Planner) Mode() Mode { return p.mode }

// Waypoints returns a copy of the ordered waypoint list
func (p *Planner) Waypoints() []Waypoint { return cloneWaypoints(p.waypoints) }

// Geometry returns a copy of the computed route geometry
func (p *Planner) Geometry() geo.Polyline { return clonePolyline(p.geometry) }

// DistanceMeters returns the last computed route distance
func (p *Planner) DistanceMeters() float64 { return p.distanceMeters }

// DurationSeconds returns the last computed route duration
func (p *Planner) DurationSeconds() float64 { return p.durationSeconds }

// StartPlanning resets waypoints, geometry and history and enters a fresh
// planning session. The empty state is recorded as the history baseline so
// undoing every subsequent edit lands back here.
func (p *Planner) StartPlanning(mode Mode) {
	p.state = StatePlanning
	p.mode = mode
	p.waypoints = nil
	p.geometry = geo.Polyline{}
	p.distanceMeters = 0
	p.durationSeconds = 0
	p.gestureActive = false
	p.history.reset()
	p.history.push(takeSnapshot(p.waypoints, p.geometry))
}

// LoadExistingRoute seeds the session from a previously saved route. The
// history is seeded with a single entry so the first undo is a no-op until
// a further edit occurs.
func (p *Planner) LoadExistingRoute(route Route) {
	p.state = StatePlanning
	p.mode = ModeModifyExisting
	p.waypoints = cloneWaypoints(route.Waypoints)
	assignRoles(p.waypoints)
	p.geometry = clonePolyline(route.Geometry)
	p.distanceMeters = route.DistanceMeters
	p.durationSeconds = route.DurationSeconds
	p.gestureActive = false
	p.history.reset()
	p.history.push(takeSnapshot(p.waypoints, p.geometry))
}

// StopPlanning ends the session and clears all editable state
func (p *Planner) StopPlanning() {
	p.state = StateNotPlanning
	p.waypoints = nil
	p.geometry = geo.Polyline{}
	p.distanceMeters = 0
	p.durationSeconds = 0
	p.gestureActive = false
	p.history.reset()
}

// AddWaypoint appends a waypoint. The previous End is demoted to Via; an
// empty list gets a Start. Pushes one history entry.
func (p *Planner) AddWaypoint(coord geo.Point, name string) (Waypoint, error) {
	if p.state != StatePlanning {
		return Waypoint{}, ErrNotPlanning
	}

	wp := Waypoint{
		ID:         uuid.NewString(),
		Coordinate: coord,
		Name:       name,
	}
	p.waypoints = append(p.waypoints, wp)
	assignRoles(p.waypoints)
	p.history.push(takeSnapshot(p.waypoints, p.geometry))

	return p.waypoints[len(p.waypoints)-1], nil
}

// InsertWaypoint splices a via waypoint in at the given index (used by
// drag-to-modify). The index is clamped to the list bounds. Pushes one
// history entry.
func (p *Planner) InsertWaypoint(index int, coord geo.Point, name string) (Waypoint, error) {
	if p.state != StatePlanning {
		return Waypoint{}, ErrNotPlanning
	}

	if index < 0 {
		index = 0
	}
	if index > len(p.waypoints) {
		index = len(p.waypoints)
	}

	wp := Waypoint{
		ID:         uuid.NewString(),
		Coordinate: coord,
		Name:       name,
	}
	p.waypoints = append(p.waypoints, Waypoint{})
	copy(p.waypoints[index+1:], p.waypoints[index:])
	p.waypoints[index] = wp
	assignRoles(p.waypoints)
	p.history.push(takeSnapshot(p.waypoints, p.geometry))

	return p.waypoints[index], nil
}

// RemoveWaypoint filters out the waypoint with the given id and reassigns
// roles for the remainder. Unknown ids are reported, not fatal: the list is
// untouched and no history entry is pushed.
func (p *Planner) RemoveWaypoint(id string) error {
	if p.state != StatePlanning {
		return ErrNotPlanning
	}

	idx := p.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrWaypointNotFound, id)
	}

	p.waypoints = append(p.waypoints[:idx], p.waypoints[idx+1:]...)
	assignRoles(p.waypoints)
	p.history.push(takeSnapshot(p.waypoints, p.geometry))

	return nil
}

// MoveWaypoint mutates a waypoint's coordinate during a drag gesture. No
// history entry is pushed here, so a continuous gesture cannot flood the
// undo stack; FinishMoveWaypoint commits the whole gesture as one entry.
func (p *Planner) MoveWaypoint(id string, coord geo.Point) error {
	if p.state != StatePlanning {
		return ErrNotPlanning
	}

	idx := p.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrWaypointNotFound, id)
	}

	p.waypoints[idx].Coordinate = coord
	p.gestureActive = true
	return nil
}

// FinishMoveWaypoint commits an in-progress drag gesture as exactly one
// history entry. A no-op when no gesture is active.
func (p *Planner) FinishMoveWaypoint() {
	if !p.gestureActive {
		return
	}
	p.gestureActive = false
	p.history.push(takeSnapshot(p.waypoints, p.geometry))
}

// ReorderWaypoints splice-moves the waypoint at from to position to, then
// reassigns roles. Pushes one history entry.
func (p *Planner) ReorderWaypoints(from, to int) error {
	if p.state != StatePlanning {
		return ErrNotPlanning
	}
	if from < 0 || from >= len(p.waypoints) || to < 0 || to >= len(p.waypoints) {
		return fmt.Errorf("reorder out of range: from=%d to=%d len=%d", from, to, len(p.waypoints))
	}
	if from == to {
		return nil
	}

	wp := p.waypoints[from]
	p.waypoints = append(p.waypoints[:from], p.waypoints[from+1:]...)
	p.waypoints = append(p.waypoints, Waypoint{})
	copy(p.waypoints[to+1:], p.waypoints[to:])
	p.waypoints[to] = wp
	assignRoles(p.waypoints)
	p.history.push(takeSnapshot(p.waypoints, p.geometry))

	return nil
}

// Undo restores the previous history snapshot. A no-op (not an error) at
// the boundary. Returns whether anything changed.
func (p *Planner) Undo() bool {
	s, ok := p.history.undo()
	if !ok {
		return false
	}
	p.waypoints, p.geometry = s.restore()
	p.gestureActive = false
	return true
}

// Redo restores the next history snapshot. A no-op at the boundary.
func (p *Planner) Redo() bool {
	s, ok := p.history.redo()
	if !ok {
		return false
	}
	p.waypoints, p.geometry = s.restore()
	p.gestureActive = false
	return true
}

// CanUndo reports whether an undo would change state
func (p *Planner) CanUndo() bool { return p.history.canUndo() }

// CanRedo reports whether a redo would change state
func (p *Planner) CanRedo() bool { return p.history.canRedo() }

// CalculateRoute computes geometry for the current waypoints. Freeform mode
// connects the waypoints verbatim; the other modes delegate to the router.
// On router failure the prior geometry is left untouched and a recoverable
// error is returned. Overlapping calls are not coalesced here; the caller
// is responsible for serializing recalculation requests.
func (p *Planner) CalculateRoute(ctx context.Context) error {
	if p.state != StatePlanning {
		return ErrNotPlanning
	}
	if len(p.waypoints) < 2 {
		return ErrTooFewWaypoints
	}

	coords := make([]geo.Point, len(p.waypoints))
	for i, wp := range p.waypoints {
		coords[i] = wp.Coordinate
	}

	if p.mode == ModeFreeform {
		p.geometry = geo.Polyline{Points: coords}
		p.distanceMeters = p.geoUtils.PathLength(p.geometry)
		p.durationSeconds = 0
		return nil
	}

	result, err := p.router.Route(ctx, coords)
	if err != nil {
		return fmt.Errorf("route calculation failed: %w", err)
	}

	points := make([]geo.Point, len(result.Points))
	copy(points, result.Points)
	p.geometry = geo.Polyline{Points: points}
	p.distanceMeters = result.DistanceMeters
	p.durationSeconds = result.DurationSeconds
	return nil
}

// PrepareForSave produces an immutable route record with a freshly generated
// id. Saving under a fresh id is "save as new"; updating an existing record
// is the persistence layer's concern.
func (p *Planner) PrepareForSave(name, description string) (Route, error) {
	if p.state != StatePlanning {
		return Route{}, ErrNotPlanning
	}
	if len(p.waypoints) < 2 {
		return Route{}, ErrTooFewWaypoints
	}
	if len(p.geometry.Points) < 2 {
		return Route{}, ErrNoGeometry
	}

	now := time.Now()
	geometry := clonePolyline(p.geometry)
	geometry.EncodedPolyline = p.geoUtils.EncodePolyline(geometry.Points)

	return Route{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     description,
		Mode:            p.mode,
		Waypoints:       cloneWaypoints(p.waypoints),
		Geometry:        geometry,
		DistanceMeters:  p.distanceMeters,
		DurationSeconds: p.durationSeconds,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (p *Planner) indexOf(id string) int {
	for i, wp := range p.waypoints {
		if wp.ID == id {
			return i
		}
	}
	return -1
}
