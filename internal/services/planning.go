package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dpup/prefab/logging"

	"github.com/openvelo/tournav/internal/clients/routing"
	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
	"github.com/openvelo/tournav/internal/store"
)

// PlanningService owns a planning session and its persistence. The planner
// itself is single-threaded; the service serializes access behind a mutex so
// concurrent callers (HTTP handlers, background recalculation) stay safe.
type PlanningService struct {
	mutex   sync.Mutex
	planner *planner.Planner
	store   store.Store
}

// routerAdapter bridges the routing client to the planner's Router interface
type routerAdapter struct {
	client *routing.Client
}

func (a *routerAdapter) Route(ctx context.Context, points []geo.Point) (*planner.RouteResult, error) {
	data, err := a.client.Route(ctx, points)
	if err != nil {
		return nil, err
	}
	return &planner.RouteResult{
		Points:          data.Points,
		DistanceMeters:  data.DistanceMeters,
		DurationSeconds: data.DurationSeconds,
	}, nil
}

// NewRouterAdapter wraps the routing client as a planner.Router
func NewRouterAdapter(client *routing.Client) planner.Router {
	return &routerAdapter{client: client}
}

// NewPlanningService creates a planning service backed by the given router
// and route store
func NewPlanningService(router planner.Router, routeStore store.Store) *PlanningService {
	return &PlanningService{
		planner: planner.NewPlanner(router),
		store:   routeStore,
	}
}

// SetSnapThreshold overrides the drag-to-modify snap distance in meters
func (s *PlanningService) SetSnapThreshold(meters float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.planner.SetSnapThreshold(meters)
}

// SetHistoryLimit overrides the undo history cap for future sessions
func (s *PlanningService) SetHistoryLimit(limit int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.planner.SetHistoryLimit(limit)
}

// StartPlanning begins a fresh session in the given mode
func (s *PlanningService) StartPlanning(mode planner.Mode) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.planner.StartPlanning(mode)
}

// EditRoute loads a saved route into a modify-existing session
func (s *PlanningService) EditRoute(ctx context.Context, id string) error {
	route, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load route for editing: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.planner.LoadExistingRoute(*route)
	return nil
}

// StopPlanning discards the session
func (s *PlanningService) StopPlanning() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.planner.StopPlanning()
}

// AddWaypoint appends a waypoint and recalculates the route
func (s *PlanningService) AddWaypoint(ctx context.Context, coord geo.Point, name string) (planner.Waypoint, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	wp, err := s.planner.AddWaypoint(coord, name)
	if err != nil {
		return planner.Waypoint{}, err
	}
	s.recalculate(ctx)
	return wp, nil
}

// RemoveWaypoint removes a waypoint by id and recalculates the route
func (s *PlanningService) RemoveWaypoint(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.planner.RemoveWaypoint(id); err != nil {
		return err
	}
	s.recalculate(ctx)
	return nil
}

// MoveWaypoint updates a waypoint position mid-gesture, without committing
// history or triggering recalculation
func (s *PlanningService) MoveWaypoint(id string, coord geo.Point) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.planner.MoveWaypoint(id, coord)
}

// FinishMoveWaypoint commits a drag gesture and recalculates the route
func (s *PlanningService) FinishMoveWaypoint(ctx context.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.planner.FinishMoveWaypoint()
	s.recalculate(ctx)
}

// ReorderWaypoints moves a waypoint to a new position and recalculates
func (s *PlanningService) ReorderWaypoints(ctx context.Context, from, to int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.planner.ReorderWaypoints(from, to); err != nil {
		return err
	}
	s.recalculate(ctx)
	return nil
}

// GrabRoute locates a press on the current route geometry for drag-to-modify
func (s *PlanningService) GrabRoute(press geo.Point) (planner.SegmentMatch, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.planner.LocateOnRoute(press)
}

// InsertWaypoint splices a via waypoint at the given index and recalculates
func (s *PlanningService) InsertWaypoint(ctx context.Context, index int, coord geo.Point, name string) (planner.Waypoint, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	wp, err := s.planner.InsertWaypoint(index, coord, name)
	if err != nil {
		return planner.Waypoint{}, err
	}
	s.recalculate(ctx)
	return wp, nil
}

// Undo steps the session back one edit and recalculates when it changed
// anything
func (s *PlanningService) Undo(ctx context.Context) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.planner.Undo() {
		return false
	}
	s.recalculate(ctx)
	return true
}

// Redo steps the session forward one edit and recalculates when it changed
// anything
func (s *PlanningService) Redo(ctx context.Context) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.planner.Redo() {
		return false
	}
	s.recalculate(ctx)
	return true
}

// Recalculate refreshes the route geometry on demand, e.g. after switching
// routing profiles. Calls are serialized; the last completed calculation
// wins.
func (s *PlanningService) Recalculate(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.planner.CalculateRoute(ctx)
}

// SessionView is the read-only state of the planning session for callers
type SessionView struct {
	State           planner.State      `json:"state"`
	Mode            planner.Mode       `json:"mode"`
	Waypoints       []planner.Waypoint `json:"waypoints"`
	Geometry        geo.Polyline       `json:"geometry"`
	DistanceMeters  float64            `json:"distance_meters"`
	DurationSeconds float64            `json:"duration_seconds"`
	CanUndo         bool               `json:"can_undo"`
	CanRedo         bool               `json:"can_redo"`
}

// Session returns a copy of the current session state
func (s *PlanningService) Session() SessionView {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return SessionView{
		State:           s.planner.State(),
		Mode:            s.planner.Mode(),
		Waypoints:       s.planner.Waypoints(),
		Geometry:        s.planner.Geometry(),
		DistanceMeters:  s.planner.DistanceMeters(),
		DurationSeconds: s.planner.DurationSeconds(),
		CanUndo:         s.planner.CanUndo(),
		CanRedo:         s.planner.CanRedo(),
	}
}

// SaveRoute snapshots the session as a named route and persists it
func (s *PlanningService) SaveRoute(ctx context.Context, name, description string) (*planner.Route, error) {
	s.mutex.Lock()
	route, err := s.planner.PrepareForSave(name, description)
	s.mutex.Unlock()
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, &route); err != nil {
		return nil, fmt.Errorf("failed to save route: %w", err)
	}
	return &route, nil
}

// GetRoute returns a saved route by id
func (s *PlanningService) GetRoute(ctx context.Context, id string) (*planner.Route, error) {
	return s.store.Get(ctx, id)
}

// ListRoutes returns summaries of all saved routes
func (s *PlanningService) ListRoutes(ctx context.Context) ([]store.RouteSummary, error) {
	return s.store.List(ctx)
}

// DeleteRoute removes a saved route
func (s *PlanningService) DeleteRoute(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// recalculate refreshes the route geometry after a structural edit. Router
// failures keep the previous geometry, so an edit is never lost to a flaky
// routing service. Callers hold the mutex.
func (s *PlanningService) recalculate(ctx context.Context) {
	err := s.planner.CalculateRoute(ctx)
	if err == nil || err == planner.ErrTooFewWaypoints {
		return
	}
	logging.Errorw(ctx, "Route recalculation failed, keeping previous geometry", "error", err)
}
