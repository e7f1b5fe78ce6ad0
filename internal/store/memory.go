package store

import (
	"context"
	"sort"
	"sync"

	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
)

// MemoryStore is an in-memory Store for tests and single-process deployments
// without a database
type MemoryStore struct {
	mutex  sync.RWMutex
	routes map[string]*planner.Route
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes: make(map[string]*planner.Route),
	}
}

func (s *MemoryStore) Save(ctx context.Context, route *planner.Route) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.routes[route.ID] = cloneRoute(route)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*planner.Route, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	route, ok := s.routes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRoute(route), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]RouteSummary, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summaries := make([]RouteSummary, 0, len(s.routes))
	for _, route := range s.routes {
		summaries = append(summaries, RouteSummary{
			ID:              route.ID,
			Name:            route.Name,
			Mode:            string(route.Mode),
			WaypointCount:   len(route.Waypoints),
			DistanceMeters:  route.DistanceMeters,
			DurationSeconds: route.DurationSeconds,
		})
	}

	byCreated := func(i, j int) bool {
		ri, rj := s.routes[summaries[i].ID], s.routes[summaries[j].ID]
		if ri.CreatedAt.Equal(rj.CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return ri.CreatedAt.After(rj.CreatedAt)
	}
	sort.Slice(summaries, byCreated)

	return summaries, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.routes[id]; !ok {
		return ErrNotFound
	}
	delete(s.routes, id)
	return nil
}

// cloneRoute deep-copies a route so callers cannot mutate stored state
func cloneRoute(route *planner.Route) *planner.Route {
	clone := *route
	clone.Waypoints = append([]planner.Waypoint(nil), route.Waypoints...)
	clone.Geometry.Points = append([]geo.Point(nil), route.Geometry.Points...)
	return &clone
}
