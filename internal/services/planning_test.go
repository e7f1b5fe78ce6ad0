package services

import (
	"context"
	"testing"

	"github.com/dpup/prefab/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
	"github.com/openvelo/tournav/internal/store"
)

// stubRouter connects waypoints directly, like a routing service that
// happens to return straight roads
type stubRouter struct {
	calls int
	err   error
}

func (r *stubRouter) Route(ctx context.Context, points []geo.Point) (*planner.RouteResult, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &planner.RouteResult{
		Points:          append([]geo.Point(nil), points...),
		DistanceMeters:  1000,
		DurationSeconds: 240,
	}, nil
}

func newTestPlanningService() (*PlanningService, *stubRouter, *store.MemoryStore) {
	router := &stubRouter{}
	memStore := store.NewMemoryStore()
	return NewPlanningService(router, memStore), router, memStore
}

func TestPlanningService_AddWaypointRecalculates(t *testing.T) {
	svc, router, _ := newTestPlanningService()
	ctx := logging.EnsureLogger(context.Background())

	svc.StartPlanning(planner.ModePointToPoint)

	// One waypoint is not routable yet
	_, err := svc.AddWaypoint(ctx, geo.Point{Latitude: 38.0675, Longitude: -120.5436}, "Angels Camp")
	require.NoError(t, err)
	assert.Zero(t, router.calls)

	_, err = svc.AddWaypoint(ctx, geo.Point{Latitude: 38.1391, Longitude: -120.4561}, "Murphys")
	require.NoError(t, err)
	assert.Equal(t, 1, router.calls)

	session := svc.Session()
	assert.Len(t, session.Waypoints, 2)
	assert.Equal(t, 1000.0, session.DistanceMeters)
	assert.Len(t, session.Geometry.Points, 2)
}

func TestPlanningService_SaveListEditDelete(t *testing.T) {
	svc, _, _ := newTestPlanningService()
	ctx := logging.EnsureLogger(context.Background())

	svc.StartPlanning(planner.ModePointToPoint)
	_, err := svc.AddWaypoint(ctx, geo.Point{Latitude: 38.0675, Longitude: -120.5436}, "")
	require.NoError(t, err)
	_, err = svc.AddWaypoint(ctx, geo.Point{Latitude: 38.1391, Longitude: -120.4561}, "")
	require.NoError(t, err)

	route, err := svc.SaveRoute(ctx, "Hwy 4 climb", "Angels Camp to Murphys")
	require.NoError(t, err)
	require.NotEmpty(t, route.ID)

	list, err := svc.ListRoutes(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hwy 4 climb", list[0].Name)

	// Loading the saved route reopens it in modify-existing mode
	require.NoError(t, svc.EditRoute(ctx, route.ID))
	session := svc.Session()
	assert.Equal(t, planner.ModeModifyExisting, session.Mode)
	assert.Len(t, session.Waypoints, 2)

	require.NoError(t, svc.DeleteRoute(ctx, route.ID))
	assert.ErrorIs(t, svc.EditRoute(ctx, route.ID), store.ErrNotFound)
}

func TestPlanningService_RouterFailureKeepsGeometry(t *testing.T) {
	svc, router, _ := newTestPlanningService()
	ctx := logging.EnsureLogger(context.Background())

	svc.StartPlanning(planner.ModePointToPoint)
	_, err := svc.AddWaypoint(ctx, geo.Point{Latitude: 0, Longitude: 0}, "")
	require.NoError(t, err)
	_, err = svc.AddWaypoint(ctx, geo.Point{Latitude: 0, Longitude: 0.01}, "")
	require.NoError(t, err)

	before := svc.Session()
	require.Len(t, before.Geometry.Points, 2)

	// The next edit hits a broken router; the waypoint change lands but
	// the old geometry survives
	router.err = assert.AnError
	_, err = svc.AddWaypoint(ctx, geo.Point{Latitude: 0, Longitude: 0.02}, "")
	require.NoError(t, err)

	after := svc.Session()
	assert.Len(t, after.Waypoints, 3)
	assert.Equal(t, before.Geometry.Points, after.Geometry.Points)
}

func TestPlanningService_UndoRedoRecalculate(t *testing.T) {
	svc, _, _ := newTestPlanningService()
	ctx := logging.EnsureLogger(context.Background())

	svc.StartPlanning(planner.ModeFreeform)
	_, err := svc.AddWaypoint(ctx, geo.Point{Latitude: 0, Longitude: 0}, "")
	require.NoError(t, err)
	_, err = svc.AddWaypoint(ctx, geo.Point{Latitude: 0, Longitude: 0.001}, "")
	require.NoError(t, err)
	_, err = svc.AddWaypoint(ctx, geo.Point{Latitude: 0, Longitude: 0.002}, "")
	require.NoError(t, err)

	require.True(t, svc.Undo(ctx))
	session := svc.Session()
	assert.Len(t, session.Waypoints, 2)
	assert.True(t, session.CanRedo)

	require.True(t, svc.Redo(ctx))
	assert.Len(t, svc.Session().Waypoints, 3)
}

func TestPlanningService_GrabAndInsert(t *testing.T) {
	svc, _, _ := newTestPlanningService()
	ctx := logging.EnsureLogger(context.Background())

	svc.StartPlanning(planner.ModeFreeform)
	_, err := svc.AddWaypoint(ctx, geo.Point{Latitude: 0, Longitude: 0}, "a")
	require.NoError(t, err)
	_, err = svc.AddWaypoint(ctx, geo.Point{Latitude: 0, Longitude: 0.002}, "b")
	require.NoError(t, err)

	match, err := svc.GrabRoute(geo.Point{Latitude: 0, Longitude: 0.001})
	require.NoError(t, err)
	assert.Equal(t, 0, match.SegmentIndex)
	assert.Equal(t, 1, match.InsertIndex)

	wp, err := svc.InsertWaypoint(ctx, match.InsertIndex, match.Snapped, "")
	require.NoError(t, err)
	assert.Equal(t, planner.KindVia, wp.Kind)
	assert.Len(t, svc.Session().Waypoints, 3)
}
