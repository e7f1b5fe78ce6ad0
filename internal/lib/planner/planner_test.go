package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// MockRouter is a mock implementation of the Router interface
type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Route(ctx context.Context, points []geo.Point) (*RouteResult, error) {
	args := m.Called(ctx, points)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RouteResult), args.Error(1)
}

func newTestPlanner() *Planner {
	return NewPlanner(&MockRouter{})
}

func assertRoles(t *testing.T, waypoints []Waypoint) {
	t.Helper()
	for i, wp := range waypoints {
		assert.Equal(t, i, wp.Order, "Order must be dense and match list position")
		switch {
		case i == 0:
			assert.Equal(t, KindStart, wp.Kind)
		case i == len(waypoints)-1:
			assert.Equal(t, KindEnd, wp.Kind)
		default:
			assert.Equal(t, KindVia, wp.Kind)
		}
	}
}

func TestPlanner_RequiresSession(t *testing.T) {
	p := newTestPlanner()

	_, err := p.AddWaypoint(geo.Point{}, "")
	assert.ErrorIs(t, err, ErrNotPlanning)
	assert.ErrorIs(t, p.RemoveWaypoint("x"), ErrNotPlanning)
	assert.ErrorIs(t, p.CalculateRoute(context.Background()), ErrNotPlanning)
	_, err = p.PrepareForSave("n", "")
	assert.ErrorIs(t, err, ErrNotPlanning)
}

func TestPlanner_WaypointRoles(t *testing.T) {
	p := newTestPlanner()
	p.StartPlanning(ModePointToPoint)

	first, err := p.AddWaypoint(geo.Point{Latitude: 38.0675, Longitude: -120.5436}, "Angels Camp")
	require.NoError(t, err)
	assert.Equal(t, KindStart, first.Kind)
	assert.NotEmpty(t, first.ID)

	second, err := p.AddWaypoint(geo.Point{Latitude: 38.1391, Longitude: -120.4561}, "Murphys")
	require.NoError(t, err)
	assert.Equal(t, KindEnd, second.Kind)

	// Adding a third demotes the old End to Via
	third, err := p.AddWaypoint(geo.Point{Latitude: 38.2, Longitude: -120.3}, "")
	require.NoError(t, err)
	assert.Equal(t, KindEnd, third.Kind)

	waypoints := p.Waypoints()
	require.Len(t, waypoints, 3)
	assert.Equal(t, KindVia, waypoints[1].Kind)
	assertRoles(t, waypoints)

	// Removing the Start promotes the next waypoint
	require.NoError(t, p.RemoveWaypoint(waypoints[0].ID))
	assertRoles(t, p.Waypoints())

	// Removing an unknown id is reported but leaves the list untouched
	err = p.RemoveWaypoint("no-such-id")
	assert.ErrorIs(t, err, ErrWaypointNotFound)
	assert.Len(t, p.Waypoints(), 2)
}

func TestPlanner_Reorder(t *testing.T) {
	p := newTestPlanner()
	p.StartPlanning(ModeFreeform)

	var ids []string
	for i := 0; i < 4; i++ {
		wp, err := p.AddWaypoint(geo.Point{Latitude: float64(i), Longitude: 0}, "")
		require.NoError(t, err)
		ids = append(ids, wp.ID)
	}

	require.NoError(t, p.ReorderWaypoints(0, 2))
	waypoints := p.Waypoints()
	assert.Equal(t, []string{ids[1], ids[2], ids[0], ids[3]},
		[]string{waypoints[0].ID, waypoints[1].ID, waypoints[2].ID, waypoints[3].ID})
	assertRoles(t, waypoints)

	assert.Error(t, p.ReorderWaypoints(0, 9))
	assert.NoError(t, p.ReorderWaypoints(1, 1))
}

func TestPlanner_UndoRedo(t *testing.T) {
	p := newTestPlanner()
	p.StartPlanning(ModeFreeform)

	for i := 0; i < 3; i++ {
		_, err := p.AddWaypoint(geo.Point{Latitude: float64(i), Longitude: 0}, "")
		require.NoError(t, err)
	}
	require.Len(t, p.Waypoints(), 3)

	// Undo after k mutations, repeated k times, restores the pre-mutation state
	assert.True(t, p.Undo())
	assert.True(t, p.Undo())
	assert.True(t, p.Undo())
	assert.Empty(t, p.Waypoints())
	assert.False(t, p.CanUndo())
	assert.False(t, p.Undo(), "Undo at the boundary is a no-op")

	assert.True(t, p.Redo())
	require.Len(t, p.Waypoints(), 1)
	assertRoles(t, p.Waypoints())

	// A new mutation discards the redo tail
	_, err := p.AddWaypoint(geo.Point{Latitude: 9, Longitude: 9}, "")
	require.NoError(t, err)
	assert.False(t, p.CanRedo())
}

func TestPlanner_MoveGestureCommitsOnce(t *testing.T) {
	p := newTestPlanner()
	p.StartPlanning(ModeFreeform)

	wp, err := p.AddWaypoint(geo.Point{Latitude: 0, Longitude: 0}, "")
	require.NoError(t, err)

	// A continuous drag mutates coordinates without flooding the history
	for i := 1; i <= 10; i++ {
		require.NoError(t, p.MoveWaypoint(wp.ID, geo.Point{Latitude: float64(i) * 0.001, Longitude: 0}))
	}
	p.FinishMoveWaypoint()

	moved := p.Waypoints()[0]
	assert.InDelta(t, 0.01, moved.Coordinate.Latitude, 1e-9)

	// One undo reverts the whole gesture
	require.True(t, p.Undo())
	assert.Zero(t, p.Waypoints()[0].Coordinate.Latitude)

	// Finishing without an active gesture pushes nothing
	wasUndoable := p.CanUndo()
	p.FinishMoveWaypoint()
	assert.Equal(t, wasUndoable, p.CanUndo())
}

func TestPlanner_LoadExistingRoute(t *testing.T) {
	p := newTestPlanner()

	route := Route{
		ID:   "route-1",
		Name: "Sierra loop",
		Waypoints: []Waypoint{
			{ID: "a", Coordinate: geo.Point{Latitude: 0, Longitude: 0}},
			{ID: "b", Coordinate: geo.Point{Latitude: 0, Longitude: 0.002}},
		},
		Geometry: geo.Polyline{Points: []geo.Point{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 0.001},
			{Latitude: 0, Longitude: 0.002},
		}},
		DistanceMeters: 222,
	}
	p.LoadExistingRoute(route)

	assert.Equal(t, StatePlanning, p.State())
	assert.Equal(t, ModeModifyExisting, p.Mode())
	assertRoles(t, p.Waypoints())

	// The seeded history makes the first undo a no-op
	assert.False(t, p.CanUndo())
	assert.False(t, p.Undo())

	// After a further edit, a single undo restores the loaded state
	_, err := p.AddWaypoint(geo.Point{Latitude: 0, Longitude: 0.003}, "")
	require.NoError(t, err)
	require.True(t, p.Undo())
	assert.Len(t, p.Waypoints(), 2)
	assert.False(t, p.CanUndo())
}

func TestPlanner_CalculateRoute_Freeform(t *testing.T) {
	p := newTestPlanner()
	p.StartPlanning(ModeFreeform)

	assert.ErrorIs(t, p.CalculateRoute(context.Background()), ErrTooFewWaypoints)

	_, err := p.AddWaypoint(geo.Point{Latitude: 0, Longitude: 0}, "")
	require.NoError(t, err)
	_, err = p.AddWaypoint(geo.Point{Latitude: 0, Longitude: 0.002}, "")
	require.NoError(t, err)

	require.NoError(t, p.CalculateRoute(context.Background()))
	assert.Len(t, p.Geometry().Points, 2, "Freeform geometry is the waypoints verbatim")
	assert.InDelta(t, 222.6, p.DistanceMeters(), 4.0)
	assert.Zero(t, p.DurationSeconds())
}

func TestPlanner_CalculateRoute_Routed(t *testing.T) {
	router := &MockRouter{}
	p := NewPlanner(router)
	p.StartPlanning(ModePointToPoint)

	_, err := p.AddWaypoint(geo.Point{Latitude: 38.0675, Longitude: -120.5436}, "")
	require.NoError(t, err)
	_, err = p.AddWaypoint(geo.Point{Latitude: 38.1391, Longitude: -120.4561}, "")
	require.NoError(t, err)

	routed := &RouteResult{
		Points: []geo.Point{
			{Latitude: 38.0675, Longitude: -120.5436},
			{Latitude: 38.1, Longitude: -120.5},
			{Latitude: 38.1391, Longitude: -120.4561},
		},
		DistanceMeters:  12500,
		DurationSeconds: 2700,
	}
	router.On("Route", mock.Anything, mock.AnythingOfType("[]geo.Point")).Return(routed, nil).Once()

	require.NoError(t, p.CalculateRoute(context.Background()))
	assert.Len(t, p.Geometry().Points, 3)
	assert.Equal(t, 12500.0, p.DistanceMeters())
	assert.Equal(t, 2700.0, p.DurationSeconds())

	// A failed recalculation leaves the prior geometry untouched
	router.On("Route", mock.Anything, mock.AnythingOfType("[]geo.Point")).Return(nil, errors.New("503 from router")).Once()
	err = p.CalculateRoute(context.Background())
	assert.Error(t, err)
	assert.Len(t, p.Geometry().Points, 3)
	assert.Equal(t, 12500.0, p.DistanceMeters())

	router.AssertExpectations(t)
}

func TestPlanner_PrepareForSave(t *testing.T) {
	p := newTestPlanner()
	p.StartPlanning(ModeFreeform)

	_, err := p.AddWaypoint(geo.Point{Latitude: 0, Longitude: 0}, "start")
	require.NoError(t, err)
	_, err = p.AddWaypoint(geo.Point{Latitude: 0, Longitude: 0.002}, "end")
	require.NoError(t, err)

	// Geometry is required
	_, err = p.PrepareForSave("ride", "")
	assert.ErrorIs(t, err, ErrNoGeometry)

	require.NoError(t, p.CalculateRoute(context.Background()))

	record, err := p.PrepareForSave("ride", "morning ride")
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "ride", record.Name)
	assert.NotEmpty(t, record.Geometry.EncodedPolyline)
	assert.False(t, record.CreatedAt.IsZero())

	// Saving again generates a fresh id ("save as new")
	again, err := p.PrepareForSave("ride", "")
	require.NoError(t, err)
	assert.NotEqual(t, record.ID, again.ID)

	// The record is a deep copy: later edits must not leak into it
	require.NoError(t, p.MoveWaypoint(record.Waypoints[0].ID, geo.Point{Latitude: 5, Longitude: 5}))
	p.FinishMoveWaypoint()
	assert.Zero(t, record.Waypoints[0].Coordinate.Latitude)
}
