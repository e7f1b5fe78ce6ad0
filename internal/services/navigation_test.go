package services

import (
	"context"
	"testing"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvelo/tournav/internal/clients/location"
	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/nav"
	"github.com/openvelo/tournav/internal/lib/planner"
	"github.com/openvelo/tournav/internal/store"
)

func seedRoute(t *testing.T, memStore *store.MemoryStore) *planner.Route {
	t.Helper()
	route := &planner.Route{
		ID:   "ride-1",
		Name: "Equator spin",
		Mode: planner.ModeFreeform,
		Waypoints: []planner.Waypoint{
			{ID: "a", Coordinate: geo.Point{Latitude: 0, Longitude: 0}, Kind: planner.KindStart},
			{ID: "b", Coordinate: geo.Point{Latitude: 0, Longitude: 0.002}, Kind: planner.KindEnd, Order: 1},
		},
		Geometry: geo.Polyline{Points: []geo.Point{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 0.001},
			{Latitude: 0, Longitude: 0.002},
		}},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, memStore.Save(context.Background(), route))
	return route
}

func speedPtr(v float64) *float64 { return &v }

func waitForUpdates(t *testing.T, updates <-chan nav.Snapshot, n int) nav.Snapshot {
	t.Helper()
	var last nav.Snapshot
	for i := 0; i < n; i++ {
		select {
		case last = <-updates:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for update %d of %d", i+1, n)
		}
	}
	return last
}

func TestNavigationService_Lifecycle(t *testing.T) {
	memStore := store.NewMemoryStore()
	seedRoute(t, memStore)

	updates := make(chan nav.Snapshot, 16)
	svc := NewNavigationService(memStore, nav.Config{
		OnUpdate: func(s nav.Snapshot) { updates <- s },
	})

	source := location.NewChannelSource(16)
	ctx := logging.EnsureLogger(context.Background())
	require.NoError(t, svc.StartNavigation(ctx, "ride-1", source))
	assert.Equal(t, nav.StatusActive, svc.Status())

	require.True(t, source.Push(location.Fix{
		Latitude: 0, Longitude: 0.001, SpeedMps: speedPtr(5), Timestamp: time.Now(),
	}))
	last := waitForUpdates(t, updates, 1)
	assert.InDelta(t, 50.0, last.ProgressPercent, 1.0)

	vm := svc.ViewModel()
	assert.NotEmpty(t, vm.SpeedText)

	svc.StopNavigation(ctx)
	assert.Equal(t, nav.StatusIdle, svc.Status())

	// Pushes after stop are dropped by the closed source
	assert.False(t, source.Push(location.Fix{Latitude: 0, Longitude: 0.002, Timestamp: time.Now()}))
}

func TestNavigationService_UnknownRoute(t *testing.T) {
	svc := NewNavigationService(store.NewMemoryStore(), nav.Config{})

	source := location.NewChannelSource(1)
	err := svc.StartNavigation(context.Background(), "missing", source)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, nav.StatusIdle, svc.Status())
}

func TestNavigationService_StopWithoutStart(t *testing.T) {
	svc := NewNavigationService(store.NewMemoryStore(), nav.Config{})
	svc.StopNavigation(logging.EnsureLogger(context.Background()))
	assert.Equal(t, nav.StatusIdle, svc.Status())
}

func TestNavigationService_SecondStartRejected(t *testing.T) {
	memStore := store.NewMemoryStore()
	seedRoute(t, memStore)
	svc := NewNavigationService(memStore, nav.Config{})

	first := location.NewChannelSource(1)
	ctx := logging.EnsureLogger(context.Background())
	require.NoError(t, svc.StartNavigation(ctx, "ride-1", first))

	second := location.NewChannelSource(1)
	assert.ErrorIs(t, svc.StartNavigation(ctx, "ride-1", second), nav.ErrAlreadyNavigating)

	svc.StopNavigation(ctx)
}
