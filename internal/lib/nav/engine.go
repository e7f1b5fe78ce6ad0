package nav

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/openvelo/tournav/internal/clients/location"
	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
)

var (
	// ErrRouteTooShort is returned when navigation is started on a route
	// with fewer than 2 geometry points
	ErrRouteTooShort = errors.New("route geometry requires at least 2 points")

	// ErrAlreadyNavigating is returned when Start is called on a session
	// that is not Idle
	ErrAlreadyNavigating = errors.New("navigation session already active")
)

const (
	defaultOffRouteThresholdMeters = 50.0
	defaultMinMovingSpeedMps       = 0.5
)

// Config tunes a Navigator. Zero values select the defaults.
type Config struct {
	// OffRouteThresholdMeters is the distance from the geometry past which
	// a fix counts as off-route (default 50)
	OffRouteThresholdMeters float64

	// SpeedWindowSize is the ring buffer length for speed smoothing
	// (default 5)
	SpeedWindowSize int

	// MinMovingSpeedMps is the raw speed below which the rider counts as
	// stopped and no ETA is reported (default 0.5)
	MinMovingSpeedMps float64

	// OnOffRoute fires once per on-route to off-route transition. Repeated
	// off-route fixes do not re-fire.
	OnOffRoute func(Snapshot)

	// OnUpdate fires after every applied fix with the fresh snapshot
	OnUpdate func(Snapshot)
}

// Navigator owns a live navigation session. Exactly one session exists per
// Navigator: Start creates it, Stop resets it to Idle defaults. Location
// fixes are handled one at a time (single-writer); readers take immutable
// snapshots.
type Navigator struct {
	cfg      Config
	geoUtils geo.GeoUtils

	mu         sync.RWMutex
	status     Status
	route      planner.Route
	cumulative []float64
	total      float64
	speeds     *speedWindow
	lastFixAt  time.Time
	snapshot   Snapshot
}

// NewNavigator creates an idle navigator
func NewNavigator(cfg Config) *Navigator {
	if cfg.OffRouteThresholdMeters <= 0 {
		cfg.OffRouteThresholdMeters = defaultOffRouteThresholdMeters
	}
	if cfg.MinMovingSpeedMps <= 0 {
		cfg.MinMovingSpeedMps = defaultMinMovingSpeedMps
	}
	return &Navigator{
		cfg:      cfg,
		geoUtils: geo.NewGeoUtils(),
		status:   StatusIdle,
		speeds:   newSpeedWindow(cfg.SpeedWindowSize),
		snapshot: Snapshot{Status: StatusIdle},
	}
}

// Start begins navigating the given route. The cumulative-distance table is
// precomputed once here and reused for every subsequent progress
// calculation, so each GPS tick costs O(n) for the nearest-point scan and
// O(1) for everything else.
func (n *Navigator) Start(route planner.Route) error {
	if len(route.Geometry.Points) < 2 {
		return ErrRouteTooShort
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.status != StatusIdle {
		return ErrAlreadyNavigating
	}

	n.route = route
	n.cumulative = n.geoUtils.CumulativeDistances(route.Geometry)
	n.total = n.cumulative[len(n.cumulative)-1]
	n.speeds.reset()
	n.lastFixAt = time.Time{}
	n.status = StatusActive
	n.snapshot = Snapshot{
		RouteID:                 route.ID,
		RouteName:               route.Name,
		Status:                  StatusActive,
		TotalDistanceMeters:     n.total,
		DistanceRemainingMeters: n.total,
	}

	return nil
}

// Pause suspends progress updates without losing accumulated progress. The
// location stream keeps running; fixes arriving while paused are dropped,
// not queued, so Resume has fresh data immediately.
func (n *Navigator) Pause() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.status != StatusActive {
		return
	}
	n.status = StatusPaused
	n.snapshot.Status = StatusPaused
}

// Resume reactivates a paused session
func (n *Navigator) Resume() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.status != StatusPaused {
		return
	}
	n.status = StatusActive
	n.snapshot.Status = StatusActive
}

// Stop discards the cumulative-distance table and resets the session to its
// Idle defaults. Releasing the location subscription is the caller's job
// and must happen unconditionally alongside this.
func (n *Navigator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.status = StatusIdle
	n.route = planner.Route{}
	n.cumulative = nil
	n.total = 0
	n.speeds.reset()
	n.lastFixAt = time.Time{}
	n.snapshot = Snapshot{Status: StatusIdle}
}

// Status returns the session lifecycle state
func (n *Navigator) Status() Status {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.status
}

// Snapshot returns the latest published session view
func (n *Navigator) Snapshot() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.snapshot
}

// HandleFix applies one location update to the session. Fixes are dropped
// while Idle or Paused. Repeated fixes carrying the same timestamp are
// applied once.
func (n *Navigator) HandleFix(fix location.Fix) {
	snapshot, offRouteEdge, applied := n.applyFix(fix)
	if !applied {
		return
	}

	// Callbacks run outside the session lock
	if offRouteEdge && n.cfg.OnOffRoute != nil {
		n.cfg.OnOffRoute(snapshot)
	}
	if n.cfg.OnUpdate != nil {
		n.cfg.OnUpdate(snapshot)
	}
}

// Run consumes a location stream until the context is cancelled or the
// stream ends. Each fix is handled to completion before the next one is
// read; there is no overlap of updates.
func (n *Navigator) Run(ctx context.Context, fixes <-chan location.Fix) {
	for {
		select {
		case <-ctx.Done():
			return
		case fix, ok := <-fixes:
			if !ok {
				return
			}
			n.HandleFix(fix)
		}
	}
}

func (n *Navigator) applyFix(fix location.Fix) (snapshot Snapshot, offRouteEdge bool, applied bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.status != StatusActive {
		return Snapshot{}, false, false
	}
	if !fix.Timestamp.IsZero() && fix.Timestamp.Equal(n.lastFixAt) {
		return Snapshot{}, false, false
	}

	proj, err := n.geoUtils.NearestOnPolyline(fix.Point(), n.route.Geometry)
	if err != nil {
		// Malformed fix; keep the last good session state
		return Snapshot{}, false, false
	}

	segStartToProj, err := n.geoUtils.PointToPoint(n.route.Geometry.Points[proj.SegmentIndex], proj.Point)
	if err != nil {
		segStartToProj = 0
	}
	traveled := n.cumulative[proj.SegmentIndex] + segStartToProj
	remaining := n.total - traveled
	if remaining < 0 {
		remaining = 0
	}
	percent := 0.0
	if n.total > 0 {
		percent = traveled / n.total * 100
		if percent > 100 {
			percent = 100
		}
	}

	rawSpeed := 0.0
	if fix.SpeedMps != nil && *fix.SpeedMps > 0 {
		rawSpeed = *fix.SpeedMps
	}
	n.speeds.add(rawSpeed)
	smoothed := n.speeds.weightedAverage()

	wasOffRoute := n.snapshot.IsOffRoute
	offRoute := proj.DistanceMeters > n.cfg.OffRouteThresholdMeters

	etaKnown := rawSpeed > n.cfg.MinMovingSpeedMps
	etaSeconds := 0.0
	if etaKnown {
		etaSeconds = remaining / rawSpeed
	}

	if fix.Timestamp.IsZero() {
		n.lastFixAt = time.Now()
	} else {
		n.lastFixAt = fix.Timestamp
	}

	current := fix.Point()
	n.snapshot = Snapshot{
		RouteID:                 n.route.ID,
		RouteName:               n.route.Name,
		Status:                  n.status,
		CurrentLocation:         &current,
		NearestIndex:            proj.SegmentIndex,
		RawSpeedMps:             rawSpeed,
		SmoothedSpeedMps:        smoothed,
		DistanceFromRouteMeters: proj.DistanceMeters,
		IsOffRoute:              offRoute,
		TotalDistanceMeters:     n.total,
		DistanceTraveledMeters:  traveled,
		DistanceRemainingMeters: remaining,
		ProgressPercent:         percent,
		ETAKnown:                etaKnown,
		ETASeconds:              etaSeconds,
		LastFixAt:               n.lastFixAt,
		UpdatedAt:               time.Now(),
	}

	return n.snapshot, offRoute && !wasOffRoute, true
}
