package services

import (
	"context"
	"time"

	"github.com/dpup/prefab/logging"

	"github.com/openvelo/tournav/internal/cache"
	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
)

// cachingRouter caches routing results keyed by the encoded waypoint
// sequence. Undoing and redoing edits replays recent waypoint sets, so
// short-lived caching saves a routing round trip per replayed edit.
type cachingRouter struct {
	inner    planner.Router
	cache    *cache.Cache
	ttl      time.Duration
	geoUtils geo.GeoUtils
}

// NewCachingRouter wraps a router with a TTL cache
func NewCachingRouter(inner planner.Router, routeCache *cache.Cache, ttl time.Duration) planner.Router {
	return &cachingRouter{
		inner:    inner,
		cache:    routeCache,
		ttl:      ttl,
		geoUtils: geo.NewGeoUtils(),
	}
}

func (r *cachingRouter) Route(ctx context.Context, points []geo.Point) (*planner.RouteResult, error) {
	key := "route:" + r.geoUtils.EncodePolyline(points)

	var cached planner.RouteResult
	found, err := r.cache.Get(key, &cached)
	if err != nil {
		logging.Errorw(ctx, "Route cache read failed", "error", err)
	} else if found {
		return &cached, nil
	}

	result, err := r.inner.Route(ctx, points)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(key, result, r.ttl); err != nil {
		logging.Errorw(ctx, "Route cache write failed", "error", err)
	}
	return result, nil
}
