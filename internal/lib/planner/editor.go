package planner

import (
	"fmt"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// defaultSnapThresholdMeters is how close a press must be to the route
// geometry to count as "on the route" for drag-to-modify.
const defaultSnapThresholdMeters = 50.0

// LocateOnRoute maps a pressed or dragged point back onto the route to
// decide where a new via waypoint belongs:
//
//  1. Project the press onto the full geometry polyline.
//  2. Project every waypoint onto the geometry and read its cumulative
//     distance from the route start.
//  3. The waypoint-to-waypoint segment is the largest i with
//     wpDist[i] <= pressDist <= wpDist[i+1]; insertion index is i+1.
//
// Presses farther than the snap threshold return ErrNotOnRoute and should
// be treated by the caller as unrelated to the route.
func (p *Planner) LocateOnRoute(press geo.Point) (SegmentMatch, error) {
	if p.state != StatePlanning {
		return SegmentMatch{}, ErrNotPlanning
	}
	if len(p.geometry.Points) < 2 {
		return SegmentMatch{}, ErrNoGeometry
	}
	if len(p.waypoints) < 2 {
		return SegmentMatch{}, ErrTooFewWaypoints
	}

	proj, err := p.geoUtils.NearestOnPolyline(press, p.geometry)
	if err != nil {
		return SegmentMatch{}, fmt.Errorf("failed to project press onto route: %w", err)
	}
	if proj.DistanceMeters > p.snapThreshold {
		return SegmentMatch{}, ErrNotOnRoute
	}

	cumulative := p.geoUtils.CumulativeDistances(p.geometry)
	pressDist := p.distanceAlongRoute(proj, cumulative)

	waypointDist := make([]float64, len(p.waypoints))
	for i, wp := range p.waypoints {
		wpProj, err := p.geoUtils.NearestOnPolyline(wp.Coordinate, p.geometry)
		if err != nil {
			return SegmentMatch{}, fmt.Errorf("failed to project waypoint %s onto route: %w", wp.ID, err)
		}
		waypointDist[i] = p.distanceAlongRoute(wpProj, cumulative)
	}

	segment := 0
	for i := len(waypointDist) - 2; i >= 0; i-- {
		if waypointDist[i] <= pressDist {
			segment = i
			break
		}
	}
	// Clamp presses that project past the last waypoint into the final segment
	if segment > len(waypointDist)-2 {
		segment = len(waypointDist) - 2
	}

	return SegmentMatch{
		SegmentIndex:          segment,
		InsertIndex:           segment + 1,
		DistanceToRouteMeters: proj.DistanceMeters,
		Snapped:               proj.Point,
	}, nil
}

// distanceAlongRoute converts a polyline projection into cumulative distance
// from the route start: distance to the segment start plus the stretch from
// the segment start to the snapped point.
func (p *Planner) distanceAlongRoute(proj geo.Projection, cumulative []float64) float64 {
	d, err := p.geoUtils.PointToPoint(p.geometry.Points[proj.SegmentIndex], proj.Point)
	if err != nil {
		d = 0
	}
	return cumulative[proj.SegmentIndex] + d
}
