package planner

import "errors"

var (
	// ErrNotPlanning is returned when a mutation arrives outside a session
	ErrNotPlanning = errors.New("no active planning session")

	// ErrWaypointNotFound is returned for operations on an unknown id.
	// Recoverable: the list is left untouched.
	ErrWaypointNotFound = errors.New("waypoint not found")

	// ErrTooFewWaypoints is returned when route calculation needs at least
	// two waypoints
	ErrTooFewWaypoints = errors.New("route requires at least 2 waypoints")

	// ErrNoGeometry is returned when an operation needs computed geometry
	ErrNoGeometry = errors.New("route has no geometry")

	// ErrNotOnRoute is returned when a pressed point is farther from the
	// geometry than the snap threshold
	ErrNotOnRoute = errors.New("point is not on the route")
)
