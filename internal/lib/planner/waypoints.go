package planner

// assignRoles re-derives Kind and Order for an ordered waypoint list:
// first is Start, last is End, everything between is Via, Order is dense
// 0..n-1. A single waypoint is a Start. Mutates the slice in place.
func assignRoles(waypoints []Waypoint) {
	for i := range waypoints {
		waypoints[i].Order = i
		switch {
		case i == 0:
			waypoints[i].Kind = KindStart
		case i == len(waypoints)-1:
			waypoints[i].Kind = KindEnd
		default:
			waypoints[i].Kind = KindVia
		}
	}
}

// cloneWaypoints returns a deep copy of a waypoint list. Waypoints hold only
// value types, so copying the slice is enough to break aliasing.
func cloneWaypoints(waypoints []Waypoint) []Waypoint {
	if waypoints == nil {
		return nil
	}
	out := make([]Waypoint, len(waypoints))
	copy(out, waypoints)
	return out
}
