package geo

// Point represents a geographic coordinate in WGS84 degrees
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Polyline represents a route geometry with optional encoded form
type Polyline struct {
	EncodedPolyline string  `json:"encoded_polyline,omitempty"`
	Points          []Point `json:"points"`
}

// Projection describes the closest point on a polyline to some query point
type Projection struct {
	// Point is the snapped position on the polyline
	Point Point `json:"point"`
	// SegmentIndex is the index of the segment start point that precedes
	// the snapped position
	SegmentIndex int `json:"segment_index"`
	// DistanceMeters is the distance from the query point to Point
	DistanceMeters float64 `json:"distance_meters"`
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Calculate great-circle distance between two points in meters
	PointToPoint(p1, p2 Point) (float64, error)

	// Project a point onto a single segment, clamped to the segment bounds
	ProjectOntoSegment(p, segStart, segEnd Point) (float64, Point)

	// Find closest segment and snapped point on a polyline
	NearestOnPolyline(p Point, polyline Polyline) (Projection, error)

	// Prefix sums of segment lengths, one entry per polyline point
	CumulativeDistances(polyline Polyline) []float64

	// Total length of a polyline in meters
	PathLength(polyline Polyline) float64

	// Linear interpolation between two points (t in [0,1])
	Interpolate(start, end Point, t float64) Point

	// Decode Google polyline string to point sequence
	DecodePolyline(encoded string) ([]Point, error)

	// Encode point sequence to Google polyline string
	EncodePolyline(points []Point) string
}

// NewGeoUtils is implemented in geo.go
