package geo

import (
	"errors"
	"math"

	"github.com/twpayne/go-polyline"
)

// Earth's radius in meters
const earthRadius = 6371000

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// PointToPoint calculates great-circle distance between two points using the
// Haversine formula. This is the sole distance primitive; everything else in
// the engine inherits its ~0.5% accuracy, which is fine at touring scale.
func (g *geoUtils) PointToPoint(p1, p2 Point) (float64, error) {
	if !isValidCoordinate(p1) || !isValidCoordinate(p2) {
		return 0, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}

	if p1.Latitude == p2.Latitude && p1.Longitude == p2.Longitude {
		return 0, nil
	}

	lat1 := p1.Latitude * math.Pi / 180
	lon1 := p1.Longitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	lon2 := p2.Longitude * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c, nil
}

// ProjectOntoSegment projects a point onto a line segment. The projection
// parameter t is clamped to [0,1] so the snapped point never lies outside the
// segment. A zero-length segment degenerates to point-to-point distance.
//
// The projection itself is done in a local planar frame (longitude scaled by
// cos of the segment's mean latitude); segments in route geometry are short
// enough that this is well inside the haversine error budget.
func (g *geoUtils) ProjectOntoSegment(p, segStart, segEnd Point) (float64, Point) {
	if segStart.Latitude == segEnd.Latitude && segStart.Longitude == segEnd.Longitude {
		d, _ := g.PointToPoint(p, segStart)
		return d, segStart
	}

	lonScale := math.Cos((segStart.Latitude + segEnd.Latitude) / 2 * math.Pi / 180)

	// Local planar coordinates relative to the segment start, in degrees
	ax := (segEnd.Longitude - segStart.Longitude) * lonScale
	ay := segEnd.Latitude - segStart.Latitude
	px := (p.Longitude - segStart.Longitude) * lonScale
	py := p.Latitude - segStart.Latitude

	t := (px*ax + py*ay) / (ax*ax + ay*ay)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := g.Interpolate(segStart, segEnd, t)
	d, _ := g.PointToPoint(p, closest)
	return d, closest
}

// NearestOnPolyline finds the closest point on a polyline via a linear scan
// over all segments. O(n), deliberately simple instead of a spatial index:
// route polylines are bounded to a few thousand points for a day's ride.
// Ties are broken by the earliest segment.
func (g *geoUtils) NearestOnPolyline(p Point, poly Polyline) (Projection, error) {
	if !isValidCoordinate(p) {
		return Projection{}, errors.New("invalid point coordinates")
	}
	if len(poly.Points) == 0 {
		return Projection{}, errors.New("polyline has no points")
	}

	if len(poly.Points) == 1 {
		d, err := g.PointToPoint(p, poly.Points[0])
		if err != nil {
			return Projection{}, err
		}
		return Projection{Point: poly.Points[0], SegmentIndex: 0, DistanceMeters: d}, nil
	}

	best := Projection{DistanceMeters: math.Inf(1)}
	for i := 0; i < len(poly.Points)-1; i++ {
		d, closest := g.ProjectOntoSegment(p, poly.Points[i], poly.Points[i+1])
		if d < best.DistanceMeters {
			best = Projection{Point: closest, SegmentIndex: i, DistanceMeters: d}
		}
	}

	return best, nil
}

// CumulativeDistances returns running distance-from-start for every polyline
// point. The first element is always 0. Invalid intermediate coordinates
// contribute zero-length segments rather than failing the whole table.
func (g *geoUtils) CumulativeDistances(poly Polyline) []float64 {
	if len(poly.Points) == 0 {
		return nil
	}

	distances := make([]float64, len(poly.Points))
	for i := 1; i < len(poly.Points); i++ {
		d, err := g.PointToPoint(poly.Points[i-1], poly.Points[i])
		if err != nil {
			d = 0
		}
		distances[i] = distances[i-1] + d
	}
	return distances
}

// PathLength returns the total length of a polyline in meters
func (g *geoUtils) PathLength(poly Polyline) float64 {
	cumulative := g.CumulativeDistances(poly)
	if len(cumulative) == 0 {
		return 0
	}
	return cumulative[len(cumulative)-1]
}

// Interpolate calculates a point along the line between two points.
// t=0 returns start, t=1 returns end. Linear interpolation is adequate for
// road-segment distances (typically well under 10km).
func (g *geoUtils) Interpolate(start, end Point, t float64) Point {
	return Point{
		Latitude:  start.Latitude + t*(end.Latitude-start.Latitude),
		Longitude: start.Longitude + t*(end.Longitude-start.Longitude),
	}
}

// DecodePolyline decodes Google polyline string to point sequence
func (g *geoUtils) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("failed to decode polyline: " + err.Error())
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{
			Latitude:  coord[0],
			Longitude: coord[1],
		}

		if !isValidCoordinate(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}

// EncodePolyline encodes a point sequence to a Google polyline string
func (g *geoUtils) EncodePolyline(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(latitude, longitude float64) (Point, error) {
	point := Point{Latitude: latitude, Longitude: longitude}
	if !isValidCoordinate(point) {
		return Point{}, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}
	return point, nil
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(point Point) bool {
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}
