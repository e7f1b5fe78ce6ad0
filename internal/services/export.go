package services

import (
	"fmt"
	"io"

	"github.com/twpayne/go-kml/v2"

	"github.com/openvelo/tournav/internal/lib/planner"
)

// ExportKML writes a saved route as a KML document: one LineString placemark
// for the geometry plus a Point placemark per waypoint. The output opens
// directly in common map viewers.
func ExportKML(route *planner.Route, w io.Writer) error {
	if len(route.Geometry.Points) < 2 {
		return fmt.Errorf("route %s has no geometry to export", route.ID)
	}

	// KML coordinates are lon,lat order
	coords := make([]kml.Coordinate, len(route.Geometry.Points))
	for i, p := range route.Geometry.Points {
		coords[i] = kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
	}

	children := []kml.Element{
		kml.Name(route.Name),
		kml.Description(route.Description),
		kml.Placemark(
			kml.Name(route.Name),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coords...),
			),
		),
	}

	for _, wp := range route.Waypoints {
		name := wp.Name
		if name == "" {
			name = string(wp.Kind)
		}
		children = append(children, kml.Placemark(
			kml.Name(name),
			kml.Point(
				kml.Coordinates(kml.Coordinate{
					Lon: wp.Coordinate.Longitude,
					Lat: wp.Coordinate.Latitude,
				}),
			),
		))
	}

	doc := kml.KML(kml.Document(children...))
	if err := doc.WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write KML for route %s: %w", route.ID, err)
	}
	return nil
}
