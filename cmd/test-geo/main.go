package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/openvelo/tournav/internal/lib/geo"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	geoUtils := geo.NewGeoUtils()

	switch command {
	case "point-distance":
		handlePointDistance(geoUtils)
	case "nearest":
		handleNearest(geoUtils)
	case "decode-polyline":
		handleDecodePolyline(geoUtils)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handlePointDistance(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("point-distance", flag.ExitOnError)
	lat1 := fs.Float64("lat1", 0, "Latitude of first point")
	lng1 := fs.Float64("lng1", 0, "Longitude of first point")
	lat2 := fs.Float64("lat2", 0, "Latitude of second point")
	lng2 := fs.Float64("lng2", 0, "Longitude of second point")

	fs.Parse(os.Args[2:])

	if *lat1 == 0 && *lng1 == 0 && *lat2 == 0 && *lng2 == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo point-distance --lat1 38.0675 --lng1 -120.5436 --lat2 38.1391 --lng2 -120.4561")
		fmt.Println("  (Distance between Angels Camp and Murphys)")
		os.Exit(1)
	}

	p1 := geo.Point{Latitude: *lat1, Longitude: *lng1}
	p2 := geo.Point{Latitude: *lat2, Longitude: *lng2}

	distance, err := geoUtils.PointToPoint(p1, p2)
	if err != nil {
		log.Fatalf("Error calculating distance: %v", err)
	}

	fmt.Printf("Distance between points:\n")
	fmt.Printf("  Point 1: (%.6f, %.6f)\n", p1.Latitude, p1.Longitude)
	fmt.Printf("  Point 2: (%.6f, %.6f)\n", p2.Latitude, p2.Longitude)
	fmt.Printf("  Distance: %.2f meters (%.2f km)\n", distance, distance/1000)
}

func handleNearest(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("nearest", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude of query point")
	lng := fs.Float64("lng", 0, "Longitude of query point")
	pointsStr := fs.String("points", "", "Polyline points as 'lat,lng;lat,lng;...'")

	fs.Parse(os.Args[2:])

	if *pointsStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo nearest --lat 38.1 --lng -120.5 --points '38.0675,-120.5436;38.1391,-120.4561'")
		os.Exit(1)
	}

	points, err := parsePoints(*pointsStr)
	if err != nil {
		log.Fatalf("Error parsing points: %v", err)
	}

	projection, err := geoUtils.NearestOnPolyline(
		geo.Point{Latitude: *lat, Longitude: *lng},
		geo.Polyline{Points: points})
	if err != nil {
		log.Fatalf("Error projecting point: %v", err)
	}

	fmt.Printf("Nearest point on polyline:\n")
	fmt.Printf("  Snapped:  (%.6f, %.6f)\n", projection.Point.Latitude, projection.Point.Longitude)
	fmt.Printf("  Segment:  %d\n", projection.SegmentIndex)
	fmt.Printf("  Distance: %.2f meters\n", projection.DistanceMeters)
}

func handleDecodePolyline(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("decode-polyline", flag.ExitOnError)
	encoded := fs.String("polyline", "", "Encoded polyline string")

	fs.Parse(os.Args[2:])

	if *encoded == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo decode-polyline --polyline '_p~iF~ps|U_ulLnnqC'")
		os.Exit(1)
	}

	points, err := geoUtils.DecodePolyline(*encoded)
	if err != nil {
		log.Fatalf("Error decoding polyline: %v", err)
	}

	fmt.Printf("Decoded %d points:\n", len(points))
	for i, p := range points {
		fmt.Printf("  %3d: (%.6f, %.6f)\n", i, p.Latitude, p.Longitude)
	}
	fmt.Printf("Total length: %.2f meters\n", geoUtils.PathLength(geo.Polyline{Points: points}))
}

// parsePoints parses 'lat,lng;lat,lng;...' into a point slice
func parsePoints(s string) ([]geo.Point, error) {
	var points []geo.Point
	for _, pair := range strings.Split(s, ";") {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid point %q, want 'lat,lng'", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", pair, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", pair, err)
		}
		points = append(points, geo.Point{Latitude: lat, Longitude: lng})
	}
	return points, nil
}

func printUsage() {
	fmt.Println("Usage: test-geo <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  point-distance   - Distance between two coordinates")
	fmt.Println("  nearest          - Project a point onto a polyline")
	fmt.Println("  decode-polyline  - Decode an encoded polyline")
	fmt.Println("  help             - Show this help")
}
