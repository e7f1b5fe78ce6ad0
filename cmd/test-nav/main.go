package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openvelo/tournav/internal/clients/location"
	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/nav"
	"github.com/openvelo/tournav/internal/lib/planner"
)

func main() {
	fs := flag.NewFlagSet("test-nav", flag.ExitOnError)
	pointsStr := fs.String("points", "0,0;0,0.005;0,0.01", "Route geometry as 'lat,lng;lat,lng;...'")
	speed := fs.Float64("speed", 6, "Simulated speed in m/s")
	steps := fs.Int("steps", 10, "Number of fixes to simulate")
	offRouteAt := fs.Int("off-route-at", -1, "Step index to wander off route, -1 to stay on")

	fs.Parse(os.Args[1:])

	points, err := parsePoints(*pointsStr)
	if err != nil {
		log.Fatalf("Error parsing points: %v", err)
	}

	navigator := nav.NewNavigator(nav.Config{
		OnOffRoute: func(s nav.Snapshot) {
			fmt.Printf("  !! off route alert at %.0fm\n", s.DistanceFromRouteMeters)
		},
	})

	route := planner.Route{
		ID:       "test-ride",
		Name:     "Simulated ride",
		Geometry: geo.Polyline{Points: points},
	}
	if err := navigator.Start(route); err != nil {
		log.Fatalf("Error starting navigation: %v", err)
	}

	total := navigator.Snapshot().TotalDistanceMeters
	fmt.Printf("Navigating %q: %.0f meters, %d fixes at %.1f m/s\n\n",
		route.Name, total, *steps, *speed)

	// Walk evenly spaced positions along the route
	geoUtils := geo.NewGeoUtils()
	for i := 0; i < *steps; i++ {
		t := float64(i+1) / float64(*steps)
		pos := positionAlong(geoUtils, points, total*t)
		if i == *offRouteAt {
			pos.Latitude += 0.001
		}

		navigator.HandleFix(location.Fix{
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
			SpeedMps:  speed,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		})

		vm := nav.BuildViewModel(navigator.Snapshot())
		fmt.Printf("Fix %2d: %5.1f%%  speed=%s  remaining=%s  eta=%s  offRoute=%v\n",
			i+1, vm.ProgressPercent, vm.SpeedText, vm.DistanceRemainingText, vm.ETAText, vm.OffRoute)
	}
}

// positionAlong returns the point the given distance along the polyline
func positionAlong(geoUtils geo.GeoUtils, points []geo.Point, distance float64) geo.Point {
	for i := 0; i < len(points)-1; i++ {
		length, err := geoUtils.PointToPoint(points[i], points[i+1])
		if err != nil || length <= 0 {
			continue
		}
		if distance <= length {
			return geoUtils.Interpolate(points[i], points[i+1], distance/length)
		}
		distance -= length
	}
	return points[len(points)-1]
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
