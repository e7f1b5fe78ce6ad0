package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "freeform":
		handleFreeform()
	case "locate":
		handleLocate()
	case "undo-demo":
		handleUndoDemo()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// handleFreeform builds a freeform route through the given points and prints
// the resulting session state
func handleFreeform() {
	fs := flag.NewFlagSet("freeform", flag.ExitOnError)
	pointsStr := fs.String("points", "", "Waypoints as 'lat,lng;lat,lng;...'")

	fs.Parse(os.Args[2:])

	if *pointsStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-planner freeform --points '38.0675,-120.5436;38.1391,-120.4561'")
		os.Exit(1)
	}

	points, err := parsePoints(*pointsStr)
	if err != nil {
		log.Fatalf("Error parsing points: %v", err)
	}

	p := planner.NewPlanner(nil)
	p.StartPlanning(planner.ModeFreeform)
	for i, pt := range points {
		if _, err := p.AddWaypoint(pt, fmt.Sprintf("wp-%d", i+1)); err != nil {
			log.Fatalf("Error adding waypoint: %v", err)
		}
	}
	if err := p.CalculateRoute(context.Background()); err != nil {
		log.Fatalf("Error calculating route: %v", err)
	}

	printSession(p)
}

// handleLocate presses a point against a freeform route and reports where a
// dragged waypoint would be inserted
func handleLocate() {
	fs := flag.NewFlagSet("locate", flag.ExitOnError)
	pointsStr := fs.String("points", "", "Waypoints as 'lat,lng;lat,lng;...'")
	lat := fs.Float64("lat", 0, "Latitude of press")
	lng := fs.Float64("lng", 0, "Longitude of press")
	threshold := fs.Float64("threshold", 0, "Snap threshold in meters (0 keeps the default)")

	fs.Parse(os.Args[2:])

	if *pointsStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-planner locate --points '0,0;0,0.002' --lat 0 --lng 0.001")
		os.Exit(1)
	}

	points, err := parsePoints(*pointsStr)
	if err != nil {
		log.Fatalf("Error parsing points: %v", err)
	}

	p := planner.NewPlanner(nil)
	if *threshold > 0 {
		p.SetSnapThreshold(*threshold)
	}
	p.StartPlanning(planner.ModeFreeform)
	for _, pt := range points {
		if _, err := p.AddWaypoint(pt, ""); err != nil {
			log.Fatalf("Error adding waypoint: %v", err)
		}
	}
	if err := p.CalculateRoute(context.Background()); err != nil {
		log.Fatalf("Error calculating route: %v", err)
	}

	match, err := p.LocateOnRoute(geo.Point{Latitude: *lat, Longitude: *lng})
	if err != nil {
		log.Fatalf("Press did not land on the route: %v", err)
	}

	fmt.Printf("Press landed on the route:\n")
	fmt.Printf("  Segment:      %d\n", match.SegmentIndex)
	fmt.Printf("  Insert index: %d\n", match.InsertIndex)
	fmt.Printf("  Snapped:      (%.6f, %.6f)\n", match.Snapped.Latitude, match.Snapped.Longitude)
	fmt.Printf("  Distance:     %.2f meters\n", match.DistanceToRouteMeters)
}

// handleUndoDemo walks through an add/undo/redo sequence to show history
// behavior
func handleUndoDemo() {
	p := planner.NewPlanner(nil)
	p.StartPlanning(planner.ModeFreeform)

	coords := []geo.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.001},
		{Latitude: 0, Longitude: 0.002},
	}
	for i, pt := range coords {
		p.AddWaypoint(pt, fmt.Sprintf("wp-%d", i+1))
		fmt.Printf("After add %d: %d waypoints, canUndo=%v\n", i+1, len(p.Waypoints()), p.CanUndo())
	}

	for p.Undo() {
		fmt.Printf("After undo:  %d waypoints, canRedo=%v\n", len(p.Waypoints()), p.CanRedo())
	}
	for p.Redo() {
		fmt.Printf("After redo:  %d waypoints, canUndo=%v\n", len(p.Waypoints()), p.CanUndo())
	}
}

func printSession(p *planner.Planner) {
	fmt.Printf("Planning session (%s, %s):\n", p.State(), p.Mode())
	for _, wp := range p.Waypoints() {
		fmt.Printf("  %d. [%s] %s (%.6f, %.6f)\n",
			wp.Order+1, wp.Kind, wp.Name, wp.Coordinate.Latitude, wp.Coordinate.Longitude)
	}
	fmt.Printf("  Distance: %.2f meters over %d geometry points\n",
		p.DistanceMeters(), len(p.Geometry().Points))
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
	fmt.Println("Usage: test-planner <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  freeform   - Build a freeform route and print the session")
	fmt.Println("  locate     - Press a point against a route (drag-to-modify)")
	fmt.Println("  undo-demo  - Walk an add/undo/redo sequence")
	fmt.Println("  help       - Show this help")
}
