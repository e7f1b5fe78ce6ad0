package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openvelo/tournav/internal/clients/location"
	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
)

func main() {
	configPath := flag.String("config", "ridesim.yaml", "Path to simulator config")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Ride.RouteID == "" {
		log.Fatal("ride.route_id is required in configuration")
	}

	route, err := fetchRoute(cfg.Server.BaseURL, cfg.Ride.RouteID)
	if err != nil {
		log.Fatalf("Failed to fetch route: %v", err)
	}
	if len(route.Geometry.Points) < 2 {
		log.Fatalf("Route %s has no geometry to ride", route.ID)
	}

	log.Printf("Simulating ride along %q (%.1f km) at %.1f m/s",
		route.Name, route.DistanceMeters/1000, cfg.Ride.SpeedMps)

	conn, err := dialIngest(cfg.Server.BaseURL, cfg.Ride.RouteID)
	if err != nil {
		log.Fatalf("Failed to connect to ingest endpoint: %v", err)
	}
	defer conn.Close()

	ride(conn, route)
	log.Printf("Ride complete")
}

// fetchRoute loads the saved route record from the navigation server
func fetchRoute(baseURL, routeID string) (*planner.Route, error) {
	url := fmt.Sprintf("%s/routes/%s", strings.TrimSuffix(baseURL, "/"), routeID)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d for %s", resp.StatusCode, url)
	}

	var route planner.Route
	if err := json.NewDecoder(resp.Body).Decode(&route); err != nil {
		return nil, fmt.Errorf("failed to decode route: %w", err)
	}
	return &route, nil
}

// dialIngest opens the websocket fix stream for the given route
func dialIngest(baseURL, routeID string) (*websocket.Conn, error) {
	wsURL := strings.Replace(strings.TrimSuffix(baseURL, "/"), "http", "ws", 1)
	wsURL = fmt.Sprintf("%s/ingest?route_id=%s", wsURL, routeID)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	return conn, err
}

// ride walks the route geometry at the configured speed, sending one fix per
// tick. The config is re-read every tick so speed and wander changes take
// effect mid-ride.
func ride(conn *websocket.Conn, route *planner.Route) {
	geoUtils := geo.NewGeoUtils()
	points := route.Geometry.Points

	segment := 0
	progress := 0.0 // meters into the current segment

	interval := time.Duration(GetConfig().Ride.FrequencySeconds * float64(time.Second))
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cfg := GetConfig().Ride
		speed := cfg.SpeedMps

		progress += speed * interval.Seconds()
		for segment < len(points)-1 {
			length, err := geoUtils.PointToPoint(points[segment], points[segment+1])
			if err != nil || length <= 0 {
				segment++
				continue
			}
			if progress < length {
				break
			}
			progress -= length
			segment++
		}
		if segment >= len(points)-1 {
			sendFix(conn, points[len(points)-1], 0)
			return
		}

		length, _ := geoUtils.PointToPoint(points[segment], points[segment+1])
		pos := geoUtils.Interpolate(points[segment], points[segment+1], progress/length)

		// Wander pushes the rider sideways off the line
		if cfg.WanderMeters != 0 {
			pos.Latitude += cfg.WanderMeters / 111320.0
		}

		sendFix(conn, pos, speed)
	}
}

func sendFix(conn *websocket.Conn, pos geo.Point, speed float64) {
	fix := location.Fix{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		SpeedMps:  &speed,
		Timestamp: time.Now(),
	}
	if err := conn.WriteJSON(fix); err != nil {
		log.Fatalf("Failed to send fix: %v", err)
	}
}
