package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/dpup/prefab"

	"github.com/openvelo/tournav/internal/cache"
	"github.com/openvelo/tournav/internal/clients/location"
	"github.com/openvelo/tournav/internal/clients/routing"
	"github.com/openvelo/tournav/internal/config"
	"github.com/openvelo/tournav/internal/lib/nav"
	"github.com/openvelo/tournav/internal/services"
	"github.com/openvelo/tournav/internal/store"
)

func main() {
	appConfig := loadConfig()

	routeStore := openStore(appConfig)

	routeCache := cache.NewCache()
	routeCache.StartPeriodicCleanup(context.Background(), 10*time.Minute)

	routingClient := routing.NewClient(appConfig.Routing.BaseURL, appConfig.Routing.Profile)
	router := services.NewCachingRouter(services.NewRouterAdapter(routingClient), routeCache, 5*time.Minute)
	planningService := services.NewPlanningService(router, routeStore)
	if appConfig.Planner.SnapThresholdMeters > 0 {
		planningService.SetSnapThreshold(appConfig.Planner.SnapThresholdMeters)
	}
	if appConfig.Planner.HistoryLimit > 0 {
		planningService.SetHistoryLimit(appConfig.Planner.HistoryLimit)
	}

	// Snapshot feed for connected clients
	feed := newFeedHub()

	navService := services.NewNavigationService(routeStore, nav.Config{
		OffRouteThresholdMeters: appConfig.Nav.OffRouteThresholdMeters,
		SpeedWindowSize:         appConfig.Nav.SpeedWindowSize,
		MinMovingSpeedMps:       appConfig.Nav.MinMovingSpeedMps,
		OnUpdate: func(s nav.Snapshot) {
			feed.Broadcast(nav.BuildViewModel(s))
		},
		OnOffRoute: func(s nav.Snapshot) {
			log.Printf("Off route: %.0fm from route geometry", s.DistanceFromRouteMeters)
		},
	})

	ingest := newIngestHandler(navService)
	routes := newRoutesHandler(planningService)

	log.Printf("Touring navigation server starting")
	log.Printf("Routing service: %s (%s)", appConfig.Routing.BaseURL, appConfig.Routing.Profile)

	server := prefab.New(
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
		prefab.WithHTTPHandlerFunc("/routes", routes.ServeHTTP),
		prefab.WithHTTPHandlerFunc("/routes/", routes.ServeHTTP),
		prefab.WithHTTPHandlerFunc("/live", feed.ServeHTTP),
		prefab.WithHTTPHandlerFunc("/ingest", ingest.ServeHTTP),
	)

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig loads configuration using Prefab's config system. Sections are
// read from prefab.yaml and environment variables with PF__ prefix; missing
// sections keep their defaults.
func loadConfig() *config.Config {
	appConfig := config.DefaultConfig()

	if err := prefab.Config.Unmarshal("routing", &appConfig.Routing); err != nil {
		log.Fatalf("Failed to unmarshal routing section: %v", err)
	}
	if err := prefab.Config.Unmarshal("planner", &appConfig.Planner); err != nil {
		log.Fatalf("Failed to unmarshal planner section: %v", err)
	}
	if err := prefab.Config.Unmarshal("nav", &appConfig.Nav); err != nil {
		log.Fatalf("Failed to unmarshal nav section: %v", err)
	}
	if err := prefab.Config.Unmarshal("database", &appConfig.Database); err != nil {
		log.Fatalf("Failed to unmarshal database section: %v", err)
	}

	return appConfig
}

// openStore connects to Postgres when a DSN is configured, otherwise falls
// back to the in-memory store
func openStore(appConfig *config.Config) store.Store {
	if appConfig.Database.DSN == "" {
		log.Printf("No database configured, using in-memory route store")
		return store.NewMemoryStore()
	}

	pgStore, err := store.NewPostgresStore(context.Background(), appConfig.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open route store: %v", err)
	}
	log.Printf("Connected to Postgres route store")
	return pgStore
}

// homepageHandler serves a simple HTML homepage at the server root
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	// Only handle the root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>tournav</title>
    <style>
        body {
            font-family: 'Courier New', Consolas, monospace;
            background: #000;
            color: #0f0;
            padding: 20px;
            line-height: 1.4;
        }
        a { color: #0ff; text-decoration: none; }
        a:hover { text-decoration: underline; }
        pre { margin: 0; }
        .header { color: #ff0; }
    </style>
</head>
<body>
<pre>
<span class="header">tournav</span>

Route planning and turn-free navigation backend for touring cyclists.

<span class="header">Route Catalog:</span>

  <a href="/routes">GET /routes</a>             - List saved routes
  GET /routes/{id}        - Full route record
  GET /routes/{id}.kml    - KML export
  DELETE /routes/{id}     - Remove a saved route

<span class="header">Websocket Endpoints:</span>

  /ingest?route_id={id}   - Push GPS fixes as JSON, starts navigation
  /live                   - Live navigation snapshots for dashboards

<span class="header">Fix Format:</span>
  {"lat": 38.0675, "lng": -120.5436, "speed": 5.2, "timestamp": "2026-01-01T10:00:00Z"}
</pre>
</body>
</html>`

	if _, err := fmt.Fprint(w, html); err != nil {
		slog.Error("Failed to write homepage HTML", "error", err)
	}
}

// ingestHandler upgrades websocket connections carrying GPS fixes and feeds
// them into a navigation session
type ingestHandler struct {
	navService *services.NavigationService
}

func newIngestHandler(navService *services.NavigationService) *ingestHandler {
	return &ingestHandler{navService: navService}
}

func (h *ingestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	routeID := r.URL.Query().Get("route_id")
	if routeID == "" {
		http.Error(w, "route_id query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Ingest upgrade failed: %v", err)
		return
	}

	source := location.NewChannelSource(32)
	if err := h.navService.StartNavigation(r.Context(), routeID, source); err != nil {
		log.Printf("Failed to start navigation for route %s: %v", routeID, err)
		conn.WriteJSON(map[string]string{"error": err.Error()})
		conn.Close()
		source.Close()
		return
	}
	defer h.navService.StopNavigation(context.Background())
	defer conn.Close()

	for {
		var fix location.Fix
		if err := conn.ReadJSON(&fix); err != nil {
			log.Printf("Ingest stream ended for route %s: %v", routeID, err)
			return
		}
		source.Push(fix)
	}
}
