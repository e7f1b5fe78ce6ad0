package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/openvelo/tournav/internal/services"
	"github.com/openvelo/tournav/internal/store"
)

// routesHandler exposes the saved-route catalog over JSON, plus KML export
type routesHandler struct {
	planning *services.PlanningService
}

func newRoutesHandler(planning *services.PlanningService) *routesHandler {
	return &routesHandler{planning: planning}
}

// ServeHTTP handles:
//
//	GET    /routes            - list saved routes
//	GET    /routes/{id}       - full route record
//	GET    /routes/{id}.kml   - KML export
//	DELETE /routes/{id}       - remove a saved route
func (h *routesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/routes")
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case rest != "" && r.Method == http.MethodGet:
		h.get(w, r, rest)
	case rest != "" && r.Method == http.MethodDelete:
		h.delete(w, r, rest)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *routesHandler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.planning.ListRoutes(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summaries)
}

func (h *routesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	asKML := strings.HasSuffix(id, ".kml")
	id = strings.TrimSuffix(id, ".kml")

	route, err := h.planning.GetRoute(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if asKML {
		w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
		if err := services.ExportKML(route, w); err != nil {
			log.Printf("KML export failed for route %s: %v", id, err)
		}
		return
	}

	writeJSON(w, route)
}

func (h *routesHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.planning.DeleteRoute(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}
