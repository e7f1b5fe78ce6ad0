package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// HTTPDoer abstracts the HTTP client for testability
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to an OSRM-compatible routing service
type Client struct {
	baseURL    string
	profile    string
	httpClient HTTPDoer
}

// RouteData represents the processed route information from the routing
// service
type RouteData struct {
	Points          []geo.Point
	DistanceMeters  float64
	DurationSeconds float64
	Instructions    []Instruction
}

// Instruction is one turn hint from the routing response. Optional: the
// service may omit steps entirely.
type Instruction struct {
	Name            string
	DistanceMeters  float64
	DurationSeconds float64
}

// NewClient creates a routing client for the given service base URL and
// travel profile (e.g. "cycling")
func NewClient(baseURL, profile string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		profile: profile,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithHTTPDoer creates a client with a custom HTTP implementation
func NewClientWithHTTPDoer(baseURL, profile string, doer HTTPDoer) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		profile:    profile,
		httpClient: doer,
	}
}

// Route computes road-following geometry through the ordered waypoint
// coordinates. Failures are recoverable: the caller keeps its previous
// geometry and may retry.
func (c *Client) Route(ctx context.Context, points []geo.Point) (*RouteData, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("route request requires at least 2 coordinates, got %d", len(points))
	}

	// OSRM wants lon,lat pairs separated by semicolons
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = fmt.Sprintf("%.6f,%.6f", p.Longitude, p.Latitude)
	}

	requestURL := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=polyline&steps=true",
		c.baseURL, c.profile, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		return nil, fmt.Errorf("routing service rate limit exceeded")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("routing service error %d: %s", resp.StatusCode, string(body))
	}

	var response osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Code != "Ok" {
		return nil, fmt.Errorf("routing service returned code %q: %s", response.Code, response.Message)
	}
	if len(response.Routes) == 0 {
		return nil, fmt.Errorf("no routes found in response")
	}

	return c.processRouteResponse(response.Routes[0])
}

// processRouteResponse converts the OSRM response to our RouteData format
func (c *Client) processRouteResponse(route osrmRoute) (*RouteData, error) {
	decoded, err := geo.NewGeoUtils().DecodePolyline(route.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to decode route geometry: %w", err)
	}

	var instructions []Instruction
	for _, leg := range route.Legs {
		for _, step := range leg.Steps {
			instructions = append(instructions, Instruction{
				Name:            step.Name,
				DistanceMeters:  step.Distance,
				DurationSeconds: step.Duration,
			})
		}
	}

	return &RouteData{
		Points:          decoded,
		DistanceMeters:  route.Distance,
		DurationSeconds: route.Duration,
		Instructions:    instructions,
	}, nil
}

// osrmResponse represents the routing service response structure
type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry string    `json:"geometry"`
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}
