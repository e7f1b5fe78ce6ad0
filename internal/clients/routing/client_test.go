package routing

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// MockHTTPDoer is a mock implementation of HTTPDoer
type MockHTTPDoer struct {
	mock.Mock
}

func (m *MockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

// Helper function to load test fixture data
func loadTestFixture(t *testing.T, filename string) string {
	data, err := os.ReadFile("../../../tests/testdata/osrm/" + filename)
	require.NoError(t, err, "Failed to load test fixture %s", filename)
	return string(data)
}

// Helper function to create mock HTTP response
func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func testPoints() []geo.Point {
	return []geo.Point{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 43.252, Longitude: -126.453},
	}
}

func TestRoute_Success(t *testing.T) {
	fixtureData := loadTestFixture(t, "route_response.json")

	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(200, fixtureData), nil)

	client := NewClientWithHTTPDoer("https://router.example.com", "cycling", mockHTTP)

	routeData, err := client.Route(context.Background(), testPoints())
	require.NoError(t, err)
	require.NotNil(t, routeData)

	assert.InDelta(t, 550341.2, routeData.DistanceMeters, 0.01, "Distance should match fixture")
	assert.InDelta(t, 110572.6, routeData.DurationSeconds, 0.01, "Duration should match fixture")

	// The encoded geometry decodes to the three fixture vertices
	require.Len(t, routeData.Points, 3)
	assert.InDelta(t, 38.5, routeData.Points[0].Latitude, 1e-5)
	assert.InDelta(t, -120.2, routeData.Points[0].Longitude, 1e-5)
	assert.InDelta(t, 43.252, routeData.Points[2].Latitude, 1e-5)

	require.Len(t, routeData.Instructions, 2)
	assert.Equal(t, "Sierra Pass Road", routeData.Instructions[0].Name)
	assert.InDelta(t, 210340.5, routeData.Instructions[0].DistanceMeters, 0.01)
}

func TestRoute_RequestFormat(t *testing.T) {
	fixtureData := loadTestFixture(t, "route_response.json")

	var capturedURL string
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Run(func(args mock.Arguments) {
		capturedURL = args.Get(0).(*http.Request).URL.String()
	}).Return(createMockResponse(200, fixtureData), nil)

	client := NewClientWithHTTPDoer("https://router.example.com/", "cycling", mockHTTP)
	_, err := client.Route(context.Background(), testPoints())
	require.NoError(t, err)

	// lon,lat pair order, semicolon separated, full-overview polyline
	assert.Contains(t, capturedURL, "/route/v1/cycling/")
	assert.Contains(t, capturedURL, "-120.200000,38.500000;-126.453000,43.252000")
	assert.Contains(t, capturedURL, "overview=full")
	assert.Contains(t, capturedURL, "geometries=polyline")
}

func TestRoute_TooFewPoints(t *testing.T) {
	client := NewClient("https://router.example.com", "cycling")

	_, err := client.Route(context.Background(), []geo.Point{{Latitude: 38.5, Longitude: -120.2}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 coordinates")
}

func TestRoute_RateLimitError(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(429, `{"message": "Too Many Requests"}`), nil)

	client := NewClientWithHTTPDoer("https://router.example.com", "cycling", mockHTTP)

	_, err := client.Route(context.Background(), testPoints())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestRoute_ServerError(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(500, "internal error"), nil)

	client := NewClientWithHTTPDoer("https://router.example.com", "cycling", mockHTTP)

	_, err := client.Route(context.Background(), testPoints())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRoute_NoRouteFound(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(200, `{"code": "NoRoute", "message": "Impossible route between points", "routes": []}`), nil)

	client := NewClientWithHTTPDoer("https://router.example.com", "cycling", mockHTTP)

	_, err := client.Route(context.Background(), testPoints())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NoRoute")
}
