package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openvelo/tournav/internal/lib/geo"
	"github.com/openvelo/tournav/internal/lib/planner"
)

func TestExportKML(t *testing.T) {
	route := &planner.Route{
		ID:          "ride-1",
		Name:        "Hwy 4 climb",
		Description: "Angels Camp to Murphys",
		Waypoints: []planner.Waypoint{
			{ID: "a", Name: "Angels Camp", Coordinate: geo.Point{Latitude: 38.0675, Longitude: -120.5436}, Kind: planner.KindStart},
			{ID: "b", Coordinate: geo.Point{Latitude: 38.1391, Longitude: -120.4561}, Kind: planner.KindEnd, Order: 1},
		},
		Geometry: geo.Polyline{Points: []geo.Point{
			{Latitude: 38.0675, Longitude: -120.5436},
			{Latitude: 38.1391, Longitude: -120.4561},
		}},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	var buf bytes.Buffer
	require.NoError(t, ExportKML(route, &buf))

	out := buf.String()
	assert.Contains(t, out, "<kml")
	assert.Contains(t, out, "<name>Hwy 4 climb</name>")
	assert.Contains(t, out, "<LineString>")
	assert.Contains(t, out, "-120.5436,38.0675")
	assert.Contains(t, out, "<name>Angels Camp</name>")
	// The unnamed end waypoint falls back to its role
	assert.Contains(t, out, "<name>end</name>")
}

func TestExportKML_NoGeometry(t *testing.T) {
	var buf bytes.Buffer
	err := ExportKML(&planner.Route{ID: "empty"}, &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
