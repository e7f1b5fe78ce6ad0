package location

import (
	"time"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// Fix is a single GPS reading from a location provider. Speed and Heading
// are optional; providers that cannot supply them send null.
type Fix struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	SpeedMps  *float64  `json:"speed,omitempty"`   // meters per second
	Heading   *float64  `json:"heading,omitempty"` // degrees
	Timestamp time.Time `json:"timestamp"`
}

// Point returns the fix position as a geo coordinate
func (f Fix) Point() geo.Point {
	return geo.Point{Latitude: f.Latitude, Longitude: f.Longitude}
}

// Source is a subscription to a stream of GPS fixes. The channel is closed
// when the source ends or Close is called; Close must be safe to call more
// than once so teardown paths can unsubscribe unconditionally.
type Source interface {
	Fixes() <-chan Fix
	Close() error
}
