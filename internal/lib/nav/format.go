package nav

import (
	"fmt"
	"math"
)

// ViewModel is the read-only presentation view derived from a snapshot.
// The engine does the numeric derivation and the formatting policy below;
// rendering is the presentation layer's problem.
type ViewModel struct {
	SpeedText             string  `json:"speed_text"`
	DistanceTraveledText  string  `json:"distance_traveled_text"`
	DistanceRemainingText string  `json:"distance_remaining_text"`
	ETAText               string  `json:"eta_text"`
	ProgressPercent       float64 `json:"progress_percent"`
	OffRoute              bool    `json:"off_route"`
	Paused                bool    `json:"paused"`
}

// BuildViewModel derives the presentation view from a session snapshot
func BuildViewModel(s Snapshot) ViewModel {
	eta := "--"
	if s.ETAKnown {
		eta = FormatDuration(s.ETASeconds)
	}
	return ViewModel{
		SpeedText:             FormatSpeed(s.SmoothedSpeedMps),
		DistanceTraveledText:  FormatDistance(s.DistanceTraveledMeters),
		DistanceRemainingText: FormatDistance(s.DistanceRemainingMeters),
		ETAText:               eta,
		ProgressPercent:       s.ProgressPercent,
		OffRoute:              s.IsOffRoute,
		Paused:                s.Status == StatusPaused,
	}
}

// FormatDistance renders distances under 1000m as whole meters, otherwise
// kilometers to one decimal
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// FormatDuration renders durations as "Hh Mm" above an hour, otherwise
// "M min"
func FormatDuration(seconds float64) string {
	minutes := int(math.Round(seconds / 60))
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatSpeed renders meters-per-second as km/h to one decimal
func FormatSpeed(mps float64) string {
	return fmt.Sprintf("%.1f km/h", mps*3.6)
}
