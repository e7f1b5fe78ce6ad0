package planner

import (
	"time"

	"github.com/openvelo/tournav/internal/lib/geo"
)

// defaultHistoryLimit caps undo history at 50 entries; older entries are
// evicted FIFO once the cap is reached.
const defaultHistoryLimit = 50

// snapshot is an immutable deep copy of the planner's editable state. Deep
// copies are the point: later in-place mutation of the live waypoint or
// geometry slices must never corrupt a stored undo state.
type snapshot struct {
	waypoints []Waypoint
	geometry  geo.Polyline
	takenAt   time.Time
}

func takeSnapshot(waypoints []Waypoint, geometry geo.Polyline) snapshot {
	return snapshot{
		waypoints: cloneWaypoints(waypoints),
		geometry:  clonePolyline(geometry),
		takenAt:   time.Now(),
	}
}

// restore hands back deep copies so the caller's live state never aliases
// the stored entry.
func (s snapshot) restore() ([]Waypoint, geo.Polyline) {
	return cloneWaypoints(s.waypoints), clonePolyline(s.geometry)
}

func clonePolyline(p geo.Polyline) geo.Polyline {
	out := geo.Polyline{EncodedPolyline: p.EncodedPolyline}
	if p.Points != nil {
		out.Points = make([]geo.Point, len(p.Points))
		copy(out.Points, p.Points)
	}
	return out
}

// history is a bounded undo/redo stack. The cursor always indexes the entry
// matching the planner's current state, or is -1 when the history is empty.
// Entries after the cursor are redoable futures, discarded on the next push.
type history struct {
	entries []snapshot
	cursor  int
	limit   int
}

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &history{cursor: -1, limit: limit}
}

// push records a new current state. Any redo tail is dropped first. If the
// cap is exceeded the oldest entry is evicted and the cursor shifts down by
// one so it keeps pointing at the same logical entry.
func (h *history) push(s snapshot) {
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, s)
	h.cursor++

	if len(h.entries) > h.limit {
		h.entries = h.entries[1:]
		h.cursor--
	}
}

// undo steps the cursor back one entry. Returns false (a no-op, not an
// error) at the boundary.
func (h *history) undo() (snapshot, bool) {
	if !h.canUndo() {
		return snapshot{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// redo steps the cursor forward one entry. Returns false at the boundary.
func (h *history) redo() (snapshot, bool) {
	if !h.canRedo() {
		return snapshot{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

func (h *history) canUndo() bool {
	return h.cursor > 0
}

func (h *history) canRedo() bool {
	return h.cursor >= 0 && h.cursor < len(h.entries)-1
}

func (h *history) reset() {
	h.entries = nil
	h.cursor = -1
}

func (h *history) size() int {
	return len(h.entries)
}
