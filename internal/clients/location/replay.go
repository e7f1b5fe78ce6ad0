package location

import (
	"sync"
	"time"
)

// ReplaySource emits a recorded track on a fixed interval. Used by the ride
// simulator and by tests that need a deterministic location stream.
type ReplaySource struct {
	track     []Fix
	interval  time.Duration
	fixes     chan Fix
	stop      chan struct{}
	closeOnce sync.Once
}

// NewReplaySource starts replaying the track immediately. Fix timestamps
// are rewritten to emission time so consumers see a live-looking stream.
func NewReplaySource(track []Fix, interval time.Duration) *ReplaySource {
	s := &ReplaySource{
		track:    track,
		interval: interval,
		fixes:    make(chan Fix, 1),
		stop:     make(chan struct{}),
	}
	go s.replayLoop()
	return s
}

// Fixes returns the replayed stream. Closed after the last track point or
// on Close.
func (s *ReplaySource) Fixes() <-chan Fix {
	return s.fixes
}

// Close stops the replay. Safe to call repeatedly.
func (s *ReplaySource) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	return nil
}

func (s *ReplaySource) replayLoop() {
	defer close(s.fixes)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for _, fix := range s.track {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			fix.Timestamp = time.Now()
			select {
			case s.fixes <- fix:
			case <-s.stop:
				return
			}
		}
	}
}
