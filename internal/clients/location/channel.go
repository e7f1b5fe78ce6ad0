package location

import "sync"

// ChannelSource is a Source fed manually via Push. The navd ingest endpoint
// uses one per websocket connection to turn incoming JSON fixes into a
// location stream.
type ChannelSource struct {
	mu     sync.RWMutex
	fixes  chan Fix
	closed bool
}

// NewChannelSource creates a push-driven source with the given buffer
func NewChannelSource(buffer int) *ChannelSource {
	return &ChannelSource{
		fixes: make(chan Fix, buffer),
	}
}

// Push delivers a fix to the consumer. Fixes pushed after Close, or while
// the buffer is full, are dropped, not queued; a GPS stream always has a
// fresher fix coming.
func (s *ChannelSource) Push(fix Fix) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	select {
	case s.fixes <- fix:
		return true
	default:
		return false
	}
}

// Fixes returns the stream of pushed fixes
func (s *ChannelSource) Fixes() <-chan Fix {
	return s.fixes
}

// Close ends the stream. Safe to call repeatedly.
func (s *ChannelSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.fixes)
	}
	return nil
}
