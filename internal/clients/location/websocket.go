package location

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WebsocketSource consumes JSON-encoded fixes from a websocket feed, e.g.
// the navd ingest endpoint viewed from the other side, or a phone app
// pushing its GPS stream.
type WebsocketSource struct {
	conn      *websocket.Conn
	fixes     chan Fix
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewWebsocketSource dials the feed URL and starts reading fixes. The
// returned source owns the connection; Close tears it down.
func NewWebsocketSource(ctx context.Context, feedURL string) (*WebsocketSource, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial location feed %s: %w", feedURL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	s := &WebsocketSource{
		conn:  conn,
		fixes: make(chan Fix, 16),
		done:  make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Fixes returns the stream of incoming fixes. Closed on feed end or Close.
func (s *WebsocketSource) Fixes() <-chan Fix {
	return s.fixes
}

// Close tears down the subscription. Safe to call repeatedly.
func (s *WebsocketSource) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *WebsocketSource) readLoop() {
	defer close(s.fixes)
	for {
		var fix Fix
		if err := s.conn.ReadJSON(&fix); err != nil {
			// Connection closed or malformed stream; either way the
			// subscription is over.
			return
		}
		select {
		case s.fixes <- fix:
		case <-s.done:
			return
		}
	}
}
