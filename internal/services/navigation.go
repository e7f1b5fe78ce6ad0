package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"

	"github.com/openvelo/tournav/internal/clients/location"
	"github.com/openvelo/tournav/internal/lib/nav"
	"github.com/openvelo/tournav/internal/store"
)

// NavigationService runs an active navigation session: it loads a saved
// route, subscribes to a location source and feeds fixes to the navigator on
// a background goroutine.
type NavigationService struct {
	store  store.Store
	config nav.Config

	mutex     sync.Mutex
	navigator *nav.Navigator
	source    location.Source
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewNavigationService creates a navigation service over the given route
// store. The nav.Config callbacks are invoked from the consumer goroutine.
func NewNavigationService(routeStore store.Store, cfg nav.Config) *NavigationService {
	return &NavigationService{
		store:     routeStore,
		config:    cfg,
		navigator: nav.NewNavigator(cfg),
	}
}

// StartNavigation loads the route and begins consuming fixes from the
// source. The service takes ownership of the source and closes it on stop.
func (s *NavigationService) StartNavigation(ctx context.Context, routeID string, source location.Source) error {
	route, err := s.store.Get(ctx, routeID)
	if err != nil {
		return fmt.Errorf("failed to load route %s: %w", routeID, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.navigator.Start(*route); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.source = source
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.consumeFixes(runCtx, source, s.done)

	logging.Infow(ctx, "Navigation started", "route_id", route.ID, "route_name", route.Name)
	return nil
}

// consumeFixes feeds location fixes to the navigator until the source closes
// or the session is stopped
func (s *NavigationService) consumeFixes(ctx context.Context, source location.Source, done chan struct{}) {
	defer close(done)
	defer func() {
		// Recover from any panics in the fix consumer goroutine
		if r := recover(); r != nil {
			err, _ := errors.ParseStack(debug.Stack())
			skipFrames := 3
			numFrames := 5
			logging.Errorw(ctx, "Navigation: recovered from panic",
				"error", r, "error.stack_trace", err.MinimalStack(skipFrames, numFrames))
		}
	}()

	s.navigator.Run(ctx, source.Fixes())
}

// Pause suspends progress updates without ending the session
func (s *NavigationService) Pause() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.navigator.Pause()
}

// Resume continues a paused session
func (s *NavigationService) Resume() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.navigator.Resume()
}

// StopNavigation ends the session, closes the location source and waits for
// the consumer goroutine to exit. Safe to call when nothing is running.
func (s *NavigationService) StopNavigation(ctx context.Context) {
	s.mutex.Lock()
	source, cancel, done := s.source, s.cancel, s.done
	s.source, s.cancel, s.done = nil, nil, nil
	s.mutex.Unlock()

	if cancel != nil {
		cancel()
	}
	if source != nil {
		if err := source.Close(); err != nil {
			logging.Errorw(ctx, "Failed to close location source", "error", err)
		}
	}
	if done != nil {
		<-done
	}

	s.navigator.Stop()
	logging.Infow(ctx, "Navigation stopped")
}

// Status returns the navigator lifecycle status
func (s *NavigationService) Status() nav.Status {
	return s.navigator.Status()
}

// Snapshot returns the latest navigation state
func (s *NavigationService) Snapshot() nav.Snapshot {
	return s.navigator.Snapshot()
}

// ViewModel returns the formatted presentation view of the latest state
func (s *NavigationService) ViewModel() nav.ViewModel {
	return nav.BuildViewModel(s.navigator.Snapshot())
}
