package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Recorder observes view activity. The metrics package implements it.
type Recorder interface {
	Selected(measurable string)
	Restyled(features int)
	LegendBuilt()
	FeatureClicked()
	SessionsActive(n int)
}

type nopRecorder struct{}

func (nopRecorder) Selected(string)    {}
func (nopRecorder) Restyled(int)       {}
func (nopRecorder) LegendBuilt()       {}
func (nopRecorder) FeatureClicked()    {}
func (nopRecorder) SessionsActive(int) {}

// Session is one viewer's map, legend and view controller.
type Session struct {
	ID      string
	Created time.Time

	View   *ViewController
	Layer  *FeatureLayer
	Legend *LegendBoard

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

// SessionConfig configures a SessionService.
type SessionConfig struct {
	Catalog  *Catalog
	Readings *ReadingService
	Source   string // dataset loaded into every new session, may be empty
	Home     MapView
	TTL      time.Duration
	Bus      *EventBus
	Recorder Recorder
	Logger   *slog.Logger
}

// SessionService creates and tracks viewer sessions.
type SessionService struct {
	cfg SessionConfig
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionService creates a new session service.
func NewSessionService(cfg SessionConfig) *SessionService {
	if cfg.Bus == nil {
		cfg.Bus = NewEventBus()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == (MapView{}) {
		cfg.Home = HomeView
	}
	return &SessionService{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Catalog returns the measurable catalog sessions select from.
func (s *SessionService) Catalog() *Catalog {
	return s.cfg.Catalog
}

// Bus returns the event bus view changes are published on.
func (s *SessionService) Bus() *EventBus {
	return s.cfg.Bus
}

// Create starts a session on the default measurable with the configured
// dataset loaded.
func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	now := s.now()
	layer := NewFeatureLayer(s.cfg.Readings)
	board := NewLegendBoard()
	sess := &Session{
		ID:       uuid.NewString(),
		Created:  now,
		Layer:    layer,
		Legend:   board,
		lastSeen: now,
	}
	sess.View = NewViewController(s.cfg.Catalog, layer, board, s.cfg.Home)

	if s.cfg.Source != "" {
		if err := sess.View.Load(ctx, s.cfg.Source); err != nil {
			return nil, fmt.Errorf("load %s: %w", s.cfg.Source, err)
		}
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	active := sess.View.State().Active.ID
	s.cfg.Recorder.SessionsActive(n)
	s.cfg.Recorder.Selected(active)
	s.cfg.Recorder.Restyled(layer.Len())
	s.cfg.Recorder.LegendBuilt()
	s.cfg.Bus.Publish(Event{Session: sess.ID, Action: ActionCreated, Measurable: active})
	s.cfg.Logger.Info("session created", "session", sess.ID, "measurable", active, "features", layer.Len())

	return sess, nil
}

// Get returns a session and marks it as used.
func (s *SessionService) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	sess.touch(s.now())
	return sess, nil
}

// List returns all sessions ordered by creation time.
func (s *SessionService) List() []*Session {
	s.mu.RLock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Delete ends a session.
func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	s.cfg.Recorder.SessionsActive(n)
	s.cfg.Bus.Publish(Event{Session: id, Action: ActionDeleted})
	return nil
}

// Select switches a session to another measurable.
func (s *SessionService) Select(id, measurable string) (ViewState, error) {
	sess, err := s.Get(id)
	if err != nil {
		return ViewState{}, err
	}
	state, err := sess.View.SelectByID(measurable)
	if err != nil {
		return ViewState{}, err
	}

	s.cfg.Recorder.Selected(measurable)
	s.cfg.Recorder.Restyled(sess.Layer.Len())
	s.cfg.Recorder.LegendBuilt()
	s.cfg.Bus.Publish(Event{Session: id, Action: ActionSelected, Measurable: measurable})
	s.cfg.Logger.Debug("measurable selected", "session", id, "measurable", measurable)
	return state, nil
}

// Recenter returns a session's map to the home view.
func (s *SessionService) Recenter(id string) (ViewState, error) {
	sess, err := s.Get(id)
	if err != nil {
		return ViewState{}, err
	}
	state := sess.View.Recenter()
	s.cfg.Bus.Publish(Event{Session: id, Action: ActionRecentered, Measurable: state.Active.ID})
	return state, nil
}

// ToggleScrollZoom flips scroll-to-zoom for a session.
func (s *SessionService) ToggleScrollZoom(id string) (ViewState, error) {
	sess, err := s.Get(id)
	if err != nil {
		return ViewState{}, err
	}
	state := sess.View.ToggleScrollZoom()
	s.cfg.Bus.Publish(Event{Session: id, Action: ActionScrollZoom, Measurable: state.Active.ID})
	return state, nil
}

// Click returns the popup for a feature on a session's map.
func (s *SessionService) Click(id, feature string) (FeatureInfo, error) {
	sess, err := s.Get(id)
	if err != nil {
		return FeatureInfo{}, err
	}
	info, err := sess.Layer.Click(feature)
	if err != nil {
		return FeatureInfo{}, err
	}
	s.cfg.Recorder.FeatureClicked()
	return info, nil
}

// Reap removes sessions idle for longer than the TTL and returns how many
// were removed. A zero TTL disables reaping.
func (s *SessionService) Reap() int {
	if s.cfg.TTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.TTL)

	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}
	s.cfg.Recorder.SessionsActive(n)
	for _, id := range expired {
		s.cfg.Bus.Publish(Event{Session: id, Action: ActionDeleted})
	}
	s.cfg.Logger.Info("sessions expired", "count", len(expired), "active", n)
	return len(expired)
}

// Run reaps idle sessions every interval until ctx is done.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	if s.cfg.TTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap()
		}
	}
}
