package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/repository"
)

// Store keeps live sessions in memory and persists their participant name and
// submission history through the repository. A nil repository keeps
// everything in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*State
	repo     repository.SessionRepository
	clock    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreClock overrides time.Now for the store and the sessions it creates.
func WithStoreClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.clock = clock
	}
}

func NewStore(repo repository.SessionRepository, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*State),
		repo:     repo,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session with a random id.
func (s *Store) Create(ctx context.Context) (*State, error) {
	log := logger.FromContext(ctx).WithPrefix("session_store")

	st := New(uuid.NewString(), WithClock(s.clock))
	if s.repo != nil {
		if err := s.repo.Save(ctx, st.Record()); err != nil {
			log.Error("failed to persist new session: %v", err)
			return nil, err
		}
	}

	s.mu.Lock()
	s.sessions[st.ID()] = st
	s.mu.Unlock()

	log.Debug("created session %s", st.ID())
	return st, nil
}

// Get returns the session with id, restoring it from the repository if it is
// not live. It returns (nil, nil) for an unknown id.
func (s *Store) Get(ctx context.Context, id string) (*State, error) {
	if id == "" {
		return nil, nil
	}

	s.mu.RLock()
	st, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return st, nil
	}
	if s.repo == nil {
		return nil, nil
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("session_store").Error("failed to load session %s: %v", id, err)
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have restored it meanwhile.
	if st, ok := s.sessions[id]; ok {
		return st, nil
	}
	st = FromRecord(*rec, WithClock(s.clock))
	s.sessions[id] = st
	logger.FromContext(ctx).WithPrefix("session_store").Debug("restored session %s for %s", id, rec.Participant)
	return st, nil
}

// GetOrCreate returns the session with id or a new one. created is true when
// the caller must hand the new id to the browser.
func (s *Store) GetOrCreate(ctx context.Context, id string) (st *State, created bool, err error) {
	st, err = s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if st != nil {
		return st, false, nil
	}
	st, err = s.Create(ctx)
	return st, err == nil, err
}

// Save persists the participant name and submission history of st.
func (s *Store) Save(ctx context.Context, st *State) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Save(ctx, st.Record())
}

// Touch records a request for view and persists the activity time.
func (s *Store) Touch(ctx context.Context, st *State, view View) error {
	st.Touch(view)
	if s.repo == nil {
		return nil
	}
	return s.repo.Touch(ctx, st.ID(), st.LastSeen())
}

// Viewing returns the live sessions last seen on view at or after since.
func (s *Store) Viewing(view View, since time.Time) []*State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*State
	for _, st := range s.sessions {
		if st.Viewing(view, since) {
			out = append(out, st)
		}
	}
	return out
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than ttl from memory and the repository.
// It returns the number of live sessions dropped and persisted rows deleted.
func (s *Store) Sweep(ctx context.Context, ttl time.Duration) (live int, persisted int64, err error) {
	log := logger.FromContext(ctx).WithPrefix("session_store")
	cutoff := s.clock().Add(-ttl)

	s.mu.Lock()
	for id, st := range s.sessions {
		if st.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			live++
		}
	}
	s.mu.Unlock()

	if s.repo != nil {
		persisted, err = s.repo.DeleteIdleSince(ctx, cutoff)
		if err != nil {
			log.Error("failed to delete idle sessions: %v", err)
			return live, 0, err
		}
	}

	if live > 0 || persisted > 0 {
		log.Info("swept idle sessions: live=%d persisted=%d", live, persisted)
	}
	return live, persisted, nil
}
