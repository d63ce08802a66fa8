package savedjob

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Messages shown when a failure carries nothing fit for a job seeker.
const (
	DefaultFetchError  = "Failed to fetch saved jobs."
	DefaultSaveError   = "Failed to save job."
	DefaultUnsaveError = "Failed to unsave job."
)

// State is a snapshot of the saved jobs container.
type State struct {
	Items  []SavedJob `json:"items"`
	Status Status     `json:"status"`
	Error  string     `json:"error,omitempty"`
}

type StoreOption func(*Store)

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = logger
	}
}

// Store holds the saved jobs of one job seeker and keeps them in sync with
// a Service. Transitions are serialised by mu, which is never held while a
// Service call is outstanding.
type Store struct {
	svc Service
	log zerolog.Logger

	mu        sync.Mutex
	state     State
	listeners map[int]func()
	nextID    int
}

func NewStore(svc Service, opts ...StoreOption) *Store {
	s := &Store{
		svc:       svc,
		log:       zerolog.Nop(),
		state:     State{Items: []SavedJob{}, Status: StatusIdle},
		listeners: map[int]func(){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current container.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Status
}

func (s *Store) snapshot() State {
	items := make([]SavedJob, len(s.state.Items))
	copy(items, s.state.Items)
	return State{Items: items, Status: s.state.Status, Error: s.state.Error}
}

// Subscribe registers fn to be called after every committed transition.
// Listeners read the new state with State and must not block.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// commit applies fn under the lock and notifies listeners afterwards.
func (s *Store) commit(event string, fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	st, listeners := s.state, s.listenersLocked()
	s.mu.Unlock()
	s.notify(event, st, listeners)
}

func (s *Store) listenersLocked() []func() {
	listeners := make([]func(), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

func (s *Store) notify(event string, st State, listeners []func()) {
	s.log.Debug().
		Str("event", event).
		Str("status", string(st.Status)).
		Int("items", len(st.Items)).
		Msg("saved jobs transition")
	for _, l := range listeners {
		l()
	}
}

// RequestFetch reloads the saved jobs from the service. It is a no-op
// returning false while another fetch is in flight.
func (s *Store) RequestFetch(ctx context.Context) bool {
	s.mu.Lock()
	if s.state.Status == StatusLoading {
		s.mu.Unlock()
		return false
	}
	s.state.Status = StatusLoading
	s.state.Error = ""
	st, listeners := s.state, s.listenersLocked()
	s.mu.Unlock()
	s.notify("fetch/pending", st, listeners)

	items, err := s.svc.ListSaved(ctx)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = DefaultFetchError
		}
		s.log.Warn().Err(err).Msg("unable to fetch saved jobs")
		s.commit("fetch/rejected", func(st *State) {
			st.Status = StatusFailed
			st.Error = msg
		})
		return true
	}

	fetched := make([]SavedJob, len(items))
	copy(fetched, items)
	s.commit("fetch/fulfilled", func(st *State) {
		st.Status = StatusSucceeded
		st.Items = fetched
		st.Error = ""
	})
	return true
}

// RequestRemove unsaves jobID and drops it from the container on success.
// A failure leaves the container untouched and is returned to the caller.
func (s *Store) RequestRemove(ctx context.Context, jobID string) error {
	if err := s.svc.Unsave(ctx, jobID); err != nil {
		return errors.Wrapf(err, "unable to unsave job %s", jobID)
	}
	s.commit("remove/fulfilled", func(st *State) {
		st.Items = without(st.Items, jobID)
	})
	return nil
}

// RequestSave bookmarks jobID. The container is not changed; callers
// wanting the new bookmark listed issue RequestFetch.
func (s *Store) RequestSave(ctx context.Context, jobID string) error {
	if err := s.svc.Save(ctx, jobID); err != nil {
		return errors.Wrapf(err, "unable to save job %s", jobID)
	}
	return nil
}

func without(items []SavedJob, jobID string) []SavedJob {
	out := make([]SavedJob, 0, len(items))
	for _, it := range items {
		if it.ID != jobID {
			out = append(out, it)
		}
	}
	return out
}
