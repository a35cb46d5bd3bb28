package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-crm-session/storage"
	"github.com/jrsteele09/go-crm-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultRefreshLeeway  = 30 * time.Second
)

var (
	// ErrSuperseded is returned when a Logout (or another Login) landed while the
	// operation was waiting on the network; its result was discarded.
	ErrSuperseded          = errors.New("session changed while the request was in flight")
	ErrAlreadyBootstrapped = errors.New("session already bootstrapped")
)

// Manager owns the session: it is the only writer of the in-memory state and of
// the persisted keys. All methods are safe for concurrent use.
type Manager struct {
	backend        Backend
	store          storage.Repo
	navigator      Navigator
	logger         zerolog.Logger
	nowFunc        func() time.Time
	refreshLeeway  time.Duration
	requestTimeout time.Duration

	// mu serializes every commit; storage is written before state changes.
	mu    sync.RWMutex
	state Snapshot
	// generation advances whenever the credentials are replaced or cleared.
	generation uint64

	refreshGroup singleflight.Group

	bootstrapped atomic.Bool
	ready        chan struct{}
	readyOnce    sync.Once

	subsMu  sync.Mutex
	subs    map[int]chan Status
	nextSub int
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNavigator sets the collaborator told to show the login entry point.
func WithNavigator(n Navigator) Option {
	return func(m *Manager) {
		if n != nil {
			m.navigator = n
		}
	}
}

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowFunc = nowFunc
	}
}

// WithRefreshLeeway sets how long before access token expiry RunAutoRefresh refreshes.
func WithRefreshLeeway(d time.Duration) Option {
	return func(m *Manager) {
		m.refreshLeeway = d
	}
}

// WithRequestTimeout bounds every backend call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.requestTimeout = d
	}
}

// New creates a session manager in StatusUninitialized. Call Bootstrap to restore
// a persisted session.
func New(backend Backend, store storage.Repo, options ...Option) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("[session.New] backend is required")
	}
	if store == nil {
		return nil, errors.New("[session.New] store is required")
	}

	m := &Manager{
		backend:        backend,
		store:          store,
		navigator:      noopNavigator{},
		logger:         log.Logger,
		nowFunc:        time.Now,
		refreshLeeway:  defaultRefreshLeeway,
		requestTimeout: defaultRequestTimeout,
		state:          Snapshot{Status: StatusUninitialized},
		ready:          make(chan struct{}),
		subs:           make(map[int]chan Status),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Status
}

func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.AccessToken
}

// User returns a copy of the current profile, or nil when logged out.
func (m *Manager) User() users.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.User.Clone()
}

// callContext bounds a backend call by the configured request timeout.
func (m *Manager) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.requestTimeout)
}

// read captures the state and generation an in-flight operation started from.
func (m *Manager) read() (Snapshot, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone(), m.generation
}

// setStatusLocked records a status transition and notifies subscribers. m.mu must be held.
func (m *Manager) setStatusLocked(status Status) {
	if m.state.Status == status {
		return
	}
	m.logger.Debug().Str("from", m.state.Status.String()).Str("to", status.String()).Msg("session status changed")
	m.state.Status = status
	m.publish(status)
}

// writeThroughLocked persists values in order. If any write fails, the keys
// already written get back whatever storage held before. m.mu must be held.
func (m *Manager) writeThroughLocked(ctx context.Context, values []keyValue) error {
	previous := make([]storedValue, 0, len(values))
	for _, kv := range values {
		value, ok, err := m.store.Get(ctx, kv.key)
		if err != nil {
			m.restoreLocked(ctx, previous)
			return errors.Wrapf(err, "read %q", kv.key)
		}
		if err := m.store.Set(ctx, kv.key, kv.value); err != nil {
			m.restoreLocked(ctx, previous)
			return errors.Wrapf(err, "persist %q", kv.key)
		}
		previous = append(previous, storedValue{key: kv.key, value: value, present: ok})
	}
	return nil
}

func (m *Manager) restoreLocked(ctx context.Context, previous []storedValue) {
	for _, prev := range previous {
		var err error
		if prev.present {
			err = m.store.Set(ctx, prev.key, prev.value)
		} else {
			err = m.store.Remove(ctx, prev.key)
		}
		if err != nil {
			m.logger.Err(err).Str("key", prev.key).Msg("failed to roll back session key")
		}
	}
}

// storedValue is what storage held under key before a write.
type storedValue struct {
	key     string
	value   string
	present bool
}

type keyValue struct {
	key   string
	value string
}
