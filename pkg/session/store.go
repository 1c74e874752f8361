package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"datacleaner/pkg/core"
	"datacleaner/pkg/engine"
	"datacleaner/pkg/logging"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("no active dataset")

const (
	DefaultTTL         = 30 * time.Minute
	DefaultMaxSessions = 256
)

// Config bounds the registry.
type Config struct {
	// TTL is how long a session survives without being used.
	TTL time.Duration
	// MaxSessions caps the number of live sessions; the least recently
	// used one is evicted first.
	MaxSessions int
}

type entry struct {
	mu     sync.Mutex
	engine *engine.Engine
}

// Store maps session ids to engines and serialises calls per session.
type Store struct {
	cache      *expirable.LRU[string, *entry]
	engineOpts []engine.Option
	logger     *logging.Logger
}

// NewStore creates a Store. Zero config fields take the package defaults.
func NewStore(cfg Config, logger *logging.Logger, engineOpts ...engine.Option) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if logger == nil {
		logger = logging.NoopLogger()
	}
	s := &Store{engineOpts: engineOpts, logger: logger}
	s.cache = expirable.NewLRU[string, *entry](cfg.MaxSessions, func(id string, _ *entry) {
		s.logger.LogEviction(context.Background(), id)
	}, cfg.TTL)
	return s
}

// Create starts a session for t and returns its id with the initial summary.
func (s *Store) Create(t *core.Table) (string, engine.Summary) {
	id := uuid.NewString()
	e := engine.New(t, s.engineOpts...)
	summary := e.Summary()
	s.cache.Add(id, &entry{engine: e})
	return id, summary
}

// Do runs fn with exclusive access to the session's engine and refreshes its TTL.
func (s *Store) Do(id string, fn func(*engine.Engine) error) error {
	ent, ok := s.cache.Get(id)
	if !ok {
		return ErrNotFound
	}
	s.cache.Add(id, ent)

	ent.mu.Lock()
	defer ent.mu.Unlock()
	return fn(ent.engine)
}

// Delete ends a session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	return s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}
