package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/archsynth"
	"github.com/aretw0/archsynth/internal/logging"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/engines"
	"github.com/aretw0/archsynth/pkg/ports"
	"github.com/aretw0/archsynth/pkg/problem"
)

// DefaultBackend is used when neither the caller nor the problem names one.
const DefaultBackend = "topological"

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager runs solves and snapshot operations for long-lived hosts (HTTP
// server, MCP server). Work on the same key is serialised in-process; the
// optional distributed locker extends that across replicas.
type Manager struct {
	store ports.SnapshotStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker      ports.DistributedLocker
	lockTTL     time.Duration
	registry    *engines.Registry
	hooks       domain.LifecycleHooks
	maxAttempts int
	logger      *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking of solves.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(m *Manager) {
		m.locker = locker
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager and the engines it runs.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithRegistry sets the engine kinds available to problems.
func WithRegistry(reg *engines.Registry) Option {
	return func(m *Manager) {
		m.registry = reg
	}
}

// WithLifecycleHooks attaches hooks to every solve, e.g. metrics.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithMaxAttempts bounds every solve.
func WithMaxAttempts(n int) Option {
	return func(m *Manager) {
		m.maxAttempts = n
	}
}

// NewManager creates a Manager saving snapshots to store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		locks:    make(map[string]*lockEntry),
		lockTTL:  30 * time.Second,
		registry: engines.Default(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes fn while holding the in-process lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()
	return fn(ctx)
}

// Solve builds p and runs it. An empty backend falls back to the one named
// by the problem, then to DefaultBackend. Solves of the same problem name
// never overlap.
func (m *Manager) Solve(ctx context.Context, p *problem.Problem, backend, outputPath string) (*archsynth.Result, error) {
	if backend == "" {
		backend = p.Backend
	}
	if backend == "" {
		backend = DefaultBackend
	}
	kind, err := archsynth.ParseBackend(backend)
	if err != nil {
		return nil, err
	}

	opts := []archsynth.Option{
		archsynth.WithName(p.Name),
		archsynth.WithLogger(m.logger),
		archsynth.WithStore(m.store),
		archsynth.WithLifecycleHooks(m.hooks),
		archsynth.WithMaxAttempts(m.maxAttempts),
	}
	if m.locker != nil {
		opts = append(opts, archsynth.WithLocker(m.locker, m.lockTTL))
	}
	eng := archsynth.New(opts...)
	if err := p.Build(eng, m.registry); err != nil {
		return nil, fmt.Errorf("invalid problem %q: %w", p.Name, err)
	}

	var res *archsynth.Result
	err = m.WithLock(ctx, "solve:"+p.Name, func(ctx context.Context) error {
		var err error
		res, err = eng.Execute(ctx, outputPath, kind)
		return err
	})
	return res, err
}

// Load retrieves a snapshot.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, id)
		return err
	})
	return snap, err
}

// Delete removes a snapshot.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// Kinds lists the engine kinds problems solved here may use.
func (m *Manager) Kinds() []string {
	return m.registry.Kinds()
}
