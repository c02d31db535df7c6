package archsynth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/internal/logging"
	"github.com/aretw0/archsynth/internal/presentation/graph"
	"github.com/aretw0/archsynth/internal/presentation/tui"
	"github.com/aretw0/archsynth/internal/runtime"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/ports"
	"github.com/aretw0/archsynth/pkg/registry"
)

// Backend selects how decision dependencies are tracked.
type Backend = decision.Kind

const (
	Linear      = decision.Linear
	Topological = decision.Topological
	Tree        = decision.Tree
)

// ParseBackend parses a backend name.
func ParseBackend(s string) (Backend, error) { return decision.ParseKind(s) }

// Engine is the high-level entry point for archsynth.
// It owns the registry of one problem and runs the search over it.
type Engine struct {
	reg         *registry.Registry
	store       ports.SnapshotStore
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	maxAttempts int
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore saves a snapshot of every search, successful or not.
func WithStore(store ports.SnapshotStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker serialises searches of the same problem name across processes.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// WithMaxAttempts bounds the number of attempts; zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		e.maxAttempts = n
	}
}

// WithName labels the problem in logs, snapshots and locks.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes an Engine with an empty registry.
func New(opts ...Option) *Engine {
	eng := &Engine{reg: registry.New()}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("problem", eng.Name)
	}
	return eng
}

// AddLayer appends a layer. Layers are ordered by insertion.
func (e *Engine) AddLayer(name string) (*layer.Layer, error) {
	return e.reg.AddLayer(name)
}

// AddStep appends a step after checking the contracts of its engines.
func (e *Engine) AddStep(s *pipeline.Step) error {
	return e.reg.AddStep(s)
}

// Registry exposes the layers and steps.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Logger returns the logger of the engine; a no-op one unless WithLogger
// was given.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Result describes a finished search.
type Result struct {
	Report     domain.Report
	Snapshot   *domain.Snapshot
	SnapshotID string
}

// Execute runs the search with the given backend. When outputPath is not
// empty, a Mermaid dump of the touched layers is written after every
// executed step, followed by the final layers, the decision graph and a
// Markdown report. The dumps and the snapshot are produced on fatal errors
// too; the returned Result is never nil.
func (e *Engine) Execute(ctx context.Context, outputPath string, backend Backend) (*Result, error) {
	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, "solve:"+e.lockKey(), e.lockTTL)
		if err != nil {
			return &Result{}, fmt.Errorf("failed to lock problem: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Warn("failed to release lock", "err", err)
			}
		}()
	}

	d := &dumper{dir: outputPath, logger: e.logger}
	if err := d.prepare(); err != nil {
		return &Result{}, err
	}

	var ctrl *runtime.Controller
	var attempt int
	var overlay *graph.DecisionOverlay
	track := domain.LifecycleHooks{
		OnAttempt: func(_ context.Context, ev *domain.AttemptEvent) { attempt = ev.Attempt },
		OnRollback: func(_ context.Context, ev *domain.RollbackEvent) {
			overlay = &graph.DecisionOverlay{Failing: ev.Failing.Seq, Culprit: ev.Culprit.Seq}
		},
	}

	opts := []runtime.Option{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(track.Merge(e.hooks)),
		runtime.WithMaxAttempts(e.maxAttempts),
	}
	if d.enabled() {
		opts = append(opts, runtime.WithStepObserver(func(_ context.Context, i int, s *pipeline.Step) {
			for _, name := range touched(s) {
				if ls, ok := ctrl.LayerSnapshot(name); ok {
					d.write(fmt.Sprintf("attempt%03d-step%02d-%s.mmd", attempt, i, name), graph.LayerMermaid(&ls))
				}
			}
		}))
	}

	ctrl, err := runtime.New(e.reg, backend, opts...)
	if err != nil {
		return &Result{}, err
	}
	runErr := ctrl.Run(ctx)

	id := e.snapshotID()
	snap := ctrl.Snapshot(id, runErr)
	snap.Problem = e.Name
	res := &Result{Report: snap.Report, Snapshot: snap, SnapshotID: id}

	if d.enabled() {
		for i := range snap.Layers {
			d.write("layer-"+snap.Layers[i].Name+".mmd", graph.LayerMermaid(&snap.Layers[i]))
		}
		d.write("decisions.mmd", graph.DecisionMermaid(snap.Decisions, overlay))
		d.write("report.md", tui.ReportMarkdown(snap.Report))
	}

	if e.store != nil {
		// The snapshot is kept even if the caller gave up.
		if err := e.store.Save(context.WithoutCancel(ctx), id, snap); err != nil {
			e.logger.Error("failed to save snapshot", "snapshot", id, "err", err)
			return res, errors.Join(runErr, fmt.Errorf("failed to save snapshot %q: %w", id, err))
		}
		e.logger.Info("snapshot saved", "snapshot", id)
	}
	return res, runErr
}

func (e *Engine) lockKey() string {
	if e.Name == "" {
		return "default"
	}
	return e.Name
}

func (e *Engine) snapshotID() string {
	return fmt.Sprintf("%s-%s", e.lockKey(), time.Now().UTC().Format("20060102T150405.000000000"))
}

// touched lists the layers a step may modify.
func touched(s *pipeline.Step) []string {
	if s.Op == domain.OpTranslate {
		return []string{s.Layer, s.Target}
	}
	if s.Op == domain.OpValidate {
		return nil
	}
	return []string{s.Layer}
}

// dumper writes diagnostic files. Failures are logged, not returned.
type dumper struct {
	dir    string
	logger *slog.Logger
}

func (d *dumper) enabled() bool { return d.dir != "" }

func (d *dumper) prepare() error {
	if !d.enabled() {
		return nil
	}
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func (d *dumper) write(name, content string) {
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		d.logger.Warn("failed to write dump", "path", path, "err", err)
	}
}
