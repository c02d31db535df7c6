package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/internal/logging"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/registry"
)

// ErrAttemptLimit is returned when WithMaxAttempts is exceeded.
var ErrAttemptLimit = errors.New("attempt limit reached")

// StepObserver is called after a step has been executed (not skipped).
type StepObserver func(ctx context.Context, index int, step *pipeline.Step)

// Controller runs the backtracking search over one registry.
type Controller struct {
	reg       *registry.Registry
	graph     *decision.Graph
	steps     []*pipeline.Step
	completed []bool

	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	observer    StepObserver
	maxAttempts int

	attempt     int
	liveChoices int
	stats       domain.Stats
	started     time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithStepObserver registers a callback run after every executed step.
func WithStepObserver(fn StepObserver) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// WithMaxAttempts bounds the number of attempts; zero means unbounded.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) {
		c.maxAttempts = n
	}
}

// New creates a controller for reg using the given decision graph backend.
func New(reg *registry.Registry, kind decision.Kind, opts ...Option) (*Controller, error) {
	g, err := decision.New(kind)
	if err != nil {
		return nil, err
	}
	steps := reg.Steps()
	c := &Controller{
		reg:       reg,
		graph:     g,
		steps:     steps,
		completed: make([]bool, len(steps)),
		logger:    logging.NewNop(),
		stats: domain.Stats{
			SearchSpace: big.NewInt(0),
			CutOff:      big.NewInt(0),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Graph exposes the decision graph.
func (c *Controller) Graph() *decision.Graph { return c.graph }

// Registry exposes the registry being searched.
func (c *Controller) Registry() *registry.Registry { return c.reg }

// Completed reports whether step i is marked completed.
func (c *Controller) Completed(i int) bool { return c.completed[i] }

// Run searches until every step completes without a failed check, or the
// search ends fatally.
func (c *Controller) Run(ctx context.Context) error {
	c.started = time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return c.finish(ctx, fmt.Errorf("search interrupted: %w", err))
		}
		if c.maxAttempts > 0 && c.attempt >= c.maxAttempts {
			return c.finish(ctx, fmt.Errorf("%w (%d)", ErrAttemptLimit, c.maxAttempts))
		}
		c.attempt++
		c.stats.Attempts = c.attempt
		c.logger.DebugContext(ctx, "attempt started", "attempt", c.attempt)
		if c.hooks.OnAttempt != nil {
			c.hooks.OnAttempt(ctx, &domain.AttemptEvent{EventBase: domain.NewEventBase(domain.EventAttempt, c.attempt)})
		}

		err := c.pass(ctx)
		if err == nil {
			return c.finish(ctx, nil)
		}

		var failed *domain.ConstraintNotSatisfied
		if !errors.As(err, &failed) {
			return c.finish(ctx, err)
		}
		if err := c.backtrack(ctx, failed); err != nil {
			return c.finish(ctx, err)
		}
	}
}

func (c *Controller) pass(ctx context.Context) error {
	for i, s := range c.steps {
		if c.completed[i] {
			continue
		}
		if err := c.ExecuteStep(ctx, i); err != nil {
			return err
		}
		c.completed[i] = true
		if c.observer != nil {
			c.observer(ctx, i, s)
		}
	}
	return nil
}

// ExecuteStep runs step i regardless of its completion flag. Objects whose
// decision is still live are skipped, so executing a completed step again
// changes nothing.
func (c *Controller) ExecuteStep(ctx context.Context, i int) error {
	s := c.steps[i]
	c.logger.DebugContext(ctx, "executing step", "step", s.Label(), "index", i)
	switch s.Op {
	case domain.OpNarrow:
		return c.narrow(ctx, i, s)
	case domain.OpChoose:
		return c.choose(ctx, i, s)
	case domain.OpTranslate:
		return c.translate(ctx, i, s)
	case domain.OpValidate:
		return c.validate(ctx, i, s)
	}
	return domain.Violationf("step %q: unknown operation %q", s.Label(), s.Op)
}

func (c *Controller) finish(ctx context.Context, err error) error {
	stats := c.Stats()
	outcome := domain.OutcomeSuccess
	switch {
	case errors.Is(err, domain.ErrSearchExhausted):
		outcome = domain.OutcomeExhausted
	case err != nil:
		outcome = domain.OutcomeFailed
	}

	attrs := []any{"outcome", outcome, "attempts", stats.Attempts, "rolled_back", stats.RolledBack, "decisions", stats.Decisions}
	if err != nil {
		c.logger.ErrorContext(ctx, "search ended", append(attrs, "error", err)...)
	} else {
		c.logger.InfoContext(ctx, "search ended", attrs...)
	}
	if c.hooks.OnFinish != nil {
		c.hooks.OnFinish(ctx, &domain.FinishEvent{
			EventBase: domain.NewEventBase(domain.EventFinish, c.attempt),
			Outcome:   outcome,
			Stats:     stats,
			Err:       err,
		})
	}
	return err
}

func (c *Controller) recorded(ctx context.Context, n *decision.Node) {
	if c.hooks.OnDecision != nil {
		c.hooks.OnDecision(ctx, &domain.DecisionEvent{
			EventBase: domain.NewEventBase(domain.EventDecision, c.attempt),
			Decision:  n.Ref(),
			Value:     n.Value,
		})
	}
}
