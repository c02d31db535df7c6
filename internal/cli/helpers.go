package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/archsynth/internal/logging"
	"github.com/aretw0/archsynth/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger. It always writes to
// Stderr so Stdout stays free for reports and JSON-RPC.
func createLogger(o Options) (*slog.Logger, error) {
	if o.Debug {
		return logging.NewWriter(os.Stderr, slog.LevelDebug, logging.FormatText), nil
	}
	if o.LogLevel == "" {
		return logging.NewNop(), nil
	}
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	format := logging.FormatText
	if o.LogFormat != "" {
		if format, err = logging.ParseFormat(o.LogFormat); err != nil {
			return nil, err
		}
	}
	return logging.NewWriter(os.Stderr, level, format), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAttempt: func(ctx context.Context, e *domain.AttemptEvent) {
			logger.Debug("Attempt", "attempt", e.Attempt)
		},
		OnDecision: func(ctx context.Context, e *domain.DecisionEvent) {
			logger.Debug("Decision", "decision", e.Decision.String(), "value", e.Value)
		},
		OnRollback: func(ctx context.Context, e *domain.RollbackEvent) {
			logger.Debug("Rollback",
				"failing", e.Failing.String(),
				"culprit", e.Culprit.String(),
				"rejected", e.Rejected,
				"affected", e.Affected,
			)
		},
		OnFinish: func(ctx context.Context, e *domain.FinishEvent) {
			logger.Debug("Finish", "outcome", e.Outcome, "attempts", e.Stats.Attempts)
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError treats a user interruption as a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
