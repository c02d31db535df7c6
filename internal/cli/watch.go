package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/archsynth"
	"github.com/aretw0/archsynth/internal/presentation/tui"
	"github.com/fsnotify/fsnotify"
)

// settle is how long the watcher waits for a burst of writes to end.
const settle = 100 * time.Millisecond

// RunWatch solves the problem, then solves it again every time the problem
// file changes, until interrupted. A running search is cancelled when the
// file changes under it.
func RunWatch(ctx context.Context, opts RunOptions, out io.Writer) error {
	logger, err := createLogger(opts.Options)
	if err != nil {
		return err
	}
	if !opts.Quiet {
		tui.PrintBanner(out, archsynth.Version)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched.
	target, err := filepath.Abs(opts.ProblemPath)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	logger.Info("Starting Watcher", "path", target)
	for {
		if !runWatchIteration(sigCtx, opts, out, watcher, target, logger) {
			break
		}
		logger.Info("Watcher restarting")
	}
	if sig := sigCtx.Signal(); sig != nil && !opts.Quiet {
		printSystemMessage(out, "Watcher stopped (%v).", sig)
	}
	return nil
}

// runWatchIteration runs one solve and reports whether to start another.
func runWatchIteration(parent *SignalContext, opts RunOptions, out io.Writer, watcher *fsnotify.Watcher, target string, logger *slog.Logger) bool {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := RunSolve(ctx, opts, out)
		done <- err
	}()

	changed := func() bool {
		for {
			select {
			case <-parent.Done():
				return false
			case ev, ok := <-watcher.Events:
				if !ok {
					return false
				}
				if ev.Name != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				logger.Info("Change detected, triggering reload", "event", ev.String())
				if !opts.Quiet {
					printSystemMessage(out, "Change detected in '%s'.", filepath.Base(target))
				}
				drain(watcher, settle)
				return true
			case err, ok := <-watcher.Errors:
				if !ok {
					return false
				}
				logger.Warn("Watcher error", "err", err)
			}
		}
	}

	finished := make(chan bool, 1)
	go func() { finished <- changed() }()

	select {
	case err := <-done:
		if err != nil && !isInterrupted(err) {
			logger.Error("Solve failed", "err", err)
			if !opts.Quiet {
				printSystemMessage(out, "Solve failed: %v", err)
			}
		}
		if !opts.Quiet && parent.Err() == nil {
			printSystemMessage(out, "Waiting for changes...")
		}
		return <-finished
	case again := <-finished:
		cancel()
		<-done
		return again
	}
}

// drain swallows the events that follow a change within d.
func drain(watcher *fsnotify.Watcher, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
			timer.Reset(d)
		case <-timer.C:
			return
		}
	}
}
