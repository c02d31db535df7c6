package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/archsynth"
	"github.com/aretw0/archsynth/internal/logging"
	"github.com/aretw0/archsynth/internal/presentation/tui"
	"github.com/aretw0/archsynth/pkg/adapters/process"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/engines"
	"github.com/aretw0/archsynth/pkg/problem"
	"github.com/aretw0/archsynth/pkg/session"
)

// lockTTL bounds how long a crashed solver can hold a problem lock.
const lockTTL = 30 * time.Second

// createRegistry returns the built-in engines plus the external commands
// of the commands file, if any.
func createRegistry(path string, logger *slog.Logger) (*engines.Registry, error) {
	reg := engines.Default()
	if path == "" {
		return reg, nil
	}
	cmds, err := process.LoadCommands(path)
	if err != nil {
		return nil, err
	}
	if len(cmds) > 0 {
		runner := process.NewRunner(process.WithRegistry(cmds), process.WithBaseDir(filepath.Dir(path)))
		process.Register(reg, runner)
		logger.Info("Process commands loaded", "path", path, "commands", runner.Names())
	}
	return reg, nil
}

// newManager wires logger, store, locker and engines into a session
// manager. The caller must Close the returned Persistence.
func newManager(o Options, hooks domain.LifecycleHooks) (*session.Manager, *Persistence, *slog.Logger, error) {
	logger, err := createLogger(o)
	if err != nil {
		return nil, nil, nil, err
	}
	reg, err := createRegistry(o.CommandsPath, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	pers, err := OpenStore(o.Store)
	if err != nil {
		return nil, nil, nil, err
	}

	if o.Debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithRegistry(reg),
		session.WithLifecycleHooks(hooks),
		session.WithMaxAttempts(o.MaxAttempts),
	}
	if pers.Locker != nil {
		opts = append(opts, session.WithLocker(pers.Locker, lockTTL))
	}
	return session.NewManager(pers.Store, opts...), pers, logger, nil
}

// RunSolve loads the problem, solves it and prints the report to out.
func RunSolve(ctx context.Context, opts RunOptions, out io.Writer) (*archsynth.Result, error) {
	p, err := problem.Load(opts.ProblemPath)
	if err != nil {
		return nil, err
	}
	mgr, pers, logger, err := newManager(opts.Options, domain.LifecycleHooks{})
	if err != nil {
		return nil, err
	}
	defer pers.Close()

	logger.Info("Solving", "problem", p.Name, "path", opts.ProblemPath)
	res, err := mgr.Solve(ctx, p, opts.Backend, opts.OutputDir)
	if res != nil && !opts.Quiet {
		printReport(out, res.Report)
		if res.SnapshotID != "" && pers.Store != nil {
			printSystemMessage(out, "Snapshot '%s' saved.", res.SnapshotID)
		}
		if opts.OutputDir != "" {
			printSystemMessage(out, "Dumps written to '%s'.", opts.OutputDir)
		}
	}
	return res, err
}

// Validate loads the problem and builds it without solving, so unknown
// engine kinds and bad engine arguments are reported too.
func Validate(path, commandsPath string) (*problem.Problem, error) {
	p, err := problem.Load(path)
	if err != nil {
		return nil, err
	}
	reg, err := createRegistry(commandsPath, logging.NewNop())
	if err != nil {
		return nil, err
	}
	if err := p.Build(archsynth.New(), reg); err != nil {
		return nil, err
	}
	return p, nil
}

// printReport writes the Markdown report, rendered when out is a terminal.
func printReport(out io.Writer, r domain.Report) {
	md := tui.ReportMarkdown(r)
	if f, ok := out.(*os.File); ok {
		if rendered, err := tui.NewRenderer(f)(md); err == nil {
			md = rendered
		}
	}
	fmt.Fprint(out, md)
}
