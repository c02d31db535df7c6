package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// ExitRejected is the exit code a command uses to reject an object. Any
// other non-zero exit is an execution failure.
const ExitRejected = 1

// Runner executes allow-listed local commands.
type Runner struct {
	registry map[string]RegisteredProcess
	baseDir  string
}

// RegisteredProcess defines an allowed command execution.
type RegisteredProcess struct {
	Command string
	Args    []string
	Env     map[string]string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(commands map[string]CommandConfig) RunnerOption {
	return func(r *Runner) {
		for name, c := range commands {
			r.registry[name] = RegisteredProcess{Command: c.Command, Args: c.Args, Env: c.Environment}
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredProcess),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = RegisteredProcess{
		Command: command,
		Args:    args,
	}
}

// Has reports whether name is allow-listed.
func (r *Runner) Has(name string) bool {
	_, ok := r.registry[name]
	return ok
}

// Names lists the allow-listed commands.
func (r *Runner) Names() []string {
	out := make([]string, 0, len(r.registry))
	for name := range r.registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Verdict is the outcome of one command execution.
type Verdict struct {
	Accepted bool
	Output   string
}

// Run executes the named command. args are passed as ARCHSYNTH_ARG_<KEY>
// environment variables, never as flags; input is written to stdin as
// JSON. Exit code 0 accepts, ExitRejected rejects.
func (r *Runner) Run(ctx context.Context, name string, args map[string]any, input any) (Verdict, error) {
	proc, ok := r.registry[name]
	if !ok {
		return Verdict{}, fmt.Errorf("process command not registered: %s", name)
	}

	stdin, err := json.Marshal(input)
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to encode input: %w", err)
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Stdin = bytes.NewReader(stdin)

	env := cmd.Environ()
	for k, v := range proc.Env {
		env = append(env, k+"="+v)
	}
	for k, v := range args {
		env = append(env, fmt.Sprintf("ARCHSYNTH_ARG_%s=%s", strings.ToUpper(k), envValue(v)))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	out := strings.TrimSpace(stdout.String())

	var exit *exec.ExitError
	switch {
	case err == nil:
		return Verdict{Accepted: true, Output: out}, nil
	case errors.As(err, &exit) && exit.ExitCode() == ExitRejected && ctx.Err() == nil:
		return Verdict{Accepted: false, Output: out}, nil
	default:
		return Verdict{}, fmt.Errorf("execution of %s failed: %w. Stderr: %s", name, err, strings.TrimSpace(stderr.String()))
	}
}

// envValue formats primitives directly and everything else as JSON.
func envValue(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
