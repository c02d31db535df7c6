package cli

import (
	"context"
	"os"
	"time"
)

// StoreOptions selects and configures the snapshot store.
type StoreOptions struct {
	// Kind is one of file, redis, memory or none.
	Kind          string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	// EncryptionKey is a 32-byte key in hex or base64. FallbackKeys hold
	// retired keys still accepted for reading.
	EncryptionKey string
	FallbackKeys  []string
	// PIIPatterns masks matching parameters before saving.
	PIIPatterns []string
}

// Options are shared by every command that solves problems.
type Options struct {
	Store        StoreOptions
	CommandsPath string
	MaxAttempts  int
	Debug        bool
	LogLevel     string
	LogFormat    string
}

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Options
	ProblemPath string
	Backend     string
	OutputDir   string
	Quiet       bool
	Watch       bool
}

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Options
	Port int
}

// MCPOptions configures the MCP server.
type MCPOptions struct {
	Options
	SSE  bool
	Port int
}

// Execute handles the run command, dispatching to single or watch mode.
func Execute(opts RunOptions) error {
	if opts.Watch {
		return RunWatch(context.Background(), opts, os.Stdout)
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	_, err := RunSolve(sigCtx, opts, os.Stdout)
	if sigCtx.Signal() != nil && !opts.Quiet {
		printSystemMessage(os.Stdout, "Interrupted (%v).", sigCtx.Signal())
	}
	return handleExecutionError(err)
}
