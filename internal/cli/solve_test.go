package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const platformsProblem = "../../examples/platforms/problem.yaml"

func TestRunSolve(t *testing.T) {
	var out bytes.Buffer
	opts := RunOptions{
		Options:     Options{Store: StoreOptions{Kind: "memory"}},
		ProblemPath: platformsProblem,
		Backend:     "linear",
		OutputDir:   t.TempDir(),
	}

	res, err := RunSolve(context.Background(), opts, &out)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, res.Report.Outcome)
	assert.Equal(t, "linear", res.Report.Backend)
	assert.NotEmpty(t, res.SnapshotID)

	text := out.String()
	assert.Contains(t, text, "# archsynth report")
	assert.Contains(t, text, "Snapshot '"+res.SnapshotID+"' saved.")
	assert.Contains(t, text, "Dumps written to")

	entries, err := os.ReadDir(opts.OutputDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRunSolve_Quiet(t *testing.T) {
	var out bytes.Buffer
	opts := RunOptions{
		Options:     Options{Store: StoreOptions{Kind: "none"}},
		ProblemPath: platformsProblem,
		Quiet:       true,
	}
	res, err := RunSolve(context.Background(), opts, &out)
	require.NoError(t, err)
	assert.Equal(t, "tree", res.Report.Backend, "backend comes from the problem file")
	assert.Empty(t, out.String())
}

func TestRunSolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := RunOptions{
		Options:     Options{Store: StoreOptions{Kind: "memory"}},
		ProblemPath: platformsProblem,
		Quiet:       true,
	}
	_, err := RunSolve(ctx, opts, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, isInterrupted(err))
	assert.NoError(t, handleExecutionError(err))
}

func TestValidate(t *testing.T) {
	p, err := Validate(platformsProblem, "")
	require.NoError(t, err)
	assert.Equal(t, "platforms", p.Name)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`name: bad
layers:
  - name: functional
    nodes:
      - {name: a, type: component}
steps:
  - op: narrow
    layer: functional
    param: platform
    engines:
      - kind: crystal-ball
`), 0o644))

	_, err = Validate(bad, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crystal-ball")

	_, err = Validate(filepath.Join(dir, "missing.yaml"), "")
	assert.Error(t, err)
}

func TestValidate_Commands(t *testing.T) {
	dir := t.TempDir()
	cmds := filepath.Join(dir, "commands.yaml")
	require.NoError(t, os.WriteFile(cmds, []byte(`commands:
  - name: approve
    command: "true"
`), 0o644))
	prob := filepath.Join(dir, "problem.yaml")
	require.NoError(t, os.WriteFile(prob, []byte(`name: external
layers:
  - name: functional
    nodes:
      - {name: a, type: component}
steps:
  - op: narrow
    layer: functional
    param: platform
    engines:
      - kind: static
        args: {values: [arm]}
  - op: choose
    layer: functional
    param: platform
    engines:
      - kind: first
  - op: validate
    layer: functional
    engines:
      - kind: process
        args: {command: approve, reads: [platform]}
`), 0o644))

	_, err := Validate(prob, cmds)
	require.NoError(t, err)

	_, err = Validate(prob, "")
	require.Error(t, err, "process kind is unknown without a commands file")
}
