package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/archsynth/pkg/adapters/memory"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/engines"
	"github.com/aretw0/archsynth/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const problemYAML = `
name: mcp
layers:
  - name: functional
    nodes: [{name: x, type: component}]
steps:
  - {op: narrow, layer: functional, param: platform, engines: [{kind: static, args: {values: [A, B]}}]}
  - {op: choose, layer: functional, param: platform, engines: [{kind: first}]}
  - {op: validate, layer: functional, engines: [{kind: forbid, args: {param: platform, values: [A]}}]}
`

func newServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(session.NewManager(memory.NewStore()), engines.Default().Kinds(), nil)
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	c, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return c.Text
}

func TestSolveAndInspect(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	resp, err := s.handleSolve(ctx, call("solve", nil), map[string]any{"problem": problemYAML, "backend": "linear"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, resp.Report.Outcome)
	assert.Empty(t, resp.Error)
	require.NotEmpty(t, resp.SnapshotID)

	res, err := s.handleInspect(ctx, call("inspect_snapshot", map[string]any{"id": resp.SnapshotID}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "# archsynth report")

	res, err = s.handleInspect(ctx, call("inspect_snapshot", map[string]any{"id": resp.SnapshotID, "format": "decisions"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "graph TD")

	res, err = s.handleInspect(ctx, call("inspect_snapshot", map[string]any{"id": resp.SnapshotID, "format": "layer", "layer": "functional"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "graph LR")

	res, err = s.handleInspect(ctx, call("inspect_snapshot", map[string]any{"id": resp.SnapshotID, "format": "json"}))
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &snap))
	assert.Equal(t, "mcp", snap.Problem)

	res, err = s.handleInspect(ctx, call("inspect_snapshot", map[string]any{"id": resp.SnapshotID, "format": "layer", "layer": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleInspect(ctx, call("inspect_snapshot", map[string]any{"id": "missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSolve_Failures(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, err := s.handleSolve(ctx, call("solve", nil), map[string]any{"problem": "name: ["})
	assert.ErrorContains(t, err, "invalid problem")

	exhausted := problemYAML + "  - {op: validate, layer: functional, engines: [{kind: forbid, args: {param: platform, values: [B]}}]}\n"
	resp, err := s.handleSolve(ctx, call("solve", nil), map[string]any{"problem": exhausted})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeExhausted, resp.Report.Outcome)
	assert.NotEmpty(t, resp.Error)
}
