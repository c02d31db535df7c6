package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/archsynth/pkg/adapters/memory"
	"github.com/aretw0/archsynth/pkg/adapters/redis"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/problem"
	"github.com/aretw0/archsynth/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `
name: single
layers:
  - name: functional
    nodes:
      - {name: x, type: component}
steps:
  - op: narrow
    layer: functional
    param: platform
    engines: [{kind: static, args: {values: [A, B]}}]
  - op: choose
    layer: functional
    param: platform
    engines: [{kind: first}]
  - op: validate
    layer: functional
    engines: [{kind: forbid, args: {param: platform, values: [A]}}]
`

func parse(t *testing.T) *problem.Problem {
	t.Helper()
	p, err := problem.Parse([]byte(source))
	require.NoError(t, err)
	return p
}

func TestManager_Solve(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	res, err := mgr.Solve(ctx, parse(t), "", "")
	require.NoError(t, err)
	assert.Equal(t, session.DefaultBackend, res.Report.Backend)
	assert.Equal(t, "B", res.Report.Layers[0].Values["x"]["platform"])

	snap, err := mgr.Load(ctx, res.SnapshotID)
	require.NoError(t, err)
	assert.Equal(t, "single", snap.Problem)

	require.NoError(t, mgr.Delete(ctx, res.SnapshotID))
	_, err = mgr.Load(ctx, res.SnapshotID)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestManager_SolveBackend(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	p := parse(t)
	p.Backend = "tree"

	res, err := mgr.Solve(context.Background(), p, "", "")
	require.NoError(t, err)
	assert.Equal(t, "tree", res.Report.Backend)

	res, err = mgr.Solve(context.Background(), p, "linear", "")
	require.NoError(t, err)
	assert.Equal(t, "linear", res.Report.Backend)

	_, err = mgr.Solve(context.Background(), p, "quantum", "")
	assert.Error(t, err)
}

func TestManager_SolveInvalidProblem(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	p := parse(t)
	p.Steps[0].Engines[0].Kind = "oracle"

	_, err := mgr.Solve(context.Background(), p, "", "")
	assert.ErrorContains(t, err, `invalid problem "single"`)
}

// TestManager_Serialised checks that concurrent solves of the same problem
// never overlap, with a distributed locker in place.
func TestManager_Serialised(t *testing.T) {
	mr := miniredis.RunT(t)
	locker := redis.NewLocker(redis.New(mr.Addr(), "", 0).Client(), "archsynth:")

	var running, overlaps atomic.Int32
	hooks := domain.LifecycleHooks{
		OnAttempt: func(context.Context, *domain.AttemptEvent) {
			if running.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
		},
	}
	mgr := session.NewManager(memory.NewStore(),
		session.WithLocker(locker, time.Second),
		session.WithLifecycleHooks(hooks),
	)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Solve(context.Background(), parse(t), "", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Zero(t, overlaps.Load())

	ids, err := mgr.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 5)
}
