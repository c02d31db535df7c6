package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/archsynth/internal/decision"
	"github.com/aretw0/archsynth/internal/runtime"
	"github.com/aretw0/archsynth/internal/testutils"
	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/engines"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/pipeline"
	"github.com/aretw0/archsynth/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario: x is narrowed to {A,B}, A is chosen and rejected by a check.
// The choice of x is the culprit, B is picked on retry and passes.
func TestController_RetryWithNextCandidate(t *testing.T) {
	for _, kind := range decision.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			f := newFixture(t, "functional")
			x := f.node("functional", "x")
			f.steps(t,
				pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "A", "B")),
				pipeline.Choose("functional", "platform", testutils.First("functional", "platform")),
				pipeline.Validate("functional", testutils.Forbid("functional", "platform", "A")),
			)

			var rollbacks []*domain.RollbackEvent
			c := f.controller(t, kind, runtime.WithLifecycleHooks(domain.LifecycleHooks{
				OnRollback: func(_ context.Context, e *domain.RollbackEvent) { rollbacks = append(rollbacks, e) },
			}))
			require.NoError(t, c.Run(context.Background()))

			assert.Equal(t, "B", f.value("functional", x, "platform"))
			require.Len(t, rollbacks, 1)
			assert.Equal(t, domain.OpChoose, rollbacks[0].Culprit.Kind)
			assert.Equal(t, "A", rollbacks[0].Rejected)

			stats := c.Stats()
			assert.Equal(t, 2, stats.Attempts)
			assert.Equal(t, 1, stats.Rollbacks)
			assert.Equal(t, 1, stats.RolledBack, "only the failed check leaves the graph")
			assert.Equal(t, 3, stats.Decisions)
			assert.Equal(t, int64(2), stats.SearchSpace.Int64())
			for i := range 3 {
				assert.True(t, c.Completed(i))
			}
		})
	}
}

// independentPair narrows and chooses x and y from {A,B}; the check rejects
// y = A only.
func independentPair(t *testing.T, kind decision.Kind, opts ...runtime.Option) (*fixture, *runtime.Controller, graph.ID, graph.ID) {
	f := newFixture(t, "functional")
	x := f.node("functional", "x")
	y := f.node("functional", "y")
	check := &testutils.Checker{
		Base: testutils.Reads("y-not-a", "functional", "platform"),
		Fn: func(_ context.Context, v ports.View, obj graph.ID) (bool, error) {
			o, _ := v.Object("functional", obj)
			if o.Name != "y" {
				return true, nil
			}
			val, _ := v.Value("functional", obj, "platform")
			return val != "A", nil
		},
	}
	f.steps(t,
		pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "A", "B")),
		pipeline.Choose("functional", "platform", testutils.First("functional", "platform")),
		pipeline.Validate("functional", check),
	)
	return f, f.controller(t, kind, opts...), x, y
}

// Scenario: x and y are independent; a failed check on y only rolls back
// the choice of y.
func TestController_IndependentRollback(t *testing.T) {
	t.Run("topological", func(t *testing.T) {
		var (
			f        *fixture
			c        *runtime.Controller
			x, y     graph.ID
			affected int
			cx       *decision.Node
		)
		hooks := domain.LifecycleHooks{
			OnRollback: func(_ context.Context, e *domain.RollbackEvent) {
				affected = e.Affected
				cx, _ = c.Graph().Lookup(decision.OpKey{Step: 1, Obj: x})
			},
		}
		f, c, x, y = independentPair(t, decision.Topological, runtime.WithLifecycleHooks(hooks))

		require.NoError(t, c.Run(context.Background()))
		assert.Equal(t, "A", f.value("functional", x, "platform"))
		assert.Equal(t, "B", f.value("functional", y, "platform"))
		assert.Equal(t, 2, affected, "choice of y and its check")

		require.NotNil(t, cx, "x was chosen before y failed")
		after, ok := c.Graph().Lookup(decision.OpKey{Step: 1, Obj: x})
		require.True(t, ok)
		assert.Same(t, cx, after, "the choice of x was never undone")
		assert.Equal(t, cx.Seq, after.Seq)
		assert.True(t, after.Valid)
		assert.Zero(t, c.Stats().CutOff.Sign(), "nothing chosen after y survived")
	})

	t.Run("linear", func(t *testing.T) {
		var affected int
		hooks := domain.LifecycleHooks{
			OnRollback: func(_ context.Context, e *domain.RollbackEvent) { affected = e.Affected },
		}
		f, c, x, y := independentPair(t, decision.Linear, runtime.WithLifecycleHooks(hooks))
		require.NoError(t, c.Run(context.Background()))
		assert.Equal(t, "A", f.value("functional", x, "platform"))
		assert.Equal(t, "B", f.value("functional", y, "platform"))
		assert.Equal(t, 3, affected, "the check of x is chronologically after y and goes too")
	})
}

// Rolling back y must not touch anything outside the affected set.
func TestController_RollbackSoundness(t *testing.T) {
	var before, after *domain.Snapshot
	var c *runtime.Controller
	f := newFixture(t, "functional")
	x := f.node("functional", "x")
	y := f.node("functional", "y")
	check := &testutils.Checker{
		Base: testutils.Reads("y-not-a", "functional", "platform"),
		Fn: func(_ context.Context, v ports.View, obj graph.ID) (bool, error) {
			val, _ := v.Value("functional", obj, "platform")
			if obj == y && val == "A" {
				before = c.Snapshot("before", nil)
				return false, nil
			}
			return true, nil
		},
	}
	f.steps(t,
		pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "A", "B")),
		pipeline.Choose("functional", "platform", testutils.First("functional", "platform")),
		pipeline.Validate("functional", check),
	)
	c = f.controller(t, decision.Topological, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnRollback: func(context.Context, *domain.RollbackEvent) { after = c.Snapshot("after", nil) },
	}))
	require.NoError(t, c.Run(context.Background()))
	require.NotNil(t, before)
	require.NotNil(t, after)

	slotsOf := func(s *domain.Snapshot, obj graph.ID) []domain.SlotSnapshot {
		l, _ := s.Layer("functional")
		var out []domain.SlotSnapshot
		for _, sl := range l.Slots {
			if sl.Object == obj {
				out = append(out, sl)
			}
		}
		return out
	}
	assert.Equal(t, slotsOf(before, x), slotsOf(after, x))
	assert.NotEqual(t, slotsOf(before, y), slotsOf(after, y))

	lb, _ := before.Layer("functional")
	la, _ := after.Layer("functional")
	assert.Equal(t, lb.Objects, la.Objects, "no object deleted")
}

// Scenario: the only choice has a single candidate, so a failing check
// exhausts the search instead of looping.
func TestController_SearchExhausted(t *testing.T) {
	for _, kind := range decision.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			f := newFixture(t, "functional")
			f.node("functional", "x")
			f.steps(t,
				pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "A")),
				pipeline.Choose("functional", "platform", testutils.First("functional", "platform")),
				pipeline.Validate("functional", testutils.Forbid("functional", "platform", "A")),
			)
			var finish *domain.FinishEvent
			c := f.controller(t, kind, runtime.WithLifecycleHooks(domain.LifecycleHooks{
				OnFinish: func(_ context.Context, e *domain.FinishEvent) { finish = e },
			}))

			err := c.Run(context.Background())
			require.ErrorIs(t, err, domain.ErrSearchExhausted)
			var exhausted *domain.SearchExhausted
			require.True(t, errors.As(err, &exhausted))
			assert.Equal(t, domain.OpValidate, exhausted.Failing.Kind)
			assert.Equal(t, 1, exhausted.Stats.Attempts)

			require.NotNil(t, finish)
			assert.Equal(t, domain.OutcomeExhausted, finish.Outcome)
			assert.Equal(t, domain.OutcomeExhausted, c.Report(err).Outcome)
		})
	}
}

// A choice among k candidates is revised exactly k-1 times before the
// search looks further up.
func TestController_CandidateExhaustion(t *testing.T) {
	for _, kind := range decision.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			f := newFixture(t, "functional")
			f.node("functional", "x")
			chooser := testutils.First("functional", "platform")
			f.steps(t,
				pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "A", "B", "C")),
				pipeline.Choose("functional", "platform", chooser),
				pipeline.Validate("functional", testutils.Forbid("functional", "platform", "A", "B", "C")),
			)
			c := f.controller(t, kind)

			err := c.Run(context.Background())
			require.ErrorIs(t, err, domain.ErrSearchExhausted)
			assert.Equal(t, 2, c.Stats().Rollbacks)
			assert.Equal(t, 3, c.Stats().Attempts)
			assert.Equal(t, 3, chooser.Calls)
		})
	}
}

// When the check depends on x and y and only x = B, y = A passes, backends
// that undo y together with x find it. The topological backend keeps the
// rejection of A for y because y does not depend on x.
func TestController_JoinedBranches(t *testing.T) {
	build := func(t *testing.T, kind decision.Kind) (*fixture, *runtime.Controller, graph.ID, graph.ID) {
		f := newFixture(t, "functional")
		x := f.node("functional", "x")
		y := f.node("functional", "y")
		check := &testutils.Checker{
			Base: testutils.Reads("pair", "functional", "platform"),
			Fn: func(_ context.Context, v ports.View, obj graph.ID) (bool, error) {
				if obj != y {
					return true, nil
				}
				vx, _ := v.Value("functional", x, "platform")
				vy, _ := v.Value("functional", y, "platform")
				return vx == "B" && vy == "A", nil
			},
		}
		f.steps(t,
			pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "A", "B")),
			pipeline.Choose("functional", "platform", testutils.First("functional", "platform")),
			pipeline.Validate("functional", check),
		)
		return f, f.controller(t, kind), x, y
	}

	for _, kind := range decision.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			f, c, x, y := build(t, kind)
			require.NoError(t, c.Run(context.Background()))
			assert.Equal(t, "B", f.value("functional", x, "platform"))
			assert.Equal(t, "A", f.value("functional", y, "platform"))
			assert.Equal(t, 3, c.Stats().Attempts)
			assert.Equal(t, 2, c.Stats().Rollbacks)
		})
	}
}

// Scenario: batch checks over y in {A,B} and z in {A,C}, where A may be
// used once and C never. z runs out of values while y holds A; the retry
// of y must give z its values back.
func TestController_JoinedBatchChecks(t *testing.T) {
	mk := func(t *testing.T, kind string, args map[string]any) ports.Engine {
		e, err := engines.Default().Build(kind, engines.Binding{Layer: "functional", Param: "platform"}, args)
		require.NoError(t, err)
		return e
	}

	for _, kind := range decision.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			f := newFixture(t, "functional")
			y := f.node("functional", "y")
			z := f.node("functional", "z")
			f.steps(t,
				pipeline.Narrow("functional", "platform", testutils.PerObject("functional", "platform", map[string][]any{
					"y": {"A", "B"},
					"z": {"A", "C"},
				})),
				pipeline.Choose("functional", "platform", testutils.First("functional", "platform")),
				pipeline.Validate("functional",
					mk(t, "distinct", map[string]any{"param": "platform"}),
					mk(t, "capacity", map[string]any{"param": "platform", "limits": map[string]any{"A": 1, "B": 1, "C": 0}}),
				),
			)
			c := f.controller(t, kind)
			require.NoError(t, c.Run(context.Background()))
			assert.Equal(t, "B", f.value("functional", y, "platform"))
			assert.Equal(t, "A", f.value("functional", z, "platform"))
			assert.Equal(t, 3, c.Stats().Attempts)
		})
	}
}

// Executing completed steps again changes neither slots nor decisions.
func TestController_SkipIsIdempotent(t *testing.T) {
	for _, kind := range decision.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			f, c, _, _ := independentPair(t, kind)
			ctx := context.Background()
			require.NoError(t, c.Run(ctx))

			before := c.Snapshot("s", nil)
			for i := range f.reg.Steps() {
				require.NoError(t, c.ExecuteStep(ctx, i))
			}
			after := c.Snapshot("s", nil)

			assert.Equal(t, before.Layers, after.Layers)
			assert.Equal(t, before.Decisions, after.Decisions)
		})
	}
}

func TestController_ContractViolations(t *testing.T) {
	cases := map[string]func(f *fixture) []*pipeline.Step{
		"value outside candidates": func(f *fixture) []*pipeline.Step {
			bad := testutils.First("functional", "platform")
			bad.Fn = func(context.Context, ports.View, graph.ID, domain.Set) (any, error) { return "Z", nil }
			return []*pipeline.Step{
				pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "A")),
				pipeline.Choose("functional", "platform", bad),
			}
		},
		"empty candidate set": func(f *fixture) []*pipeline.Step {
			return []*pipeline.Step{
				pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform")),
				pipeline.Choose("functional", "platform", testutils.First("functional", "platform")),
			}
		},
		"undeclared read": func(f *fixture) []*pipeline.Step {
			sneaky := testutils.Static("functional", "platform", "A")
			sneaky.Fn = func(_ context.Context, v ports.View, obj graph.ID, _ domain.Set) (domain.Set, error) {
				v.Value("functional", obj, "secret")
				return domain.NewSet("A"), nil
			}
			return []*pipeline.Step{pipeline.Narrow("functional", "platform", sneaky)}
		},
		"produced type not declared": func(f *fixture) []*pipeline.Step {
			tr := testutils.PassThrough()
			tr.Targets = []string{"proxy"}
			return []*pipeline.Step{pipeline.Translate("functional", "component", tr)}
		},
	}

	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, "functional", "component")
			f.node("functional", "x")
			f.steps(t, build(f)...)
			err := f.controller(t, decision.Topological).Run(context.Background())
			assert.ErrorIs(t, err, domain.ErrContractViolation)
			assert.NotErrorIs(t, err, domain.ErrSearchExhausted)
		})
	}
}

func TestController_EngineErrorIsFatal(t *testing.T) {
	boom := errors.New("solver unavailable")
	f := newFixture(t, "functional")
	f.node("functional", "x")
	failing := testutils.Static("functional", "platform")
	failing.Fn = func(context.Context, ports.View, graph.ID, domain.Set) (domain.Set, error) { return domain.Set{}, boom }
	f.steps(t, pipeline.Narrow("functional", "platform", failing))

	c := f.controller(t, decision.Tree)
	err := c.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `engine "static"`)
	assert.Equal(t, 1, c.Stats().Attempts)
	assert.Equal(t, domain.OutcomeFailed, c.Report(err).Outcome)
}

func TestController_Cancellation(t *testing.T) {
	_, c, _, _ := independentPair(t, decision.Topological)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, c.Stats().Attempts)
}

func TestController_MaxAttempts(t *testing.T) {
	_, c, _, _ := independentPair(t, decision.Topological, runtime.WithMaxAttempts(1))
	err := c.Run(context.Background())
	assert.ErrorIs(t, err, runtime.ErrAttemptLimit)
}

func TestController_HooksAndObserver(t *testing.T) {
	var attempts, decisions, finished int
	var executed []int
	_, c, _, _ := independentPair(t, decision.Topological,
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnAttempt:  func(context.Context, *domain.AttemptEvent) { attempts++ },
			OnDecision: func(context.Context, *domain.DecisionEvent) { decisions++ },
			OnFinish:   func(context.Context, *domain.FinishEvent) { finished++ },
		}),
		runtime.WithStepObserver(func(_ context.Context, i int, _ *pipeline.Step) { executed = append(executed, i) }),
	)
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, finished)
	// 2 narrows, 2 choices, 2 checks, then the revised choice and its check.
	assert.Equal(t, 8, decisions)
	assert.Equal(t, []int{0, 1, 1, 2}, executed, "the failing step is not reported")
}

func TestController_DanglingReference(t *testing.T) {
	f := newFixture(t, "functional")
	x := f.node("functional", "x")
	vandal := testutils.Forbid("functional", "platform", "A")
	forbid := vandal.Fn
	vandal.Fn = func(ctx context.Context, v ports.View, obj graph.ID) (bool, error) {
		ok, err := forbid(ctx, v, obj)
		if !ok {
			// Removes x behind the back of the controller.
			require.NoError(t, f.layers["functional"].Graph().Remove(x))
		}
		return ok, err
	}
	f.steps(t,
		pipeline.Narrow("functional", "platform", testutils.Static("functional", "platform", "A", "B")),
		pipeline.Choose("functional", "platform", testutils.First("functional", "platform")),
		pipeline.Validate("functional", vandal),
	)

	err := f.controller(t, decision.Linear).Run(context.Background())
	require.ErrorIs(t, err, domain.ErrContractViolation)
	assert.Contains(t, err.Error(), "dangling reference")
}
