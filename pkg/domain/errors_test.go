package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrors_Matching(t *testing.T) {
	exhausted := &domain.SearchExhausted{Failing: domain.DecisionRef{Seq: 3, Kind: domain.OpValidate}}
	wrapped := fmt.Errorf("execute: %w", exhausted)
	assert.ErrorIs(t, wrapped, domain.ErrSearchExhausted)
	assert.NotErrorIs(t, wrapped, domain.ErrContractViolation)

	var se *domain.SearchExhausted
	assert.True(t, errors.As(wrapped, &se))
	assert.Equal(t, uint64(3), se.Failing.Seq)

	cause := errors.New("boom")
	cv := &domain.ContractViolation{Engine: "chooser", Step: 1, Reason: "bad value", Err: cause}
	assert.ErrorIs(t, cv, domain.ErrContractViolation)
	assert.ErrorIs(t, cv, cause)
	assert.Contains(t, cv.Error(), `engine "chooser", step 1`)

	cns := &domain.ConstraintNotSatisfied{Decision: domain.DecisionRef{Seq: 7, Kind: domain.OpValidate, Engine: "cap"}, Reason: "too big"}
	assert.Contains(t, cns.Error(), "#7 validate cap")
	assert.Contains(t, cns.Error(), "too big")
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnAttempt: func(context.Context, *domain.AttemptEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnAttempt: func(context.Context, *domain.AttemptEvent) { calls = append(calls, "b") },
		OnFinish:  func(context.Context, *domain.FinishEvent) { calls = append(calls, "finish") },
	}

	m := a.Merge(b)
	m.OnAttempt(context.Background(), &domain.AttemptEvent{})
	m.OnFinish(context.Background(), &domain.FinishEvent{})
	assert.Nil(t, m.OnRollback)
	assert.Equal(t, []string{"a", "b", "finish"}, calls)
}
