package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAttempt  EventType = "attempt"
	EventDecision EventType = "decision"
	EventRollback EventType = "rollback"
	EventFinish   EventType = "finish"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Attempt   int       `json:"attempt"`
}

// NewEventBase stamps an event.
func NewEventBase(t EventType, attempt int) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t, Attempt: attempt}
}

// AttemptEvent is fired at the start of every pass over the steps.
type AttemptEvent struct {
	EventBase
}

// DecisionEvent is fired after a decision has been recorded.
type DecisionEvent struct {
	EventBase
	Decision DecisionRef `json:"decision"`
	Value    any         `json:"value,omitempty"`
}

// RollbackEvent is fired after a failure has been rolled back.
type RollbackEvent struct {
	EventBase
	Failing  DecisionRef `json:"failing"`
	Culprit  DecisionRef `json:"culprit"`
	Rejected any         `json:"rejected"`
	Affected int         `json:"affected"`
}

// FinishEvent is fired once when the search ends, successfully or not.
type FinishEvent struct {
	EventBase
	Outcome Outcome `json:"outcome"`
	Stats   Stats   `json:"stats"`
	Err     error   `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnAttempt  func(context.Context, *AttemptEvent)
	OnDecision func(context.Context, *DecisionEvent)
	OnRollback func(context.Context, *RollbackEvent)
	OnFinish   func(context.Context, *FinishEvent)
}

// Merge returns hooks that call h first, then o.
func (h LifecycleHooks) Merge(o LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnAttempt:  chain(h.OnAttempt, o.OnAttempt),
		OnDecision: chain(h.OnDecision, o.OnDecision),
		OnRollback: chain(h.OnRollback, o.OnRollback),
		OnFinish:   chain(h.OnFinish, o.OnFinish),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
