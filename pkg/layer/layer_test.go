package layer_test

import (
	"testing"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayer_SlotLifecycle(t *testing.T) {
	l := layer.New("functional")
	x := l.Graph().AddNode("component", "x", nil)

	assert.Equal(t, layer.Unset, l.Slot(x, "platform").State())
	assert.True(t, l.Candidates(x, "platform").IsEmpty())

	require.NoError(t, l.SetCandidates(x, "platform", domain.NewSet("A", "B")))
	assert.Equal(t, layer.CandidatesKnown, l.Slot(x, "platform").State())

	assert.Error(t, l.SetValue(x, "platform", "C"), "value outside candidates")
	require.NoError(t, l.SetValue(x, "platform", "A"))
	v, ok := l.Value(x, "platform")
	assert.True(t, ok)
	assert.Equal(t, "A", v)
	assert.Equal(t, layer.ValueChosen, l.Slot(x, "platform").State())

	assert.Error(t, l.SetCandidates(x, "platform", domain.NewSet("B")), "chosen value must stay a candidate")

	u := l.Untracked()
	assert.Error(t, u.ClearCandidates(x, "platform"), "must not skip VALUE_CHOSEN -> UNSET")

	u.MarkFailed(x, "platform", "A")
	u.ClearValue(x, "platform")
	assert.Equal(t, layer.CandidatesKnown, l.Slot(x, "platform").State())
	assert.Error(t, l.SetValue(x, "platform", "A"), "failed value must not be re-chosen")
	assert.Equal(t, []any{"B"}, l.Slot(x, "platform").Remaining().Values())

	u.ClearFailed(x, "platform")
	require.NoError(t, u.ClearCandidates(x, "platform"))
	assert.Equal(t, layer.Unset, l.Slot(x, "platform").State())
	assert.Equal(t, []string{"platform"}, l.Params(x))
}

func TestLayer_SlotOnMissingObject(t *testing.T) {
	l := layer.New("functional")
	assert.Error(t, l.SetCandidates(7, "platform", domain.NewSet("A")))
}

func TestLayer_AssociationsAreSymmetric(t *testing.T) {
	a := layer.New("a")
	b := layer.New("b")
	x := a.Graph().AddNode("component", "x", nil)
	y1 := b.Graph().AddNode("component", "y1", nil)
	y2 := b.Graph().AddNode("component", "y2", nil)

	layer.Associate(a, x, b, y1)
	layer.Associate(a, x, b, y2)
	layer.Associate(a, x, b, y2)

	assert.ElementsMatch(t, []any{y1, y2}, toAny(a.Associated("b", x)))
	assert.Equal(t, []any{x}, toAny(b.Associated("a", y2)))
	assert.Equal(t, []string{"b"}, a.AssociatedLayers(x))

	layer.Dissociate(a, x, b, y2)
	assert.Len(t, a.Associated("b", x), 1)
	assert.Empty(t, b.Associated("a", y2))

	assert.Error(t, b.Untracked().Delete(y1), "still associated")
	layer.Dissociate(a, x, b, y1)
	require.NoError(t, b.Untracked().Delete(y1))
	assert.Empty(t, a.AssociatedLayers(x))
	assert.False(t, b.Graph().Has(y1))
}

func TestLayer_DeleteDropsSlots(t *testing.T) {
	l := layer.New("a")
	x := l.Graph().AddNode("component", "x", nil)
	require.NoError(t, l.SetCandidates(x, "p", domain.NewSet(1)))
	require.NoError(t, l.Untracked().Delete(x))
	assert.Empty(t, l.Params(x))
}

func toAny[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
