package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Operations(t *testing.T) {
	s := domain.NewSet("a", "b", "a", "c")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []any{"a", "b", "c"}, s.Values())

	o := domain.NewSet("c", "a", "z")
	assert.Equal(t, []any{"a", "c"}, s.Intersect(o).Values())
	assert.Equal(t, []any{"b"}, s.Minus(o).Values())
	assert.Equal(t, []any{"a", "c"}, s.Without("b").Values())
	assert.Equal(t, []any{"a", "b", "c", "d"}, s.Add("d").Values())
	assert.Equal(t, s, s.Add("a"))

	assert.True(t, domain.NewSet("c", "b", "a").Equal(s))
	assert.False(t, o.SubsetOf(s))
	assert.True(t, domain.NewSet().IsEmpty())

	first, ok := s.First()
	assert.True(t, ok)
	assert.Equal(t, "a", first)
}

func TestSet_Immutable(t *testing.T) {
	s := domain.NewSet(1, 2)
	vals := s.Values()
	vals[0] = 99
	assert.True(t, s.Contains(1))
	_ = s.Add(3)
	assert.Equal(t, 2, s.Len())
}

func TestSet_RejectsNonComparable(t *testing.T) {
	assert.Panics(t, func() { domain.NewSet([]int{1}) })
}

func TestSet_JSON(t *testing.T) {
	data, err := json.Marshal(domain.NewSet("x", "y"))
	require.NoError(t, err)
	assert.JSONEq(t, `["x","y"]`, string(data))

	var s domain.Set
	require.NoError(t, json.Unmarshal([]byte(`["x", 2, "x"]`), &s))
	assert.Equal(t, []any{"x", float64(2)}, s.Values())

	assert.Error(t, json.Unmarshal([]byte(`[[1]]`), &s))
}
