package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Set is an immutable ordered set of comparable values.
// Operations return new sets; iteration order is insertion order.
type Set struct {
	items []any
}

// NewSet builds a set, dropping duplicates. Non-comparable values panic.
func NewSet(values ...any) Set {
	s := Set{items: make([]any, 0, len(values))}
	for _, v := range values {
		if v != nil && !reflect.TypeOf(v).Comparable() {
			panic(fmt.Sprintf("domain: value of type %T is not comparable", v))
		}
		if !s.Contains(v) {
			s.items = append(s.items, v)
		}
	}
	return s
}

// Len returns the number of values.
func (s Set) Len() int { return len(s.items) }

// IsEmpty reports whether the set has no values.
func (s Set) IsEmpty() bool { return len(s.items) == 0 }

// Contains reports membership.
func (s Set) Contains(v any) bool {
	for _, x := range s.items {
		if x == v {
			return true
		}
	}
	return false
}

// Values returns a copy of the values in order.
func (s Set) Values() []any { return append([]any(nil), s.items...) }

// First returns the first value.
func (s Set) First() (any, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[0], true
}

// Add returns s with v appended if absent.
func (s Set) Add(v any) Set {
	if s.Contains(v) {
		return s
	}
	return NewSet(append(s.Values(), v)...)
}

// Without returns s minus v.
func (s Set) Without(v any) Set {
	return s.filter(func(x any) bool { return x != v })
}

// Minus returns the values of s not in o, keeping the order of s.
func (s Set) Minus(o Set) Set {
	return s.filter(func(x any) bool { return !o.Contains(x) })
}

// Intersect returns the values of s also in o, keeping the order of s.
func (s Set) Intersect(o Set) Set {
	return s.filter(o.Contains)
}

// SubsetOf reports whether every value of s is in o.
func (s Set) SubsetOf(o Set) bool {
	for _, x := range s.items {
		if !o.Contains(x) {
			return false
		}
	}
	return true
}

// Equal reports set equality, ignoring order.
func (s Set) Equal(o Set) bool {
	return s.Len() == o.Len() && s.SubsetOf(o)
}

func (s Set) filter(keep func(any) bool) Set {
	out := Set{items: make([]any, 0, len(s.items))}
	for _, x := range s.items {
		if keep(x) {
			out.items = append(out.items, x)
		}
	}
	return out
}

func (s Set) String() string {
	parts := make([]string, len(s.items))
	for i, x := range s.items {
		parts[i] = fmt.Sprint(x)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON encodes the set as a JSON array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes a JSON array. Nested arrays or objects are rejected
// because they would not be comparable.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, v := range raw {
		switch v.(type) {
		case []any, map[string]any:
			return fmt.Errorf("domain: set value %v is not comparable", v)
		}
	}
	*s = NewSet(raw...)
	return nil
}
