package schema

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Type checks the values a parameter may take.
type Type interface {
	// Name returns the declaration form, e.g. "int" or "[string]".
	Name() string
	Check(value any) error
}

type scalar struct {
	name  string
	check func(any) bool
}

func (t scalar) Name() string { return t.name }

func (t scalar) Check(value any) error {
	if !t.check(value) {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	return nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isInt(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		// JSON numbers decode as float64.
		return n == float64(int64(n))
	}
	return false
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return isInt(v)
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// String accepts strings.
func String() Type { return scalar{"string", isString} }

// Int accepts integers, including whole floats.
func Int() Type { return scalar{"int", isInt} }

// Float accepts any number.
func Float() Type { return scalar{"float", isFloat} }

// Bool accepts booleans.
func Bool() Type { return scalar{"bool", isBool} }

type sliceType struct{ elem Type }

// Slice accepts slices whose elements all satisfy elem.
func Slice(elem Type) Type { return sliceType{elem} }

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Check(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	for i := range rv.Len() {
		if err := t.elem.Check(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type enumType struct{ values []string }

// Enum accepts exactly the listed values, compared by their printed form.
func Enum(values ...string) Type { return enumType{values} }

func (t enumType) Name() string { return strings.Join(t.values, "|") }

func (t enumType) Check(value any) error {
	if !slices.Contains(t.values, fmt.Sprint(value)) {
		return fmt.Errorf("%v is not one of %s", value, t.Name())
	}
	return nil
}

// ParseType reads a declaration: string, int, float, bool, a slice such
// as [int], or an enumeration such as arm|x86.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[0] == '[' && s[len(s)-1] == ']' {
		elem, err := ParseType(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}
	if strings.Contains(s, "|") {
		parts := strings.Split(s, "|")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
			if parts[i] == "" {
				return nil, fmt.Errorf("empty alternative in %q", s)
			}
		}
		return Enum(parts...), nil
	}
	switch s {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	}
	return nil, fmt.Errorf("unsupported type: %q", s)
}
