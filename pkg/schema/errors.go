package schema

import "fmt"

// FieldError is a single parameter that failed its schema. Value is nil
// for undeclared parameters.
type FieldError struct {
	Param  string
	Reason string
	Value  any
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("param %q: %s", e.Param, e.Reason)
}
