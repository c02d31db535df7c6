package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Schema maps parameter names to their types.
type Schema map[string]Type

// Parse builds a schema from declarations such as {"cores": "int"}.
func Parse(decls map[string]string) (Schema, error) {
	s := make(Schema, len(decls))
	var errs []error
	for param, decl := range decls {
		t, err := ParseType(decl)
		if err != nil {
			errs = append(errs, fmt.Errorf("param %q: %w", param, err))
			continue
		}
		s[param] = t
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// Declares reports whether param is part of the schema.
func (s Schema) Declares(param string) bool {
	_, ok := s[param]
	return ok
}

// Check validates the given values. Parameters are decided during the
// search, so a missing one is fine; an undeclared one is not.
func (s Schema) Check(values map[string]any) error {
	params := make([]string, 0, len(values))
	for p := range values {
		params = append(params, p)
	}
	sort.Strings(params)

	var errs []error
	for _, p := range params {
		t, ok := s[p]
		if !ok {
			errs = append(errs, &FieldError{Param: p, Reason: "not declared"})
			continue
		}
		if err := t.Check(values[p]); err != nil {
			errs = append(errs, &FieldError{Param: p, Reason: err.Error(), Value: values[p]})
		}
	}
	return errors.Join(errs...)
}

// Decls returns the declaration form of the schema.
func (s Schema) Decls() map[string]string {
	if s == nil {
		return nil
	}
	out := make(map[string]string, len(s))
	for p, t := range s {
		out[p] = t.Name()
	}
	return out
}

func (s Schema) MarshalJSON() ([]byte, error) { return json.Marshal(s.Decls()) }

func (s *Schema) UnmarshalJSON(data []byte) error {
	var decls map[string]string
	if err := json.Unmarshal(data, &decls); err != nil {
		return err
	}
	return s.set(decls)
}

func (s Schema) MarshalYAML() (any, error) { return s.Decls(), nil }

func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var decls map[string]string
	if err := node.Decode(&decls); err != nil {
		return err
	}
	return s.set(decls)
}

func (s *Schema) set(decls map[string]string) error {
	if decls == nil {
		*s = nil
		return nil
	}
	parsed, err := Parse(decls)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
