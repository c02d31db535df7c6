package problem

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Problem is the file form of a search: the initial layers and the
// pipeline of steps run over them.
type Problem struct {
	Name    string      `yaml:"name" json:"name"`
	Backend string      `yaml:"backend,omitempty" json:"backend,omitempty"`
	Layers  []LayerSpec `yaml:"layers" json:"layers"`
	Steps   []StepSpec  `yaml:"steps" json:"steps"`
}

// LayerSpec declares a layer and its initial objects. Later layers are
// usually empty and filled by translations.
type LayerSpec struct {
	Name string `yaml:"name" json:"name"`
	// Params optionally declares the parameter types of the layer. When
	// set, initial parameters are checked and steps may only work on
	// declared parameters.
	Params schema.Schema `yaml:"params,omitempty" json:"params,omitempty"`
	Nodes  []NodeSpec    `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	Edges  []EdgeSpec    `yaml:"edges,omitempty" json:"edges,omitempty"`
}

// NodeSpec declares a node. Names must be unique within the layer.
type NodeSpec struct {
	Name   string         `yaml:"name" json:"name"`
	Type   string         `yaml:"type" json:"type"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// EdgeSpec declares an edge between two nodes referenced by name.
type EdgeSpec struct {
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"`
	Type   string         `yaml:"type" json:"type"`
	From   string         `yaml:"from" json:"from"`
	To     string         `yaml:"to" json:"to"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// StepSpec declares one pipeline step.
type StepSpec struct {
	Name    string       `yaml:"name,omitempty" json:"name,omitempty"`
	Op      string       `yaml:"op" json:"op"`
	Layer   string       `yaml:"layer" json:"layer"`
	Param   string       `yaml:"param,omitempty" json:"param,omitempty"`
	Target  string       `yaml:"target,omitempty" json:"target,omitempty"`
	Edges   bool         `yaml:"edges,omitempty" json:"edges,omitempty"`
	Types   []string     `yaml:"types,omitempty" json:"types,omitempty"`
	Engines []EngineSpec `yaml:"engines" json:"engines"`
}

// EngineSpec references a registered engine kind.
type EngineSpec struct {
	Kind  string         `yaml:"kind" json:"kind"`
	Name  string         `yaml:"name,omitempty" json:"name,omitempty"`
	Types []string       `yaml:"types,omitempty" json:"types,omitempty"`
	Args  map[string]any `yaml:"args,omitempty" json:"args,omitempty"`
}

// Load reads a problem file. Files ending in .json are decoded as JSON,
// anything else as YAML.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read problem: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var p Problem
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return &p, nil
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// Parse decodes a YAML problem. Unknown fields are rejected.
func Parse(data []byte) (*Problem, error) {
	var p Problem
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty problem")
		}
		return nil, err
	}
	return &p, nil
}

// Validate checks the structure of the problem without building engines.
// All problems found are reported together.
func (p *Problem) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	layers := make(map[string]bool)
	schemas := make(map[string]schema.Schema)
	for i, l := range p.Layers {
		if l.Name == "" {
			fail("layer %d: missing name", i)
			continue
		}
		if layers[l.Name] {
			fail("layer %q: declared twice", l.Name)
		}
		layers[l.Name] = true
		schemas[l.Name] = l.Params

		nodes := make(map[string]bool)
		for j, n := range l.Nodes {
			switch {
			case n.Name == "":
				fail("layer %q node %d: missing name", l.Name, j)
			case nodes[n.Name]:
				fail("layer %q node %q: declared twice", l.Name, n.Name)
			}
			nodes[n.Name] = true
			if l.Params != nil {
				if err := l.Params.Check(n.Params); err != nil {
					fail("layer %q node %q: %w", l.Name, n.Name, err)
				}
			}
		}
		for j, e := range l.Edges {
			for _, end := range []string{e.From, e.To} {
				if !nodes[end] {
					fail("layer %q edge %d: unknown node %q", l.Name, j, end)
				}
			}
			if l.Params != nil {
				if err := l.Params.Check(e.Params); err != nil {
					fail("layer %q edge %d: %w", l.Name, j, err)
				}
			}
		}
	}

	if len(p.Steps) == 0 {
		fail("no steps")
	}
	for i, s := range p.Steps {
		where := fmt.Sprintf("step %d", i)
		if s.Name != "" {
			where = fmt.Sprintf("step %d (%s)", i, s.Name)
		}
		if !layers[s.Layer] {
			fail("%s: unknown layer %q", where, s.Layer)
		}
		switch domain.OpKind(s.Op) {
		case domain.OpNarrow, domain.OpChoose:
			if s.Param == "" {
				fail("%s: %s needs a param", where, s.Op)
			} else if sc := schemas[s.Layer]; sc != nil && !sc.Declares(s.Param) {
				fail("%s: param %q not declared by layer %q", where, s.Param, s.Layer)
			}
		case domain.OpTranslate:
			if !layers[s.Target] {
				fail("%s: unknown target layer %q", where, s.Target)
			}
		case domain.OpValidate:
		default:
			fail("%s: unknown op %q", where, s.Op)
		}
		if len(s.Engines) == 0 {
			fail("%s: no engine", where)
		}
		for j, e := range s.Engines {
			if e.Kind == "" {
				fail("%s engine %d: missing kind", where, j)
			}
		}
	}
	return errors.Join(errs...)
}
