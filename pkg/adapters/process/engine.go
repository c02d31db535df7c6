package process

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/archsynth/pkg/engines"
	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Kind is the engine kind Register installs.
const Kind = "process"

// Register makes allow-listed commands usable as checkers in problems:
//
//	engines: [{kind: process, args: {command: latency, reads: [platform]}}]
func Register(reg *engines.Registry, r *Runner) {
	reg.Register(Kind, Factory(r))
}

type checkerArgs struct {
	Command string         `mapstructure:"command"`
	Reads   []string       `mapstructure:"reads"`
	Env     map[string]any `mapstructure:"env"`
}

// Factory builds Checker engines backed by r.
func Factory(r *Runner) engines.Factory {
	return func(b engines.Binding, args map[string]any) (ports.Engine, error) {
		var a checkerArgs
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &a, ErrorUnused: true})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		if a.Command == "" {
			return nil, errors.New("process needs a command")
		}
		if !r.Has(a.Command) {
			return nil, fmt.Errorf("process command not registered: %s", a.Command)
		}
		return &Checker{
			name:    b.Name,
			layer:   b.Layer,
			sources: b.Types,
			command: a.Command,
			reads:   a.Reads,
			env:     a.Env,
			runner:  r,
		}, nil
	}
}

// Checker validates one object by running an external command.
type Checker struct {
	name    string
	layer   string
	sources []string
	command string
	reads   []string
	env     map[string]any
	runner  *Runner
}

func (c *Checker) Name() string          { return c.name }
func (c *Checker) SourceTypes() []string { return c.sources }
func (c *Checker) ACL() ports.ACL {
	return ports.ACL{c.layer: {Reads: c.reads}}
}

// Input is what the command receives on stdin.
type Input struct {
	Layer  string         `json:"layer"`
	Object *graph.Object  `json:"object"`
	Values map[string]any `json:"values"`
}

func (c *Checker) Check(ctx context.Context, v ports.View, obj graph.ID) (bool, error) {
	o, ok := v.Object(c.layer, obj)
	if !ok {
		return false, fmt.Errorf("object %d not found in %s", obj, c.layer)
	}
	in := Input{Layer: c.layer, Object: o, Values: make(map[string]any, len(c.reads))}
	for _, p := range c.reads {
		if val, ok := v.Value(c.layer, obj, p); ok {
			in.Values[p] = val
		}
	}
	verdict, err := c.runner.Run(ctx, c.command, c.env, in)
	if err != nil {
		return false, err
	}
	return verdict.Accepted, nil
}
