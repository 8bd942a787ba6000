// Package shadertext checks that caller-supplied WGSL shader text parses
// and lowers with naga before a pipeline is built from it; conformance to
// the fixed binding contract in internal/binding is not checked here. The
// concrete shader bodies for the five kernels
// (create_permutation, permute, swap, count_swap, and the default
// create_displacement_goal) are an external collaborator specified only
// by their binding contracts, not something this package authors or
// ships — the same boundary the domain this module orchestrates draws
// around its own compute kernels.
package shadertext

import (
	"fmt"
	"path/filepath"

	"github.com/gogpu/naga"
)

// Validate parses and lowers WGSL source the same way hal/gles's
// compileWGSLToGLSL does, rejecting anything naga can't make sense of
// before a create_displacement_goal pipeline is (re)built from it.
func Validate(source string) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("shadertext: WGSL parse error: %w", err)
	}
	if _, err := naga.Lower(ast); err != nil {
		return fmt.Errorf("shadertext: WGSL lower error: %w", err)
	}
	return nil
}

// Config identifies a shader configuration: a WGSL source body plus the
// entry-point symbol inside it. spec.md §4.4's pipeline re-creation rule
// rebuilds a pipeline iff either field differs from the cached one.
type Config struct {
	Body       string
	EntryPoint string
}

// Changed reports whether the configuration differs from a previously
// cached one, the trigger for create_displacement_goal's pipeline
// rebuild.
func (c Config) Changed(cached Config) bool {
	return c.Body != cached.Body || c.EntryPoint != cached.EntryPoint
}

// Set is the assembled shader text for the five compute kernels, handed
// to the Operation Manager at construction. Nothing in this module
// authors kernel bodies: Set is populated by an external collaborator
// (the CLI's shader-assembly subcommand, or a directory of WGSL files
// loaded with LoadSet) and validated here before any pipeline is built
// from it.
type Set struct {
	CreatePermutation      Config
	Permute                Config
	Swap                   Config
	CountSwap              Config
	CreateDisplacementGoal Config
}

// Validate checks every member of the set with Validate, returning the
// first error encountered together with which kernel it came from.
func (s Set) Validate() error {
	members := []struct {
		name string
		cfg  Config
	}{
		{"create_permutation", s.CreatePermutation},
		{"permute", s.Permute},
		{"swap", s.Swap},
		{"count_swap", s.CountSwap},
		{"create_displacement_goal", s.CreateDisplacementGoal},
	}
	for _, m := range members {
		if err := Validate(m.cfg.Body); err != nil {
			return fmt.Errorf("shadertext: %s: %w", m.name, err)
		}
	}
	return nil
}

// LoadSet assembles a Set from a directory of ".wgsl" files named after
// their kernel (create_permutation.wgsl, permute.wgsl, swap.wgsl,
// count_swap.wgsl, create_displacement_goal.wgsl), each with a "main"
// entry point. This is the loader side of the external shader-assembly
// collaborator spec.md's CLI surface describes; it does not generate or
// embed any shader text of its own.
func LoadSet(dir string, readFile func(name string) (string, error)) (Set, error) {
	load := func(file string) (Config, error) {
		body, err := readFile(filepath.Join(dir, file))
		if err != nil {
			return Config{}, fmt.Errorf("shadertext: loading %s: %w", file, err)
		}
		return Config{Body: body, EntryPoint: "main"}, nil
	}
	var s Set
	var err error
	if s.CreatePermutation, err = load("create_permutation.wgsl"); err != nil {
		return Set{}, err
	}
	if s.Permute, err = load("permute.wgsl"); err != nil {
		return Set{}, err
	}
	if s.Swap, err = load("swap.wgsl"); err != nil {
		return Set{}, err
	}
	if s.CountSwap, err = load("count_swap.wgsl"); err != nil {
		return Set{}, err
	}
	if s.CreateDisplacementGoal, err = load("create_displacement_goal.wgsl"); err != nil {
		return Set{}, err
	}
	return s, nil
}
