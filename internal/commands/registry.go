// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package commands holds the colon-prefixed meta-commands of the shell and the
// registry the dispatcher resolves them through.
package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"pgshell/cli/internal/shell"
)

// Handler runs a command with the argument text that followed its name.
type Handler func(ctx context.Context, args string) error

// Spec describes one command.
type Spec struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
	Handler     Handler
}

// Execute implements shell.Command.
func (s *Spec) Execute(ctx context.Context, args string) error {
	return s.Handler(ctx, args)
}

// Registry maps command names and aliases to specs.
type Registry struct {
	specs  []*Spec
	byName map[string]*Spec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Spec)}
}

// Register adds spec under its name and aliases. Names are unique across
// the registry; registering a taken name fails and changes nothing.
func (r *Registry) Register(spec *Spec) error {
	names := append([]string{spec.Name}, spec.Aliases...)
	for _, n := range names {
		if !strings.HasPrefix(n, ":") {
			return fmt.Errorf("command name %q must start with ':'", n)
		}
		if _, taken := r.byName[n]; taken {
			return fmt.Errorf("command %q already registered", n)
		}
	}
	for _, n := range names {
		r.byName[n] = spec
	}
	r.specs = append(r.specs, spec)
	return nil
}

// Lookup implements shell.Registry.
func (r *Registry) Lookup(name string) (shell.Command, bool) {
	spec, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return spec, true
}

// Get returns the spec registered under name or alias. The leading ':' may be omitted.
func (r *Registry) Get(name string) (*Spec, bool) {
	if !strings.HasPrefix(name, ":") {
		name = ":" + name
	}
	spec, ok := r.byName[name]
	return spec, ok
}

// Commands returns all specs sorted by name.
func (r *Registry) Commands() []*Spec {
	out := slices.Clone(r.specs)
	slices.SortFunc(out, func(a, b *Spec) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Names returns every name and alias, sorted. Used for completion.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
