package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Builder assembles a Model. The builder takes ownership of the classes and
// enums passed to it; callers must not modify them after Build.
type Builder struct {
	key              Key
	defaultNamespace string
	rootType         string
	classes          map[string]*Class
	enums            map[string]*Enum
	errs             []error
}

// NewBuilder creates a builder for the given framework version.
func NewBuilder(framework, version string) *Builder {
	return &Builder{
		key:      Key{Framework: framework, Version: version},
		rootType: DefaultRootType,
		classes:  make(map[string]*Class),
		enums:    make(map[string]*Enum),
	}
}

// WithDefaultNamespace sets the namespace short class names resolve against.
func (b *Builder) WithDefaultNamespace(ns string) *Builder {
	b.defaultNamespace = ns
	return b
}

// WithRootType overrides the aggregation-bearing root class.
func (b *Builder) WithRootType(fqn string) *Builder {
	if fqn != "" {
		b.rootType = fqn
	}
	return b
}

// AddClass registers a class. Duplicate names are reported by Build.
func (b *Builder) AddClass(c *Class) *Builder {
	if c == nil || c.Name == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: class without a name", ErrMalformedModel))
		return b
	}
	if _, exists := b.classes[c.Name]; exists {
		b.errs = append(b.errs, fmt.Errorf("%w: duplicate class %q", ErrMalformedModel, c.Name))
		return b
	}
	b.classes[c.Name] = c
	return b
}

// AddEnum registers an enumeration.
func (b *Builder) AddEnum(e *Enum) *Builder {
	if e == nil || e.Name == "" {
		b.errs = append(b.errs, fmt.Errorf("%w: enum without a name", ErrMalformedModel))
		return b
	}
	if _, exists := b.enums[e.Name]; exists {
		b.errs = append(b.errs, fmt.Errorf("%w: duplicate enum %q", ErrMalformedModel, e.Name))
		return b
	}
	b.enums[e.Name] = e
	return b
}

// Build validates the collected nodes and returns the immutable Model.
// Inheritance cycles are not rejected here; traversals detect them lazily.
func (b *Builder) Build() (*Model, error) {
	errs := append([]error(nil), b.errs...)
	namespaces := make(map[string]struct{})

	for _, c := range b.classes {
		if c.Library == "" {
			c.Library = namespaceOf(c.Name)
		}
		if c.Library != "" {
			namespaces[c.Library] = struct{}{}
		}
		errs = append(errs, claimMembers(c)...)
	}
	for _, e := range b.enums {
		if e.Library == "" {
			e.Library = namespaceOf(e.Name)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	nsList := make([]string, 0, len(namespaces))
	for ns := range namespaces {
		nsList = append(nsList, ns)
	}
	sort.Strings(nsList)

	return &Model{
		key:              b.key,
		defaultNamespace: b.defaultNamespace,
		rootType:         b.rootType,
		classes:          b.classes,
		enums:            b.enums,
		namespaces:       nsList,
	}, nil
}

// claimMembers sets the owner of every member and checks per-kind name uniqueness.
func claimMembers(c *Class) []error {
	var errs []error

	seen := make(map[string]struct{}, len(c.Aggregations))
	for _, a := range c.Aggregations {
		if _, dup := seen[a.Name]; dup {
			errs = append(errs, &DuplicateMemberError{Class: c.Name, Kind: KindAggregation, Name: a.Name})
		}
		seen[a.Name] = struct{}{}
		a.Owner = c.Name
		if a.Cardinality == "" {
			a.Cardinality = CardinalityMultiple
		}
	}

	seen = make(map[string]struct{}, len(c.Properties))
	for _, p := range c.Properties {
		if _, dup := seen[p.Name]; dup {
			errs = append(errs, &DuplicateMemberError{Class: c.Name, Kind: KindProperty, Name: p.Name})
		}
		seen[p.Name] = struct{}{}
		p.Owner = c.Name
	}

	seen = make(map[string]struct{}, len(c.Events))
	for _, e := range c.Events {
		if _, dup := seen[e.Name]; dup {
			errs = append(errs, &DuplicateMemberError{Class: c.Name, Kind: KindEvent, Name: e.Name})
		}
		seen[e.Name] = struct{}{}
		e.Owner = c.Name
	}

	return errs
}

// namespaceOf returns everything before the last dot of an FQN.
func namespaceOf(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i]
	}
	return ""
}
