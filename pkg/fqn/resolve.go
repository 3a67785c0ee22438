package fqn

import (
	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// ResolveClass returns the model class an element instantiates.
func ResolveClass(m *model.Model, el *xmlast.Element) (*model.Class, bool) {
	name, ok := ToFQN(el)
	if !ok {
		return nil, false
	}
	return m.Class(name)
}

// ResolveAggregation treats el as an aggregation element of its parent class
// and returns the aggregation together with that class. Aggregation elements
// must share the parent's namespace prefix.
func ResolveAggregation(m *model.Model, el *xmlast.Element) (*model.Aggregation, *model.Class, bool) {
	if el == nil || el.Parent == nil || el.Prefix != el.Parent.Prefix {
		return nil, nil, false
	}
	if _, isClass := ResolveClass(m, el); isClass {
		return nil, nil, false
	}
	owner, ok := ResolveClass(m, el.Parent)
	if !ok {
		return nil, nil, false
	}
	agg, ok := model.FlattenAggregations(m, owner)[el.Local]
	if !ok {
		return nil, nil, false
	}
	return agg, owner, true
}

// ResolveProperty returns the property an attribute sets.
func ResolveProperty(m *model.Model, attr *xmlast.Attribute) (*model.Property, bool) {
	if attr == nil || attr.Prefix != "" {
		return nil, false
	}
	cls, ok := ResolveClass(m, attr.Parent)
	if !ok {
		return nil, false
	}
	p, ok := model.FlattenProperties(m, cls)[attr.Key]
	return p, ok
}

// ResolveEvent returns the event an attribute attaches a handler to.
func ResolveEvent(m *model.Model, attr *xmlast.Attribute) (*model.Event, bool) {
	if attr == nil || attr.Prefix != "" {
		return nil, false
	}
	cls, ok := ResolveClass(m, attr.Parent)
	if !ok {
		return nil, false
	}
	e, ok := model.FlattenEvents(m, cls)[attr.Key]
	return e, ok
}
