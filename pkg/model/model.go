package model

import (
	"sort"
	"strings"
)

// DefaultRootType is the class every aggregation-bearing element descends from.
const DefaultRootType = "sap.ui.core.Element"

// Visibility of a model node.
type Visibility string

// Visibility values as they appear in framework API metadata.
const (
	VisibilityPublic     Visibility = "public"
	VisibilityProtected  Visibility = "protected"
	VisibilityRestricted Visibility = "restricted"
	VisibilityHidden     Visibility = "hidden"
)

// Deprecation describes when and why a node was deprecated.
type Deprecation struct {
	Since string
	Text  string
}

// Meta is the documentation and lifecycle metadata shared by all model nodes.
type Meta struct {
	Description  string
	Since        string
	Visibility   Visibility
	Deprecated   *Deprecation
	Experimental bool
}

// IsPublic reports whether the node is part of the public API.
// An empty visibility is treated as public.
func (m Meta) IsPublic() bool {
	return m.Visibility == "" || m.Visibility == VisibilityPublic
}

// IsDeprecated reports whether the node carries a deprecation notice.
func (m Meta) IsDeprecated() bool {
	return m.Deprecated != nil
}

// MemberKind distinguishes the member tables of a class.
type MemberKind int

// Member kinds.
const (
	KindAggregation MemberKind = iota
	KindProperty
	KindEvent
)

// String returns the lowercase name of the kind.
func (k MemberKind) String() string {
	switch k {
	case KindAggregation:
		return "aggregation"
	case KindProperty:
		return "property"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Cardinality of an aggregation.
type Cardinality string

// Cardinality values.
const (
	CardinalitySingle   Cardinality = "0..1"
	CardinalityMultiple Cardinality = "0..n"
)

// Aggregation is a parent-child containment relationship declared on a class.
type Aggregation struct {
	Name        string
	Type        string
	Cardinality Cardinality
	Meta

	// Owner is the FQN of the declaring class. Set by the Builder.
	Owner string
}

// MemberName returns the aggregation name.
func (a *Aggregation) MemberName() string { return a.Name }

// Multiple reports whether the aggregation accepts more than one child.
func (a *Aggregation) Multiple() bool { return a.Cardinality != CardinalitySingle }

// Property is a typed attribute declared on a class.
type Property struct {
	Name         string
	Type         string
	Default      string
	Translatable bool
	Meta

	// Owner is the FQN of the declaring class. Set by the Builder.
	Owner string
}

// MemberName returns the property name.
func (p *Property) MemberName() string { return p.Name }

// Event is an event declared on a class.
type Event struct {
	Name string
	Meta

	// Owner is the FQN of the declaring class. Set by the Builder.
	Owner string
}

// MemberName returns the event name.
func (e *Event) MemberName() string { return e.Name }

// Class is a node of the class graph.
type Class struct {
	Name    string // fully-qualified, e.g. "sap.m.Page"
	Extends string // FQN of the superclass; empty for a root
	Library string // namespace the class belongs to, e.g. "sap.m"

	Abstract           bool
	DefaultAggregation string
	Implements         []string // interfaces implemented by this class itself
	Meta

	Aggregations []*Aggregation
	Properties   []*Property
	Events       []*Event
}

// LocalName returns the class name without its namespace.
func (c *Class) LocalName() string {
	if i := strings.LastIndexByte(c.Name, '.'); i >= 0 {
		return c.Name[i+1:]
	}
	return c.Name
}

// EnumValue is a single literal of an enumeration.
type EnumValue struct {
	Name string
	Meta
}

// Enum is an enumerated type.
type Enum struct {
	Name    string
	Library string
	Values  []*EnumValue
	Meta
}

// Value returns the literal with the given name.
func (e *Enum) Value(name string) (*EnumValue, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Key identifies a model: one per (framework, version).
type Key struct {
	Framework string
	Version   string
}

// String returns "framework@version", used for logging and cache keys.
func (k Key) String() string {
	return k.Framework + "@" + k.Version
}

// Model is an immutable class graph for one framework version.
type Model struct {
	key              Key
	defaultNamespace string
	rootType         string

	classes    map[string]*Class
	enums      map[string]*Enum
	namespaces []string
}

// Key returns the (framework, version) key of the model.
func (m *Model) Key() Key { return m.key }

// Framework returns the framework name, e.g. "SAPUI5".
func (m *Model) Framework() string { return m.key.Framework }

// Version returns the framework version string.
func (m *Model) Version() string { return m.key.Version }

// DefaultNamespace returns the namespace short class names resolve against.
func (m *Model) DefaultNamespace() string { return m.defaultNamespace }

// RootType returns the FQN of the aggregation-bearing root class.
func (m *Model) RootType() string { return m.rootType }

// Class returns the class with the given FQN.
func (m *Model) Class(fqn string) (*Class, bool) {
	if m == nil {
		return nil, false
	}
	c, ok := m.classes[fqn]
	return c, ok
}

// Enum returns the enumeration with the given FQN.
func (m *Model) Enum(fqn string) (*Enum, bool) {
	if m == nil {
		return nil, false
	}
	e, ok := m.enums[fqn]
	return e, ok
}

// Classes returns all classes sorted by FQN.
func (m *Model) Classes() []*Class {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.classes))
	for name := range m.classes {
		names = append(names, name)
	}
	sort.Strings(names)

	classes := make([]*Class, len(names))
	for i, name := range names {
		classes[i] = m.classes[name]
	}
	return classes
}

// ClassCount returns the number of classes in the model.
func (m *Model) ClassCount() int {
	if m == nil {
		return 0
	}
	return len(m.classes)
}

// Namespaces returns the sorted set of namespaces (libraries) declaring classes.
func (m *Model) Namespaces() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.namespaces))
	copy(out, m.namespaces)
	return out
}

// HasNamespace reports whether any class is declared in ns.
func (m *Model) HasNamespace(ns string) bool {
	if m == nil {
		return false
	}
	i := sort.SearchStrings(m.namespaces, ns)
	return i < len(m.namespaces) && m.namespaces[i] == ns
}
