package model

// SuperclassChain returns the superclasses of c ordered from the immediate
// superclass to the root. The walk stops when "extends" is empty or names a
// class the model does not contain.
//
// A class reached twice means the graph has a cycle: the chain collected so far
// is returned together with a *CycleError, so callers can degrade gracefully.
func SuperclassChain(m *Model, c *Class) ([]*Class, error) {
	if m == nil || c == nil {
		return nil, nil
	}

	visited := map[string]struct{}{c.Name: {}}
	var chain []*Class

	next := c.Extends
	for next != "" {
		if _, seen := visited[next]; seen {
			return chain, &CycleError{Class: c.Name, Revisited: next, Chain: classNames(chain)}
		}
		visited[next] = struct{}{}

		super, ok := m.classes[next]
		if !ok {
			break
		}
		chain = append(chain, super)
		next = super.Extends
	}

	return chain, nil
}

// IsSubClassOf reports whether ancestor is c itself or one of its superclasses.
func IsSubClassOf(m *Model, c *Class, ancestor string) bool {
	if c == nil {
		return false
	}
	if c.Name == ancestor {
		return true
	}
	// A partial chain is still a valid answer for the classes it covers.
	chain, _ := SuperclassChain(m, c)
	for _, super := range chain {
		if super.Name == ancestor {
			return true
		}
	}
	return false
}

// Implements reports whether c or any of its superclasses declares iface.
func Implements(m *Model, c *Class, iface string) bool {
	if c == nil {
		return false
	}
	chain, _ := SuperclassChain(m, c)
	for _, cls := range append([]*Class{c}, chain...) {
		for _, name := range cls.Implements {
			if name == iface {
				return true
			}
		}
	}
	return false
}

// FindAssignableClasses returns every class that can stand where typeName is
// expected: the type itself, its subclasses, and implementors when typeName is
// an interface. The result is sorted by FQN.
func FindAssignableClasses(m *Model, typeName string) []*Class {
	var out []*Class
	for _, c := range m.Classes() {
		if IsSubClassOf(m, c, typeName) || Implements(m, c, typeName) {
			out = append(out, c)
		}
	}
	return out
}

// DefaultAggregation returns the default aggregation name of c, inherited
// from the nearest ancestor declaring one.
func DefaultAggregation(m *Model, c *Class) string {
	if c == nil {
		return ""
	}
	if c.DefaultAggregation != "" {
		return c.DefaultAggregation
	}
	chain, _ := SuperclassChain(m, c)
	for _, super := range chain {
		if super.DefaultAggregation != "" {
			return super.DefaultAggregation
		}
	}
	return ""
}

// FlattenAggregations returns own and inherited aggregations keyed by name.
func FlattenAggregations(m *Model, c *Class) map[string]*Aggregation {
	return flatten(m, c, func(cls *Class) []*Aggregation { return cls.Aggregations })
}

// FlattenProperties returns own and inherited properties keyed by name.
func FlattenProperties(m *Model, c *Class) map[string]*Property {
	return flatten(m, c, func(cls *Class) []*Property { return cls.Properties })
}

// FlattenEvents returns own and inherited events keyed by name.
func FlattenEvents(m *Model, c *Class) map[string]*Event {
	return flatten(m, c, func(cls *Class) []*Event { return cls.Events })
}

type member interface {
	MemberName() string
}

// flatten walks c then its ancestors; the first declaration of a name wins,
// so the most-derived class overrides its ancestors.
func flatten[T member](m *Model, c *Class, own func(*Class) []T) map[string]T {
	out := make(map[string]T)
	if c == nil {
		return out
	}

	chain, _ := SuperclassChain(m, c)
	for _, cls := range append([]*Class{c}, chain...) {
		for _, mem := range own(cls) {
			if _, present := out[mem.MemberName()]; !present {
				out[mem.MemberName()] = mem
			}
		}
	}
	return out
}

func classNames(classes []*Class) []string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return names
}
