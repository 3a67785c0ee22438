// Package fqn maps markup elements to fully-qualified class names and back.
package fqn

import (
	"strings"

	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// ResolveNamespace returns the URI bound to prefix in the scope of el, walking
// from el up to the document root. The empty prefix resolves the default
// namespace.
func ResolveNamespace(el *xmlast.Element, prefix string) (string, bool) {
	for cur := el; cur != nil; cur = cur.Parent {
		if uri, ok := cur.Namespaces[prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// ToFQN returns the fully-qualified class name an element refers to: the URI
// of its namespace joined with its local name. It fails when the element has
// no name or its prefix is unbound.
func ToFQN(el *xmlast.Element) (string, bool) {
	if el == nil || el.Local == "" {
		return "", false
	}
	uri, ok := ResolveNamespace(el, el.Prefix)
	if !ok || uri == "" {
		return "", false
	}
	return FromFQN(uri, el.Local), true
}

// FromFQN joins name parts with dots, skipping empty parts.
func FromFQN(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// SplitQName splits an FQN into its namespace and local name.
func SplitQName(fqn string) (namespace, local string) {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[:i], fqn[i+1:]
	}
	return "", fqn
}

// PrefixFor returns a prefix bound to namespace in the scope of el. The
// default namespace (empty prefix) is preferred. Prefixes shadowed by an inner
// declaration are skipped.
func PrefixFor(el *xmlast.Element, namespace string) (string, bool) {
	var candidates []string
	seen := make(map[string]bool)
	for cur := el; cur != nil; cur = cur.Parent {
		for prefix, uri := range cur.Namespaces {
			if seen[prefix] {
				continue
			}
			seen[prefix] = true
			if uri == namespace {
				candidates = append(candidates, prefix)
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c == "" || (best != "" && c < best) {
			best = c
		}
	}
	return best, true
}

// QualifiedName returns the markup name for a class in the scope of el, e.g.
// "Button" when sap.m is the default namespace or "m:Button" when it is bound
// to "m".
func QualifiedName(el *xmlast.Element, className string) (string, bool) {
	ns, local := SplitQName(className)
	prefix, ok := PrefixFor(el, ns)
	if !ok {
		return "", false
	}
	if prefix == "" {
		return local, true
	}
	return prefix + ":" + local, true
}
