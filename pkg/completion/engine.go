package completion

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/leapstack-labs/xmlviewls/pkg/model"
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

type provider func(ctx *Context) []Candidate

// providers is the ordered provider list per context kind.
var providers = [kindCount][]provider{
	KindNone:           nil,
	KindElementName:    {aggregationSuggestions, classSuggestions},
	KindAttributeName:  {propertySuggestions, eventSuggestions, namespaceKeySuggestions},
	KindAttributeValue: {booleanValueSuggestions, enumValueSuggestions, namespaceValueSuggestions},
}

// Complete returns the candidates for offset in doc.
func Complete(m *model.Model, doc *xmlast.Document, offset int, settings Settings) []Candidate {
	ctx := Classify(m, doc, offset, settings)
	return run(ctx, providers[ctx.Kind])
}

func run(ctx *Context, list []provider) []Candidate {
	if ctx.Kind == KindNone || ctx.Model == nil {
		return nil
	}

	var all []Candidate
	for _, p := range list {
		all = append(all, p(ctx)...)
	}

	present := presentNames(ctx)
	typed := foldedToken(ctx.Typed)

	type key struct{ display, target string }
	seen := make(map[key]struct{}, len(all))

	out := make([]Candidate, 0, len(all))
	for _, c := range all {
		if !matches(c.DisplayName, typed) {
			continue
		}
		if excluded(c, present) {
			continue
		}
		k := key{c.DisplayName, c.Target}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})
	return out
}

// foldedToken case-folds the typed token once per request.
func foldedToken(typed string) string {
	return cases.Fold().String(typed)
}

// matches reports whether display contains the case-folded typed token.
func matches(display, foldedTyped string) bool {
	if foldedTyped == "" {
		return true
	}
	return strings.Contains(cases.Fold().String(display), foldedTyped)
}

// presentNames collects the names a candidate must not duplicate: sibling
// element names for element-name positions, declared attribute keys for
// attribute-name positions. The token being typed is not counted.
func presentNames(ctx *Context) map[string]struct{} {
	names := make(map[string]struct{})
	switch ctx.Kind {
	case KindElementName:
		for _, sib := range ctx.Element.Siblings() {
			if sib.Local != "" {
				names[sib.Local] = struct{}{}
			}
		}
	case KindAttributeName:
		for _, a := range ctx.Element.Attributes {
			if a != ctx.Attribute {
				names[a.Key] = struct{}{}
			}
		}
	case KindNone, KindAttributeValue:
	}
	return names
}

func excluded(c Candidate, present map[string]struct{}) bool {
	switch c.Kind {
	case CandidateAggregation, CandidateProperty, CandidateEvent, CandidateNamespacePrefix:
		_, ok := present[c.DisplayName]
		return ok
	default:
		return false
	}
}
