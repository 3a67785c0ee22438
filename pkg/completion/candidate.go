package completion

import (
	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// CandidateKind identifies what a candidate inserts.
type CandidateKind int

// Candidate kinds.
const (
	CandidateAggregation CandidateKind = iota
	CandidateClass
	CandidateProperty
	CandidateEvent
	CandidateNamespacePrefix
	CandidateNamespaceURI
	CandidateBoolean
	CandidateEnumValue
)

// String returns the lowercase name of the kind.
func (k CandidateKind) String() string {
	switch k {
	case CandidateAggregation:
		return "aggregation"
	case CandidateClass:
		return "class"
	case CandidateProperty:
		return "property"
	case CandidateEvent:
		return "event"
	case CandidateNamespacePrefix:
		return "namespace prefix"
	case CandidateNamespaceURI:
		return "namespace"
	case CandidateBoolean:
		return "boolean"
	case CandidateEnumValue:
		return "enum value"
	default:
		return "unknown"
	}
}

// Candidate is one completion suggestion.
type Candidate struct {
	Kind        CandidateKind
	Target      string // FQN of the suggested model node
	DisplayName string

	// Range is the span replaced by Text: the whole token under the cursor,
	// never the surrounding quotes or brackets.
	Range xmlast.Span
	Text  string

	Detail      string // type or declaring class
	Description string // raw API description
	Deprecated  bool
}
