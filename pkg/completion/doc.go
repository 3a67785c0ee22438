// Package completion computes completion candidates for XML views.
//
// The cursor position is classified into one of a closed set of context kinds.
// Each kind maps to an ordered list of providers in a static table; their
// candidates are concatenated, filtered against the partially typed token,
// deduplicated and sorted.
package completion
