// Package core defines the small shared vocabulary of xmlviewls.
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
