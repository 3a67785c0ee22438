// Package model holds the framework model: an immutable, versioned graph of
// classes, their aggregations, properties and events, plus enumerations.
//
// A Model is built once per (framework, version) key through a Builder and is
// read-only afterwards, so it can be shared across goroutines without locking.
// Classes live in a flat table keyed by fully-qualified name; a class's
// superclass is a key ("extends"), never an owning pointer. Every traversal
// in this package carries an explicit visited-set, so a malformed model with an
// inheritance cycle produces an error instead of a hang.
package model
