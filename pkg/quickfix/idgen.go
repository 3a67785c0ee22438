package quickfix

import (
	"strconv"

	"github.com/leapstack-labs/xmlviewls/pkg/xmlast"
)

// IDPrefix starts every generated id.
const IDPrefix = "_IDGen"

// IDGenerator hands out ids unique within one document.
type IDGenerator struct {
	used     map[string]bool
	counters map[string]int
}

// NewIDGenerator reserves every id already present in doc.
func NewIDGenerator(doc *xmlast.Document) *IDGenerator {
	g := &IDGenerator{used: make(map[string]bool), counters: make(map[string]int)}
	doc.Walk(func(el *xmlast.Element) bool {
		if id, ok := el.ID(); ok {
			g.used[id] = true
		}
		return true
	})
	return g
}

// Next returns the next free id for an element with the given local name,
// e.g. "_IDGenButton1".
func (g *IDGenerator) Next(local string) string {
	for {
		g.counters[local]++
		id := IDPrefix + local + strconv.Itoa(g.counters[local])
		if !g.used[id] {
			g.used[id] = true
			return id
		}
	}
}
