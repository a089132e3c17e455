// internal/ids/ids.go
package ids

import "sync/atomic"

// Generator hands out card ids for one session. Ids start at 1 and are never reused,
// so an id retired by a reshuffle can never come back to name a different card.
type Generator struct {
	current atomic.Int64
}

// New returns a generator whose first id is 1.
func New() *Generator {
	return &Generator{}
}

// Next returns the next unused id.
func (g *Generator) Next() int {
	return int(g.current.Add(1))
}

// Last returns the most recently issued id, or 0 if none was issued yet.
func (g *Generator) Last() int {
	return int(g.current.Load())
}
