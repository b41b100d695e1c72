package shard

// Cursor is the low-level single-archetype row walk the For runner is
// built on: advance through one
// matched archetype's rows, then move to the next matched archetype once
// the current one is exhausted.
type Cursor struct {
	matched   []*Archetype
	archIndex int
	row       int
	remaining int
}

func newCursor(matched []*Archetype) *Cursor {
	c := &Cursor{matched: matched, archIndex: 0, row: -1}
	if len(matched) > 0 {
		c.remaining = matched[0].Len()
	}
	return c
}

// Next advances the cursor to the next row, skipping empty archetypes.
// Returns false once every matched archetype is exhausted.
func (c *Cursor) Next() bool {
	for c.archIndex < len(c.matched) {
		if c.row+1 < c.remaining {
			c.row++
			return true
		}
		c.archIndex++
		c.row = -1
		if c.archIndex < len(c.matched) {
			c.remaining = c.matched[c.archIndex].Len()
		}
	}
	return false
}

// Archetype returns the archetype the cursor currently points into.
func (c *Cursor) Archetype() *Archetype { return c.matched[c.archIndex] }

// Row returns the current row index within Archetype().
func (c *Cursor) Row() int { return c.row }
