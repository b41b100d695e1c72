package shard

import (
	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
)

type archetypeID uint32

// Archetype is the storage for every entity sharing an exact component
// signature — the ordered set of KeyIds it carries. Components live in
// parallel structure-of-arrays columns, one per key, row-aligned with the
// entities slice.
type Archetype struct {
	id       archetypeID
	keys     []KeyId // canonical signature, ascending keyEntry order
	colIndex map[KeyId]int
	typeMask mask.Mask256 // bit per component typeID present, any role
	columns  []columnStorage
	entities []EntityId
	catalog  *KeyCatalog

	// addEdge/removeEdge memoize the neighbour reached by adding/removing a
	// single key, so repeated structural changes of the same shape (e.g. a
	// whole frame of entities gaining the same component) skip signature
	// recomputation after the first.
	addEdge    *intmap.Map[KeyId, archetypeID]
	removeEdge *intmap.Map[KeyId, archetypeID]
}

func newArchetype(id archetypeID, keys []KeyId, catalog *KeyCatalog) *Archetype {
	colIndex := make(map[KeyId]int, len(keys))
	columns := make([]columnStorage, len(keys))
	var tm mask.Mask256
	for i, k := range keys {
		colIndex[k] = i
		columns[i] = catalog.newColumn(k)
		tm.Mark(catalog.entry(k).typeID)
	}
	return &Archetype{
		id:         id,
		keys:       keys,
		colIndex:   colIndex,
		typeMask:   tm,
		columns:    columns,
		catalog:    catalog,
		addEdge:    intmap.New[KeyId, archetypeID](4),
		removeEdge: intmap.New[KeyId, archetypeID](4),
	}
}

// ID returns this archetype's stable identifier within its World.
func (a *Archetype) ID() uint32 { return uint32(a.id) }

// Len returns the number of entities currently stored in this archetype.
func (a *Archetype) Len() int { return len(a.entities) }

// Keys returns the archetype's canonical signature. The caller must not
// mutate the returned slice.
func (a *Archetype) Keys() []KeyId { return a.keys }

func (a *Archetype) column(key KeyId) (columnStorage, bool) {
	i, ok := a.colIndex[key]
	if !ok {
		return nil, false
	}
	return a.columns[i], true
}

func (a *Archetype) mustColumn(key KeyId) columnStorage {
	c, ok := a.column(key)
	if !ok {
		panic(bark.AddTrace(ComponentNotFoundError{Key: key}))
	}
	return c
}

func (a *Archetype) has(key KeyId) bool {
	_, ok := a.colIndex[key]
	return ok
}

// appendEntity grows every column by one zero row and records id, returning
// the new row's index.
func (a *Archetype) appendEntity(id EntityId) int {
	for _, c := range a.columns {
		c.appendZero()
	}
	a.entities = append(a.entities, id)
	return len(a.entities) - 1
}

// swapRemoveRow removes row i via swap-remove against every column and the
// entities slice. When i wasn't the last row, movedID is the entity that
// now occupies row i and moved is true — the caller must update that
// entity's recorded location.
func (a *Archetype) swapRemoveRow(i int) (movedID EntityId, moved bool) {
	last := len(a.entities) - 1
	tail := a.entities[last]
	for _, c := range a.columns {
		c.swapRemove(i)
	}
	moved = i != last
	if moved {
		movedID = tail
	}
	a.entities = a.entities[:last]
	return movedID, moved
}

// moveRow appends one new row to dst, built from this archetype's row
// srcRow: columns dst shares with this archetype are copied across, and
// columns unique to dst (e.g. the component just added by this structural
// change) are left zero-valued for the caller to fill in. Returns the new
// row's index in dst.
func (a *Archetype) moveRow(dst *Archetype, srcRow int, id EntityId) int {
	for _, key := range dst.keys {
		dstCol, _ := dst.column(key)
		if srcCol, ok := a.column(key); ok {
			dstCol.copyRowFrom(srcCol, srcRow)
		} else {
			dstCol.appendZero()
		}
	}
	dst.entities = append(dst.entities, id)
	return len(dst.entities) - 1
}
