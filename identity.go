package shard

import (
	"errors"
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// EntityId is a stable handle to an entity: a dense, reused index paired
// with a generation counter that increments every time the index is
// recycled. A stale EntityId (one whose generation no longer matches the
// live slot) is rejected by every operation that takes one.
type EntityId uint64

func newEntityId(index, generation uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Index returns the dense slot index this id was issued for.
func (id EntityId) Index() uint32 { return uint32(id) }

// Generation returns the recycle generation this id was issued at.
func (id EntityId) Generation() uint32 { return uint32(id >> 32) }

func (id EntityId) String() string {
	return fmt.Sprintf("Entity(%d#%d)", id.Index(), id.Generation())
}

// location records where a live entity's row currently lives.
type location struct {
	archetype *Archetype
	row       uint32
}

// slot is one entry in the identity registry's dense slot vector.
type slot struct {
	generation uint32
	alive      bool
	loc        location
	// nextFree chains recycled slots into a free list when !alive.
	nextFree int32
}

// identityRegistry issues and recycles EntityIds and resolves them to their
// current archetype/row. Indices are reused; generations are not, within
// the life of a World.
type identityRegistry struct {
	slots    []slot
	freeHead int32 // -1 when empty
}

func newIdentityRegistry() *identityRegistry {
	return &identityRegistry{freeHead: -1}
}

// spawn issues a fresh EntityId and records its initial location. It never
// fails: it either reuses a free slot or grows the slot vector.
func (r *identityRegistry) spawn(loc location) EntityId {
	if r.freeHead >= 0 {
		idx := r.freeHead
		s := &r.slots[idx]
		r.freeHead = s.nextFree
		s.alive = true
		s.loc = loc
		return newEntityId(uint32(idx), s.generation)
	}
	idx := uint32(len(r.slots))
	r.slots = append(r.slots, slot{generation: 0, alive: true, loc: loc})
	return newEntityId(idx, 0)
}

// locate resolves a live EntityId to its current location. ok is false for
// a stale or out-of-range id.
func (r *identityRegistry) locate(id EntityId) (location, bool) {
	idx := id.Index()
	if int(idx) >= len(r.slots) {
		return location{}, false
	}
	s := &r.slots[idx]
	if !s.alive || s.generation != id.Generation() {
		return location{}, false
	}
	return s.loc, true
}

// relocate updates the recorded location of a live entity, e.g. after a
// structural move to a neighbouring archetype or a swap-remove shuffling
// another entity's row.
func (r *identityRegistry) relocate(id EntityId, loc location) {
	idx := id.Index()
	s := &r.slots[idx]
	if !s.alive || s.generation != id.Generation() {
		panic(bark.AddTrace(errors.New(fmtStaleRelocate(id))))
	}
	s.loc = loc
}

// despawn invalidates id, bumps its generation, and returns the slot to the
// free list. Returns false if id was already stale.
func (r *identityRegistry) despawn(id EntityId) bool {
	idx := id.Index()
	if int(idx) >= len(r.slots) {
		return false
	}
	s := &r.slots[idx]
	if !s.alive || s.generation != id.Generation() {
		return false
	}
	s.alive = false
	s.generation++
	s.loc = location{}
	s.nextFree = r.freeHead
	r.freeHead = int32(idx)
	return true
}

// alive reports whether id is still live without resolving its location.
func (r *identityRegistry) alive(id EntityId) bool {
	_, ok := r.locate(id)
	return ok
}

func fmtStaleRelocate(id EntityId) string {
	return "shard: relocate called on stale entity " + id.String()
}
