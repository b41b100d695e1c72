package shard

// AccessibleComponent is the typed handle returned by a ComponentProto's
// Plain/Relation/Object methods. It resolves a specific interned KeyId's
// storage to a concrete *T, for use both inside a stream action (via Get)
// and against a live entity outside of one (via GetFromEntity).
type AccessibleComponent[T any] struct {
	catalog *KeyCatalog
	key     KeyId
}

// Key returns the interned KeyId this accessor resolves.
func (c AccessibleComponent[T]) Key() KeyId { return c.key }

// Get retrieves the component value for the entity at row's position. The
// caller is responsible for only calling this when the row's archetype is
// known to carry this key — e.g. because a Query selected it unconditionally.
// Panics if the key is absent from row's archetype; use GetSafe when unsure.
func (c AccessibleComponent[T]) Get(row *Row) *T {
	col := row.archetype.mustColumn(c.key)
	return col.(*genericColumn[T]).get(row.index)
}

// GetSafe is like Get but reports whether the key is present instead of
// panicking, for use with a wildcard- or optional-selected key.
func (c AccessibleComponent[T]) GetSafe(row *Row) (*T, bool) {
	col, ok := row.archetype.column(c.key)
	if !ok {
		return nil, false
	}
	return col.(*genericColumn[T]).get(row.index), true
}

// Has reports whether row's archetype carries this key at all.
func (c AccessibleComponent[T]) Has(row *Row) bool {
	_, ok := row.archetype.column(c.key)
	return ok
}

// GetFromEntity retrieves the component value for a live entity outside of
// any stream, resolving its current archetype and row first. ok is false if
// id is stale or the entity doesn't carry this key.
func (c AccessibleComponent[T]) GetFromEntity(w *World, id EntityId) (*T, bool) {
	loc, ok := w.identities.locate(id)
	if !ok {
		return nil, false
	}
	col, ok := loc.archetype.column(c.key)
	if !ok {
		return nil, false
	}
	return col.(*genericColumn[T]).get(int(loc.row)), true
}

// AddTo adds this key to e with an initial value, moving e to the
// neighbouring archetype (deferred if e's World is locked). A no-op, not an
// error, if e already carries this key — see World.Logger to observe it.
func (c AccessibleComponent[T]) AddTo(e Entity, value T) error {
	return e.World.addKey(e.Id, c.key, value)
}

// AddZeroTo is AddTo with T's zero value.
func (c AccessibleComponent[T]) AddZeroTo(e Entity) error {
	var zero T
	return e.World.addKey(e.Id, c.key, zero)
}

// RemoveFrom removes this key from e, moving e to the neighbouring
// archetype (deferred if e's World is locked). A no-op, not an error, if e
// doesn't carry this key.
func (c AccessibleComponent[T]) RemoveFrom(e Entity) error {
	return e.World.removeKey(e.Id, c.key)
}

// HasOn reports whether e currently carries this key.
func (c AccessibleComponent[T]) HasOn(e Entity) bool {
	loc, ok := e.World.identities.locate(e.Id)
	if !ok {
		return false
	}
	return loc.archetype.has(c.key)
}

// Slice returns direct access to view's column for this key, for the Raw
// runner's bulk-access path. ok is false if view's archetype doesn't carry
// this key.
func (c AccessibleComponent[T]) Slice(view RawView) ([]T, bool) {
	col, ok := view.Archetype.column(c.key)
	if !ok {
		return nil, false
	}
	return col.(*genericColumn[T]).data, true
}
