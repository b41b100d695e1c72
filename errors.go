package shard

import "fmt"

// LockedWorldError reports that the world lock is held. The World's own
// structural operations do not return it: while the lock is held they
// record the change in the deferral log and return nil.
type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "shard: world is locked; structural change deferred"
}

// StaleEntityError is returned whenever an operation is given an EntityId
// whose generation no longer matches the live slot (already despawned, or
// never valid in this world).
type StaleEntityError struct {
	Id EntityId
}

func (e StaleEntityError) Error() string {
	return fmt.Sprintf("shard: stale entity id %s", e.Id)
}

// AliasingConflictError is returned when a query selects the same
// component key twice for mutable access, which would hand a single
// action two live references into the same column slot.
type AliasingConflictError struct {
	Key KeyId
}

func (e AliasingConflictError) Error() string {
	return fmt.Sprintf("shard: query selects key %d more than once", e.Key)
}

// EntityRelationError is returned by SetParent when the child already has
// a different parent.
type EntityRelationError struct {
	Child, Parent EntityId
}

func (e EntityRelationError) Error() string {
	return fmt.Sprintf("shard: entity %s already has a parent (attempted %s)", e.Child, e.Parent)
}

// ComponentExistsError reports a component key already present on an
// entity. AddTo/AddZeroTo treat that case as an idempotent no-op and do not
// return this error.
type ComponentExistsError struct {
	Key KeyId
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("shard: component key %d already present on entity", e.Key)
}

// ComponentNotFoundError is the strict counterpart of ComponentExistsError.
type ComponentNotFoundError struct {
	Key KeyId
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("shard: component key %d not present on entity", e.Key)
}
