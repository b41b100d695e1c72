package shard

// factory implements the factory pattern for shard's non-generic
// constructors. Generic constructors (RegisterComponent, NewCache) are
// free functions instead of methods on factory: Go allows generic methods
// on a generic receiver type, but not a standalone generic method on a
// plain type like factory, so the teacher's own convention — and this
// module's — is a free function wherever the construction is generic.
type factory struct{}

// Factory is the package-level entry point for shard's constructors.
var Factory factory

// NewWorld constructs a new, empty World.
func (f factory) NewWorld() *World {
	return NewWorld()
}

// NewQuery starts a new Query against w.
func (f factory) NewQuery(w *World) *Query {
	return NewQuery(w)
}
