package shard

import "sort"

// archetypeStore owns every Archetype created in a World, identified by its
// exact, order-independent set of component keys. Archetypes are found by a
// hash of their canonical (sorted) signature, confirmed by an exact slice
// comparison against same-hash candidates — the signature itself, not the
// hash, is the identity; collisions just cost a few extra comparisons.
type archetypeStore struct {
	catalog *KeyCatalog
	byID    []*Archetype
	buckets map[uint64][]*Archetype

	empty *Archetype // the zero-component archetype, always present
}

func newArchetypeStore(catalog *KeyCatalog) *archetypeStore {
	s := &archetypeStore{catalog: catalog, buckets: make(map[uint64][]*Archetype)}
	s.empty = s.getOrCreate(nil)
	return s
}

func signatureHash(keys []KeyId) uint64 {
	var h uint64 = 14695981039346656037
	for _, k := range keys {
		h ^= uint64(k)
		h *= 1099511628211
	}
	return h
}

func sameSignature(a, b []KeyId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sortedKeys returns keys in the catalog's canonical order (by type_id,
// then role, then target), the order every stored signature is normalized
// to before hashing or comparison.
func (s *archetypeStore) sortedKeys(keys []KeyId) []KeyId {
	out := append([]KeyId(nil), keys...)
	sort.Slice(out, func(i, j int) bool {
		return s.catalog.entry(out[i]).less(s.catalog.entry(out[j]))
	})
	return out
}

// getOrCreate returns the archetype for exactly this (already sorted)
// signature, creating it if this is the first time it's been seen.
func (s *archetypeStore) getOrCreate(keys []KeyId) *Archetype {
	h := signatureHash(keys)
	for _, cand := range s.buckets[h] {
		if sameSignature(cand.keys, keys) {
			return cand
		}
	}
	id := archetypeID(len(s.byID))
	a := newArchetype(id, append([]KeyId(nil), keys...), s.catalog)
	s.byID = append(s.byID, a)
	s.buckets[h] = append(s.buckets[h], a)
	return a
}

// archetypeAfterAdd returns the neighbour reached by adding key to from's
// signature, memoizing the edge on first traversal.
func (s *archetypeStore) archetypeAfterAdd(from *Archetype, key KeyId) *Archetype {
	if from.has(key) {
		return from
	}
	if id, ok := from.addEdge.Get(key); ok {
		return s.byID[id]
	}
	next := s.sortedKeys(append(append([]KeyId(nil), from.keys...), key))
	dst := s.getOrCreate(next)
	from.addEdge.Put(key, dst.id)
	dst.removeEdge.Put(key, from.id)
	return dst
}

// archetypeAfterRemove returns the neighbour reached by removing key from
// from's signature, memoizing the edge on first traversal.
func (s *archetypeStore) archetypeAfterRemove(from *Archetype, key KeyId) *Archetype {
	if !from.has(key) {
		return from
	}
	if id, ok := from.removeEdge.Get(key); ok {
		return s.byID[id]
	}
	next := make([]KeyId, 0, len(from.keys)-1)
	for _, k := range from.keys {
		if k != key {
			next = append(next, k)
		}
	}
	dst := s.getOrCreate(next) // from.keys was already sorted, so next is too
	from.removeEdge.Put(key, dst.id)
	dst.addEdge.Put(key, from.id)
	return dst
}

// archetypes returns every archetype in creation order, including the
// empty one. The returned slice must not be mutated by the caller.
func (s *archetypeStore) archetypes() []*Archetype {
	return s.byID
}
