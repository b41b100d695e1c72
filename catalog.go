package shard

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

// typeEntry is the catalog's per-Go-type bookkeeping: the column factory for
// that type, plus the interning tables for its Relation and ObjectLink
// realizations. Plain has at most one key per type, so it needs no map.
type typeEntry struct {
	name string
	zero reflect.Type

	makeColumn func() columnStorage

	plain *KeyId

	relations   *intmap.Map[uint64, KeyId]
	objectLinks *intmap.Map[uint64, KeyId]

	// relationKeys/objectKeys list every key interned so far for this type,
	// in intern order, so AnyEntity/AnyObject wildcard compilation doesn't
	// need to scan the whole catalog.
	relationKeys []KeyId
	objectKeys   []KeyId
}

// KeyCatalog interns component keys — (type_id, role, target) triples — to
// small dense KeyIds, and is the one place that knows how to build a fresh
// column for a given key. One catalog per World.
type KeyCatalog struct {
	types   []*typeEntry
	entries []keyEntry
}

func newKeyCatalog() *KeyCatalog {
	return &KeyCatalog{}
}

// registerType interns a new Go type into the catalog and returns its
// typeID. Safe to call at most once per Go type per World; RegisterComponent
// enforces that by caching the returned typeID in World.typeIDs.
func (c *KeyCatalog) registerType(name string, zero reflect.Type, makeColumn func() columnStorage) uint32 {
	id := uint32(len(c.types))
	c.types = append(c.types, &typeEntry{
		name:        name,
		zero:        zero,
		makeColumn:  makeColumn,
		relations:   intmap.New[uint64, KeyId](8),
		objectLinks: intmap.New[uint64, KeyId](8),
	})
	return id
}

func (c *KeyCatalog) intern(e keyEntry) KeyId {
	id := KeyId(len(c.entries))
	c.entries = append(c.entries, e)
	return id
}

// internPlain returns the single Plain KeyId for typeID, interning it on
// first use.
func (c *KeyCatalog) internPlain(typeID uint32) KeyId {
	t := c.types[typeID]
	if t.plain != nil {
		return *t.plain
	}
	id := c.intern(keyEntry{typeID: typeID, role: RolePlain})
	t.plain = &id
	return id
}

// internRelation returns the KeyId for (typeID, Relation, target), interning
// it on first use of this exact target for this type.
func (c *KeyCatalog) internRelation(typeID uint32, target EntityId) KeyId {
	t := c.types[typeID]
	raw := uint64(target)
	if id, ok := t.relations.Get(raw); ok {
		return id
	}
	id := c.intern(keyEntry{typeID: typeID, role: RoleRelation, target: raw})
	t.relations.Put(raw, id)
	t.relationKeys = append(t.relationKeys, id)
	return id
}

// internObjectLink returns the KeyId for (typeID, ObjectLink, target),
// interning it on first use of this exact handle for this type.
func (c *KeyCatalog) internObjectLink(typeID uint32, target ObjectHandle) KeyId {
	t := c.types[typeID]
	raw := uint64(target)
	if id, ok := t.objectLinks.Get(raw); ok {
		return id
	}
	id := c.intern(keyEntry{typeID: typeID, role: RoleObjectLink, target: raw})
	t.objectLinks.Put(raw, id)
	t.objectKeys = append(t.objectKeys, id)
	return id
}

func (c *KeyCatalog) entry(key KeyId) keyEntry {
	return c.entries[key]
}

// relationTarget extracts the target entity of a Relation key. ok is false
// if key is not a Relation key.
func (c *KeyCatalog) relationTarget(key KeyId) (EntityId, bool) {
	e := c.entries[key]
	if e.role != RoleRelation {
		return 0, false
	}
	return EntityId(e.target), true
}

// objectTarget extracts the target handle of an ObjectLink key. ok is false
// if key is not an ObjectLink key.
func (c *KeyCatalog) objectTarget(key KeyId) (ObjectHandle, bool) {
	e := c.entries[key]
	if e.role != RoleObjectLink {
		return 0, false
	}
	return ObjectHandle(e.target), true
}

// matching appends to dst every interned KeyId matching pattern, and
// returns the extended slice. Used to compile a wildcard select/filter item
// against an archetype's signature, and to resolve AnyEntity/AnyObject
// lookups without scanning the whole catalog.
func (c *KeyCatalog) matching(pattern Pattern, dst []KeyId) []KeyId {
	if int(pattern.typeID) >= len(c.types) {
		return dst
	}
	t := c.types[pattern.typeID]
	switch pattern.wildcard {
	case wildcardAnyEntity:
		return append(dst, t.relationKeys...)
	case wildcardAnyObject:
		return append(dst, t.objectKeys...)
	case wildcardAny:
		if t.plain != nil {
			dst = append(dst, *t.plain)
		}
		dst = append(dst, t.relationKeys...)
		dst = append(dst, t.objectKeys...)
		return dst
	default:
		for i, e := range c.entries {
			if pattern.matches(e) {
				dst = append(dst, KeyId(i))
			}
		}
		return dst
	}
}

// lookupExact resolves a non-wildcard pattern to its KeyId without interning
// anything new. ok is false if that exact key has never been used.
func (c *KeyCatalog) lookupExact(pattern Pattern) (KeyId, bool) {
	if pattern.IsWildcard() || int(pattern.typeID) >= len(c.types) {
		return 0, false
	}
	t := c.types[pattern.typeID]
	switch pattern.role {
	case RolePlain:
		if t.plain == nil {
			return 0, false
		}
		return *t.plain, true
	case RoleRelation:
		return t.relations.Get(pattern.target)
	case RoleObjectLink:
		return t.objectLinks.Get(pattern.target)
	default:
		return 0, false
	}
}

func (c *KeyCatalog) newColumn(key KeyId) columnStorage {
	e := c.entries[key]
	return c.types[e.typeID].makeColumn()
}
