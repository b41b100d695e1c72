package shard

import "fmt"

// Role disambiguates the semantics of a component key's target.
type Role uint8

const (
	// RolePlain components have no target; two Plain keys of the same Go
	// type are always the same key.
	RolePlain Role = iota
	// RoleRelation components target another entity.
	RoleRelation
	// RoleObjectLink components target a shared heap object handle.
	RoleObjectLink
)

func (r Role) String() string {
	switch r {
	case RolePlain:
		return "Plain"
	case RoleRelation:
		return "Relation"
	case RoleObjectLink:
		return "ObjectLink"
	default:
		return "Role(?)"
	}
}

// KeyId is the small dense integer a component key (type_id, role, target)
// triple interns to. Two keys compare equal iff their KeyIds are equal.
type KeyId uint32

// ObjectHandle is an opaque identifier for a shared heap object registered
// with a World's ObjectRegistry, used as the target of an ObjectLink key.
type ObjectHandle uint32

// keyEntry is the catalog's canonical record for one interned KeyId.
type keyEntry struct {
	typeID uint32
	role   Role
	target uint64 // raw EntityId for Relation, raw ObjectHandle for ObjectLink, 0 for Plain
}

// less gives keyEntry the canonical ordering spec Section 3 requires for
// signatures: by type_id, then role, then target.
func (k keyEntry) less(o keyEntry) bool {
	if k.typeID != o.typeID {
		return k.typeID < o.typeID
	}
	if k.role != o.role {
		return k.role < o.role
	}
	return k.target < o.target
}

func (k keyEntry) String() string {
	switch k.role {
	case RolePlain:
		return fmt.Sprintf("type#%d", k.typeID)
	case RoleRelation:
		return fmt.Sprintf("type#%d->Entity(%d#%d)", k.typeID, uint32(k.target), uint32(k.target>>32))
	case RoleObjectLink:
		return fmt.Sprintf("type#%d->Object(%d)", k.typeID, uint32(k.target))
	default:
		return "key(?)"
	}
}

// wildcardKind distinguishes an exact pattern from the three wildcard
// shapes the spec's Section 6 vocabulary names (Any, AnyEntity, AnyObject
// are wildcards; Plain, Target, Object are exact).
type wildcardKind uint8

const (
	wildcardNone wildcardKind = iota
	wildcardAny
	wildcardAnyEntity
	wildcardAnyObject
)

// Pattern describes what a Query select/filter item matches against
// interned keys. Build one via a ComponentProto[T]'s PlainPattern/
// AnyPattern/AnyEntityPattern/AnyObjectPattern/TargetPattern/ObjectPattern
// methods.
type Pattern struct {
	typeID   uint32
	role     Role
	target   uint64
	wildcard wildcardKind
}

// IsWildcard reports whether this pattern can match more than one
// concrete key in a given archetype.
func (p Pattern) IsWildcard() bool { return p.wildcard != wildcardNone }

func (p Pattern) matches(e keyEntry) bool {
	if e.typeID != p.typeID {
		return false
	}
	switch p.wildcard {
	case wildcardAny:
		return true
	case wildcardAnyEntity:
		return e.role == RoleRelation
	case wildcardAnyObject:
		return e.role == RoleObjectLink
	default:
		return e.role == p.role && e.target == p.target
	}
}

func (p Pattern) String() string {
	switch p.wildcard {
	case wildcardAny:
		return fmt.Sprintf("type#%d:Any", p.typeID)
	case wildcardAnyEntity:
		return fmt.Sprintf("type#%d:AnyEntity", p.typeID)
	case wildcardAnyObject:
		return fmt.Sprintf("type#%d:AnyObject", p.typeID)
	default:
		return fmt.Sprintf("type#%d:%s(%d)", p.typeID, p.role, p.target)
	}
}
