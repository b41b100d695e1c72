package shard

import (
	"errors"
	"io"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

var _ io.Closer = (*World)(nil)

// World is a single, independent ECS instance: its own identity registry,
// component key catalog, archetype store, object registry and structural
// deferral log. Nothing is shared between Worlds.
type World struct {
	catalog    *KeyCatalog
	store      *archetypeStore
	identities *identityRegistry
	objects    *ObjectRegistry
	queue      *operationQueue

	typeIDs map[reflect.Type]uint32

	// streams lets a caller register a compiled Stream once under a name
	// (e.g. "physics/gravity") and look it up elsewhere instead of
	// recompiling or threading the *Stream value through unrelated code.
	streams Cache[*Stream]

	lockDepth int

	events Events
	// Logger, if set, is notified of structural events and silent no-ops
	// (e.g. adding a component an entity already has) for development-time
	// observability, without imposing a logging library choice on the
	// caller.
	Logger func(event string, fields ...any)

	childOf ComponentProto[ChildOf]
}

// ChildOf is a marker component type: ChildOf relation keys express
// "this entity is a child of the relation's target entity". Destroying the
// target cascades to every entity holding a ChildOf(target) relation.
type ChildOf struct{}

// NewWorld constructs an empty World, ready to register components and
// spawn entities into.
func NewWorld() *World {
	w := &World{
		catalog:    newKeyCatalog(),
		identities: newIdentityRegistry(),
		objects:    newObjectRegistry(),
		queue:      newOperationQueue(),
		typeIDs:    make(map[reflect.Type]uint32),
		streams:    NewCache[*Stream](256),
	}
	w.store = newArchetypeStore(w.catalog)
	w.childOf = RegisterComponent[ChildOf](w)
	w.events = Config.events
	return w
}

func (w *World) locked() bool { return w.lockDepth > 0 }

// Lock increments the reentrant lock counter. While locked, every
// structural change (spawn, despawn, add, remove) is deferred to the
// queue instead of applied immediately.
func (w *World) Lock() { w.lockDepth++ }

// Unlock decrements the lock counter. When it reaches zero, the deferral
// queue drains in FIFO order against the now-unlocked World.
func (w *World) Unlock() {
	if w.lockDepth == 0 {
		panic(bark.AddTrace(errors.New("shard: Unlock called with no outstanding lock")))
	}
	w.lockDepth--
	if w.lockDepth == 0 {
		w.queue.drain(w)
	}
}

// Locked reports whether any lock is currently outstanding.
func (w *World) Locked() bool { return w.locked() }

func (w *World) log(event string, fields ...any) {
	if w.Logger != nil {
		w.Logger(event, fields...)
	}
}

// Spawn creates a new entity with no components and returns its id. If the
// World is locked, a provisional EntityId is reserved immediately (so it
// can be used as a relation target in the same locked scope) and the row
// is actually created once the outermost lock releases.
func (w *World) Spawn() EntityId {
	return w.spawnWithKeys(nil, nil)
}

func (w *World) spawnWithKeys(keys []KeyId, values map[KeyId]any) EntityId {
	id := w.identities.spawn(location{})
	if w.locked() {
		w.queue.enqueue(&spawnOp{id: id, keys: keys, values: values})
		return id
	}
	w.placeReservedEntity(id, keys, values)
	return id
}

func (w *World) placeReservedEntity(id EntityId, keys []KeyId, values map[KeyId]any) {
	sorted := w.store.sortedKeys(keys)
	arch := w.store.getOrCreate(sorted)
	row := arch.appendEntity(id)
	for key, v := range values {
		arch.mustColumn(key).setAny(row, v)
	}
	w.identities.relocate(id, location{archetype: arch, row: uint32(row)})
	if w.events != nil {
		w.events.OnSpawn(id)
	}
	w.log("spawn", "entity", id)
}

// Despawn destroys id. If the World is locked, destruction is deferred;
// either way, every entity holding a ChildOf(id) relation is cascaded to
// despawn as well (deferred the same way id's own destruction was).
func (w *World) Despawn(id EntityId) error {
	if !w.identities.alive(id) {
		return StaleEntityError{Id: id}
	}
	if w.locked() {
		w.queue.enqueue(despawnOp{id: id})
		return nil
	}
	w.despawnNow(id)
	return nil
}

func (w *World) despawnNow(id EntityId) {
	loc, ok := w.identities.locate(id)
	if !ok {
		return
	}
	w.cascadeDespawnChildren(id)

	movedID, moved := loc.archetype.swapRemoveRow(int(loc.row))
	w.identities.despawn(id)
	if moved {
		w.identities.relocate(movedID, location{archetype: loc.archetype, row: loc.row})
	}
	if w.events != nil {
		w.events.OnDespawn(id)
	}
	w.log("despawn", "entity", id)
}

// cascadeDespawnChildren enqueues (or, when the caller is itself unlocked,
// immediately performs) the despawn of every entity holding a
// ChildOf(parent) relation.
func (w *World) cascadeDespawnChildren(parent EntityId) {
	childKey, ok := w.catalog.lookupExact(w.childOf.TargetPattern(parent))
	if !ok {
		return // nothing was ever parented to this entity
	}
	for _, arch := range w.store.archetypes() {
		if !arch.has(childKey) {
			continue
		}
		// Copy: despawning mutates arch.entities via swap-remove.
		children := append([]EntityId(nil), arch.entities...)
		for _, child := range children {
			if w.locked() {
				w.queue.enqueue(despawnOp{id: child})
			} else {
				w.despawnNow(child)
			}
		}
	}
}

// SetParent establishes a ChildOf(parent) relation on child. Returns
// EntityRelationError if child already has a different parent.
func (w *World) SetParent(child, parent EntityId) error {
	if existing, ok := w.parentOf(child); ok && existing != parent {
		return EntityRelationError{Child: child, Parent: parent}
	}
	key := w.childOf.Relation(parent).Key()
	return w.addKey(child, key, nil)
}

func (w *World) parentOf(child EntityId) (EntityId, bool) {
	loc, ok := w.identities.locate(child)
	if !ok {
		return 0, false
	}
	for _, key := range loc.archetype.keys {
		if target, ok := w.catalog.relationTarget(key); ok {
			if e := w.catalog.entry(key); e.typeID == w.childOf.typeID {
				return target, true
			}
		}
	}
	return 0, false
}

// addKey adds component key to id, deferring if the World is locked.
func (w *World) addKey(id EntityId, key KeyId, value any) error {
	if !w.identities.alive(id) {
		return StaleEntityError{Id: id}
	}
	if w.locked() {
		w.queue.enqueue(addKeyOp{id: id, key: key, value: value})
		return nil
	}
	return w.addKeyNow(id, key, value)
}

func (w *World) addKeyNow(id EntityId, key KeyId, value any) error {
	loc, ok := w.identities.locate(id)
	if !ok {
		return StaleEntityError{Id: id}
	}
	if loc.archetype.has(key) {
		w.log("add-noop", "entity", id, "key", key)
		return nil
	}
	dst := w.store.archetypeAfterAdd(loc.archetype, key)
	newRow := loc.archetype.moveRow(dst, int(loc.row), id)
	if value != nil {
		dst.mustColumn(key).setAny(newRow, value)
	}
	movedID, moved := loc.archetype.swapRemoveRow(int(loc.row))
	w.identities.relocate(id, location{archetype: dst, row: uint32(newRow)})
	if moved {
		w.identities.relocate(movedID, location{archetype: loc.archetype, row: loc.row})
	}
	if w.events != nil {
		w.events.OnAddComponent(id, key)
	}
	w.log("add", "entity", id, "key", key)
	return nil
}

// removeKey removes component key from id, deferring if the World is locked.
func (w *World) removeKey(id EntityId, key KeyId) error {
	if !w.identities.alive(id) {
		return StaleEntityError{Id: id}
	}
	if w.locked() {
		w.queue.enqueue(removeKeyOp{id: id, key: key})
		return nil
	}
	return w.removeKeyNow(id, key)
}

func (w *World) removeKeyNow(id EntityId, key KeyId) error {
	loc, ok := w.identities.locate(id)
	if !ok {
		return StaleEntityError{Id: id}
	}
	if !loc.archetype.has(key) {
		w.log("remove-noop", "entity", id, "key", key)
		return nil
	}
	dst := w.store.archetypeAfterRemove(loc.archetype, key)
	newRow := loc.archetype.moveRow(dst, int(loc.row), id)
	movedID, moved := loc.archetype.swapRemoveRow(int(loc.row))
	w.identities.relocate(id, location{archetype: dst, row: uint32(newRow)})
	if moved {
		w.identities.relocate(movedID, location{archetype: loc.archetype, row: loc.row})
	}
	if w.events != nil {
		w.events.OnRemoveComponent(id, key)
	}
	w.log("remove", "entity", id, "key", key)
	return nil
}

// Alive reports whether id refers to a live entity in this World.
func (w *World) Alive(id EntityId) bool { return w.identities.alive(id) }

// RegisterStream names a compiled Stream for later lookup via StreamByName,
// returning the dense index it was registered at.
func (w *World) RegisterStream(name string, s *Stream) (int, error) {
	return w.streams.Register(name, s)
}

// StreamByName looks up a Stream previously registered with RegisterStream.
func (w *World) StreamByName(name string) (*Stream, bool) {
	idx, ok := w.streams.GetIndex(name)
	if !ok {
		return nil, false
	}
	return *w.streams.GetItem(idx), true
}

// Stats is read-only introspection into a World's current size.
type Stats struct {
	EntityCount    int
	ArchetypeCount int
	RowsPerArchetype map[uint32]int
}

// Stats reports the current entity and archetype counts.
func (w *World) Stats() Stats {
	archs := w.store.archetypes()
	rows := make(map[uint32]int, len(archs))
	total := 0
	for _, a := range archs {
		rows[a.ID()] = a.Len()
		total += a.Len()
	}
	return Stats{
		EntityCount:      total,
		ArchetypeCount:   len(archs),
		RowsPerArchetype: rows,
	}
}

// Close tears down w: every live component value that implements io.Closer
// has its Close method called (collecting every error rather than stopping
// at the first), then every archetype's columns and entity rows are
// released and the identity/object/stream/queue state is dropped. w must
// not be used after Close returns — scoped acquisition of a World ends with
// a single guaranteed-teardown call here, the same way a *sql.DB or
// *os.File is unusable after its own Close.
func (w *World) Close() error {
	var errs []error
	for _, a := range w.store.archetypes() {
		for _, col := range a.columns {
			errs = append(errs, col.closeRows()...)
		}
		a.columns = nil
		a.entities = nil
	}
	w.store = nil
	w.identities = nil
	w.objects = nil
	w.queue = nil
	w.streams = nil
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
