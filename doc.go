/*
Package shard provides an archetype-based Entity-Component-System (ECS)
core with first-class entity relations.

Shard offers a performant approach to managing entities through
component-based design. It's built on an archetype storage system that
keeps entities with the same component signature together for cache
locality, and generalizes "component" beyond a plain Go type: a component
key is a (type, role, target) triple, where role is Plain (an ordinary
untargeted component), Relation (targets another entity — "this orc Likes
that other orc"), or ObjectLink (targets a shared heap object the ECS
doesn't own the lifetime of).

Core Concepts:

  - Entity: a stable (index, generation) handle to a game object.
  - Component key: a (type, role, target) triple, interned to a KeyId.
  - Archetype: the set of entities sharing an exact component signature.
  - Query: a way to find archetypes matching a select/has/not/any/all filter.
  - Stream: a compiled Query, dispatched with the For/Job/Raw/Blit runners.

Basic Usage:

	w := shard.NewWorld()
	position := shard.RegisterComponent[Position](w)
	velocity := shard.RegisterComponent[Velocity](w)

	e := shard.Entity{World: w, Id: w.Spawn()}
	position.Plain().AddTo(e, Position{})
	velocity.Plain().AddTo(e, Velocity{X: 1})

	stream, _ := shard.NewQuery(w).
		Select(position.PlainPattern(), velocity.PlainPattern()).
		Compile()

	shard.For(stream, 0.0, func(e shard.Entity, row *shard.Row, dt float64) {
		pos := position.Plain().Get(row)
		vel := velocity.Plain().Get(row)
		pos.X += vel.X * dt
	})

	defer w.Close()

A World is a scoped resource: Close runs Close on every component value
that implements io.Closer and releases every archetype's storage. A World
should not be used after Close returns.
*/
package shard
