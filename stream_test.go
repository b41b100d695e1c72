package shard

import (
	"sync/atomic"
	"testing"
)

func TestJobRunnerCoversEveryEntity(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)

	for i := 0; i < 50; i++ {
		e := Entity{World: w, Id: w.Spawn()}
		position.Plain().AddTo(e, Position{X: float64(i)})
		if i%2 == 0 {
			velocity.Plain().AddTo(e, Velocity{X: 1})
		}
	}

	stream, err := NewQuery(w).Select(position.PlainPattern()).Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var touched int32
	err = Job(stream, 0, func(e Entity, row *Row, _ int) {
		position.Plain().Get(row)
		atomic.AddInt32(&touched, 1)
	})
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if touched != 50 {
		t.Errorf("Job touched %d entities, want 50", touched)
	}
}

func TestRawRunnerSliceAccess(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)

	for i := 0; i < 5; i++ {
		e := Entity{World: w, Id: w.Spawn()}
		position.Plain().AddTo(e, Position{X: float64(i)})
	}

	stream, err := NewQuery(w).Select(position.PlainPattern()).Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	var total int
	Raw(stream, func(view RawView) {
		slice, ok := position.Plain().Slice(view)
		if !ok {
			t.Fatal("expected Position column on this view")
		}
		total += len(slice)
		for i := range slice {
			slice[i].Y = slice[i].X * 2
		}
	})
	if total != 5 {
		t.Errorf("Raw visited %d rows total, want 5", total)
	}

	For(stream, 0, func(e Entity, row *Row, _ int) {
		pos := position.Plain().Get(row)
		if pos.Y != pos.X*2 {
			t.Errorf("Raw mutation didn't stick: %+v", pos)
		}
	})
}

func TestBlitOverwritesColumn(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)

	for i := 0; i < 5; i++ {
		e := Entity{World: w, Id: w.Spawn()}
		position.Plain().AddTo(e, Position{X: float64(i)})
	}

	stream, err := NewQuery(w).Select(position.PlainPattern()).Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	Blit(stream, position.Plain(), Position{X: 9, Y: 9})

	For(stream, 0, func(e Entity, row *Row, _ int) {
		pos := position.Plain().Get(row)
		if pos.X != 9 || pos.Y != 9 {
			t.Errorf("Blit left stale value %+v", pos)
		}
	})
}

// TestDeferredOpsCollapseOnDespawn verifies that an add-component op queued
// after a despawn of the same entity in the same locked batch simply
// no-ops, instead of erroring or resurrecting the entity.
func TestDeferredOpsCollapseOnDespawn(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)

	e := Entity{World: w, Id: w.Spawn()}

	w.Lock()
	position.Plain().AddTo(e, Position{X: 1})
	e.Despawn()
	// This op is queued after the despawn; it must not resurrect e or panic.
	position.Plain().AddTo(e, Position{X: 2})
	w.Unlock()

	if e.Valid() {
		t.Fatal("entity despawned mid-batch should stay despawned after drain")
	}
}

// TestProvisionalSpawnIdAsRelationTarget verifies that an entity spawned
// while the World is locked can immediately be used as a relation target by
// another deferred operation in the same batch, before the spawn itself has
// been drained into an archetype.
func TestProvisionalSpawnIdAsRelationTarget(t *testing.T) {
	w := NewWorld()
	likes := RegisterComponent[Likes](w)

	a := Entity{World: w, Id: w.Spawn()}

	w.Lock()
	b := Entity{World: w, Id: w.Spawn()} // provisional: not yet placed in any archetype
	if err := likes.Relation(b.Id).AddTo(a, Likes{Score: 3}); err != nil {
		t.Fatalf("AddTo referencing a provisional id: %v", err)
	}
	w.Unlock()

	if !b.Valid() {
		t.Fatal("provisional entity should be alive after drain")
	}
	score, ok := likes.Relation(b.Id).GetFromEntity(w, a.Id)
	if !ok || score.Score != 3 {
		t.Errorf("Likes(b) on a = (%+v, %v), want (&{3}, true)", score, ok)
	}
}
