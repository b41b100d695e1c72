package shard

import "testing"

func spawnWithPlain(w *World, add func(Entity)) Entity {
	e := Entity{World: w, Id: w.Spawn()}
	add(e)
	return e
}

// TestQueryFiltering exercises the Select/Not/Any combinators.
func TestQueryFiltering(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)
	health := RegisterComponent[Health](w)

	mk := func(n int, add func(Entity)) {
		for i := 0; i < n; i++ {
			e := Entity{World: w, Id: w.Spawn()}
			add(e)
		}
	}
	withPV := func(e Entity) {
		position.Plain().AddTo(e, Position{})
		velocity.Plain().AddTo(e, Velocity{})
	}
	withP := func(e Entity) { position.Plain().AddTo(e, Position{}) }
	withV := func(e Entity) { velocity.Plain().AddTo(e, Velocity{}) }
	withH := func(e Entity) { health.Plain().AddTo(e, Health{}) }
	withPVH := func(e Entity) {
		position.Plain().AddTo(e, Position{})
		velocity.Plain().AddTo(e, Velocity{})
		health.Plain().AddTo(e, Health{})
	}
	withPH := func(e Entity) {
		position.Plain().AddTo(e, Position{})
		health.Plain().AddTo(e, Health{})
	}
	withVH := func(e Entity) {
		velocity.Plain().AddTo(e, Velocity{})
		health.Plain().AddTo(e, Health{})
	}

	mk(5, withPV)
	mk(10, withP)
	mk(15, withV)
	mk(20, withH)
	mk(15, withPVH)
	mk(20, withVH)
	mk(25, withPH)

	t.Run("select requires all", func(t *testing.T) {
		s, err := NewQuery(w).Select(position.PlainPattern(), velocity.PlainPattern()).Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		// withPV(5) + withPVH(15)
		if got := s.Count(); got != 20 {
			t.Errorf("And count = %d, want 20", got)
		}
	})

	t.Run("any matches either", func(t *testing.T) {
		s, err := NewQuery(w).Any(position.PlainPattern(), velocity.PlainPattern()).Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		// everything except the plain withH(20) group
		if got, want := s.Count(), 5+10+15+15+20+25; got != want {
			t.Errorf("Or count = %d, want %d", got, want)
		}
	})

	t.Run("not excludes", func(t *testing.T) {
		s, err := NewQuery(w).Not(velocity.PlainPattern()).Compile()
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		// withP(10) + withH(20) + withPH(25)
		if got := s.Count(); got != 55 {
			t.Errorf("Not count = %d, want 55", got)
		}
	})
}

// TestQueryWithStream exercises Stream.Count across a few component sets.
func TestQueryWithStream(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)
	health := RegisterComponent[Health](w)

	for i := 0; i < 10; i++ {
		spawnWithPlain(w, func(e Entity) { position.Plain().AddTo(e, Position{}) })
	}
	for i := 0; i < 10; i++ {
		spawnWithPlain(w, func(e Entity) {
			position.Plain().AddTo(e, Position{})
			velocity.Plain().AddTo(e, Velocity{})
		})
	}
	for i := 0; i < 10; i++ {
		spawnWithPlain(w, func(e Entity) { velocity.Plain().AddTo(e, Velocity{}) })
	}

	s1, _ := NewQuery(w).Select(position.PlainPattern()).Compile()
	if got := s1.Count(); got != 20 {
		t.Errorf("position count = %d, want 20", got)
	}

	s2, _ := NewQuery(w).Select(position.PlainPattern(), velocity.PlainPattern()).Compile()
	if got := s2.Count(); got != 10 {
		t.Errorf("position+velocity count = %d, want 10", got)
	}

	s3, _ := NewQuery(w).Select(health.PlainPattern()).Compile()
	if got := s3.Count(); got != 0 {
		t.Errorf("health count = %d, want 0", got)
	}
}

// TestQueryComponentAccess exercises reading and mutating component data
// through a compiled Stream's For runner.
func TestQueryComponentAccess(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)

	for i := 0; i < 10; i++ {
		e := Entity{World: w, Id: w.Spawn()}
		pos := Position{X: float64(i), Y: float64(i * 2)}
		position.Plain().AddTo(e, pos)
		vel := Velocity{X: float64(i) * 0.1, Y: float64(i) * 0.2}
		velocity.Plain().AddTo(e, vel)
	}

	stream, err := NewQuery(w).Select(position.PlainPattern(), velocity.PlainPattern()).Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	For(stream, 0, func(e Entity, row *Row, _ int) {
		pos := position.Plain().Get(row)
		vel := velocity.Plain().Get(row)
		pos.X += vel.X
		pos.Y += vel.Y
	})

	For(stream, 0, func(e Entity, row *Row, _ int) {
		pos := position.Plain().Get(row)
		vel := velocity.Plain().Get(row)
		expectedX := pos.X - vel.X
		expectedY := pos.Y - vel.Y
		if !almostEqual(expectedX/10, vel.X, 0.0001) {
			t.Errorf("position X %v doesn't reconstruct expected pattern from velocity %v", expectedX, vel.X)
		}
		if !almostEqual(expectedY/20, vel.X, 0.0001) {
			t.Errorf("position Y %v doesn't reconstruct expected pattern from velocity %v", expectedY, vel.X)
		}
	})
}

// Likes is a relation component: a score an entity assigns to another.
type Likes struct {
	Score int
}

// TestQueryRelationWildcard exercises a Select over a wildcard Relation
// pattern, which fans the action out once per matching concrete key.
func TestQueryRelationWildcard(t *testing.T) {
	w := NewWorld()
	likes := RegisterComponent[Likes](w)

	alice := Entity{World: w, Id: w.Spawn()}
	bob := Entity{World: w, Id: w.Spawn()}
	carol := Entity{World: w, Id: w.Spawn()}

	if err := likes.Relation(bob.Id).AddTo(alice, Likes{Score: 5}); err != nil {
		t.Fatalf("AddTo Likes(bob): %v", err)
	}
	if err := likes.Relation(carol.Id).AddTo(alice, Likes{Score: 9}); err != nil {
		t.Fatalf("AddTo Likes(carol): %v", err)
	}

	stream, err := NewQuery(w).Select(likes.AnyEntityPattern()).Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	seen := map[EntityId]int{}
	For(stream, 0, func(e Entity, row *Row, _ int) {
		target, ok := w.catalog.relationTarget(row.WildcardKey)
		if !ok {
			t.Fatal("expected WildcardKey to resolve to a relation target")
		}
		score := likes.Relation(target).Get(row)
		seen[target] = score.Score
	})

	if seen[bob.Id] != 5 || seen[carol.Id] != 9 {
		t.Errorf("unexpected wildcard fan-out: %v", seen)
	}
	if len(seen) != 2 {
		t.Errorf("expected exactly 2 distinct relation targets, got %d", len(seen))
	}
}

func almostEqual(a, b, epsilon float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}
