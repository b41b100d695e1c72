package shard

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Stream is a compiled Query, ready for a runner (For/Job/Raw/Blit) to
// dispatch against. Get one from Query.Compile.
type Stream struct {
	world *World
	query *Query
}

func (s *Stream) refresh() { s.query.refresh() }

// wildcardPattern returns the query's first wildcard select pattern, if
// any. A query's select list may carry at most one wildcard pattern; a
// second one is ignored, since the worked scenarios this engine targets
// (relation fan-out over a single Likes:Any-shaped select) never need more
// than one, and supporting a full cartesian product of wildcards per row
// would complicate every runner for a case nothing here exercises.
func (s *Stream) wildcardPattern() (Pattern, bool) {
	for _, p := range s.query.selectPatterns {
		if p.IsWildcard() {
			return p, true
		}
	}
	return Pattern{}, false
}

// Count returns the number of entities currently matched by the query.
func (s *Stream) Count() int {
	s.refresh()
	total := 0
	for _, a := range s.query.matched {
		total += a.Len()
	}
	return total
}

// Row is the per-invocation cursor a stream action uses to read its
// selected components via AccessibleComponent[T].Get/GetSafe, and to learn
// which concrete key satisfied a wildcard select item via WildcardKey.
type Row struct {
	archetype   *Archetype
	index       int
	WildcardKey KeyId
}

// For runs action once per matched entity (or once per entity per matching
// wildcard key, if the query selects a wildcard pattern), single-threaded,
// in matched-archetype order. uniform is threaded through unchanged —
// typically a frame delta time or similar per-call context.
//
// For holds the world lock for its whole run: a structural change action
// makes (Spawn/Despawn/AddTo/RemoveFrom) is deferred to the world's
// operation queue instead of mutating the very archetype the cursor is
// mid-walk over, and drains once For returns.
func For[U any](s *Stream, uniform U, action func(e Entity, row *Row, uniform U)) {
	s.world.Lock()
	defer s.world.Unlock()
	s.refresh()
	wildcard, hasWildcard := s.wildcardPattern()
	var wildcardKeys []KeyId
	if hasWildcard {
		wildcardKeys = s.world.catalog.matching(wildcard, nil)
	}
	cur := newCursor(s.query.matched)
	for cur.Next() {
		a := cur.Archetype()
		i := cur.Row()
		e := Entity{World: s.world, Id: a.entities[i]}
		row := &Row{archetype: a, index: i}
		if !hasWildcard {
			action(e, row, uniform)
			continue
		}
		for _, k := range wildcardKeys {
			if !a.has(k) {
				continue
			}
			row.WildcardKey = k
			action(e, row, uniform)
		}
	}
}

// Job runs action across matched archetypes using a bounded worker pool
// (Config.jobWorkers, or runtime.GOMAXPROCS(0) if unset), one goroutine per
// archetype at a time. Entities within one archetype are processed by a
// single goroutine, so action never needs to synchronize against itself for
// that archetype's rows — only against state shared across archetypes, or
// against a mutable ObjectLink target another goroutine might also reach.
//
// Job holds the world lock for its whole run, same as For: every goroutine's
// structural changes land on the operation queue (safe for concurrent
// enqueue, see operation_queue.go) instead of racing on live archetype
// storage, and drain once every goroutine has returned.
func Job[U any](s *Stream, uniform U, action func(e Entity, row *Row, uniform U)) error {
	s.world.Lock()
	defer s.world.Unlock()
	s.refresh()
	wildcard, hasWildcard := s.wildcardPattern()
	var wildcardKeys []KeyId
	if hasWildcard {
		wildcardKeys = s.world.catalog.matching(wildcard, nil)
	}
	workers := Config.jobWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for _, a := range s.query.matched {
		a := a
		g.Go(func() error {
			for i := 0; i < a.Len(); i++ {
				e := Entity{World: s.world, Id: a.entities[i]}
				row := &Row{archetype: a, index: i}
				if !hasWildcard {
					action(e, row, uniform)
					continue
				}
				for _, k := range wildcardKeys {
					if !a.has(k) {
						continue
					}
					row.WildcardKey = k
					action(e, row, uniform)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// RawView exposes one matched archetype's entities and, via an
// AccessibleComponent[T]'s Slice method, its column data directly — the
// bulk access path for code that wants to operate on contiguous memory
// instead of one row at a time.
type RawView struct {
	Archetype *Archetype
	Entities  []EntityId
}

// Raw runs action once per matched archetype with direct slice access,
// single-threaded. Held under the world lock like For/Job/Blit: action must
// not append/remove rows in the view it was handed (that invalidates the
// slices it just received), but any entity/component mutation it issues
// elsewhere defers cleanly instead of disturbing the archetype list Raw is
// iterating.
func Raw(s *Stream, action func(view RawView)) {
	s.world.Lock()
	defer s.world.Unlock()
	s.refresh()
	for _, a := range s.query.matched {
		action(RawView{Archetype: a, Entities: a.entities})
	}
}

// Blit overwrites every row of acc's column, in every matched archetype,
// with value — a bulk write with no per-row action call, for resets and
// uniform initialization. Held under the world lock like the other runners,
// though Blit never itself triggers a structural change.
func Blit[T any](s *Stream, acc AccessibleComponent[T], value T) {
	s.world.Lock()
	defer s.world.Unlock()
	s.refresh()
	for _, a := range s.query.matched {
		col, ok := a.column(acc.key)
		if !ok {
			continue
		}
		data := col.(*genericColumn[T]).data
		for i := range data {
			data[i] = value
		}
	}
}
