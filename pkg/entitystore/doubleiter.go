package entitystore

import "duskward/pkg/entity"

// DoubleIter walks the store one entity at a time, handing out a bounded
// accessor over "the others" alongside each one. It is the Go rendering of
// original_source/src/entity/double_iterator.rs's DoubleIterMut: that
// implementation used unsafe pointer transmutes to convince the Rust borrow
// checker two disjoint mutable references were sound; Go has no borrow
// checker to convince, so the same guarantee — the yielded accessor can
// never observe the currently-borrowed entity — is enforced here purely by
// comparing slice indices.
type DoubleIter struct {
	store *Store
	pos   int
}

// IterMutWrapper starts a double-iteration pass over the store.
func (s *Store) IterMutWrapper() *DoubleIter {
	return &DoubleIter{store: s}
}

// NextItem yields the next entity together with an Others accessor over
// every other entity in the store. It returns ok=false once every entity
// has been yielded once.
func (d *DoubleIter) NextItem() (e *entity.Entity, others *Others, ok bool) {
	if d.pos >= len(d.store.entities) {
		return nil, nil, false
	}
	e = d.store.entities[d.pos]
	others = &Others{store: d.store, borrowedPos: d.pos}
	d.pos++
	return e, others, true
}

// Borrow looks up one entity by id and returns it together with an Others
// accessor over every other entity in the store, applying the double
// iterator's borrow rule (Get/ForEach never yield the borrowed entity) to a
// single lookup rather than a full pass. AI actors use this to drive their
// behaviour tree against their own entity (spec.md §4.2).
func (s *Store) Borrow(id entity.ID) (e *entity.Entity, others *Others, ok bool) {
	pos, exists := s.index[id]
	if !exists {
		return nil, nil, false
	}
	return s.entities[pos], &Others{store: s, borrowedPos: pos}, true
}

// Others is the escape hatch granting mutable access to every entity in a
// Store except the one currently borrowed by a DoubleIter. Its contract:
// Get never returns the borrowed entity, even when queried by its own id,
// and ForEach/iteration never visits it either (spec.md §3, §8 invariant 5).
type Others struct {
	store       *Store
	borrowedPos int
}

// Get looks up another entity by id. It returns ok=false both when no such
// entity exists and when id names the entity currently borrowed by the
// DoubleIter that produced this accessor.
func (o *Others) Get(id entity.ID) (e *entity.Entity, ok bool) {
	pos, exists := o.store.index[id]
	if !exists || pos == o.borrowedPos {
		return nil, false
	}
	return o.store.entities[pos], true
}

// ForEach visits every entity other than the one currently borrowed. fn
// returning false stops the iteration early.
func (o *Others) ForEach(fn func(*entity.Entity) bool) {
	for i, e := range o.store.entities {
		if i == o.borrowedPos {
			continue
		}
		if !fn(e) {
			return
		}
	}
}
