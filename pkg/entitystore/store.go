package entitystore

import (
	"fmt"

	"duskward/pkg/entity"
)

// Store is the ordered, id-keyed collection of entities belonging to a
// single instance. It is not safe for concurrent use — by design, an
// instance's Store is touched only from that instance's single worker
// goroutine (spec.md §5).
type Store struct {
	entities []*entity.Entity
	index    map[entity.ID]int
}

// New returns an empty Store.
func New() *Store {
	return &Store{index: make(map[entity.ID]int)}
}

// Insert adds e to the store. It returns an error if an entity with the
// same id is already present.
func (s *Store) Insert(e *entity.Entity) error {
	if _, exists := s.index[e.ID]; exists {
		return fmt.Errorf("entitystore: entity %d already present", e.ID)
	}
	s.index[e.ID] = len(s.entities)
	s.entities = append(s.entities, e)
	return nil
}

// Get looks up an entity by id.
func (s *Store) Get(id entity.ID) (*entity.Entity, bool) {
	pos, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.entities[pos], true
}

// Len returns the number of entities currently stored.
func (s *Store) Len() int {
	return len(s.entities)
}

// Remove deletes the entity with the given id, if present, and returns it.
func (s *Store) Remove(id entity.ID) (*entity.Entity, bool) {
	pos, ok := s.index[id]
	if !ok {
		return nil, false
	}
	removed := s.entities[pos]
	s.removeAt(pos)
	return removed, true
}

// RemoveIf removes every entity matching pred and returns the removed
// entities in their original relative order.
func (s *Store) RemoveIf(pred func(*entity.Entity) bool) []*entity.Entity {
	var removed []*entity.Entity
	kept := s.entities[:0:0]
	for _, e := range s.entities {
		if pred(e) {
			removed = append(removed, e)
			delete(s.index, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	s.entities = kept
	s.reindex()
	return removed
}

// removeAt deletes the entity at slice position pos and reindexes the
// shifted tail.
func (s *Store) removeAt(pos int) {
	id := s.entities[pos].ID
	s.entities = append(s.entities[:pos], s.entities[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.entities); i++ {
		s.index[s.entities[i].ID] = i
	}
}

func (s *Store) reindex() {
	for i, e := range s.entities {
		s.index[e.ID] = i
	}
}

// ForEach visits every entity in insertion order. fn must not insert or
// remove entities from the store; use RemoveIf for bulk removal instead.
func (s *Store) ForEach(fn func(*entity.Entity)) {
	for _, e := range s.entities {
		fn(e)
	}
}

// All returns a snapshot slice of the stored entities in insertion order.
// The slice is owned by the caller but the entities themselves still alias
// the store's.
func (s *Store) All() []*entity.Entity {
	out := make([]*entity.Entity, len(s.entities))
	copy(out, s.entities)
	return out
}
