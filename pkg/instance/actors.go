package instance

import "duskward/pkg/actor"

// actorSet holds every actor registered to an instance in insertion order
// (spec.md §4.1 "actor iteration order fixed by insertion"), mirroring the
// entitystore.Store's slice-plus-index shape.
type actorSet struct {
	order []actor.ID
	byID  map[actor.ID]actor.Actor
}

func newActorSet() *actorSet {
	return &actorSet{byID: make(map[actor.ID]actor.Actor)}
}

// register adds a, replacing and logging over any existing actor with the
// same id (original_source/src/instance/mod.rs's Actors::register_client:
// "Erasing old actor").
func (s *actorSet) register(a actor.Actor) (replaced bool) {
	id := a.ActorID()
	if _, exists := s.byID[id]; !exists {
		s.order = append(s.order, id)
	} else {
		replaced = true
	}
	s.byID[id] = a
	return replaced
}

func (s *actorSet) get(id actor.ID) (actor.Actor, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// remove deletes id from the set, returning the removed actor if present.
func (s *actorSet) remove(id actor.ID) (actor.Actor, bool) {
	a, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return a, true
}

// forEach visits every actor in insertion order. fn returning false stops
// the iteration early.
func (s *actorSet) forEach(fn func(actor.Actor) bool) {
	for _, id := range s.order {
		a, ok := s.byID[id]
		if !ok {
			continue
		}
		if !fn(a) {
			return
		}
	}
}

func (s *actorSet) len() int { return len(s.order) }
