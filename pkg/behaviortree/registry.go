package behaviortree

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"duskward/pkg/flavor"
)

// Options is the per-node configuration a leaf factory parses into a fresh
// Node (spec.md §9). Its shape is leaf-specific; factories type-assert the
// fields they expect and return an error for anything else.
type Options map[string]interface{}

// Factory constructs a fresh Node from per-node Options. A fresh Node is
// produced per registration use so that any per-leaf mutable state (a
// generated corpus cursor, for instance) is never shared between trees.
type Factory func(opts Options) (Node, error)

// Registry maps leaf names to factories, following the
// thread-safe map-of-constructors pattern used by the teacher's procedural
// content generator registry (pkg/pcg/registry.go), retargeted here from
// content generators to behaviour-tree leaves.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	logger    *logrus.Entry
}

// NewRegistry returns a Registry with the three standard leaves
// (spec.md §4.2) and the taunt leaf pre-registered. book supplies the
// trained Markov chains the taunt leaf draws from; pass flavor.NewBook()
// for the bundled default corpora.
func NewRegistry(book *flavor.Book) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		logger:    logrus.WithField("component", "behaviortree.Registry"),
	}
	r.mustRegister("print_text", printTextFactory)
	r.mustRegister("get_closest_target", getClosestTargetFactory)
	r.mustRegister("walk_to_target", walkToTargetFactory)
	r.mustRegister("taunt", tauntFactory(book))
	return r
}

func (r *Registry) mustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Register adds a named factory. Re-registering an existing name is an
// error.
func (r *Registry) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("behaviortree: leaf %q already registered", name)
	}
	r.factories[name] = f
	r.logger.WithField("leaf", name).Info("registered behaviour tree leaf")
	return nil
}

// Build constructs a fresh Node for the named leaf using opts.
func (r *Registry) Build(name string, opts Options) (Node, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("behaviortree: unknown leaf %q", name)
	}
	return f(opts)
}

// Names lists every registered leaf name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// sequence runs each child in order on every tick, stopping at the first
// one that doesn't return Success, and passing Running/Failure through
// unchanged. It gives the admin spawn route a tree to hand a freshly
// created monster without requiring a per-class tree definition resource.
func sequence(children ...Node) Node {
	return NodeFunc(func(ctx *Context) Status {
		status := Success
		for _, child := range children {
			status = child.Tick(ctx)
			if status != Success {
				break
			}
		}
		return status
	})
}

// NewDefaultHunterTree builds the standard "chase and engage the nearest
// entity" tree out of the registry's stock leaves: find the closest target
// within maxSqDist, then walk toward it. Admin-spawned monsters
// (spec.md §6 "spawn" route) use this tree since no per-class tree
// resource exists yet.
func (r *Registry) NewDefaultHunterTree(maxSqDist float64) (Node, error) {
	closest, err := r.Build("get_closest_target", Options{"max_sq_dist": maxSqDist})
	if err != nil {
		return nil, err
	}
	walk, err := r.Build("walk_to_target", nil)
	if err != nil {
		return nil, err
	}
	return sequence(closest, walk), nil
}
