// Package behaviortree implements the AI actor's decision tree: a Context
// granting (self entity, others accessor, blackboard), a Status-returning
// Node interface, the three standard leaves spec.md §4.2 names
// (print_text, get_closest_target, walk_to_target), and a registry of named
// leaf factories so new leaves can be added without the tree walker knowing
// about them (spec.md §9 "Behaviour-tree leaves as plugins"), following the
// Registry/Factory pattern the teacher uses for its procedural-content
// generators (pkg/pcg/registry.go).
package behaviortree
