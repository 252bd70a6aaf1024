// Package idgen is the process-wide monotonically increasing id allocator
// (spec.md §3 "Process-wide id allocation"): one counter, initialised at
// startup, with no teardown and no reuse. It backs both entity.ID and
// actor.ID allocation in the coordinator.
package idgen
