// Package instance implements the per-map simulation worker (spec.md §4.1):
// a single goroutine draining a Command inbox, multiplexed with a
// fixed-tick ticker and a coarser player-roster ticker, driving every actor
// and entity on one map. Grounded on original_source/src/instance/mod.rs's
// Instance::spawn_instance event loop (tick/roster/command select, lag
// accumulator catch-up) and dm-vev-adamant/server/world/tick.go's
// ticker-goroutine idiom, adapted from a shared-World-plus-Tx model to one
// worker per instance with no locks at all.
package instance
