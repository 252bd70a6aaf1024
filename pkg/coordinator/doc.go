// Package coordinator implements the Game: the single-threaded-cooperative
// owner of state that spans maps (spec.md §4.3) — client routing, instance
// lifecycle, and cross-instance events. Grounded on
// original_source/src/game/mod.rs's Game/Handler: a serial Request queue
// (here a Go channel instead of an mio event loop), assign_actor_to_map's
// lazy per-map instance spawn, and the Callbacks job-continuation map used
// to resume a request once an async resource fetch completes — ported
// from future/callback style to goroutine-plus-follow-up-request, the
// idiomatic Go rendering of the same "don't block the single worker"
// contract.
package coordinator
