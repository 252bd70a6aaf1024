// Package auth implements the short-lived character-id-to-token map a
// client's Authenticate command is checked against (spec.md §4.5).
// Grounded on original_source/src/game/authentication.rs's
// AuthenticationManager: add_token inserts, verify_token removes the
// entry iff it matches and re-inserts it on mismatch so the coordinator
// may retry. SPEC_FULL.md §4.5 NEW adds a bounded sweep of stale,
// never-consumed tokens, absent from the original (which left the
// TODO("Timeouts") unaddressed).
package auth
