// Package entity defines the simulated unit the engine advances each tick:
// position, velocity, orientation, hitboxes, stats and the attack state
// machine. An Entity owns no external resources and belongs to exactly one
// entitystore.Store for its lifetime in the process.
package entity
