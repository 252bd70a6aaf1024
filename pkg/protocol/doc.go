// Package protocol defines the typed boundary between the simulation core
// and the out-of-scope network codec/accept loop (spec.md §1): the already-
// parsed inbound NetworkCommand stream and the outbound NetworkNotification
// sink, plus the Client handle the coordinator and instances address a
// connected player through. The on-wire framing (length-prefixed, 64-bit
// little-endian length, ≤8KiB body) lives in the network layer this package
// does not implement — callers of this package already have decoded values.
package protocol
