// Package flavor generates mob flavor text (taunts, barks) from small
// Markov chains trained on bundled corpora, following the corpus-to-chain
// training idiom of the teacher's procedural dialogue generator
// (pkg/pcg/dialogue.go). Generated lines are cosmetic: they are emitted as
// Say notifications exactly like a literal print_text leaf and carry no
// protocol-significant state, so they cannot affect the wire contract in
// pkg/protocol.
package flavor
