// Package combat implements the two-entity attribute view attack resolution
// evaluates combat rules against (spec.md §4.1 step 2b, §9). The engine
// itself never hard-codes a damage formula: it exposes source.*/target.*
// attribute reads, and reacts only to a write of the special "damage"
// attribute, exactly as original_source/src/entity/update/attacks.rs's
// AaribaIntegration does for the externally-supplied combat script. Evaluator
// is the seam a pluggable rule source would implement; DefaultRules is one
// concrete, hand-written evaluator so the system is runnable standalone.
package combat
