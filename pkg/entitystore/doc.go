// Package entitystore provides the ordered, id-keyed collection of entities
// owned by a single instance, including the double-iteration pattern that
// grants one mutable entity plus a bounded accessor over the rest — the
// controlled escape hatch combat resolution uses to read/write two entities
// in the same step (spec.md §3, §5, §9).
package entitystore
