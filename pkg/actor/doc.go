// Package actor implements the two actor kinds that drive entity behaviour
// inside an instance (spec.md §4.2): NetworkActor, owned by a connected
// client, and AiActor, driven by a behaviour tree. Both satisfy the same
// Actor contract so an instance's tick pipeline can treat them uniformly,
// following original_source/src/actor/{network,mob}.rs's shared shape
// (get_commands/execute_orders/register_entity) and the teacher's
// session non-blocking-send idiom (pkg/server/session.go's safeSendMessage).
package actor
