// Package adminapi implements the HTTP management surface of spec.md §6:
// an unauthenticated /healthz and /metrics pair, a gorilla/websocket tick
// stream for live dashboards, and the functional admin routes (maps,
// instances, entities, players, spawn, delete, connect_character,
// shutdown) gated by a shared Access-Token header, following the
// teacher's pkg/server health-check/rate-limit/middleware conventions
// (pkg/server/health.go, ratelimit.go, middleware.go) retargeted from an
// RPC game server onto the coordinator's Arbitrary-closure introspection
// pattern.
package adminapi
