// Package main implements the duskward game coordinator server.
//
// The coordinator drives a fixed-tick simulation (default 60Hz, see
// DUSKWARD_TICK_RATE) across one goroutine-owned instance per map, and
// exposes an admin HTTP API for operators to inspect and control it.
// Player connections speak duskward's raw TCP protocol directly to a running
// instance and are out of scope for this process's accept loop.
//
// # Architecture
//
//   - Configuration loading and validation (via pkg/config)
//   - Logging setup (via logrus)
//   - Resource manager construction, fetching maps and player records from
//     the resource backend over HTTP with retry and circuit-breaker
//     protection (pkg/retry, pkg/resilience)
//   - Auth manager construction and its stale-token sweeper goroutine
//   - Coordinator construction and its request loop, run on its own
//     goroutine (each instance it spawns runs its own tick loop)
//   - Admin HTTP API construction and its listener goroutine
//   - Signal handling for SIGINT and SIGTERM with ordered graceful shutdown
//
// # Startup Sequence
//
//  1. Load configuration from DUSKWARD_* environment variables
//  2. Configure logging based on DUSKWARD_LOG_LEVEL
//  3. Build the Prometheus registry, resource manager, and auth manager
//  4. Start the auth manager's stale-token sweeper
//  5. Start the coordinator's request loop
//  6. Start the admin HTTP listener
//  7. Block until a shutdown signal, admin listener failure, or the
//     coordinator exiting on its own
//
// # Environment Variables
//
// See pkg/config's documentation for the full list of DUSKWARD_* variables
// (port, resource backend URL, admin address and token, tick rate, log
// level, data directory, auth bypass, rate limiting, shutdown timeout).
//
// # Usage
//
// Run the coordinator with default settings:
//
//	./server
//
// Run with a custom admin address and debug logging:
//
//	DUSKWARD_ADMIN_ADDR=0.0.0.0:8001 DUSKWARD_LOG_LEVEL=debug ./server
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM:
//
//  1. Stop the auth manager's sweeper
//  2. Ask the coordinator to drain every instance and persist player records
//  3. Wait up to DUSKWARD_SHUTDOWN_TIMEOUT for the coordinator to exit
//  4. Stop the admin HTTP listener
package main
