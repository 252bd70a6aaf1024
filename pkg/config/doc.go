// Package config provides configuration management for the duskward game
// server.
//
// This package handles environment variable loading with type-safe parsing,
// applies secure production defaults, and performs extensive validation of
// all configuration values.
//
// # Loading Configuration
//
// Configuration is loaded from environment variables with the DUSKWARD_
// prefix:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
// Server settings:
//   - DUSKWARD_PORT: game protocol TCP port (default: 9000)
//   - DUSKWARD_CONFIGURATION: resource backend base URL (default: "http://localhost:8080")
//   - DUSKWARD_DEFAULT_FALLBACK: substitute a synthesized default on a failed resource fetch (default: false)
//   - DUSKWARD_ADMIN_TOKEN: shared secret for the admin HTTP API's Access-Token header
//   - DUSKWARD_ADMIN_ADDR: admin HTTP listener address (default: "127.0.0.1:8001")
//   - DUSKWARD_TICK_RATE: simulation tick rate in Hz (default: 60)
//   - DUSKWARD_LOG_LEVEL: logging verbosity (default: "info")
//   - DUSKWARD_DATA_DIR: player-record persistence root (default: "./scripts")
//   - DUSKWARD_DEBUG_AUTH_BYPASS: accept any player auth token (default: false, local dev only)
//
// Admin API rate limiting:
//   - DUSKWARD_RATE_LIMIT_ENABLED: enable admin API rate limiting (default: true)
//   - DUSKWARD_RATE_LIMIT_REQUESTS_PER_SECOND: requests per second per caller (default: 5)
//   - DUSKWARD_RATE_LIMIT_BURST: burst allowance per caller (default: 10)
//
// Lifecycle:
//   - DUSKWARD_SHUTDOWN_TIMEOUT: time to wait for instance shutdown acks (default: 10s)
//
// # Validation
//
// All configuration values are validated on load:
//   - Port must be in valid range (1-65535)
//   - Tick rate must be positive
//   - Log level must be one of trace/debug/info/warn/error
//   - Rate limit values must be positive when rate limiting is enabled
package config
