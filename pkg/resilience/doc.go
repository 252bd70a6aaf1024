// Package resilience implements the circuit breaker pattern guarding
// pkg/resource's map and player fetches against the resource backend.
//
// This package stops a down or overloaded backend from cascading into the
// simulation tick: once a breaker trips, fetches fail immediately instead of
// piling up behind pkg/retry's backoff, with automatic recovery testing once
// the backend responds again.
//
// # Circuit Breaker Pattern
//
// A circuit breaker operates in three states:
//
//   - Closed: Normal operation, all requests pass through
//   - Open: Backend failing, requests fail immediately (fast-fail)
//   - HalfOpen: Testing recovery with limited requests
//
// State transitions:
//
//	Closed → Open: After MaxFailures consecutive failures
//	Open → HalfOpen: After Timeout period expires
//	HalfOpen → Closed: After successful test requests
//	HalfOpen → Open: If test requests fail
//
// # Creating Circuit Breakers
//
// Create a circuit breaker with custom configuration:
//
//	config := resilience.CircuitBreakerConfig{
//	    MaxFailures: 5,              // Open after 5 failures
//	    Timeout:     30*time.Second, // Wait 30s before testing
//	    MaxRequests: 3,              // Allow 3 test requests in half-open
//	}
//	cb := resilience.NewCircuitBreaker(config)
//
// # Executing Protected Operations
//
// Wrap operations with circuit breaker protection:
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return fetchMap(ctx, id)
//	})
//	if errors.Is(err, resilience.ErrCircuitBreakerOpen) {
//	    // Resource backend is down, fall back or surface the error
//	}
//
// pkg/resource keeps one breaker each for its map and player fetchers
// ("resource.map", "resource.player") so a failing map backend can't trip
// the player breaker.
//
// # Managing Multiple Breakers
//
// Use CircuitBreakerManager for multiple named breakers:
//
//	manager := resilience.NewCircuitBreakerManager()
//	cb := manager.GetOrCreate("resource.map", &config)
//	stats := manager.GetAllStats()
//
// ExecuteWithResourceBreaker wraps the global manager for ad hoc named
// resource fetches that don't keep a long-lived breaker reference.
//
// # Monitoring
//
// Query circuit breaker state and statistics:
//
//	state := cb.GetState()       // StateClosed, StateOpen, or StateHalfOpen
//	stats := cb.GetStats()       // Failure counts, request counts, timestamps
//
// # Thread Safety
//
// All circuit breaker operations are thread-safe via internal mutex protection.
// Multiple goroutines can safely execute through the same breaker.
package resilience
