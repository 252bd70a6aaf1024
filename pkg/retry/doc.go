// Package retry provides configurable retry mechanisms with exponential backoff
// for the map and player fetches pkg/resource makes against the resource
// backend over HTTP.
//
// This package handles transient failures by automatically retrying operations
// with configurable delays, backoff strategies, and jitter to prevent thundering
// herd problems against a backend that may itself be recovering from load.
//
// # Configuration
//
// Create a Retrier with custom retry policy:
//
//	config := retry.RetryConfig{
//	    MaxAttempts:       5,
//	    InitialDelay:      100 * time.Millisecond,
//	    MaxDelay:          30 * time.Second,
//	    BackoffMultiplier: 2.0,
//	    JitterMaxPercent:  25,
//	}
//	retrier := retry.NewRetrier(config)
//
// # Executing with Retry
//
// Wrap operations with automatic retry on failure:
//
//	err := retrier.Execute(ctx, func(ctx context.Context) error {
//	    return fetchResource(ctx)
//	})
//
// ExecuteWithResult accepts an operation that returns a value, but it
// returns only the final error; the value is discarded:
//
//	err := retrier.ExecuteWithResult(ctx, func(ctx context.Context) (interface{}, error) {
//	    return fetchMap(ctx, id)
//	})
//
// # Backoff Strategy
//
// Delays increase exponentially between retries:
//
//	Attempt 1: InitialDelay (100ms)
//	Attempt 2: InitialDelay * BackoffMultiplier (200ms)
//	Attempt 3: Previous * BackoffMultiplier (400ms)
//	...up to MaxDelay
//
// Jitter is applied to prevent synchronized retries across instances hitting
// the same backend.
//
// # Pre-configured Retriers
//
// Global retriers with common configurations:
//
//	// Default: 3 attempts, 100ms initial delay
//	err := retry.Execute(ctx, operation)
//
//	// Network: 5 attempts, 200ms initial, 60s max
//	err := retry.ExecuteNetwork(ctx, operation)
//
// pkg/resource does not use these; its Manager builds its own Retrier
// (3 attempts, 25ms initial, 200ms max).
//
// # Retryable Errors
//
// Every non-nil error triggers a retry. RetryableErrors can list errors
// that are retryable, but setting it does not stop other errors from being
// retried:
//
//	config.RetryableErrors = []error{
//	    syscall.ECONNREFUSED,
//	    io.ErrUnexpectedEOF,
//	}
//
// # Context Support
//
// Retries respect context cancellation and deadlines, so a tick's fetch
// budget is never exceeded by retry delay alone:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//	err := retrier.Execute(ctx, operation)
//
// # Logging
//
// Retry attempts are logged with structured context including attempt number,
// delay duration, and error details for debugging a flaky resource backend.
//
// # Circuit Breaking
//
// pkg/resilience wraps each resource fetch in a circuit breaker alongside
// this retrier, so a backend that is down outright fails fast instead of
// being retried into the ground.
package retry
