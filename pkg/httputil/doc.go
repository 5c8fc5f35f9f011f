// Package httputil provides the HTTP plumbing used to fetch remote
// resource documents.
//
// # Overview
//
//   - [Client]: JSON GET requests with default headers, status mapping and
//     automatic retry of transient failures
//   - [Retry]: exponential backoff for any operation
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried. [Client] wraps
// network failures, 429 and 5xx responses; 404 and other 4xx responses fail
// immediately. A 429 with a Retry-After header waits as long as the server
// asks, capped at [MaxDelay]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// [NewClient] defaults to 3 attempts starting at a 1 second delay, doubling
// each time.
//
// Requests report through the observability HTTP hooks so the CLI can log
// them at debug level.
package httputil
