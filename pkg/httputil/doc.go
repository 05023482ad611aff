// Package httputil provides retry and response classification helpers for
// the upstream clients (the Ollama chat API and the MCP tool servers).
//
// # Retry
//
// [Retry] runs an operation up to a fixed number of attempts, doubling the
// delay after each failure. [RetryConstant] keeps the delay fixed. Only
// errors wrapped with [RetryableError] are retried; anything else is
// returned at once:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
//
// # Status Classification
//
// [CheckStatus] turns a non-2xx response into a [StatusError]. Rate limits
// (429) and server errors (5xx) come back retryable, client errors do not.
package httputil
