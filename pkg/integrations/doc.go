// Package integrations provides clients for the external services SketchStack
// talks to.
//
// # Overview
//
// The [Client] type in this package is the shared HTTP layer: JSON requests,
// failure classification for [httputil.Retry] and upstream observability
// events. Service-specific clients live in subpackages:
//
//   - [mcp]: draw.io and Excalidraw tool servers spoken to over the Model
//     Context Protocol
//
// The language model client in [llm] is built on [Client].
//
// # Error Classification
//
// Failures that may succeed on a later attempt (connection errors, deadline
// expiry, 429 and 5xx responses) are wrapped in [httputil.RetryableError].
// Everything else is returned as is and stops a retry loop immediately.
//
//	c := integrations.NewClient("ollama", nil)
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return c.PostJSON(ctx, "chat", url, req, &resp)
//	})
//
// [mcp]: github.com/harishkotra/SketchStack/pkg/integrations/mcp
// [llm]: github.com/harishkotra/SketchStack/pkg/llm
// [httputil.Retry]: github.com/harishkotra/SketchStack/pkg/httputil.Retry
// [httputil.RetryableError]: github.com/harishkotra/SketchStack/pkg/httputil.RetryableError
package integrations
