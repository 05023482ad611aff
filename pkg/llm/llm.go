// Package llm talks to the language model that turns descriptions into
// architecture plans.
//
// [Client] is the narrow interface the pipeline depends on. [OllamaClient]
// implements it against Ollama's /api/chat endpoint with per-attempt
// timeouts and exponential backoff; [CachedClient] memoizes replies in a
// [cache.Cache].
//
// The prompt builders ([ExtractionMessages], [RefinementMessages],
// [RepairMessages]) produce the exact conversations sent to the model, and
// [Repairer] adapts a Client into the repair collaborator used by
// [plan.Validate].
//
// [cache.Cache]: github.com/harishkotra/SketchStack/pkg/cache.Cache
// [plan.Validate]: github.com/harishkotra/SketchStack/pkg/plan.Validate
package llm

import (
	"context"
	"errors"
	"strings"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions overrides client defaults for a single call. Zero values keep
// the defaults.
type ChatOptions struct {
	Model       string
	Temperature *float64
}

// Client sends a conversation to a model and returns the reply text.
type Client interface {
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
}

// ClientFunc adapts a function to [Client].
type ClientFunc func(ctx context.Context, messages []Message, opts ChatOptions) (string, error)

// Chat calls f.
func (f ClientFunc) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	return f(ctx, messages, opts)
}

// ModelLister is implemented by clients that can report which models the
// server has installed.
type ModelLister interface {
	Models(ctx context.Context) ([]string, error)
}

// ErrModelsUnsupported is returned by wrappers whose inner client cannot
// list models.
var ErrModelsUnsupported = errors.New("model listing not supported")

// HasModel reports whether names contains model. A name without a tag
// matches its ":latest" variant.
func HasModel(names []string, model string) bool {
	for _, n := range names {
		if n == model || (!strings.Contains(model, ":") && n == model+":latest") {
			return true
		}
	}
	return false
}
