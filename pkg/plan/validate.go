package plan

import (
	"context"
	"io"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/observability"
)

// DefaultMaxRepairAttempts is the number of repair calls allowed after the
// first attempt fails.
const DefaultMaxRepairAttempts = 2

// maxErrorLen bounds the error text passed to a repair call and to logs.
const maxErrorLen = 500

// RepairFunc asks an external collaborator to correct raw so that it
// satisfies the schema. errMsg describes why the last attempt failed.
type RepairFunc func(ctx context.Context, errMsg, raw string) (string, error)

// Outcome is the result of [Validate].
type Outcome[T any] struct {
	// Value is the decoded document. It is the zero value unless Err is nil.
	Value T
	// Attempts is the number of parse/validate attempts made.
	Attempts int
	// Repairs is the number of repair calls made.
	Repairs int
	// LastError is the last parse or schema error observed, if any.
	LastError error
	// Err is nil on success. It is a VALIDATION_FAILED error when the budget
	// ran out, or the repair collaborator's own error, returned unchanged.
	Err error
}

// OK reports whether validation succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Result returns the value and error as a pair.
func (o Outcome[T]) Result() (T, error) { return o.Value, o.Err }

// ValidateOption configures [Validate].
type ValidateOption func(*validateConfig)

type validateConfig struct {
	logger *log.Logger
}

// WithLogger logs each failed attempt at warn level.
func WithLogger(l *log.Logger) ValidateOption {
	return func(c *validateConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Validate normalizes, parses and checks raw against schema. If an attempt
// fails and repairs remain, repair is called with the error message and the
// last raw text, and the whole sequence is retried on the corrected text.
//
// At most maxRepairAttempts+1 attempts and maxRepairAttempts repair calls are
// made. A nil repair behaves like a budget of zero. Errors returned by repair
// end the loop immediately and are reported unchanged in Outcome.Err.
func Validate[T any](ctx context.Context, raw string, schema *Schema[T], maxRepairAttempts int, repair RepairFunc, opts ...ValidateOption) Outcome[T] {
	cfg := validateConfig{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(&cfg)
	}
	if repair == nil || maxRepairAttempts < 0 {
		maxRepairAttempts = 0
	}

	var out Outcome[T]
	current := raw
	for attempt := 1; attempt <= maxRepairAttempts+1; attempt++ {
		out.Attempts = attempt

		v, err := schema.Decode(Normalize(current))
		if err == nil {
			out.Value = v
			out.LastError = nil
			return out
		}
		out.LastError = err
		msg := truncate(err.Error(), maxErrorLen)
		cfg.logger.Warn("validation failed", "schema", schema.Name(), "attempt", attempt, "error", msg)
		observability.Pipeline().OnRepairAttempt(ctx, schema.Name(), attempt, err)

		if attempt > maxRepairAttempts {
			break
		}

		fixed, rerr := repair(ctx, msg, current)
		out.Repairs++
		if rerr != nil {
			out.Err = rerr
			return out
		}
		current = fixed
	}

	out.Err = errors.Wrap(errors.ErrCodeValidation, out.LastError,
		"validation failed after %d attempts", out.Attempts)
	return out
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
