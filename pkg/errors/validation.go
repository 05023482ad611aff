package errors

import (
	"strings"
	"unicode"
)

// Request size limits.
const (
	MaxDescriptionLength = 20000
	MaxInstructionLength = 4000
	MaxSessionIDLength   = 128
)

// ValidateDescription validates a natural-language architecture description.
// It rejects blank input, oversized input, and control characters other
// than newlines and tabs.
func ValidateDescription(s string) error {
	return validateText("description", s, MaxDescriptionLength)
}

// ValidateInstruction validates a refinement instruction using the same
// rules as descriptions with a smaller size limit.
func ValidateInstruction(s string) error {
	return validateText("instruction", s, MaxInstructionLength)
}

func validateText(field, s string, maxLen int) error {
	if strings.TrimSpace(s) == "" {
		return New(ErrCodeInvalidInput, "%s is required", field)
	}
	if len(s) > maxLen {
		return New(ErrCodeInvalidInput, "%s too long (max %d characters)", field, maxLen)
	}
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidateSessionID validates a session id for safety. File-backed stores use
// the id as a filename, so path separators, "." and ".." are rejected. Any
// other printable id is well formed; whether it exists is up to the store.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "sessionId is required")
	}
	if len(id) > MaxSessionIDLength {
		return New(ErrCodeInvalidInput, "sessionId too long (max %d characters)", MaxSessionIDLength)
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return New(ErrCodeInvalidInput, "invalid sessionId: %q", id)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "invalid sessionId: %q", id)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}
