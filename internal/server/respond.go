package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code sserrors.Code, msg, details string) {
	writeJSON(w, status, errorBody{Error: msg, Code: string(code), Details: details})
}

// writeClientError answers with the status mapped from err's code and its
// message as the error text.
func writeClientError(w http.ResponseWriter, err error) {
	code := codeOf(err)
	writeError(w, sserrors.HTTPStatus(code), code, capitalize(sserrors.UserMessage(err)), "")
}

// writeFailure answers 500 with a fixed title. The code still tells a
// validation failure from an unreachable upstream.
func writeFailure(w http.ResponseWriter, title string, err error) {
	writeError(w, http.StatusInternalServerError, codeOf(err), title, sserrors.UserMessage(err))
}

func codeOf(err error) sserrors.Code {
	if code := sserrors.GetCode(err); code != "" {
		return code
	}
	return sserrors.ErrCodeInternal
}

// isClientError reports whether err is the caller's fault.
func isClientError(err error) bool {
	switch sserrors.GetCode(err) {
	case sserrors.ErrCodeInvalidInput,
		sserrors.ErrCodeUnsupportedFormat,
		sserrors.ErrCodeNotFound,
		sserrors.ErrCodeSessionNotFound,
		sserrors.ErrCodePresetNotFound:
		return true
	}
	return false
}

// decode reads a JSON body into v. An oversized body or malformed JSON is
// INVALID_INPUT.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return sserrors.New(sserrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return sserrors.Wrap(sserrors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
