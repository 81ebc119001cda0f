package scheme

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registry lookup classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrNotFound indicates the scheme does not exist in the registry (404).
	ErrNotFound = errors.New("scheme not found")

	// ErrTimeout indicates the lookup exceeded its deadline.
	ErrTimeout = errors.New("lookup timed out")

	// ErrThrottled indicates the registry rate-limited the lookup (429).
	ErrThrottled = errors.New("rate limited")

	// ErrNetwork indicates a network-level failure (connection refused, DNS).
	ErrNetwork = errors.New("network error")

	// ErrRegistry indicates a registry-side failure (5xx, malformed body).
	ErrRegistry = errors.New("registry error")
)

// LookupError wraps an underlying error with lookup classification.
// It preserves the original error in the chain for inspection via errors.As.
type LookupError struct {
	// Kind is the sentinel error for classification.
	Kind error
	// SchemeID is the scheme that was being resolved.
	SchemeID string
	// Err is the underlying error.
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("accrual rate lookup %s: %v: %v", e.SchemeID, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *LookupError) Unwrap() error { return e.Err }

// Is reports whether the error matches the target sentinel.
func (e *LookupError) Is(target error) bool { return errors.Is(e.Kind, target) }

// wrapLookupError classifies and wraps a lookup error. Returns nil for nil.
func wrapLookupError(err error, schemeID string) error {
	if err == nil {
		return nil
	}
	return &LookupError{Kind: classifyError(err), SchemeID: schemeID, Err: err}
}

// errorPattern pairs message substrings with a sentinel error.
// Entries are checked in order; the first match wins.
type errorPattern struct {
	patterns []string
	kind     error
}

var classifierTable = []errorPattern{
	{[]string{"not found", "404", "no such scheme"}, ErrNotFound},
	{[]string{"timeout", "timed out", "deadline exceeded"}, ErrTimeout},
	{[]string{"429", "too many requests", "throttl", "rate exceeded"}, ErrThrottled},
	{[]string{"connection refused", "no route to host", "network unreachable",
		"dns", "dial tcp", "i/o timeout"}, ErrNetwork},
}

// classifyError determines the sentinel for the given error.
// Typed timeout errors are checked first, then the classifier table.
func classifyError(err error) error {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	errStr := strings.ToLower(err.Error())
	for _, entry := range classifierTable {
		for _, sub := range entry.patterns {
			if strings.Contains(errStr, sub) {
				return entry.kind
			}
		}
	}
	return ErrRegistry
}
