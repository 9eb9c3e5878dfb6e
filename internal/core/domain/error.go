package domain

import (
	"errors"
	"strings"
)

// Kind classifies an error for recovery routing and severity mapping.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindResource   Kind = "resource"
	KindValidation Kind = "validation"
	KindUnknown    Kind = "unknown"
)

// AppError is an error tagged with an explicit kind at the throw site.
// Recovery strategies and the severity classifier match on Kind instead of
// free-text message search.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// E creates a tagged error.
func E(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap tags an existing error with a kind.
func Wrap(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

// Substring fallback for errors that were not tagged at the throw site.
// Matching is case-sensitive and intentionally loose; wrapped or translated
// messages may misclassify, so callers should prefer tagged errors.
var kindPatterns = []struct {
	kind Kind
	subs []string
}{
	{KindNetwork, []string{"fetch", "network", "timeout", "connection refused"}},
	{KindAuth, []string{"401", "unauthorized", "token"}},
	{KindResource, []string{"memory", "heap", "performance"}},
	{KindValidation, []string{"validation", "format", "required"}},
}

// KindOf resolves the kind of an arbitrary error. Tagged errors win; plain
// errors fall back to message-substring heuristics.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	msg := err.Error()
	for _, p := range kindPatterns {
		for _, sub := range p.subs {
			if strings.Contains(msg, sub) {
				return p.kind
			}
		}
	}
	return KindUnknown
}

// IsTransient reports whether an error is worth retrying with backoff.
func IsTransient(err error) bool {
	return KindOf(err) == KindNetwork
}

// Severity represents how urgently an error should be surfaced to the user.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityOf derives the severity for an error. Critical markers in the
// message win; otherwise the kind decides.
func SeverityOf(err error) Severity {
	if err == nil {
		return SeverityLow
	}

	msg := err.Error()
	if strings.Contains(msg, "critical") || strings.Contains(msg, "fatal") {
		return SeverityCritical
	}

	switch KindOf(err) {
	case KindNetwork:
		return SeverityHigh
	case KindValidation:
		return SeverityLow
	default:
		if strings.Contains(msg, "server") || strings.Contains(msg, "5xx") {
			return SeverityHigh
		}
		return SeverityMedium
	}
}
