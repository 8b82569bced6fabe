// pkg/xerr/classification.go
//
// Error classification with exit codes. Every failure the operator can act
// on is tagged with a Kind so callers handle each class explicitly instead
// of matching on error strings.

package xerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies failures by what the operator has to do about them.
type Kind int

const (
	// KindSystem - OS/filesystem/crypto issues (exit 1)
	KindSystem Kind = iota
	// KindCredentialUnavailable - no valid credential source found (exit 1)
	KindCredentialUnavailable
	// KindAuthRejected - a downstream service returned 401 (exit 1)
	KindAuthRejected
	// KindNetworkUnreachable - DNS/connection failure, usually VPN (exit 1)
	KindNetworkUnreachable
	// KindServiceError - any other request failure (exit 1)
	KindServiceError
	// KindValidation - input validation failures (exit 2)
	KindValidation
	// KindUserCancelled - operator interrupted a prompt (exit 130)
	KindUserCancelled
)

// ClassifiedError wraps an error with its Kind and optional remediation steps.
type ClassifiedError struct {
	Kind        Kind
	Message     string
	Cause       error
	Remediation []string
}

func (e *ClassifiedError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}
	return sb.String()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code for this error class.
func (e *ClassifiedError) ExitCode() int {
	switch e.Kind {
	case KindUserCancelled:
		return 130 // standard for SIGINT
	case KindValidation:
		return 2
	default:
		return 1
	}
}

// New creates a classified error with remediation steps.
func New(kind Kind, message string, remediation ...string) error {
	return &ClassifiedError{Kind: kind, Message: message, Remediation: remediation}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, cause error, message string) error {
	return &ClassifiedError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from any error in the chain.
func KindOf(err error) (Kind, bool) {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Kind, true
	}
	return KindSystem, false
}

// IsExpectedUserError reports whether the failure is something the operator
// caused or can fix themselves (cancellation, missing/rejected credentials,
// bad input). These are logged as warnings, not program failures.
func IsExpectedUserError(err error) bool {
	kind, ok := KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case KindUserCancelled, KindCredentialUnavailable, KindAuthRejected, KindValidation:
		return true
	default:
		return false
	}
}

// ExitCode maps any error to a process exit code. nil is 0; unclassified
// errors are 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}
	return 1
}
