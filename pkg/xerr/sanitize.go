// pkg/xerr/sanitize.go

package xerr

import "strings"

// SafeSummary categorizes an error for console display without exposing
// request URLs, identities, or stack detail. The full error always goes to
// the log file, never to the operator's terminal.
func SafeSummary(err error) string {
	if err == nil {
		return "success"
	}

	lowered := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lowered, "unauthorized") || strings.Contains(lowered, "permission"):
		return "authentication_required"
	case strings.Contains(lowered, "not found"):
		return "resource_unavailable"
	case strings.Contains(lowered, "timeout"):
		return "service_timeout"
	case strings.Contains(lowered, "connection") || strings.Contains(lowered, "network") || strings.Contains(lowered, "lookup"):
		return "connectivity_issue"
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "validation"):
		return "input_validation_error"
	default:
		return "general_error"
	}
}
