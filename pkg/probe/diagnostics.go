// pkg/probe/diagnostics.go

package probe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/infraops/invreporter/pkg/config"
	"github.com/infraops/invreporter/pkg/xerr"
)

// Diagnostics builds the operator-facing guidance for a failed cycle. VPN
// and credential problems are more actionable and more common than genuine
// outages, so the generic unreachable message appears only when neither of
// the other two explains the failure.
func Diagnostics(v *Verdict) []string {
	if v.OverallOK {
		return nil
	}

	var messages []string

	if v.VPNIssue {
		messages = append(messages,
			"✗ VPN connection required\n"+
				"It seems you're not connected to the office network. Please:\n"+
				"  1. Connect to your office VPN\n"+
				"  2. Ensure you can access internal services\n"+
				"  3. Try running the tool again")
	}

	if v.AuthIssue {
		messages = append(messages,
			"✗ Authentication failed\n"+
				"Your credentials were not accepted. Please:\n"+
				"  1. Verify your operator ID and password\n"+
				"  2. Check if your password has expired\n"+
				"  3. Try again with correct credentials")
	}

	if !v.VPNIssue && !v.AuthIssue {
		if unreachable := unreachablePairs(v); len(unreachable) > 0 {
			messages = append(messages,
				"✗ Service connection issues\n"+
					fmt.Sprintf("Unable to connect to: %s\n", strings.Join(unreachable, ", "))+
					"Please verify:\n"+
					"  1. The services are currently operational\n"+
					"  2. You have the necessary permissions\n"+
					"  3. Try again in a few minutes")
		}
	}

	return messages
}

// VerdictError maps a failed verdict onto the error taxonomy so callers can
// exit with the right classification. Returns nil when the verdict is OK.
func VerdictError(v *Verdict) error {
	if v.OverallOK {
		return nil
	}
	switch {
	case v.AuthIssue:
		return xerr.New(xerr.KindAuthRejected, "credentials rejected by a downstream service")
	case v.VPNIssue:
		return xerr.New(xerr.KindNetworkUnreachable, "required services could not be resolved")
	default:
		return xerr.New(xerr.KindServiceError, "required services are unreachable")
	}
}

func unreachablePairs(v *Verdict) []string {
	var pairs []string
	for _, service := range []config.Service{config.ServiceTower, config.ServiceRelease} {
		var failed []string
		for env, ok := range v.Reachable[service] {
			if !ok {
				failed = append(failed, env)
			}
		}
		if len(failed) > 0 {
			sort.Strings(failed)
			pairs = append(pairs, fmt.Sprintf("%s (%s)", service, strings.Join(failed, ", ")))
		}
	}
	return pairs
}
