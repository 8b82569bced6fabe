// pkg/probe/probe.go
//
// Connectivity prober. Issues one lightweight authenticated request per
// configured endpoint of both downstream services and classifies every
// outcome. Probing never short-circuits: diagnostics need the complete
// picture even after the first failure.

package probe

import (
	"errors"
	"net"
	"net/http"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/config"
	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/httpclient"
	"github.com/infraops/invreporter/pkg/runctx"
)

// Verdict aggregates one probe cycle. Constructed fresh every cycle, never
// persisted.
type Verdict struct {
	// Reachable maps service -> environment -> reachability.
	Reachable map[config.Service]map[string]bool

	VPNIssue   bool
	AuthIssue  bool
	OtherIssue bool
	OverallOK  bool
}

// Prober checks every environment of the selected tier against both
// services. onAuthFailure fires once per 401 so the store can invalidate
// its cached credential for future runs.
type Prober struct {
	client        *http.Client
	cfg           *config.Settings
	onAuthFailure func()
}

// New creates a prober. onAuthFailure may be nil.
func New(client *http.Client, cfg *config.Settings, onAuthFailure func()) *Prober {
	return &Prober{client: client, cfg: cfg, onAuthFailure: onAuthFailure}
}

// Probe runs one full cycle for the tier. Each endpoint gets a single
// attempt bounded by the client timeout; the caller decides whether to
// re-invoke.
func (p *Prober) Probe(rc *runctx.RuntimeContext, cred credstore.Credential, tier config.Tier) *Verdict {
	verdict := &Verdict{
		Reachable: map[config.Service]map[string]bool{
			config.ServiceTower:   {},
			config.ServiceRelease: {},
		},
	}

	var probeErrs *multierror.Error
	tierEnvs := p.cfg.TowerBaseURLs[tier]

	for _, env := range p.cfg.Environments(tier) {
		url := tierEnvs[env] + "/me/"
		ok, err := p.checkEndpoint(rc, verdict, config.ServiceTower, env, url, cred)
		verdict.Reachable[config.ServiceTower][env] = ok
		if err != nil {
			probeErrs = multierror.Append(probeErrs, cerr.Wrapf(err, "%s %s", config.ServiceTower, env))
		}
	}

	for _, env := range p.cfg.Environments(tier) {
		base, configured := p.cfg.ReleaseBaseURLs[env]
		if !configured {
			continue
		}
		url := base + "/api/" + p.cfg.ReleaseAPIVersion + "/profile"
		ok, err := p.checkEndpoint(rc, verdict, config.ServiceRelease, env, url, cred)
		verdict.Reachable[config.ServiceRelease][env] = ok
		if err != nil {
			probeErrs = multierror.Append(probeErrs, cerr.Wrapf(err, "%s %s", config.ServiceRelease, env))
		}
	}

	towerOK := anyReachable(verdict.Reachable[config.ServiceTower])
	releaseOK := anyReachable(verdict.Reachable[config.ServiceRelease])
	verdict.OverallOK = towerOK && releaseOK

	if verdict.OverallOK {
		rc.Log.Info("Successfully connected to both services")
	} else {
		rc.Log.Error("Service connectivity check failed",
			zap.Bool("vpn_issue", verdict.VPNIssue),
			zap.Bool("auth_issue", verdict.AuthIssue),
			zap.Bool("other_issue", verdict.OtherIssue),
			zap.Error(probeErrs.ErrorOrNil()),
		)
	}
	return verdict
}

// checkEndpoint classifies a single probe: 200 reachable, 401 authentication
// failure, DNS resolution failure as a VPN proxy, any other request failure
// a generic issue.
func (p *Prober) checkEndpoint(rc *runctx.RuntimeContext, verdict *Verdict, service config.Service, env, url string, cred credstore.Credential) (bool, error) {
	rc.Log.Debug("Probing endpoint",
		zap.String("service", string(service)),
		zap.String("environment", env),
		zap.String("url", url),
	)

	resp, err := httpclient.AuthenticatedGet(rc.Ctx, p.client, url, cred.Identity, cred.Secret)
	if err != nil {
		if isDNSFailure(err) {
			verdict.VPNIssue = true
		} else {
			verdict.OtherIssue = true
		}
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		rc.Log.Error("Authentication failed - invalid credentials",
			zap.String("service", string(service)),
			zap.String("environment", env),
		)
		verdict.AuthIssue = true
		if p.onAuthFailure != nil {
			p.onAuthFailure()
		}
		return false, nil
	}

	// Any other status just records the endpoint as unreachable. The issue
	// flags track network-layer failures and rejected credentials; an HTTP
	// error is reported through the reachability map alone.
	ok := resp.StatusCode == http.StatusOK
	rc.Log.Info("Probe response",
		zap.String("service", string(service)),
		zap.String("environment", env),
		zap.Int("status", resp.StatusCode),
	)
	return ok, nil
}

// isDNSFailure treats name-resolution failure as a proxy for "not on the
// required private network".
func isDNSFailure(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func anyReachable(envs map[string]bool) bool {
	for _, ok := range envs {
		if ok {
			return true
		}
	}
	return false
}
