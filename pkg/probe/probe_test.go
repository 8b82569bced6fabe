// pkg/probe/probe_test.go

package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/config"
	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/runctx"
)

func testContext(t *testing.T) *runctx.RuntimeContext {
	t.Helper()
	return runctx.New(context.Background(), zap.NewNop(), "test")
}

func testCred() credstore.Credential {
	return credstore.Credential{Identity: "abc123", Secret: "hunter2"}
}

// statusServer returns the given status for the expected path and 404
// otherwise, so path mistakes fail loudly.
func statusServer(t *testing.T, path string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func settings(towerEnvs map[string]string, releaseEnvs map[string]string) *config.Settings {
	return &config.Settings{
		TowerBaseURLs: map[config.Tier]map[string]string{
			config.TierNonProd: towerEnvs,
		},
		ReleaseBaseURLs:   releaseEnvs,
		ReleaseAPIVersion: "v1",
		DefaultTier:       config.TierNonProd,
		ProbeTimeout:      5 * time.Second,
	}
}

func TestProbeAllReachable(t *testing.T) {
	towerDev := statusServer(t, "/me/", http.StatusOK)
	towerLLE := statusServer(t, "/me/", http.StatusOK)
	releaseDev := statusServer(t, "/api/v1/profile", http.StatusOK)

	cfg := settings(
		map[string]string{"DEV": towerDev.URL, "LLE": towerLLE.URL},
		map[string]string{"DEV": releaseDev.URL},
	)

	prober := New(http.DefaultClient, cfg, nil)
	verdict := prober.Probe(testContext(t), testCred(), config.TierNonProd)

	assert.True(t, verdict.OverallOK)
	assert.False(t, verdict.VPNIssue)
	assert.False(t, verdict.AuthIssue)
	assert.False(t, verdict.OtherIssue)
	assert.True(t, verdict.Reachable[config.ServiceTower]["DEV"])
	assert.True(t, verdict.Reachable[config.ServiceTower]["LLE"])
	assert.True(t, verdict.Reachable[config.ServiceRelease]["DEV"])
}

func TestProbePartialReachabilityStillOK(t *testing.T) {
	towerDev := statusServer(t, "/me/", http.StatusOK)
	towerLLE := statusServer(t, "/me/", http.StatusServiceUnavailable)
	releaseDev := statusServer(t, "/api/v1/profile", http.StatusOK)

	cfg := settings(
		map[string]string{"DEV": towerDev.URL, "LLE": towerLLE.URL},
		map[string]string{"DEV": releaseDev.URL},
	)

	prober := New(http.DefaultClient, cfg, nil)
	verdict := prober.Probe(testContext(t), testCred(), config.TierNonProd)

	assert.True(t, verdict.OverallOK, "one working environment per service suffices")
	assert.False(t, verdict.OtherIssue)
	assert.False(t, verdict.AuthIssue)
	assert.False(t, verdict.Reachable[config.ServiceTower]["LLE"])
}

func TestProbeHTTPErrorSetsNoIssueFlags(t *testing.T) {
	towerDev := statusServer(t, "/me/", http.StatusServiceUnavailable)
	releaseDev := statusServer(t, "/api/v1/profile", http.StatusBadGateway)

	cfg := settings(
		map[string]string{"DEV": towerDev.URL},
		map[string]string{"DEV": releaseDev.URL},
	)

	prober := New(http.DefaultClient, cfg, nil)
	verdict := prober.Probe(testContext(t), testCred(), config.TierNonProd)

	// The flags track network failures and rejected credentials; an HTTP
	// error only marks the endpoint unreachable.
	assert.False(t, verdict.OverallOK)
	assert.False(t, verdict.VPNIssue)
	assert.False(t, verdict.AuthIssue)
	assert.False(t, verdict.OtherIssue)
	assert.False(t, verdict.Reachable[config.ServiceTower]["DEV"])
	assert.False(t, verdict.Reachable[config.ServiceRelease]["DEV"])

	messages := Diagnostics(verdict)
	require.Len(t, messages, 1, "operator still gets the unreachable-services guidance")
	assert.Contains(t, messages[0], "Ansible Tower (DEV)")
	assert.Contains(t, messages[0], "XLR (DEV)")
}

func TestProbeUnauthorizedMarksAuthIssue(t *testing.T) {
	towerDev := statusServer(t, "/me/", http.StatusUnauthorized)
	releaseDev := statusServer(t, "/api/v1/profile", http.StatusOK)

	cfg := settings(
		map[string]string{"DEV": towerDev.URL},
		map[string]string{"DEV": releaseDev.URL},
	)

	marked := false
	prober := New(http.DefaultClient, cfg, func() { marked = true })
	verdict := prober.Probe(testContext(t), testCred(), config.TierNonProd)

	assert.False(t, verdict.OverallOK)
	assert.True(t, verdict.AuthIssue)
	assert.True(t, marked, "401 must trigger the mark-failed side effect")
	assert.True(t, verdict.Reachable[config.ServiceRelease]["DEV"],
		"probing continues past the failure for a complete picture")
}

func TestProbeDNSFailureMarksVPNIssue(t *testing.T) {
	cfg := settings(
		map[string]string{
			"DEV": "http://tower-dev.host.invalid",
			"LLE": "http://tower-lle.host.invalid",
		},
		map[string]string{"DEV": "http://release.host.invalid"},
	)

	client := &http.Client{Timeout: 5 * time.Second}
	prober := New(client, cfg, nil)
	verdict := prober.Probe(testContext(t), testCred(), config.TierNonProd)

	assert.False(t, verdict.OverallOK)
	assert.True(t, verdict.VPNIssue)
	assert.False(t, verdict.AuthIssue)
}

func TestProbeConnectionRefusedMarksOtherIssue(t *testing.T) {
	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.NotFoundHandler())
	deadURL := srv.URL
	srv.Close()

	releaseDev := statusServer(t, "/api/v1/profile", http.StatusOK)
	cfg := settings(
		map[string]string{"DEV": deadURL},
		map[string]string{"DEV": releaseDev.URL},
	)

	prober := New(http.DefaultClient, cfg, nil)
	verdict := prober.Probe(testContext(t), testCred(), config.TierNonProd)

	assert.False(t, verdict.OverallOK)
	assert.True(t, verdict.OtherIssue)
	assert.False(t, verdict.VPNIssue)
}

func TestProbeSkipsUnconfiguredReleaseEnvironments(t *testing.T) {
	towerDev := statusServer(t, "/me/", http.StatusOK)

	cfg := settings(
		map[string]string{"DEV": towerDev.URL},
		map[string]string{"PROD": "http://release.host.invalid"},
	)

	prober := New(http.DefaultClient, cfg, nil)
	verdict := prober.Probe(testContext(t), testCred(), config.TierNonProd)

	// No release environment overlaps the tier, so the release side can
	// never be reachable.
	require.Empty(t, verdict.Reachable[config.ServiceRelease])
	assert.False(t, verdict.OverallOK)
}
