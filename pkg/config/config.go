// pkg/config/config.go
//
// Static endpoint and authentication configuration. Everything is resolved
// once at startup and read-only afterwards; overrides come from the process
// environment (optionally seeded from a .env file).

package config

import (
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Tier is a deployment instance grouping, each containing one or more named
// environments.
type Tier string

const (
	TierNonProd Tier = "NON_PROD"
	TierProd    Tier = "PROD"
)

// Service names the two downstream systems the tool talks to.
type Service string

const (
	ServiceTower   Service = "Ansible Tower"
	ServiceRelease Service = "XLR"
)

// Environment variable names for authentication. Fixed by configuration,
// not user-suppliable.
const (
	IdentityEnvVar = "REPORTER_USER_ID"
	SecretEnvVar   = "REPORTER_PASSWORD"
	TierEnvVar     = "REPORTER_INSTANCE"
)

// Settings is the read-only runtime configuration.
type Settings struct {
	// TowerBaseURLs maps tier -> environment -> automation API base URL.
	TowerBaseURLs map[Tier]map[string]string
	// ReleaseBaseURLs maps environment -> release console base URL.
	ReleaseBaseURLs   map[string]string
	ReleaseAPIVersion string

	DefaultTier Tier

	// CACertFile optionally points at a custom certificate bundle;
	// verification itself is always on.
	CACertFile string

	ProbeTimeout   time.Duration
	RequestTimeout time.Duration

	OutputDir string
}

// Load reads defaults and environment overrides. A .env file in the working
// directory is honored when present, matching how operators run the tool
// from a checkout.
func Load(log *zap.Logger) *Settings {
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded .env file")
	}

	v := viper.New()

	v.SetDefault("tower.dev_url", "https://tower-dev.automation.internal/api/v2")
	v.SetDefault("tower.lle_url", "https://tower-lle.automation.internal/api/v2")
	v.SetDefault("tower.prod_url", "https://tower.automation.internal/api/v2")
	v.SetDefault("release.dev_url", "https://release-dev.console.internal")
	v.SetDefault("release.prod_url", "https://release.console.internal")
	v.SetDefault("release.api_version", "v1")
	v.SetDefault("default_tier", string(TierNonProd))
	v.SetDefault("output_dir", "reports")

	bind := func(key, envVar string) {
		// BindEnv only fails on an empty key, which cannot happen here.
		_ = v.BindEnv(key, envVar)
	}
	bind("tower.dev_url", "TOWER_DEV_URL")
	bind("tower.lle_url", "TOWER_LLE_URL")
	bind("tower.prod_url", "TOWER_PROD_URL")
	bind("release.dev_url", "RELEASE_DEV_URL")
	bind("release.prod_url", "RELEASE_PROD_URL")
	bind("ca_cert_file", "SSL_CERT_FILE")
	bind("output_dir", "REPORTER_OUTPUT_DIR")

	s := &Settings{
		TowerBaseURLs: map[Tier]map[string]string{
			TierNonProd: {
				"DEV": v.GetString("tower.dev_url"),
				"LLE": v.GetString("tower.lle_url"),
			},
			TierProd: {
				"PROD": v.GetString("tower.prod_url"),
			},
		},
		ReleaseBaseURLs: map[string]string{
			"DEV":  v.GetString("release.dev_url"),
			"PROD": v.GetString("release.prod_url"),
		},
		ReleaseAPIVersion: v.GetString("release.api_version"),
		DefaultTier:       Tier(v.GetString("default_tier")),
		CACertFile:        v.GetString("ca_cert_file"),
		ProbeTimeout:      10 * time.Second,
		RequestTimeout:    30 * time.Second,
		OutputDir:         v.GetString("output_dir"),
	}

	log.Debug("Configuration loaded",
		zap.String("default_tier", string(s.DefaultTier)),
		zap.String("output_dir", s.OutputDir),
		zap.Bool("custom_ca", s.CACertFile != ""),
	)
	return s
}

// ParseTier validates a tier name from the environment or a prompt.
func ParseTier(raw string) (Tier, bool) {
	switch Tier(raw) {
	case TierNonProd:
		return TierNonProd, true
	case TierProd:
		return TierProd, true
	default:
		return "", false
	}
}

// Environments returns the tier's environment names in stable order.
func (s *Settings) Environments(tier Tier) []string {
	envs := make([]string, 0, len(s.TowerBaseURLs[tier]))
	for env := range s.TowerBaseURLs[tier] {
		envs = append(envs, env)
	}
	sort.Strings(envs)
	return envs
}

// ReleaseEnvironment picks the console environment matching the tier.
func ReleaseEnvironment(tier Tier) string {
	if tier == TierProd {
		return "PROD"
	}
	return "DEV"
}
