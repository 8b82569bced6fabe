// pkg/authflow/resolver.go
//
// Credential resolution in strict priority order: process environment, then
// the encrypted store, then interactive prompting. Whichever source supplies
// a credential, validation against live services is the prober's job.

package authflow

import (
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/config"
	"github.com/infraops/invreporter/pkg/credstore"
	"github.com/infraops/invreporter/pkg/interaction"
	"github.com/infraops/invreporter/pkg/runctx"
	"github.com/infraops/invreporter/pkg/xerr"
)

// Source records where the resolved credential came from.
type Source int

const (
	SourceNone Source = iota
	SourceEnvironment
	SourceStore
	SourcePrompt
)

func (s Source) String() string {
	switch s {
	case SourceEnvironment:
		return "environment"
	case SourceStore:
		return "store"
	case SourcePrompt:
		return "prompt"
	default:
		return "none"
	}
}

// maxSecretAttempts bounds interactive secret entry.
const maxSecretAttempts = 3

// Resolution is a candidate credential plus the tier it targets. It is a
// candidate until the prober accepts or rejects it.
type Resolution struct {
	Credential credstore.Credential
	Tier       config.Tier
	Source     Source
}

// Resolver walks the credential sources.
type Resolver struct {
	cfg   *config.Settings
	store *credstore.Store
	input interaction.InputProvider

	// interactive is swappable so tests can force either mode.
	interactive func() bool
}

// New creates a resolver using the terminal-attached check for interactivity.
func New(cfg *config.Settings, store *credstore.Store, input interaction.InputProvider) *Resolver {
	return &Resolver{
		cfg:         cfg,
		store:       store,
		input:       input,
		interactive: interaction.IsInteractive,
	}
}

// NewWithInteractivity creates a resolver with an explicit interactivity
// check, for tests.
func NewWithInteractivity(cfg *config.Settings, store *credstore.Store, input interaction.InputProvider, interactive func() bool) *Resolver {
	r := New(cfg, store, input)
	r.interactive = interactive
	return r
}

// Resolve obtains a candidate credential, short-circuiting on the first
// source that yields one. Secrets that are empty after trimming are rejected
// before any network call.
func (r *Resolver) Resolve(rc *runctx.RuntimeContext) (*Resolution, error) {
	if res := r.fromEnvironment(rc); res != nil {
		return res, nil
	}

	if !r.interactive() {
		rc.Log.Error("No credentials available and not in interactive mode")
		return nil, xerr.New(xerr.KindCredentialUnavailable,
			"not running interactively and no environment credentials found",
			"set "+config.IdentityEnvVar+" and "+config.SecretEnvVar+" environment variables",
			"or run the tool from an attached terminal",
		)
	}

	tier, err := r.askTier(rc)
	if err != nil {
		return nil, err
	}

	if cred, ok := r.store.Load(rc.Ctx); ok {
		rc.Log.Info("Using saved credentials for authentication")
		return &Resolution{Credential: cred, Tier: tier, Source: SourceStore}, nil
	}
	rc.Log.Info("No saved credentials found, requesting new credentials")

	return r.promptNew(rc, tier)
}

// fromEnvironment returns a resolution when both variables are present and
// the identity passes format validation. Identity validation applies
// uniformly regardless of source.
func (r *Resolver) fromEnvironment(rc *runctx.RuntimeContext) *Resolution {
	identity := strings.TrimSpace(os.Getenv(config.IdentityEnvVar))
	secret := strings.TrimSpace(os.Getenv(config.SecretEnvVar))

	if identity == "" || secret == "" {
		return nil
	}
	if !ValidIdentity(identity) {
		rc.Log.Warn("Environment credentials present but identity format is invalid")
		return nil
	}

	tier := r.cfg.DefaultTier
	if raw := os.Getenv(config.TierEnvVar); raw != "" {
		if parsed, ok := config.ParseTier(raw); ok {
			tier = parsed
		} else {
			rc.Log.Warn("Unknown tier in environment, using default",
				zap.String("tier", raw),
				zap.String("default", string(r.cfg.DefaultTier)),
			)
		}
	}

	rc.Log.Info("Using credentials from environment variables", zap.String("tier", string(tier)))
	return &Resolution{
		Credential: credstore.Credential{Identity: identity, Secret: secret},
		Tier:       tier,
		Source:     SourceEnvironment,
	}
}

func (r *Resolver) askTier(rc *runctx.RuntimeContext) (config.Tier, error) {
	choice, err := r.input.AskChoice(rc.Ctx, "Select instance tier:",
		[]string{string(config.TierNonProd), string(config.TierProd)},
		string(r.cfg.DefaultTier),
	)
	if err != nil {
		if cerr.Is(err, interaction.ErrCancelled) {
			rc.Log.Info("Authentication cancelled by user")
			return "", xerr.Wrap(xerr.KindUserCancelled, err, "authentication cancelled")
		}
		return "", xerr.Wrap(xerr.KindSystem, err, "tier selection failed")
	}
	tier, ok := config.ParseTier(choice)
	if !ok {
		return "", xerr.New(xerr.KindValidation, "unknown tier: "+choice)
	}
	return tier, nil
}

// promptNew interactively collects an identity and secret, persists them,
// and returns the resolution. Save failures are logged but not fatal: the
// in-memory credential still serves the current run.
func (r *Resolver) promptNew(rc *runctx.RuntimeContext, tier config.Tier) (*Resolution, error) {
	identity, err := r.askIdentity(rc)
	if err != nil {
		return nil, err
	}

	secret, err := r.askSecret(rc)
	if err != nil {
		return nil, err
	}

	if !r.store.Save(rc.Ctx, identity, secret) {
		rc.Log.Warn("Unable to save credentials securely, continuing without persistence")
	}

	return &Resolution{
		Credential: credstore.Credential{Identity: identity, Secret: secret},
		Tier:       tier,
		Source:     SourcePrompt,
	}, nil
}

func (r *Resolver) askIdentity(rc *runctx.RuntimeContext) (string, error) {
	for {
		raw, err := r.input.AskText(rc.Ctx, "Enter your operator ID")
		if err != nil {
			if cerr.Is(err, interaction.ErrCancelled) {
				rc.Log.Info("Authentication cancelled by user")
				return "", xerr.Wrap(xerr.KindUserCancelled, err, "authentication cancelled")
			}
			return "", xerr.Wrap(xerr.KindSystem, err, "identity prompt failed")
		}
		identity := strings.TrimSpace(raw)
		if ValidIdentity(identity) {
			return identity, nil
		}
		rc.Log.Warn("Invalid operator ID format entered")
		// The requirements mirror what the directory accepts: letters and
		// digits only, minimum three characters.
	}
}

// askSecret allows a bounded number of attempts. Cancelling a non-final
// attempt permits a retry; cancelling the final one aborts resolution
// without writing any store file.
func (r *Resolver) askSecret(rc *runctx.RuntimeContext) (string, error) {
	for attempt := 1; attempt <= maxSecretAttempts; attempt++ {
		secret, err := r.input.AskSecret(rc.Ctx, "Enter your password")
		if err != nil {
			if cerr.Is(err, interaction.ErrCancelled) {
				if attempt < maxSecretAttempts {
					rc.Log.Info("Password entry cancelled, allowing another attempt",
						zap.Int("attempt", attempt),
						zap.Int("max_attempts", maxSecretAttempts),
					)
					continue
				}
				rc.Log.Error("Password entry cancelled after maximum attempts")
				return "", xerr.New(xerr.KindCredentialUnavailable,
					"authentication cancelled after maximum attempts")
			}
			return "", xerr.Wrap(xerr.KindSystem, err, "secret prompt failed")
		}
		if strings.TrimSpace(secret) == "" {
			rc.Log.Warn("Empty password entered", zap.Int("attempt", attempt))
			continue
		}
		return secret, nil
	}
	return "", xerr.New(xerr.KindCredentialUnavailable,
		"no password provided after maximum attempts")
}
