// pkg/interaction/provider.go
//
// Package interaction separates prompting from business logic. The resolver
// depends only on InputProvider, so tests drive it with a scripted fake.

package interaction

import (
	"context"

	cerr "github.com/cockroachdb/errors"
)

// ErrCancelled is returned when the operator aborts a prompt (EOF or
// interrupt). Callers decide whether a cancellation is retryable.
var ErrCancelled = cerr.New("input cancelled by operator")

// InputProvider is the abstract prompting capability.
type InputProvider interface {
	// AskText prompts for a visible line of input.
	AskText(ctx context.Context, prompt string) (string, error)
	// AskSecret prompts with terminal echo disabled.
	AskSecret(ctx context.Context, prompt string) (string, error)
	// AskConfirm asks a yes/no question.
	AskConfirm(ctx context.Context, prompt string, defaultYes bool) (bool, error)
	// AskChoice asks the operator to pick one of options.
	AskChoice(ctx context.Context, prompt string, options []string, defaultOption string) (string, error)
}
