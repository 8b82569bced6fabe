// pkg/interaction/terminal.go

package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Terminal implements InputProvider against stdin/stdout.
type Terminal struct {
	log    *zap.Logger
	reader *bufio.Reader
}

// NewTerminal creates a terminal-backed input provider.
func NewTerminal(log *zap.Logger) *Terminal {
	return &Terminal{
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}
}

// IsInteractive reports whether stdin is attached to a terminal. The tool
// must not attempt to prompt a user who cannot respond.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

type readResult struct {
	value string
	err   error
}

func (t *Terminal) readLine(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		return "", ErrCancelled
	}

	fmt.Printf("%s: ", prompt)

	// The read runs in its own goroutine so an interrupt unwinds the prompt
	// immediately instead of waiting for the operator to press Enter. A
	// cancelled read's goroutine parks on stdin and exits with the process.
	results := make(chan readResult, 1)
	go func() {
		line, err := t.reader.ReadString('\n')
		results <- readResult{value: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Println()
		return "", ErrCancelled
	case res := <-results:
		if res.err != nil {
			if res.err == io.EOF || ctx.Err() != nil {
				return "", ErrCancelled
			}
			return "", cerr.Wrap(res.err, "read input")
		}
		return strings.TrimSpace(res.value), nil
	}
}

// AskText prompts for a visible line of input.
func (t *Terminal) AskText(ctx context.Context, prompt string) (string, error) {
	return t.readLine(ctx, prompt)
}

// AskSecret prompts with echo disabled. Cancellation restores the terminal
// state before returning so echo is not left off.
func (t *Terminal) AskSecret(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		return "", ErrCancelled
	}

	if !IsInteractive() {
		return "", cerr.New("secret prompt failed: no terminal available")
	}

	fd := int(os.Stdin.Fd())
	state, err := term.GetState(fd)
	if err != nil {
		return "", cerr.Wrap(err, "save terminal state")
	}

	fmt.Printf("%s (input hidden): ", prompt)

	results := make(chan readResult, 1)
	go func() {
		raw, err := term.ReadPassword(fd)
		results <- readResult{value: string(raw), err: err}
	}()

	select {
	case <-ctx.Done():
		_ = term.Restore(fd, state)
		fmt.Println()
		t.log.Info("Secret entry cancelled by operator")
		return "", ErrCancelled
	case res := <-results:
		fmt.Println()
		if res.err != nil {
			if res.err == io.EOF || ctx.Err() != nil {
				t.log.Info("Secret entry cancelled by operator")
				return "", ErrCancelled
			}
			return "", cerr.Wrap(res.err, "read secret input")
		}
		return strings.TrimSpace(res.value), nil
	}
}

// AskConfirm asks a yes/no question, falling back to the default on
// unrecognized input.
func (t *Terminal) AskConfirm(ctx context.Context, prompt string, defaultYes bool) (bool, error) {
	hint := "Y/n"
	if !defaultYes {
		hint = "y/N"
	}
	input, err := t.readLine(ctx, fmt.Sprintf("%s [%s]", prompt, hint))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return defaultYes, nil
	}
}

// AskChoice displays numbered options and keeps asking until the operator
// picks one or cancels. Empty input selects the default.
func (t *Terminal) AskChoice(ctx context.Context, prompt string, options []string, defaultOption string) (string, error) {
	fmt.Println(prompt)
	for i, option := range options {
		marker := " "
		if option == defaultOption {
			marker = "*"
		}
		fmt.Printf(" %s %d) %s\n", marker, i+1, option)
	}

	for {
		input, err := t.readLine(ctx, fmt.Sprintf("Enter choice [%s]", defaultOption))
		if err != nil {
			return "", err
		}
		if input == "" {
			return defaultOption, nil
		}
		if idx, err := strconv.Atoi(input); err == nil && idx >= 1 && idx <= len(options) {
			return options[idx-1], nil
		}
		for _, option := range options {
			if strings.EqualFold(input, option) {
				return option, nil
			}
		}
		fmt.Println("Invalid selection. Please try again.")
	}
}
