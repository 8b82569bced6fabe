// pkg/interaction/script.go

package interaction

import "context"

// Answer is one scripted response for a text, secret, or choice prompt.
type Answer struct {
	Value string
	Err   error
}

// BoolAnswer is one scripted response for a confirm prompt.
type BoolAnswer struct {
	Value bool
	Err   error
}

// Script is a deterministic InputProvider for tests. Each prompt consumes
// the next queued answer; an exhausted queue behaves like a cancellation.
type Script struct {
	Texts    []Answer
	Secrets  []Answer
	Choices  []Answer
	Confirms []BoolAnswer
}

func pop(queue *[]Answer) (string, error) {
	if len(*queue) == 0 {
		return "", ErrCancelled
	}
	head := (*queue)[0]
	*queue = (*queue)[1:]
	return head.Value, head.Err
}

func (s *Script) AskText(ctx context.Context, prompt string) (string, error) {
	return pop(&s.Texts)
}

func (s *Script) AskSecret(ctx context.Context, prompt string) (string, error) {
	return pop(&s.Secrets)
}

func (s *Script) AskChoice(ctx context.Context, prompt string, options []string, defaultOption string) (string, error) {
	if len(s.Choices) == 0 {
		return defaultOption, nil
	}
	return pop(&s.Choices)
}

func (s *Script) AskConfirm(ctx context.Context, prompt string, defaultYes bool) (bool, error) {
	if len(s.Confirms) == 0 {
		return defaultYes, nil
	}
	head := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return head.Value, head.Err
}
