// File path: internal/llm/providers/echo.go
package providers

import (
	"context"
	"errors"
	"strings"
)

type Message struct {
	Role    string
	Content string
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}

// PermanentError marks a provider failure that retrying cannot fix, such as
// a rejected API key or an invalid request.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

var ErrEmptyCompletion = errors.New("empty completion")

// EchoProvider returns the final prompt unchanged. It is only selected when
// configured explicitly and is meant for dry runs of the report layout.
type EchoProvider struct{}

func NewEchoProvider() *EchoProvider {
	return &EchoProvider{}
}

func (e *EchoProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", &PermanentError{Err: errors.New("no messages provided")}
	}
	last := strings.TrimSpace(messages[len(messages)-1].Content)
	if last == "" {
		return "", ErrEmptyCompletion
	}
	return last, nil
}

func (e *EchoProvider) Name() string {
	return "echo"
}
