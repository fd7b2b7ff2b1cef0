package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"scene-prompt-studio/internal/prompt"
)

const (
	Model = "gemini-2.5-flash"

	UnknownErrorMessage = "An unknown error occurred while contacting the Gemini API."
)

// Remote is the generative content service.
type Remote interface {
	GenerateText(ctx context.Context, model string, parts []prompt.Part) (string, error)
}

type ExecutorOptions struct {
	Remote Remote
	Model  string
	Logger *slog.Logger
}

type Executor struct {
	remote Remote
	model  string
	logger *slog.Logger
}

func NewExecutor(opts ExecutorOptions) *Executor {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = Model
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Executor{
		remote: opts.Remote,
		model:  model,
		logger: logger,
	}
}

func (e *Executor) Model() string {
	return e.model
}

// Execute makes exactly one call to the remote service. Every failure,
// including a panic in the remote client, comes back as a Failure.
func (e *Executor) Execute(ctx context.Context, parts []prompt.Part) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = e.fail(ctx, fmt.Errorf("panic: %v", r))
		}
	}()

	if e.remote == nil {
		return e.fail(ctx, errors.New("remote is not configured"))
	}

	text, err := e.remote.GenerateText(ctx, e.model, parts)
	if err != nil {
		return e.fail(ctx, err)
	}
	return Success{Text: text}
}

func (e *Executor) fail(ctx context.Context, err error) Failure {
	callErr := &RemoteCallError{Model: e.model, Err: err}
	e.logger.ErrorContext(ctx, "gemini call failed", "err", callErr)

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = UnknownErrorMessage
	}
	return Failure{Message: msg}
}
