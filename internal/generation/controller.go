package generation

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"scene-prompt-studio/internal/attachment"
	"scene-prompt-studio/internal/prompt"
)

const StyleImageReadFailedMessage = "Failed to read the style image file."

// Request holds the raw form fields at trigger time. StyleImage is the
// file reference; it is encoded anew on every run.
type Request struct {
	Script        string
	SceneCount    string
	Niche         string
	StyleKeywords string
	AspectRatio   prompt.AspectRatio
	StyleImage    attachment.File
}

type Runner interface {
	Execute(ctx context.Context, parts []prompt.Part) Outcome
}

type EncodeFunc func(ctx context.Context, f attachment.File) (attachment.EncodedImage, error)

type ControllerOptions struct {
	Executor Runner
	Encode   EncodeFunc
	Logger   *slog.Logger
	OnChange func(Status)
}

// Controller runs at most one generation at a time and owns its Status.
type Controller struct {
	mu     sync.Mutex
	status Status
	done   chan struct{}

	// notifyMu orders status changes with their notifications, so an
	// observer never sees a run's result after the next run's Loading.
	notifyMu sync.Mutex

	runner   Runner
	encode   EncodeFunc
	logger   *slog.Logger
	onChange func(Status)
}

func NewController(opts ControllerOptions) *Controller {
	encode := opts.Encode
	if encode == nil {
		encode = attachment.Encode
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Controller{
		status:   Idle{},
		runner:   opts.Executor,
		encode:   encode,
		logger:   logger,
		onChange: opts.OnChange,
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Trigger starts a run and reports whether it did. While a run is in
// flight it does nothing and returns false. Previous content and error are
// cleared before Trigger returns. Cancelling ctx does not stop the run.
// OnChange must not call Trigger.
func (c *Controller) Trigger(ctx context.Context, req Request) bool {
	c.notifyMu.Lock()
	c.mu.Lock()
	if _, loading := c.status.(Loading); loading {
		c.mu.Unlock()
		c.notifyMu.Unlock()
		return false
	}
	c.status = Loading{}
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	c.notify(Loading{})
	c.notifyMu.Unlock()

	runCtx := context.WithoutCancel(ctx)
	logger := c.logger.With("run_id", uuid.NewString())
	go func() {
		defer close(done)
		c.publish(c.run(runCtx, logger, req))
	}()
	return true
}

// Wait blocks until no run is in flight or ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) run(ctx context.Context, logger *slog.Logger, req Request) Status {
	styleImage := prompt.NoStyleImage()
	if req.StyleImage != nil {
		encoded, err := c.encode(ctx, req.StyleImage)
		if err != nil {
			logger.WarnContext(ctx, "style image encoding failed", "err", err)
			return Failed{Message: StyleImageReadFailedMessage}
		}
		styleImage = prompt.WithStyleImage(encoded)
	}

	parts := prompt.Compose(prompt.Params{
		Script:        req.Script,
		SceneCount:    req.SceneCount,
		Niche:         req.Niche,
		StyleKeywords: req.StyleKeywords,
		AspectRatio:   req.AspectRatio,
		StyleImage:    styleImage,
	})
	logger.InfoContext(ctx, "generation started", "parts", len(parts), "aspect_ratio", req.AspectRatio.String())

	if c.runner == nil {
		return Failed{Message: UnknownErrorMessage}
	}

	switch out := c.runner.Execute(ctx, parts).(type) {
	case Success:
		logger.InfoContext(ctx, "generation succeeded", "chars", len(out.Text))
		return Succeeded{Content: out.Text}
	case Failure:
		return Failed{Message: out.Message}
	default:
		return Failed{Message: UnknownErrorMessage}
	}
}

func (c *Controller) publish(s Status) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.status = s
	c.mu.Unlock()

	c.notify(s)
}

func (c *Controller) notify(s Status) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
