package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of running the pipeline over one sample. Err is set
// when any action failed; the sample then holds the state produced by the
// actions before the failure.
type Result struct {
	Sample *Sample
	Err    error
}

// Runner applies a fixed action sequence to many samples concurrently.
type Runner struct {
	actions []Action
	workers int
	log     *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds the number of samples processed concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(log *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRunner builds a runner over the given action sequence.
func NewRunner(actions []Action, opts ...RunnerOption) *Runner {
	r := &Runner{
		actions: actions,
		workers: 4,
		log:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Process runs the action sequence over a single sample.
func (r *Runner) Process(ctx context.Context, s *Sample) error {
	for _, action := range r.actions {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := action.Apply(ctx, s); err != nil {
			return fmt.Errorf("pipeline: %s on %s: %w", action.Name(), s.Path, err)
		}
	}

	return nil
}

// Run processes all samples with bounded concurrency. A failing sample does
// not stop the others; its error lands in the corresponding Result. Run
// itself returns an error only when the context is cancelled.
func (r *Runner) Run(ctx context.Context, samples []*Sample) ([]Result, error) {
	results := make([]Result, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, s := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Sample: s, Err: err}
				return err
			}

			err := r.Process(gctx, s)
			results[i] = Result{Sample: s, Err: err}

			if err != nil {
				r.log.Warn("sample failed",
					zap.String("path", s.Path),
					zap.Error(err))
				return nil
			}

			r.log.Debug("sample processed",
				zap.String("path", s.Path),
				zap.Strings("labels", s.Labels))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	// The group context is cancelled once Wait returns; only the caller's
	// context reflects an external cancellation.
	return results, ctx.Err()
}
