package sync

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"go.uber.org/zap"
)

// Runner executes one engine run on a background goroutine and exposes
// polled progress, status and the final result.
//
// Progress and status are written only by the worker goroutine; callers poll
// them and wait on Done for completion. There is no mid-run cancellation: a
// caller may stop polling, but the run continues to completion.
type Runner struct {
	id     string
	engine *Engine
	ids    []int64
	logger *zap.Logger

	state    atomic.Value // State
	progress atomic.Int32
	status   atomic.Value // string

	done    chan struct{}
	started atomic.Bool
	result  *Result
	runErr  error
}

// NewRunner wraps an engine run over the given local book IDs.
func NewRunner(engine *Engine, ids []int64, logger *zap.Logger) *Runner {
	r := &Runner{
		id:     uuid.NewString(),
		engine: engine,
		ids:    ids,
		logger: logger,
		done:   make(chan struct{}),
	}
	r.state.Store(StateIdle)
	r.status.Store("Starting sync...")
	return r
}

// ID returns the unique run identifier.
func (r *Runner) ID() string {
	return r.id
}

// Start launches the run. Calling Start more than once is a no-op.
func (r *Runner) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(r.done)

		r.logger.Info("Sync run started",
			zap.String("run_id", r.id),
			zap.Int("books", len(r.ids)))

		r.result, r.runErr = r.engine.Run(ctx, r.ids, r)
	}()
}

// Done is closed when the run has finished, successfully or not.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Result returns the final result, valid only after Done is closed.
func (r *Runner) Result() *Result {
	select {
	case <-r.done:
		return r.result
	default:
		return nil
	}
}

// Err returns the fatal run error, if any, valid only after Done is closed.
func (r *Runner) Err() error {
	select {
	case <-r.done:
		return r.runErr
	default:
		return nil
	}
}

// State returns the engine's current phase.
func (r *Runner) State() State {
	return r.state.Load().(State)
}

// Progress returns the current progress percentage (0-100).
func (r *Runner) Progress() int {
	return int(r.progress.Load())
}

// Status returns the current human-readable status line.
func (r *Runner) Status() string {
	return r.status.Load().(string)
}

// SetState implements ProgressSink.
func (r *Runner) SetState(state State) {
	r.state.Store(state)
}

// SetProgress implements ProgressSink. Progress is clamped so the published
// value never decreases.
func (r *Runner) SetProgress(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	for {
		current := r.progress.Load()
		if int32(percent) <= current {
			return
		}
		if r.progress.CompareAndSwap(current, int32(percent)) {
			return
		}
	}
}

// SetStatus implements ProgressSink.
func (r *Runner) SetStatus(status string) {
	r.status.Store(status)
}
