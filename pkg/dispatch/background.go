package dispatch

import (
	"context"

	"github.com/meridian-tools/meridian/pkg/domain"
)

// Task is a dispatch running in the background. It owns a derived
// context, so cancelling the task stops the operation without touching
// the caller's context.
type Task struct {
	op     domain.OpID
	cancel context.CancelFunc
	done   chan struct{}

	result Result
	err    error
}

// Background starts op in a goroutine and returns immediately. The
// returned Task reports completion through Done and the outcome
// through Wait.
func (d *Dispatcher) Background(ctx context.Context, op domain.OpID, sel domain.Selection) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		op:     op,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		defer cancel()
		t.result, t.err = d.Dispatch(ctx, op, sel)
	}()
	return t
}

// Op returns the operation this task runs.
func (t *Task) Op() domain.OpID { return t.op }

// Cancel stops the task. Safe to call more than once.
func (t *Task) Cancel() { t.cancel() }

// Done is closed when the task finishes.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns its outcome.
func (t *Task) Wait() (Result, error) {
	<-t.done
	return t.result, t.err
}
