package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/ugrid/pkg/graph"
)

// DefaultTimeout bounds an evaluation unless WithTimeout says otherwise.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs longer than the engine allows.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation was overtaken
	// by a newer one on the same engine.
	ErrSuperseded = errors.New("engine: evaluation superseded by a newer request")
	// ErrPanic wraps a panic raised inside the interpreter or a builtin.
	ErrPanic = errors.New("engine: panic during evaluation")
)

type evalResult struct {
	graph  *graph.SceneGraph
	errors []EvalError
	err    error
}

// wait blocks for the result of generation gen. The evaluating goroutine is
// abandoned on timeout or cancellation; its buffered send never blocks.
func (e *Engine) wait(ctx context.Context, ch <-chan evalResult, gen uint64) (*graph.SceneGraph, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.graph, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}
