// Package engine evaluates grid scripts. Every evaluation runs in a fresh
// zygomys sandbox and yields a SceneGraph of solids and grid requests.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/ugrid/pkg/graph"
)

// Phase says which step of evaluation produced an EvalError.
type Phase int

const (
	PhaseParse Phase = iota
	PhaseRun
)

func (p Phase) String() string {
	if p == PhaseParse {
		return "parse"
	}
	return "run"
}

// EvalError is a problem in the script itself: a syntax error, an unknown
// symbol, or a builtin rejecting its arguments. Line is 0 when zygomys gave
// no position.
type EvalError struct {
	Phase   Phase
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine runs scripts one sandbox at a time. A newer call to Evaluate
// supersedes any evaluation still in flight.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout time.Duration
	logger  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds a single evaluation. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an Engine with DefaultTimeout.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the scene it built.
//
// Script problems come back as EvalErrors with a nil graph and nil error.
// The error return is reserved for failures of the evaluation itself:
// ErrTimeout, ErrSuperseded, ErrPanic, or ctx ending.
func (e *Engine) Evaluate(ctx context.Context, source string) (*graph.SceneGraph, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	start := time.Now()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("%w: %v", ErrPanic, r)}
			}
		}()
		ch <- run(source)
	}()

	g, evalErrs, err := e.wait(ctx, ch, gen)
	e.logger.Debug("evaluated script",
		zap.Uint64("generation", gen),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("evalErrors", len(evalErrs)),
		zap.Error(err))
	return g, evalErrs, err
}

// run evaluates source in a fresh sandbox. The sandbox has no filesystem
// or syscall access.
func run(source string) evalResult {
	if strings.TrimSpace(source) == "" {
		return evalResult{graph: graph.New()}
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	g := graph.New()
	registerBuiltins(env, g)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return evalResult{errors: parseZygomysError(PhaseParse, err)}
	}
	if _, err := env.Run(); err != nil {
		return evalResult{errors: parseZygomysError(PhaseRun, err)}
	}
	return evalResult{graph: g}
}

// positionPattern matches both "Error on line N: ..." and "line N: ...".
var positionPattern = regexp.MustCompile(`(?i)(?:^|error )(?:on )?line (\d+):\s*(.*)`)

// parseZygomysError turns a zygomys failure into EvalErrors, keeping the
// line number when the message carries one.
func parseZygomysError(phase Phase, err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	if m := positionPattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Phase: phase, Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Phase: phase, Message: msg}}
}
