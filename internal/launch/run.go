package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"nexus/internal/logging"
)

// Exit codes produced by Report.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Application is the capability the bootstrap drives. Execute blocks until the
// application's work settles and returns nil on success.
type Application interface {
	Execute(ctx context.Context) error
}

// Factory constructs an Application from the derived configuration.
type Factory func(ctx context.Context, cfg AppConfig) (Application, error)

// State names a step in the bootstrap lifecycle.
type State int

const (
	StateStart State = iota
	StateParsing
	StateConstructed
	StateExecuting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateParsing:
		return "parsing"
	case StateConstructed:
		return "constructed"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

type runner struct {
	logger   *slog.Logger
	observer func(State)
}

// Option customizes Run.
type Option func(*runner)

// WithLogger routes lifecycle logging to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers fn to receive every state transition in order.
func WithObserver(fn func(State)) Option {
	return func(r *runner) {
		r.observer = fn
	}
}

func (r *runner) enter(state State) {
	r.logger.Debug("bootstrap state", logging.String("state", state.String()))
	if r.observer != nil {
		r.observer(state)
	}
}

// Run constructs the application from opts and executes it once.
//
// The returned error is the outcome: nil when Execute succeeded, the value
// Execute failed with (unwrapped) otherwise. Construction failures are
// wrapped so the caller can tell them apart in messages. Run adds no timeout;
// cancellation is whatever ctx carries.
func Run(ctx context.Context, opts ParsedOptions, factory Factory, options ...Option) error {
	r := &runner{logger: logging.NewNop()}
	for _, opt := range options {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "bootstrap")

	r.enter(StateStart)
	r.enter(StateParsing)
	cfg := ConfigFromOptions(opts)
	if opts.Input != "" || opts.Output != "" {
		r.logger.Debug("input/output flags parsed but not forwarded",
			logging.String(FlagInput, opts.Input),
			logging.String(FlagOutput, opts.Output),
		)
	}

	if factory == nil {
		r.enter(StateFailed)
		return errors.New("construct application: no factory configured")
	}
	app, err := factory(ctx, cfg)
	if err != nil {
		r.enter(StateFailed)
		return fmt.Errorf("construct application: %w", err)
	}
	if app == nil {
		r.enter(StateFailed)
		return errors.New("construct application: factory returned nil application")
	}
	r.enter(StateConstructed)

	r.enter(StateExecuting)
	if err := app.Execute(ctx); err != nil {
		r.enter(StateFailed)
		return err
	}
	r.enter(StateSucceeded)
	return nil
}

// RunArgs parses args and runs the application.
func RunArgs(ctx context.Context, args []string, factory Factory, options ...Option) error {
	return Run(ctx, Parse(args), factory, options...)
}

// Report applies an outcome to the process boundary. A nil outcome writes
// nothing and returns ExitOK. Any failure is written to w followed by a
// newline and returns ExitFailure.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	if w != nil {
		fmt.Fprintln(w, err)
	}
	return ExitFailure
}
