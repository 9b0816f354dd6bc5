package launch_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"nexus/internal/launch"
)

type stubApp struct {
	err   error
	calls int
}

func (s *stubApp) Execute(context.Context) error {
	s.calls++
	return s.err
}

func factoryFor(app launch.Application, seen *launch.AppConfig) launch.Factory {
	return func(_ context.Context, cfg launch.AppConfig) (launch.Application, error) {
		if seen != nil {
			*seen = cfg
		}
		return app, nil
	}
}

func TestRunSuccessDoesNotReportFailure(t *testing.T) {
	app := &stubApp{}
	var seen launch.AppConfig
	err := launch.RunArgs(context.Background(), []string{"-v"}, factoryFor(app, &seen))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if app.calls != 1 {
		t.Fatalf("expected one Execute call, got %d", app.calls)
	}
	if !seen.Verbose {
		t.Fatal("expected factory to receive verbose config")
	}

	var stderr bytes.Buffer
	if code := launch.Report(&stderr, err); code != launch.ExitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected no stderr output, got %q", stderr.String())
	}
}

func TestRunScenarioDExecutionFailure(t *testing.T) {
	boom := errors.New("boom")
	err := launch.RunArgs(context.Background(), nil, factoryFor(&stubApp{err: boom}, nil))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var stderr bytes.Buffer
	code := launch.Report(&stderr, err)
	if code != 1 {
		t.Fatalf("expected exit code exactly 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "boom") {
		t.Fatalf("expected stderr to reference boom, got %q", stderr.String())
	}
}

func TestRunReturnsExecutionErrorUnwrapped(t *testing.T) {
	boom := errors.New("boom")
	err := launch.RunArgs(context.Background(), nil, factoryFor(&stubApp{err: boom}, nil))
	if err != boom {
		t.Fatalf("expected the raw execution error, got %v", err)
	}
}

func TestRunConstructionFailure(t *testing.T) {
	factory := func(context.Context, launch.AppConfig) (launch.Application, error) {
		return nil, errors.New("missing api key")
	}
	err := launch.RunArgs(context.Background(), nil, factory)
	if err == nil || !strings.Contains(err.Error(), "missing api key") {
		t.Fatalf("expected construction error, got %v", err)
	}
	if code := launch.Report(&bytes.Buffer{}, err); code != launch.ExitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestRunNilFactoryAndNilApplication(t *testing.T) {
	if err := launch.RunArgs(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for nil factory")
	}
	nilApp := func(context.Context, launch.AppConfig) (launch.Application, error) { return nil, nil }
	if err := launch.RunArgs(context.Background(), nil, nilApp); err == nil {
		t.Fatal("expected error for nil application")
	}
}

func TestRunStateTransitions(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want []launch.State
	}{
		{
			name: "success",
			want: []launch.State{launch.StateStart, launch.StateParsing, launch.StateConstructed, launch.StateExecuting, launch.StateSucceeded},
		},
		{
			name: "failure",
			err:  errors.New("boom"),
			want: []launch.State{launch.StateStart, launch.StateParsing, launch.StateConstructed, launch.StateExecuting, launch.StateFailed},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []launch.State
			_ = launch.Run(context.Background(), launch.ParsedOptions{}, factoryFor(&stubApp{err: tc.err}, nil),
				launch.WithObserver(func(s launch.State) { got = append(got, s) }))
			if len(got) != len(tc.want) {
				t.Fatalf("transitions = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("transitions = %v, want %v", got, tc.want)
				}
			}
			if !got[len(got)-1].Terminal() {
				t.Fatalf("last state %s is not terminal", got[len(got)-1])
			}
		})
	}
}

func TestRunPassesContextToExecute(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app := appFunc(func(ctx context.Context) error { return ctx.Err() })
	err := launch.Run(ctx, launch.ParsedOptions{}, factoryFor(app, nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var stderr bytes.Buffer
	if code := launch.Report(&stderr, err); code != launch.ExitFailure || stderr.Len() == 0 {
		t.Fatalf("expected cancellation reported as failure, code=%d stderr=%q", code, stderr.String())
	}
}

func TestStateString(t *testing.T) {
	if launch.StateExecuting.String() != "executing" {
		t.Fatalf("unexpected state name %q", launch.StateExecuting.String())
	}
	if launch.State(42).String() != "state(42)" {
		t.Fatalf("unexpected unknown state name %q", launch.State(42).String())
	}
}

type appFunc func(ctx context.Context) error

func (f appFunc) Execute(ctx context.Context) error { return f(ctx) }
