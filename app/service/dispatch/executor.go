package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"haru/app/service/tools"
)

type ErrorKind string

const (
	ErrorUnknownTool    ErrorKind = "unknown_tool"
	ErrorTimeout        ErrorKind = "timeout"
	ErrorHandlerFailure ErrorKind = "handler_failure"
)

// Result is what a tool invocation boils down to. Failures are data, not
// errors: the next LLM round reads the text and explains it to the user.
type Result struct {
	OK   bool
	Text string
	Kind ErrorKind
}

type Executor struct {
	registry *tools.Registry
	timeout  time.Duration
}

func NewExecutor(registry *tools.Registry, timeout time.Duration) *Executor {
	return &Executor{
		registry: registry,
		timeout:  timeout,
	}
}

// Execute resolves and runs one tool request under a bounded timeout.
// Handler panics and errors never escape; everything becomes a Result.
func (e *Executor) Execute(ctx context.Context, req Request, tc *tools.Context) Result {
	handler, ok := e.registry.Lookup(req.Tool)
	if !ok {
		// the parser skips unknown names, so this only fires if parser and
		// registry drift apart
		return Result{
			Text: fmt.Sprintf("Unknown tool %q.", req.Tool),
			Kind: ErrorUnknownTool,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}

	resultCh := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Tool handler panicked",
					"tool", req.Tool,
					"panic", r,
					"telegram", true)
				resultCh <- outcome{err: fmt.Errorf("tool %s panicked: %v", req.Tool, r)}
			}
		}()

		text, err := handler.Handle(ctx, req.Arg, tc)
		resultCh <- outcome{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return Result{
			Text: fmt.Sprintf("Tool %s timed out after %s.", req.Tool, e.timeout),
			Kind: ErrorTimeout,
		}

	case out := <-resultCh:
		if out.err != nil {
			return Result{
				Text: fmt.Sprintf("Tool %s failed: %v", req.Tool, out.err),
				Kind: ErrorHandlerFailure,
			}
		}
		return Result{OK: true, Text: out.text}
	}
}
