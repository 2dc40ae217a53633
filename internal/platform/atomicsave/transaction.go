// Package atomicsave runs a sequence of storage writes as one unit: the
// first failure stops the sequence and every completed step is undone in
// reverse order.
package atomicsave

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

// Operation is one step of a transaction. Rollback may be nil when the step
// has nothing to undo.
type Operation struct {
	Name     string
	Execute  func(ctx context.Context) (any, error)
	Rollback func(ctx context.Context) error
}

// NewOperation adapts a typed step to an Operation.
func NewOperation[T any](name string, execute func(ctx context.Context) (T, error), rollback func(ctx context.Context) error) Operation {
	op := Operation{Name: name, Rollback: rollback}
	if execute != nil {
		op.Execute = func(ctx context.Context) (any, error) {
			return execute(ctx)
		}
	}
	return op
}

// Result reports how a transaction ended. Results holds each step's output
// in order and is only set on success.
type Result struct {
	Success          bool
	Results          []any
	Error            string
	Cause            error
	RolledBack       bool
	RollbackFailures int
}

// Err converts a failed Result into an error that unwraps to Cause.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Message: r.Error, Cause: r.Cause}
}

type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Execute runs ops in order. It never panics: a panic inside a step counts
// as that step failing, and any other fault is reported as a failed
// transaction with nothing rolled back.
func Execute(ctx context.Context, ops []Operation, logger *logging.Logger) (res Result) {
	if logger == nil {
		logger = logging.Default()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "save transaction aborted", "panic", fmt.Sprint(r))
			res = Result{Error: fmt.Sprintf("Transaction failed: %v", r)}
		}
	}()

	for i, op := range ops {
		if op.Execute == nil {
			return Result{Error: fmt.Sprintf("Transaction failed: operation %d (%s) has no execute step", i, op.Name)}
		}
	}

	results := make([]any, 0, len(ops))
	for i, op := range ops {
		out, err := runStep(ctx, op)
		if err != nil {
			logger.ErrorContext(ctx, "save operation failed", "operation", op.Name, "index", i, "error", err)
			failures := rollback(ctx, ops[:i], logger)
			return Result{
				Error:            "Operation \"" + op.Name + "\" failed: " + err.Error(),
				Cause:            err,
				RolledBack:       true,
				RollbackFailures: failures,
			}
		}
		results = append(results, out)
	}

	return Result{Success: true, Results: results}
}

func runStep(ctx context.Context, op Operation) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = crerr.Newf("panic: %v", r)
		}
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return op.Execute(ctx)
}

// rollback undoes completed in reverse order and returns how many rollbacks
// failed. A failed rollback does not stop the sweep.
func rollback(ctx context.Context, completed []Operation, logger *logging.Logger) int {
	// The caller's context may already be cancelled; undo must still run.
	rbCtx := context.WithoutCancel(ctx)

	failures := 0
	for i := len(completed) - 1; i >= 0; i-- {
		op := completed[i]
		if op.Rollback == nil {
			logger.WarnContext(ctx, "no rollback for completed operation", "operation", op.Name)
			continue
		}
		if err := runRollback(rbCtx, op); err != nil {
			failures++
			logger.ErrorContext(ctx, "rollback failed", "operation", op.Name, "error", err)
			continue
		}
		logger.DebugContext(ctx, "rolled back operation", "operation", op.Name)
	}
	return failures
}

func runRollback(ctx context.Context, op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = crerr.Newf("panic: %v", r)
		}
	}()
	return op.Rollback(ctx)
}
