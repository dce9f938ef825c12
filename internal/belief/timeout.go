package belief

import (
	"context"
	"fmt"

	"github.com/logic-fabricator/fabricator/internal/model"
)

// SimulateWithTimeout wraps Simulate in a caller-supplied deadline. The
// fixed-point loop itself has no suspension points and cannot be cancelled
// mid-flight, so this wrapper runs it on its own
// goroutine and returns as soon as either the call finishes or ctx is
// done, whichever comes first. A timeout does not stop the in-flight
// goroutine — bs may still be mutated by it after this function returns —
// so callers that hit a deadline should treat bs as potentially stale and
// not attempt another Simulate against it concurrently.
func SimulateWithTimeout(ctx context.Context, bs *BeliefSystem, inputs []model.Statement) (*SimulationResult, error) {
	type outcome struct {
		result *SimulationResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := bs.Simulate(inputs)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("simulate timed out: %w", ctx.Err())
	}
}
