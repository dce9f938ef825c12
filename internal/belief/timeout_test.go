package belief

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/logic-fabricator/fabricator/internal/fork"
	"github.com/logic-fabricator/fabricator/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSimulateWithTimeoutCompletesWithinDeadline(t *testing.T) {
	bs, err := New("root", fork.Coexist)
	require.NoError(t, err)

	rule, err := model.NewRule(
		model.Leaf("is", []string{"?x", "man"}, false),
		[]model.Consequence{model.StatementConsequence(model.NewStatement("is", []string{"?x", "mortal"}, false))},
	)
	require.NoError(t, err)
	require.NoError(t, bs.AddRule(rule))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, err := SimulateWithTimeout(ctx, bs, []model.Statement{model.NewStatement("is", []string{"socrates", "man"}, false)})
	require.NoError(t, err)
	require.Len(t, result.Derived, 1)
	require.True(t, result.Derived[0].ContentEqual(model.NewStatement("is", []string{"socrates", "mortal"}, false)))

	// Give the worker goroutine's completed send time to be observed before
	// TestMain's leak check runs.
	time.Sleep(10 * time.Millisecond)
}

func TestSimulateWithTimeoutReportsDeadlineExceeded(t *testing.T) {
	bs, err := New("root", fork.Coexist)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	_, err = SimulateWithTimeout(ctx, bs, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The trivial empty-input simulate call finishes almost immediately
	// regardless, so the worker goroutine is not actually left running;
	// give it a moment to exit before TestMain's leak check.
	time.Sleep(10 * time.Millisecond)
}
