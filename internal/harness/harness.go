package harness

import (
	"context"
	"fmt"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/query"
)

// Run executes q with e and checks its expect block.
//
// A run failure is reported as a failed Result, not an error, so a batch
// of queries can be summarized together. The error return is reserved for
// a nil engine or query.
func Run(ctx context.Context, e *engine.Engine, q *query.Query) (*Result, error) {
	if e == nil || q == nil {
		return nil, fmt.Errorf("harness: engine and query are required")
	}

	result := NewResult()

	res, err := e.Run(ctx, q)
	if err != nil {
		result.AddError(fmt.Sprintf("execution failed: %v", err))
		return result, nil
	}
	result.Run = res

	for _, msg := range Check(res.Rows, q.Expect) {
		result.AddError(msg)
	}
	return result, nil
}
