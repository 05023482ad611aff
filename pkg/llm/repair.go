package llm

import (
	"context"

	"github.com/harishkotra/SketchStack/pkg/plan"
)

// Repairer returns a [plan.RepairFunc] that asks c to fix invalid JSON.
// Errors from c are returned unchanged so the repair loop can tell network
// failures from validation failures.
func Repairer(c Client, opts ChatOptions) plan.RepairFunc {
	return func(ctx context.Context, errMsg, raw string) (string, error) {
		return c.Chat(ctx, RepairMessages(errMsg, raw), opts)
	}
}
