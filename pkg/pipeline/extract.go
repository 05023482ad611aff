package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/harishkotra/SketchStack/pkg/llm"
	"github.com/harishkotra/SketchStack/pkg/observability"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

// extract asks the model for a plan and validates the reply, repairing it
// through the same model and options when it does not conform.
func (r *Runner) extract(ctx context.Context, messages []llm.Message, chat llm.ChatOptions, stats *Stats) (plan.ArchitecturePlan, error) {
	var raw string
	start := time.Now()
	err := observability.Stage(ctx, StageExtract, func() error {
		var err error
		raw, err = r.LLM.Chat(ctx, messages, chat)
		return err
	})
	stats.ExtractTime = time.Since(start)
	if err != nil {
		return plan.ArchitecturePlan{}, fmt.Errorf("extract: %w", err)
	}

	var out plan.Outcome[plan.ArchitecturePlan]
	start = time.Now()
	err = observability.Stage(ctx, StageValidate, func() error {
		out = plan.Validate(ctx, raw, plan.ArchitectureSchema(), r.Options.MaxRepairAttempts,
			llm.Repairer(r.LLM, chat), plan.WithLogger(r.Logger))
		return out.Err
	})
	stats.ValidateTime = time.Since(start)
	stats.Attempts = out.Attempts
	stats.Repairs = out.Repairs
	if err != nil {
		return plan.ArchitecturePlan{}, fmt.Errorf("validate: %w", err)
	}

	r.Logger.Info("extracted plan",
		"components", len(out.Value.Components),
		"relationships", len(out.Value.Relationships),
		"attempts", out.Attempts)
	return out.Value, nil
}

func (r *Runner) chatOptions(model string) llm.ChatOptions {
	if model == "" {
		model = r.Options.Model
	}
	return llm.ChatOptions{Model: model}
}
