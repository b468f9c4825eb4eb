package agent

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tripsmith-ai/tripsmith/pkg/conversation"
	"github.com/tripsmith-ai/tripsmith/pkg/engine"
)

// generateFallbackPlan asks the model for a best-effort answer without
// further tool use: a daily itinerary skeleton, generic recommendations,
// packing tips and a checklist, explicitly naming the data sources that were
// unavailable. The call declares no tools and does not retry.
func (a *Agent) generateFallbackPlan(ctx context.Context, originalRequest string, failedTools []string) (*conversation.Turn, error) {
	log.Debug().
		Strs("failed_tools", failedTools).
		Msg("agent: generating fallback plan")

	req := &engine.Request{
		SystemPrompt: a.systemPrompt + " If tools are unavailable, give a best-effort plan.",
		Turns: conversation.Conversation{
			conversation.NewUserTurn(fallbackDirective(originalRequest, failedTools)),
		},
	}

	assistant, err := a.eng.RunInference(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "fallback plan generation failed")
	}

	// the planner is non-interactive: any tool requests the model emits
	// anyway are discarded
	return conversation.NewAssistantTurn(assistant.Text), nil
}
