package engine

import (
	"context"

	"github.com/pkg/errors"

	"github.com/tripsmith-ai/tripsmith/pkg/conversation"
	"github.com/tripsmith-ai/tripsmith/pkg/tools"
)

// ErrMissingCredential is returned when the model provider credential is
// absent. It is the one failure the agent surfaces to the caller unchanged:
// without it no useful answer can be produced.
var ErrMissingCredential = errors.New("missing model API credential")

// Request carries one model invocation: a fixed system instruction, the
// (already trimmed) conversation view, and the tools the model may request.
// An empty Tools slice declares no tools, which the fallback planner uses to
// force a tool-free answer.
type Request struct {
	SystemPrompt string
	Turns        conversation.Conversation
	Tools        []*tools.ToolDescriptor
}

// Engine is the opaque model invocation capability. Given a request it
// returns a single assistant turn, carrying either final text or one or more
// tool requests. Provider-specific logic (OpenAI, Claude, ...) lives behind
// this interface.
type Engine interface {
	RunInference(ctx context.Context, req *Request) (*conversation.Turn, error)
}
