package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tripsmith-ai/tripsmith/pkg/conversation"
	"github.com/tripsmith-ai/tripsmith/pkg/engine"
	"github.com/tripsmith-ai/tripsmith/pkg/tools"
)

// loopState is the agent loop's explicit state machine.
type loopState int

const (
	stateAwaitingModel loopState = iota
	stateRunningTools
	stateDone
)

// runLoop alternates "ask model" / "run requested tools" rounds until the
// model emits a final answer, the failure ceiling fires, or the iteration
// cap is hit. Each round appends its assistant turn together with all of its
// tool-result turns, so a cancelled round never leaves the session with
// unanswered tool requests.
func (a *Agent) runLoop(ctx context.Context, session *conversation.Session) (string, error) {
	state := stateAwaitingModel
	var pending *conversation.Turn

	for i := 0; i < a.maxIterations; i++ {
		switch state {
		case stateAwaitingModel:
			view := a.trimmer.Trim(session.Turns())
			log.Debug().
				Str("thread_id", session.ThreadID).
				Int("round", i+1).
				Int("view_len", len(view)).
				Msg("agent: asking model")

			assistant, err := a.eng.RunInference(ctx, &engine.Request{
				SystemPrompt: a.systemPrompt,
				Turns:        view,
				Tools:        a.registry.List(),
			})
			if err != nil {
				return "", errors.Wrap(err, "model invocation failed")
			}

			if !assistant.HasToolRequests() {
				session.Append(assistant)
				state = stateDone
				continue
			}
			pending = assistant
			state = stateRunningTools

		case stateRunningTools:
			results, failed := a.executeRound(ctx, pending.ToolRequests)

			round := make([]*conversation.Turn, 0, len(results)+1)
			round = append(round, pending)
			round = append(round, results...)
			pending = nil

			if len(failed) > 0 {
				count := a.recordFailingRound(session.ThreadID)
				log.Debug().
					Strs("failed_tools", failed).
					Int("failure_count", count).
					Int("max_retries", a.maxRetries).
					Msg("agent: round contained tool failures")

				if count >= a.maxRetries {
					session.Append(round...)
					if err := a.shortCircuit(ctx, session, failed); err != nil {
						return "", err
					}
					state = stateDone
					continue
				}
			}

			session.Append(round...)
			state = stateAwaitingModel

		case stateDone:
			return a.finalAnswer(session), nil
		}
	}

	if state == stateDone {
		return a.finalAnswer(session), nil
	}

	log.Warn().
		Str("thread_id", session.ThreadID).
		Int("max_iterations", a.maxIterations).
		Msg("agent: maximum iterations reached")
	if text, ok := session.Turns().LastAssistantText(); ok {
		return text, nil
	}
	return "", errors.Errorf("max iterations (%d) reached without an answer", a.maxIterations)
}

// executeRound runs every requested tool sequentially, in the order the
// model produced them. A failed tool call does not abort the round: it is
// substituted by a readable error string and the remaining tools still run.
// The second return value lists the names of tools that failed this round.
func (a *Agent) executeRound(ctx context.Context, requests []conversation.ToolRequest) ([]*conversation.Turn, []string) {
	results := make([]*conversation.Turn, 0, len(requests))
	var failed []string
	seen := map[string]bool{}

	markFailed := func(name string) {
		if !seen[name] {
			seen[name] = true
			failed = append(failed, name)
		}
	}

	for _, req := range requests {
		content, ok := a.invokeOne(ctx, req)
		if !ok {
			markFailed(req.Name)
		}
		results = append(results, conversation.NewToolResultTurn(req.ID, req.Name, content))
	}
	return results, failed
}

// invokeOne wraps a single tool call. Any raised error, and any normalized
// error payload in the result, becomes an in-band error string; ok reports
// whether the call succeeded.
func (a *Agent) invokeOne(ctx context.Context, req conversation.ToolRequest) (string, bool) {
	result, err := a.registry.Invoke(ctx, req.Name, req.Arguments)
	if err != nil {
		return formatToolError(req.Name, err.Error()), false
	}
	if msg, isErr := tools.NormalizedError(result); isErr {
		return formatToolError(req.Name, msg), false
	}
	return renderResult(result), true
}

func renderResult(result interface{}) string {
	switch v := result.(type) {
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// shortCircuit invokes the fallback planner and appends its output as the
// terminal assistant turn.
func (a *Agent) shortCircuit(ctx context.Context, session *conversation.Session, failedTools []string) error {
	seed, _ := session.Turns().FirstUserText()
	fb, err := a.generateFallbackPlan(ctx, seed, failedTools)
	if err != nil {
		return err
	}
	session.Append(fb)
	return nil
}

// finalAnswer scans history from the end backward for the latest assistant
// text. When none is found (should not occur under correct operation) the
// raw last turn's text is returned as a last resort.
func (a *Agent) finalAnswer(session *conversation.Session) string {
	turns := session.Turns()
	if text, ok := turns.LastAssistantText(); ok {
		return text
	}
	if len(turns) > 0 {
		return turns[len(turns)-1].Text
	}
	return ""
}
