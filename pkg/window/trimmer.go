package window

import (
	"github.com/rs/zerolog/log"

	"github.com/tripsmith-ai/tripsmith/pkg/conversation"
	"github.com/tripsmith-ai/tripsmith/pkg/tokens"
)

// perTurnOverhead accounts for the per-message framing the chat API adds on
// top of the raw text tokens.
const perTurnOverhead = 4

// Trimmer derives a suffix-biased view of a conversation that fits a token
// budget. It operates on views only and never mutates the history it is
// given.
type Trimmer struct {
	counter tokens.Counter
	budget  int
}

func NewTrimmer(counter tokens.Counter, budget int) *Trimmer {
	if counter == nil {
		counter = tokens.HeuristicCounter{}
	}
	return &Trimmer{counter: counter, budget: budget}
}

// TurnCost estimates the token cost of a single turn.
func (tr *Trimmer) TurnCost(t *conversation.Turn) int {
	cost := perTurnOverhead + tr.counter.Count(t.Text)
	for _, req := range t.ToolRequests {
		cost += tr.counter.Count(req.Name)
		cost += tr.counter.Count(string(req.Arguments))
	}
	return cost
}

// Cost estimates the token cost of a whole conversation.
func (tr *Trimmer) Cost(conv conversation.Conversation) int {
	total := 0
	for _, t := range conv {
		total += tr.TurnCost(t)
	}
	return total
}

// Trim returns the largest suffix of conv whose estimated cost fits the
// budget, subject to two repairs:
//
//   - a tool-result turn whose paired assistant tool request fell outside the
//     window is dropped, since an orphaned tool result is invalid model input;
//   - the most recent user turn is always retained, even when that overshoots
//     the budget, so the model never loses the request it is answering.
//
// Trim is idempotent: a conversation already within budget is returned
// unchanged.
func (tr *Trimmer) Trim(conv conversation.Conversation) conversation.Conversation {
	if tr.budget <= 0 || tr.Cost(conv) <= tr.budget {
		return conv
	}

	// walk backward until adding one more turn would exceed the budget
	start := len(conv)
	remaining := tr.budget
	for i := len(conv) - 1; i >= 0; i-- {
		cost := tr.TurnCost(conv[i])
		if cost > remaining {
			break
		}
		remaining -= cost
		start = i
	}

	trimmed := dropOrphanedToolResults(conv[start:])
	trimmed = ensureLatestUserTurn(conv, trimmed)

	log.Debug().
		Int("budget", tr.budget).
		Int("turns_in", len(conv)).
		Int("turns_out", len(trimmed)).
		Msg("window: history trimmed")

	return trimmed
}

// dropOrphanedToolResults removes tool-result turns that reference a tool
// request not present in the window.
func dropOrphanedToolResults(conv conversation.Conversation) conversation.Conversation {
	known := map[string]bool{}
	for _, t := range conv {
		for _, req := range t.ToolRequests {
			known[req.ID] = true
		}
	}

	out := make(conversation.Conversation, 0, len(conv))
	for _, t := range conv {
		if t.Kind == conversation.KindToolResult && !known[t.ToolRequestID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ensureLatestUserTurn re-inserts the most recent user turn from the full
// history when trimming pushed it out of the window.
func ensureLatestUserTurn(full, trimmed conversation.Conversation) conversation.Conversation {
	for _, t := range trimmed {
		if t.Kind == conversation.KindUser {
			return trimmed
		}
	}
	for i := len(full) - 1; i >= 0; i-- {
		if full[i].Kind == conversation.KindUser {
			return append(conversation.Conversation{full[i]}, trimmed...)
		}
	}
	return trimmed
}
