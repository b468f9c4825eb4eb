package tokens

import (
	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"
)

// Counter estimates the token cost of a piece of text.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts tokens with the codec registered for a model.
type TiktokenCounter struct {
	codec tokenizer.Codec
}

// NewTiktokenCounter resolves the tokenizer codec for model. It fails when no
// codec is known for the model name; callers typically fall back to
// NewHeuristicCounter in that case.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{codec: codec}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		// encoding failures are rare; fall back to the byte heuristic
		return heuristicCount(text)
	}
	return len(ids)
}

// HeuristicCounter is a conservative length-based estimate used when no
// model-specific tokenizer is available.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(text string) int {
	return heuristicCount(text)
}

// heuristicCount approximates ~4 bytes per token, rounding up.
func heuristicCount(text string) int {
	return (len(text) + 3) / 4
}

// CounterForModel returns the best available counter for a model name.
func CounterForModel(model string) Counter {
	c, err := NewTiktokenCounter(model)
	if err != nil {
		log.Debug().Err(err).Str("model", model).Msg("tokens: no codec for model, using heuristic counter")
		return HeuristicCounter{}
	}
	return c
}
