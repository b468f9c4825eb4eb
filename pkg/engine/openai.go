package engine

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"

	"github.com/tripsmith-ai/tripsmith/pkg/conversation"
)

// OpenAIEngine implements Engine over the OpenAI chat completion API.
type OpenAIEngine struct {
	apiKey      string
	model       string
	temperature float32
	baseURL     string
	client      *go_openai.Client
}

type OpenAIOption func(*OpenAIEngine)

func WithTemperature(t float32) OpenAIOption {
	return func(e *OpenAIEngine) { e.temperature = t }
}

// WithBaseURL points the client at a different endpoint, mostly for tests.
func WithBaseURL(url string) OpenAIOption {
	return func(e *OpenAIEngine) { e.baseURL = url }
}

func NewOpenAIEngine(apiKey, model string, opts ...OpenAIOption) *OpenAIEngine {
	e := &OpenAIEngine{
		apiKey:      apiKey,
		model:       model,
		temperature: 0.1,
	}
	for _, opt := range opts {
		opt(e)
	}

	cfg := go_openai.DefaultConfig(e.apiKey)
	if e.baseURL != "" {
		cfg.BaseURL = e.baseURL
	}
	e.client = go_openai.NewClientWithConfig(cfg)
	return e
}

// RunInference sends the trimmed conversation view and the declared tools to
// the chat completion API and converts the response into an assistant turn.
func (e *OpenAIEngine) RunInference(ctx context.Context, req *Request) (*conversation.Turn, error) {
	if e.apiKey == "" {
		return nil, errors.Wrap(ErrMissingCredential, "OPENAI_API_KEY is not set")
	}

	chatReq := go_openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages:    makeMessages(req.SystemPrompt, req.Turns),
		Tools:       makeTools(req),
	}

	log.Debug().
		Str("model", e.model).
		Int("num_messages", len(chatReq.Messages)).
		Int("num_tools", len(chatReq.Tools)).
		Msg("openai: sending chat completion request")

	resp, err := e.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, errors.Wrap(err, "chat completion request failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	requests := make([]conversation.ToolRequest, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		requests = append(requests, conversation.ToolRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	log.Debug().
		Int("tool_requests", len(requests)).
		Int("text_length", len(msg.Content)).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("openai: chat completion received")

	return conversation.NewAssistantTurn(msg.Content, requests...), nil
}

func makeMessages(systemPrompt string, turns conversation.Conversation) []go_openai.ChatCompletionMessage {
	messages := make([]go_openai.ChatCompletionMessage, 0, len(turns)+1)
	if systemPrompt != "" {
		messages = append(messages, go_openai.ChatCompletionMessage{
			Role:    go_openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, t := range turns {
		switch t.Kind {
		case conversation.KindUser:
			messages = append(messages, go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleUser,
				Content: t.Text,
			})
		case conversation.KindAssistant:
			msg := go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleAssistant,
				Content: t.Text,
			}
			for _, req := range t.ToolRequests {
				msg.ToolCalls = append(msg.ToolCalls, go_openai.ToolCall{
					ID:   req.ID,
					Type: go_openai.ToolTypeFunction,
					Function: go_openai.FunctionCall{
						Name:      req.Name,
						Arguments: string(req.Arguments),
					},
				})
			}
			messages = append(messages, msg)
		case conversation.KindToolResult:
			messages = append(messages, go_openai.ChatCompletionMessage{
				Role:       go_openai.ChatMessageRoleTool,
				Content:    t.Text,
				Name:       t.ToolName,
				ToolCallID: t.ToolRequestID,
			})
		}
	}
	return messages
}

func makeTools(req *Request) []go_openai.Tool {
	if len(req.Tools) == 0 {
		return nil
	}
	out := make([]go_openai.Tool, 0, len(req.Tools))
	for _, desc := range req.Tools {
		out = append(out, go_openai.Tool{
			Type: go_openai.ToolTypeFunction,
			Function: go_openai.FunctionDefinition{
				Name:        desc.Name,
				Description: desc.Description,
				Parameters:  desc.Parameters,
			},
		})
	}
	return out
}

var _ Engine = (*OpenAIEngine)(nil)
