package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsmith-ai/tripsmith/pkg/conversation"
	"github.com/tripsmith-ai/tripsmith/pkg/tools"
)

func TestRunInferenceRequiresCredential(t *testing.T) {
	eng := NewOpenAIEngine("", "gpt-4o-mini")

	_, err := eng.RunInference(context.Background(), &Request{
		Turns: conversation.Conversation{conversation.NewUserTurn("hi")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestMakeMessages(t *testing.T) {
	turns := conversation.Conversation{
		conversation.NewUserTurn("plan a trip"),
		conversation.NewAssistantTurn("checking", conversation.ToolRequest{
			ID:        "call-1",
			Name:      "weather_check",
			Arguments: json.RawMessage(`{"location":"Paris"}`),
		}),
		conversation.NewToolResultTurn("call-1", "weather_check", "sunny"),
	}

	messages := makeMessages("you are a travel agent", turns)
	require.Len(t, messages, 4)

	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "you are a travel agent", messages[0].Content)

	assert.Equal(t, "user", messages[1].Role)

	assert.Equal(t, "assistant", messages[2].Role)
	require.Len(t, messages[2].ToolCalls, 1)
	assert.Equal(t, "call-1", messages[2].ToolCalls[0].ID)
	assert.Equal(t, "weather_check", messages[2].ToolCalls[0].Function.Name)

	assert.Equal(t, "tool", messages[3].Role)
	assert.Equal(t, "call-1", messages[3].ToolCallID)
	assert.Equal(t, "weather_check", messages[3].Name)
	assert.Equal(t, "sunny", messages[3].Content)
}

func TestMakeMessagesWithoutSystemPrompt(t *testing.T) {
	messages := makeMessages("", conversation.Conversation{conversation.NewUserTurn("hi")})
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].Role)
}

func TestRunInferenceParsesToolCalls(t *testing.T) {
	var captured map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call-1",
						"type": "function",
						"function": {
							"name": "weather_check",
							"arguments": "{\"location\":\"Paris\",\"date\":\"2025-06-01\"}"
						}
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	weatherTool, err := tools.NewToolFromFunc("weather_check", "Check the weather",
		func(ctx context.Context, in struct {
			Location string `json:"location"`
		}) (string, error) {
			return "", nil
		})
	require.NoError(t, err)

	eng := NewOpenAIEngine("test-key", "gpt-4o-mini", WithBaseURL(srv.URL+"/v1"))
	turn, err := eng.RunInference(context.Background(), &Request{
		SystemPrompt: "you are a travel agent",
		Turns:        conversation.Conversation{conversation.NewUserTurn("weather in Paris")},
		Tools:        []*tools.ToolDescriptor{weatherTool},
	})
	require.NoError(t, err)

	require.True(t, turn.HasToolRequests())
	assert.Equal(t, "call-1", turn.ToolRequests[0].ID)
	assert.Equal(t, "weather_check", turn.ToolRequests[0].Name)
	assert.JSONEq(t, `{"location":"Paris","date":"2025-06-01"}`, string(turn.ToolRequests[0].Arguments))

	// the request declared the tool and led with the system instruction
	declared, ok := captured["tools"].([]interface{})
	require.True(t, ok)
	require.Len(t, declared, 1)

	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	first, ok := messages[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "system", first["role"])
}

func TestEngineBuildsClientOnce(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-3",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "ok"}
			}]
		}`))
	}))
	defer srv.Close()

	eng := NewOpenAIEngine("test-key", "gpt-4o-mini", WithBaseURL(srv.URL+"/v1"))
	require.NotNil(t, eng.client)

	client := eng.client
	for i := 0; i < 2; i++ {
		_, err := eng.RunInference(context.Background(), &Request{
			Turns: conversation.Conversation{conversation.NewUserTurn("hi")},
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, hits)
	assert.Same(t, client, eng.client)
}

func TestRunInferenceFinalAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-2",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "Here is your itinerary."}
			}]
		}`))
	}))
	defer srv.Close()

	eng := NewOpenAIEngine("test-key", "gpt-4o-mini", WithBaseURL(srv.URL+"/v1"))
	turn, err := eng.RunInference(context.Background(), &Request{
		Turns: conversation.Conversation{conversation.NewUserTurn("plan my trip")},
	})
	require.NoError(t, err)

	assert.False(t, turn.HasToolRequests())
	assert.Equal(t, "Here is your itinerary.", turn.Text)
}
