package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Text string `json:"text"`
}

func echoTool(t *testing.T) *ToolDescriptor {
	t.Helper()
	desc, err := NewToolFromFunc("echo", "Echo back the provided text",
		func(ctx context.Context, in echoInput) (string, error) {
			return "echo: " + in.Text, nil
		})
	require.NoError(t, err)
	return desc
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool(t)))

	err := r.Register(echoTool(t))
	require.Error(t, err)

	var dup *DuplicateToolError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "echo", dup.Name)
}

func TestGetUnknownToolFails(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("hotel_search")
	require.Error(t, err)

	var unknown *UnknownToolError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "hotel_search", unknown.Name)
	assert.Contains(t, err.Error(), "hotel_search")
}

func TestInvoke(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool(t)))

	result, err := r.Invoke(context.Background(), "echo", json.RawMessage(`{"text":"hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", result)
}

func TestInvokeUnknownTool(t *testing.T) {
	r := NewRegistry()

	_, err := r.Invoke(context.Background(), "missing", nil)
	var unknown *UnknownToolError
	require.True(t, errors.As(err, &unknown))
}

func TestInvokeToleratesUnparseableArguments(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool(t)))

	// garbage arguments degrade to an empty set, not a crash
	result, err := r.Invoke(context.Background(), "echo", json.RawMessage(`not json at all`))
	require.NoError(t, err)
	assert.Equal(t, "echo: ", result)
}

func TestInvokeHonorsTimeout(t *testing.T) {
	r := NewRegistry(WithInvokeTimeout(20 * time.Millisecond))

	desc, err := NewToolFromFunc("slow", "Sleeps until cancelled",
		func(ctx context.Context, in echoInput) (string, error) {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(5 * time.Second):
				return "done", nil
			}
		})
	require.NoError(t, err)
	require.NoError(t, r.Register(desc))

	_, err = r.Invoke(context.Background(), "slow", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMaterializeArguments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "{}"},
		{"object", `{"a":1}`, `{"a":1}`},
		{"double encoded", `"{\"a\":1}"`, `{"a":1}`},
		{"garbage", `???`, "{}"},
		{"string that is not json", `"hello"`, "{}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MaterializeArguments(json.RawMessage(tc.in))
			assert.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestNormalizedError(t *testing.T) {
	msg, ok := NormalizedError(map[string]interface{}{"error": "rate limited"})
	require.True(t, ok)
	assert.Equal(t, "rate limited", msg)

	_, ok = NormalizedError(map[string]interface{}{"items": []interface{}{}})
	assert.False(t, ok)

	_, ok = NormalizedError("plain text result")
	assert.False(t, ok)

	msg, ok = NormalizedError(map[string]interface{}{"error": map[string]interface{}{"code": float64(500)}})
	require.True(t, ok)
	assert.Contains(t, msg, "500")
}

func TestListReturnsAllDescriptors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool(t)))

	desc, err := NewToolFromFunc("other", "Another tool",
		func(ctx context.Context, in echoInput) (string, error) { return "", nil })
	require.NoError(t, err)
	require.NoError(t, r.Register(desc))

	assert.Len(t, r.List(), 2)
}
