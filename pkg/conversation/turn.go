package conversation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TurnKind tags the origin of a Turn.
type TurnKind string

const (
	KindUser       TurnKind = "user"
	KindAssistant  TurnKind = "assistant"
	KindToolResult TurnKind = "tool_result"
)

// ToolRequest is a single tool invocation requested by the model. The ID is
// unique within the assistant turn that produced it and is echoed back on the
// matching tool-result turn.
type ToolRequest struct {
	ID        string          `json:"id" yaml:"id"`
	Name      string          `json:"name" yaml:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Turn is one message-equivalent unit of conversation. Turns are immutable
// once appended to a session; ordering defines the conversation history.
type Turn struct {
	ID   string    `json:"id" yaml:"id"`
	Kind TurnKind  `json:"kind" yaml:"kind"`
	Time time.Time `json:"time" yaml:"time"`
	Text string    `json:"text,omitempty" yaml:"text,omitempty"`

	// ToolRequests is only set on assistant turns.
	ToolRequests []ToolRequest `json:"toolRequests,omitempty" yaml:"toolRequests,omitempty"`

	// ToolRequestID and ToolName are only set on tool-result turns and
	// reference the assistant tool request this result answers.
	ToolRequestID string `json:"toolRequestID,omitempty" yaml:"toolRequestID,omitempty"`
	ToolName      string `json:"toolName,omitempty" yaml:"toolName,omitempty"`
}

func newTurn(kind TurnKind) *Turn {
	return &Turn{
		ID:   uuid.NewString(),
		Kind: kind,
		Time: time.Now(),
	}
}

// NewUserTurn returns a Turn carrying user text.
func NewUserTurn(text string) *Turn {
	t := newTurn(KindUser)
	t.Text = text
	return t
}

// NewAssistantTurn returns a Turn carrying assistant text and zero or more
// tool requests.
func NewAssistantTurn(text string, requests ...ToolRequest) *Turn {
	t := newTurn(KindAssistant)
	t.Text = text
	t.ToolRequests = requests
	return t
}

// NewToolResultTurn returns a Turn carrying the textual outcome of a tool
// request.
func NewToolResultTurn(requestID, toolName, content string) *Turn {
	t := newTurn(KindToolResult)
	t.ToolRequestID = requestID
	t.ToolName = toolName
	t.Text = content
	return t
}

// HasToolRequests reports whether this assistant turn asks for tool calls.
func (t *Turn) HasToolRequests() bool {
	return t != nil && t.Kind == KindAssistant && len(t.ToolRequests) > 0
}

func (t *Turn) String() string {
	switch t.Kind {
	case KindToolResult:
		return fmt.Sprintf("[tool:%s] %s", t.ToolName, strings.TrimRight(t.Text, "\n"))
	default:
		return fmt.Sprintf("[%s] %s", t.Kind, strings.TrimRight(t.Text, "\n"))
	}
}

// Conversation is an ordered sequence of turns.
type Conversation []*Turn

// LastAssistantText scans the conversation from the end backward and returns
// the text of the latest assistant turn. The second return value is false when
// no assistant turn exists.
func (c Conversation) LastAssistantText() (string, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Kind == KindAssistant {
			return c[i].Text, true
		}
	}
	return "", false
}

// FirstUserText returns the text of the earliest user turn, which seeds a
// session.
func (c Conversation) FirstUserText() (string, bool) {
	for _, t := range c {
		if t.Kind == KindUser {
			return t.Text, true
		}
	}
	return "", false
}
