package tools

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultInvokeTimeout bounds a single tool invocation. Tool calls are
// unbounded-latency network I/O and must not stall the loop forever.
const DefaultInvokeTimeout = 30 * time.Second

// Registry maps tool names to their descriptors and dispatches invocations.
// It never retries a failed call; retry policy belongs to the agent loop.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]*ToolDescriptor
	timeout time.Duration
}

type RegistryOption func(*Registry)

// WithInvokeTimeout overrides the per-invocation timeout.
func WithInvokeTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:   make(map[string]*ToolDescriptor),
		timeout: DefaultInvokeTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a descriptor to the registry. Registering a name twice fails
// with *DuplicateToolError.
func (r *Registry) Register(desc *ToolDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[desc.Name]; exists {
		return &DuplicateToolError{Name: desc.Name}
	}
	r.tools[desc.Name] = desc
	log.Debug().Str("tool", desc.Name).Msg("tools: registered")
	return nil
}

// Get resolves a descriptor by name, failing with *UnknownToolError when
// absent.
func (r *Registry) Get(name string) (*ToolDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, exists := r.tools[name]
	if !exists {
		return nil, &UnknownToolError{Name: name}
	}
	return desc, nil
}

// List returns all registered descriptors in registration-independent order.
func (r *Registry) List() []*ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ToolDescriptor, 0, len(r.tools))
	for _, desc := range r.tools {
		out = append(out, desc)
	}
	return out
}

// Invoke resolves name and calls the tool with materialized arguments,
// bounded by the per-call timeout.
func (r *Registry) Invoke(ctx context.Context, name string, rawArgs json.RawMessage) (interface{}, error) {
	desc, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	args := MaterializeArguments(rawArgs)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	result, err := desc.Function.Call(ctx, args)
	log.Debug().
		Str("tool", name).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("tools: invocation finished")
	return result, err
}

// MaterializeArguments normalizes the model's requested argument
// representation into a JSON object. The model sometimes double-encodes the
// argument map as a JSON string; a representation that cannot be parsed at
// all degrades to an empty argument set so the tool's own validation can
// reject missing fields, rather than crashing the loop.
func MaterializeArguments(raw json.RawMessage) json.RawMessage {
	empty := json.RawMessage(`{}`)
	if len(raw) == 0 {
		return empty
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return raw
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &obj); err == nil {
			return json.RawMessage(inner)
		}
	}

	log.Debug().Str("raw", string(raw)).Msg("tools: unparseable arguments, substituting empty set")
	return empty
}

// NormalizedError inspects a tool result for an explicit error payload (a
// mapping with an "error" key) and returns the message when present.
func NormalizedError(result interface{}) (string, bool) {
	m, ok := result.(map[string]interface{})
	if !ok {
		return "", false
	}
	errVal, ok := m["error"]
	if !ok {
		return "", false
	}
	if s, ok := errVal.(string); ok {
		return s, true
	}
	b, err := json.Marshal(errVal)
	if err != nil {
		return "tool returned an error", true
	}
	return string(b), true
}
