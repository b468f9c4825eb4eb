package agent

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tripsmith-ai/tripsmith/pkg/conversation"
	"github.com/tripsmith-ai/tripsmith/pkg/engine"
	"github.com/tripsmith-ai/tripsmith/pkg/tools"
	"github.com/tripsmith-ai/tripsmith/pkg/window"
)

const (
	// DefaultMaxRetries is the failure ceiling: once this many rounds have
	// contained a tool failure, the next failing round short-circuits to the
	// fallback planner.
	DefaultMaxRetries = 3

	// DefaultMaxIterations caps loop rounds so a model that never stops
	// requesting tools still terminates.
	DefaultMaxIterations = 10
)

// FailureScope selects what the failure counter spans.
type FailureScope int

const (
	// FailureScopeAgent counts failing rounds across every conversation the
	// agent instance serves. Repeated environmental failures surface even
	// across threads; callers needing isolation instantiate one agent per
	// session.
	FailureScopeAgent FailureScope = iota

	// FailureScopeSession keeps an independent counter per thread id.
	FailureScopeSession
)

// Agent mediates the request/response protocol between the model and the
// tool registry: it owns conversation state, bounds the context window, runs
// the tool-calling loop, and degrades to a fallback plan when tools fail
// repeatedly.
type Agent struct {
	eng          engine.Engine
	registry     *tools.Registry
	sessions     *conversation.Manager
	trimmer      *window.Trimmer
	systemPrompt string

	maxRetries    int
	maxIterations int
	failureScope  FailureScope

	mu              sync.Mutex
	failures        int
	sessionFailures map[string]int
	threadLocks     map[string]*sync.Mutex
}

type Option func(*Agent)

func WithEngine(eng engine.Engine) Option {
	return func(a *Agent) { a.eng = eng }
}

func WithRegistry(reg *tools.Registry) Option {
	return func(a *Agent) { a.registry = reg }
}

func WithSessions(m *conversation.Manager) Option {
	return func(a *Agent) { a.sessions = m }
}

func WithTrimmer(tr *window.Trimmer) Option {
	return func(a *Agent) { a.trimmer = tr }
}

func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.systemPrompt = prompt }
}

func WithMaxRetries(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxRetries = n
		}
	}
}

func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

func WithFailureScope(scope FailureScope) Option {
	return func(a *Agent) { a.failureScope = scope }
}

func New(opts ...Option) (*Agent, error) {
	a := &Agent{
		sessions:        conversation.NewManager(),
		systemPrompt:    DefaultSystemPrompt(),
		maxRetries:      DefaultMaxRetries,
		maxIterations:   DefaultMaxIterations,
		failureScope:    FailureScopeAgent,
		sessionFailures: make(map[string]int),
		threadLocks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.eng == nil {
		return nil, errors.New("agent requires an engine")
	}
	if a.registry == nil {
		return nil, errors.New("agent requires a tool registry")
	}
	if a.trimmer == nil {
		a.trimmer = window.NewTrimmer(nil, 0)
	}
	return a, nil
}

// Run executes one conversation turn-sequence for the thread: it seeds the
// session with the user request and drives the loop until a final answer is
// produced. An empty threadID starts a fresh conversation. Calls for the
// same thread id are serialized; interleaved appends would corrupt turn
// ordering.
func (a *Agent) Run(ctx context.Context, userRequest, threadID string) (string, error) {
	if threadID == "" {
		threadID = uuid.NewString()
	}

	lock := a.threadLock(threadID)
	lock.Lock()
	defer lock.Unlock()

	session := a.sessions.Session(threadID)
	session.Append(conversation.NewUserTurn(userRequest))

	log.Debug().
		Str("thread_id", threadID).
		Int("history_len", session.Len()).
		Msg("agent: run started")

	answer, err := a.runLoop(ctx, session)
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (a *Agent) threadLock(threadID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.threadLocks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		a.threadLocks[threadID] = lock
	}
	return lock
}

// recordFailingRound increments the failure counter once for a round that
// contained at least one failure, and returns the new count.
func (a *Agent) recordFailingRound(threadID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failureScope == FailureScopeSession {
		a.sessionFailures[threadID]++
		return a.sessionFailures[threadID]
	}
	a.failures++
	return a.failures
}
