// Package session holds the per-client conversation state: an append-only
// ordered log of turns driving display. A session is exclusively owned by
// one client, allows at most one in-flight response, and is discarded at
// session end with no persistence.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VineetKiragi/cinemind/internal/metadata"
)

// Common errors for session operations
var (
	ErrEmptySubmission = errors.New("submission text is empty")
	ErrBusy            = errors.New("a response is already in flight for this session")
	ErrDisposed        = errors.New("session has been disposed")
)

// Sender identifies who produced a turn.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Turn is one entry in the conversation log. Immutable once created.
type Turn struct {
	Sender    Sender                   `json:"sender"`
	Text      string                   `json:"text"`
	Movies    []metadata.EnrichedMovie `json:"movies,omitempty"`
	Failed    bool                     `json:"failed,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

// State is the session lifecycle state.
type State int

const (
	// StateIdle accepts new submissions.
	StateIdle State = iota

	// StateAwaitingResponse has one pipeline in flight; further
	// submissions are rejected, not interleaved.
	StateAwaitingResponse

	// StateDisposed is terminal.
	StateDisposed
)

// Session is an append-only ordered turn log with a small state machine
// guarding turn ordering: Idle -> AwaitingResponse -> Idle.
type Session struct {
	id string

	mu     sync.Mutex
	state  State
	turns  []Turn
	cancel context.CancelFunc
}

// New creates an idle session with a fresh identity.
func New() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the session identity.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Turns returns a copy of the turn log in append order.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Begin transitions Idle -> AwaitingResponse for a non-empty submission,
// appends the user turn, and derives a context that is cancelled when the
// session is disposed. Submissions while a response is in flight are
// rejected with ErrBusy.
func (s *Session) Begin(ctx context.Context, text string) (context.Context, string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, "", ErrEmptySubmission
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateDisposed:
		return nil, "", ErrDisposed
	case StateAwaitingResponse:
		return nil, "", ErrBusy
	}

	s.state = StateAwaitingResponse
	s.turns = append(s.turns, Turn{
		Sender:    SenderUser,
		Text:      trimmed,
		CreatedAt: time.Now(),
	})

	pipelineCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return pipelineCtx, trimmed, nil
}

// Resolve appends the assistant turn and returns to Idle. Both successful
// and failed pipelines resolve through here. A late resolution after
// Dispose is dropped and reported as ErrDisposed; it never mutates the
// disposed session.
func (s *Session) Resolve(turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisposed {
		return ErrDisposed
	}
	if s.state != StateAwaitingResponse {
		return errors.New("no submission awaiting a response")
	}

	s.turns = append(s.turns, turn)
	s.state = StateIdle
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}

// Dispose terminates the session. In-flight work is abandoned best-effort
// via context cancellation.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisposed {
		return
	}
	s.state = StateDisposed
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
