// Package chat implements the stateful conversation controller. It owns
// the append-only message transcript, the loading/error flags, and the
// client-side mirror of the backend session snapshot.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/etouchhq/insure-chat/internal/action"
	"github.com/etouchhq/insure-chat/internal/api"
	"github.com/etouchhq/insure-chat/internal/domain"
	"github.com/etouchhq/insure-chat/internal/parser"
)

// State is the session controller state.
type State int

const (
	// StateIdle means no network operation is outstanding.
	StateIdle State = iota
	// StateSessionStarting means the initial session handshake is in flight.
	StateSessionStarting
	// StateAwaitingReply means one turn is in flight.
	StateAwaitingReply
	// StateError means the last turn failed with a transport error.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSessionStarting:
		return "session_starting"
	case StateAwaitingReply:
		return "awaiting_reply"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrTurnInFlight is returned when a send is attempted while another turn
// is outstanding. The controller handles one turn at a time; callers must
// wait for the current one to settle.
var ErrTurnInFlight = errors.New("a chat turn is already in flight")

// Backend is the subset of the backend API the session controller needs.
// *api.Client satisfies it.
type Backend interface {
	StartSession(ctx context.Context) (*api.StartSessionResponse, error)
	SendTurn(ctx context.Context, req *api.TurnRequest) (*api.TurnResponse, error)
	ResetSession(ctx context.Context, sessionID string) error
}

// Session is the conversation controller. All exported methods are safe
// for concurrent use, but only one turn may be outstanding at a time;
// concurrent sends beyond the first return ErrTurnInFlight.
type Session struct {
	backend Backend
	logger  *slog.Logger

	mu       sync.Mutex
	state    State
	lastErr  string
	messages []domain.Message
	snapshot domain.SessionSnapshot
	msgSeq   int
}

// NewSession creates an idle session controller with an empty transcript.
func NewSession(backend Backend, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{backend: backend, logger: logger}
}

// StartNewSession establishes a fresh backend session. On success the
// backend's greeting (if any) becomes the first transcript entry.
func (s *Session) StartNewSession(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateSessionStarting || s.state == StateAwaitingReply {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	s.state = StateSessionStarting
	s.lastErr = ""
	s.messages = nil
	s.mu.Unlock()

	resp, err := s.backend.StartSession(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.lastErr = api.Advisory(err)
		return fmt.Errorf("start session: %w", err)
	}

	s.state = StateIdle
	s.snapshot = domain.SessionSnapshot{SessionID: resp.SessionID}
	if resp.InitialMessage != "" {
		s.appendLocked(domain.RoleBot, resp.InitialMessage, resp.InitialActions)
	}
	return nil
}

// SendMessage submits one turn. With no established session the request
// goes out without a session id and the backend-assigned one is adopted
// from the reply: first contact establishes the session. A non-blank text
// is appended to the transcript optimistically, before the network call,
// and stays there even if the call fails: it was genuinely sent.
func (s *Session) SendMessage(ctx context.Context, text string, formData, actionData map[string]any) error {
	s.mu.Lock()
	if s.state == StateSessionStarting || s.state == StateAwaitingReply {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	if strings.TrimSpace(text) != "" {
		s.appendLocked(domain.RoleUser, text, nil)
	}
	s.state = StateAwaitingReply
	s.lastErr = ""

	req := &api.TurnRequest{
		SessionID:  s.snapshot.SessionID,
		Message:    text,
		FormData:   formData,
		ActionData: actionData,
	}
	if req.Message == "" {
		req.Message = "Form submitted"
	}
	s.mu.Unlock()

	resp, err := s.backend.SendTurn(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateError
		s.lastErr = api.Advisory(err)
		return fmt.Errorf("send turn: %w", err)
	}

	parsed := parser.ParseResponse(resp.Message)
	s.appendLocked(domain.RoleBot, parsed.Text, resp.Actions)

	// The snapshot is replaced wholesale, never merged. The session id is
	// adopted from the first reply and immutable afterwards.
	sessionID := s.snapshot.SessionID
	if sessionID == "" {
		sessionID = resp.SessionID
	}
	s.snapshot = domain.SessionSnapshot{
		SessionID:      sessionID,
		CurrentState:   resp.CurrentState,
		DataCollection: resp.DataCollection,
	}
	s.state = StateIdle
	return nil
}

// SubmitAction converts a user action event into its outbound turn and
// sends it.
func (s *Session) SubmitAction(ctx context.Context, event map[string]any) error {
	turn := action.Dispatch(event)
	return s.SendMessage(ctx, turn.Text, turn.FormData, turn.ActionData)
}

// ClearError returns an errored session to idle without touching the
// transcript or session id.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateError {
		s.state = StateIdle
		s.lastErr = ""
	}
}

// ResetChat discards the conversation. The backend is notified on a best-
// effort basis; local state is cleared regardless of the outcome.
func (s *Session) ResetChat(ctx context.Context) {
	s.mu.Lock()
	sessionID := s.snapshot.SessionID
	s.mu.Unlock()

	if sessionID != "" {
		if err := s.backend.ResetSession(ctx, sessionID); err != nil {
			s.logger.Warn("failed to notify backend of session reset",
				"session_id", sessionID, "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.lastErr = ""
	s.messages = nil
	s.snapshot = domain.SessionSnapshot{}
}

// State returns the controller state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the user-facing advisory for the last transport error, or
// empty when there is none.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SessionID returns the backend-assigned session id, or empty before
// first contact.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.SessionID
}

// Snapshot returns the latest backend session snapshot.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// appendLocked appends a transcript entry. Ids combine a timestamp with a
// monotonic counter so rapid sends within the same instant cannot collide.
func (s *Session) appendLocked(role domain.MessageRole, text string, actions []action.Action) {
	s.msgSeq++
	now := time.Now()
	s.messages = append(s.messages, domain.Message{
		ID:        fmt.Sprintf("msg_%d_%d", now.UnixNano(), s.msgSeq),
		Role:      role,
		Text:      text,
		CreatedAt: now,
		Actions:   actions,
	})
}
