package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/etouchhq/insure-chat/internal/api"
	"github.com/etouchhq/insure-chat/internal/domain"
)

// fakeBackend scripts backend answers and records what was sent.
type fakeBackend struct {
	startResp *api.StartSessionResponse
	startErr  error
	turnResp  *api.TurnResponse
	turnErr   error
	resetErr  error

	startCalls int
	resetCalls int
	sentTurns  []*api.TurnRequest
}

func (f *fakeBackend) StartSession(_ context.Context) (*api.StartSessionResponse, error) {
	f.startCalls++
	return f.startResp, f.startErr
}

func (f *fakeBackend) SendTurn(_ context.Context, req *api.TurnRequest) (*api.TurnResponse, error) {
	f.sentTurns = append(f.sentTurns, req)
	return f.turnResp, f.turnErr
}

func (f *fakeBackend) ResetSession(_ context.Context, _ string) error {
	f.resetCalls++
	return f.resetErr
}

func turnResp(sessionID, state, message string) *api.TurnResponse {
	return &api.TurnResponse{
		Message:      message,
		SessionID:    sessionID,
		CurrentState: state,
		DataCollection: domain.DataCollection{
			Missing:           []string{"email"},
			NextRequiredField: "email",
		},
	}
}

func TestStartNewSession_GreetingBecomesFirstMessage(t *testing.T) {
	backend := &fakeBackend{
		startResp: &api.StartSessionResponse{
			SessionID:      "sess-1",
			InitialMessage: "Hello! Let's get you covered.",
		},
	}
	s := NewSession(backend, nil)

	if err := s.StartNewSession(context.Background()); err != nil {
		t.Fatalf("StartNewSession: %v", err)
	}
	if s.SessionID() != "sess-1" {
		t.Errorf("SessionID = %q", s.SessionID())
	}
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != domain.RoleBot {
		t.Fatalf("messages = %+v, want single bot greeting", msgs)
	}
	if msgs[0].Text != "Hello! Let's get you covered." {
		t.Errorf("greeting = %q", msgs[0].Text)
	}
	if s.State() != StateIdle {
		t.Errorf("state = %v, want idle", s.State())
	}
}

func TestSendMessage_FirstContactEstablishesSession(t *testing.T) {
	backend := &fakeBackend{
		turnResp: turnResp("sess-1", "onboarding", "Hello! How can I help?"),
	}
	s := NewSession(backend, nil)

	if err := s.SendMessage(context.Background(), "hi", nil, nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if backend.startCalls != 0 {
		t.Errorf("startCalls = %d, want the turn itself to open the session", backend.startCalls)
	}
	if len(backend.sentTurns) != 1 || backend.sentTurns[0].SessionID != "" {
		t.Fatalf("sentTurns = %+v, want one turn without a session id", backend.sentTurns)
	}
	if s.SessionID() != "sess-1" {
		t.Errorf("SessionID = %q, want adopted sess-1", s.SessionID())
	}

	// Exactly one user and one bot message.
	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Role != domain.RoleUser || msgs[1].Role != domain.RoleBot {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestSendMessage_RoundTrip(t *testing.T) {
	backend := &fakeBackend{
		startResp: &api.StartSessionResponse{SessionID: "sess-1"},
		turnResp:  turnResp("sess-1", "quote_generation", `{"reply": "Here are your quotes."}`),
	}
	s := NewSession(backend, nil)
	if err := s.StartNewSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.SendMessage(context.Background(), "show me quotes", nil, nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want user + bot", len(msgs))
	}
	if msgs[0].Role != domain.RoleUser || msgs[0].Text != "show me quotes" {
		t.Errorf("user message = %+v", msgs[0])
	}
	// Raw reply goes through the parser before display.
	if msgs[1].Role != domain.RoleBot || msgs[1].Text != "Here are your quotes." {
		t.Errorf("bot message = %+v", msgs[1])
	}

	snap := s.Snapshot()
	if snap.CurrentState != "quote_generation" {
		t.Errorf("CurrentState = %q", snap.CurrentState)
	}
	if snap.DataCollection.NextRequiredField != "email" {
		t.Errorf("snapshot not replaced wholesale: %+v", snap.DataCollection)
	}
}

func TestSendMessage_EmptyTextUsesPlaceholderWire(t *testing.T) {
	backend := &fakeBackend{
		startResp: &api.StartSessionResponse{SessionID: "sess-1"},
		turnResp:  turnResp("sess-1", "onboarding", "Thanks."),
	}
	s := NewSession(backend, nil)
	if err := s.StartNewSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	form := map[string]any{"fullName": "Asha Rao"}
	if err := s.SendMessage(context.Background(), "", form, nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	sent := backend.sentTurns[0]
	if sent.Message != "Form submitted" {
		t.Errorf("wire message = %q, want placeholder", sent.Message)
	}
	if sent.FormData["fullName"] != "Asha Rao" {
		t.Errorf("form data lost: %v", sent.FormData)
	}
	// Blank text must not appear in the transcript.
	for _, m := range s.Messages() {
		if m.Role == domain.RoleUser {
			t.Errorf("unexpected user transcript entry: %+v", m)
		}
	}
}

func TestSendMessage_FailureKeepsOptimisticMessage(t *testing.T) {
	backend := &fakeBackend{
		startResp: &api.StartSessionResponse{SessionID: "sess-1"},
		turnErr:   &api.HTTPError{Status: 503, Body: "down"},
	}
	s := NewSession(backend, nil)
	if err := s.StartNewSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := s.SendMessage(context.Background(), "hello?", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if s.State() != StateError {
		t.Errorf("state = %v, want error", s.State())
	}
	if !strings.Contains(s.Err(), "temporarily unavailable") {
		t.Errorf("advisory = %q", s.Err())
	}

	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Text != "hello?" {
		t.Fatalf("optimistic user message must survive the failure, got %+v", msgs)
	}

	// ClearError returns to idle without touching the transcript.
	s.ClearError()
	if s.State() != StateIdle || s.Err() != "" {
		t.Errorf("ClearError left state=%v err=%q", s.State(), s.Err())
	}
	if len(s.Messages()) != 1 {
		t.Error("ClearError must not touch the transcript")
	}
}

func TestSendMessage_RejectsConcurrentTurn(t *testing.T) {
	release := make(chan struct{})
	backend := &blockingBackend{release: release, started: make(chan struct{})}
	s := NewSession(backend, nil)

	done := make(chan error, 1)
	go func() { done <- s.StartNewSession(context.Background()) }()
	<-backend.started

	if err := s.SendMessage(context.Background(), "too soon", nil, nil); !errors.Is(err, ErrTurnInFlight) {
		t.Errorf("err = %v, want ErrTurnInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("StartNewSession: %v", err)
	}
}

// blockingBackend parks StartSession until released, to hold the session
// in its starting state.
type blockingBackend struct {
	release chan struct{}
	started chan struct{}
}

func (b *blockingBackend) StartSession(_ context.Context) (*api.StartSessionResponse, error) {
	close(b.started)
	<-b.release
	return &api.StartSessionResponse{SessionID: "sess-1"}, nil
}

func (b *blockingBackend) SendTurn(_ context.Context, _ *api.TurnRequest) (*api.TurnResponse, error) {
	return nil, errors.New("unexpected")
}

func (b *blockingBackend) ResetSession(_ context.Context, _ string) error { return nil }

func TestResetChat_ResendWorksAfterReset(t *testing.T) {
	backend := &fakeBackend{
		startResp: &api.StartSessionResponse{SessionID: "sess-1"},
		turnResp:  turnResp("sess-2", "onboarding", "Welcome back."),
	}
	s := NewSession(backend, nil)
	if err := s.StartNewSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.ResetChat(context.Background())
	if backend.resetCalls != 1 {
		t.Errorf("resetCalls = %d, want 1", backend.resetCalls)
	}
	if s.SessionID() != "" || len(s.Messages()) != 0 {
		t.Errorf("reset left state behind: id=%q msgs=%d", s.SessionID(), len(s.Messages()))
	}

	// A form payload after reset goes straight to the turn endpoint and
	// adopts the returned session id.
	form := map[string]any{"fullName": "Asha Rao"}
	if err := s.SendMessage(context.Background(), "", form, nil); err != nil {
		t.Fatalf("SendMessage after reset: %v", err)
	}
	if s.SessionID() != "sess-2" {
		t.Errorf("SessionID = %q, want adopted sess-2", s.SessionID())
	}
}

func TestResetChat_BackendFailureStillClearsLocally(t *testing.T) {
	backend := &fakeBackend{
		startResp: &api.StartSessionResponse{SessionID: "sess-1"},
		resetErr:  errors.New("backend down"),
	}
	s := NewSession(backend, nil)
	if err := s.StartNewSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.ResetChat(context.Background())
	if s.SessionID() != "" || s.State() != StateIdle {
		t.Errorf("local clear must not depend on backend: id=%q state=%v", s.SessionID(), s.State())
	}
}

func TestSubmitAction_DispatchesEvent(t *testing.T) {
	backend := &fakeBackend{
		startResp: &api.StartSessionResponse{SessionID: "sess-1"},
		turnResp:  turnResp("sess-1", "payment_initiated", "Taking you to payment."),
	}
	s := NewSession(backend, nil)
	if err := s.StartNewSession(context.Background()); err != nil {
		t.Fatal(err)
	}

	event := map[string]any{"action": "select_variant", "variant": "Life Shield Plus"}
	if err := s.SubmitAction(context.Background(), event); err != nil {
		t.Fatalf("SubmitAction: %v", err)
	}

	sent := backend.sentTurns[0]
	if sent.Message != "I'd like to select the Life Shield Plus plan" {
		t.Errorf("wire message = %q", sent.Message)
	}
	if sent.ActionData["variant"] != "Life Shield Plus" {
		t.Errorf("action data = %v", sent.ActionData)
	}
}

func TestMessageIDsAreUnique(t *testing.T) {
	backend := &fakeBackend{
		startResp: &api.StartSessionResponse{SessionID: "sess-1"},
		turnResp:  turnResp("sess-1", "onboarding", "ok"),
	}
	s := NewSession(backend, nil)
	if err := s.StartNewSession(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := s.SendMessage(context.Background(), fmt.Sprintf("msg %d", i), nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	seen := make(map[string]bool)
	for _, m := range s.Messages() {
		if seen[m.ID] {
			t.Fatalf("duplicate message id %q", m.ID)
		}
		seen[m.ID] = true
	}
}
