// Package api implements the HTTP client for the conversational-agent
// backend. The backend is a black box that returns raw reply text plus
// typed actions and session metadata; this package only speaks its wire
// contract and maps transport failures onto user-facing advisories.
package api

import (
	"github.com/etouchhq/insure-chat/internal/action"
	"github.com/etouchhq/insure-chat/internal/domain"
)

// StartSessionResponse is returned when a new conversation is opened.
type StartSessionResponse struct {
	SessionID      string          `json:"session_id"`
	InitialMessage string          `json:"initial_message,omitempty"`
	InitialActions []action.Action `json:"initial_actions,omitempty"`
}

// TurnRequest carries one user turn to the backend.
type TurnRequest struct {
	SessionID      string         `json:"session_id,omitempty"`
	Message        string         `json:"message"`
	FormData       map[string]any `json:"form_data,omitempty"`
	ActionData     map[string]any `json:"action_data,omitempty"`
	SelectedAction string         `json:"selected_action,omitempty"`
}

// TurnResponse is the backend's answer to one turn. Message is raw text
// that must go through the response parser before display; Actions arrive
// already typed and are never reparsed.
type TurnResponse struct {
	Message        string                `json:"message"`
	SessionID      string                `json:"session_id"`
	CurrentState   string                `json:"current_state"`
	Actions        []action.Action       `json:"actions"`
	DataCollection domain.DataCollection `json:"data_collection"`
	Metadata       map[string]any        `json:"metadata,omitempty"`
	Timestamp      string                `json:"timestamp"`
}

// SyncFormDataRequest pushes the locally collected form sections.
type SyncFormDataRequest struct {
	SessionID string       `json:"session_id"`
	FormData  SyncFormData `json:"form_data"`
}

// SyncFormData is the subset of form state the backend reconciles.
type SyncFormData struct {
	PersonalDetails domain.PersonalDetails `json:"personalDetails"`
	QuoteDetails    domain.QuoteDetails    `json:"quoteDetails"`
	PaymentDetails  domain.PaymentDetails  `json:"paymentDetails"`
}

// SyncFormDataResponse acknowledges a sync. When the backend chooses to
// respond with updated completion data, it is authoritative.
type SyncFormDataResponse struct {
	Success     bool `json:"success"`
	UpdatedData *struct {
		FormCompletion *domain.FormCompletion `json:"form_completion,omitempty"`
	} `json:"updated_data,omitempty"`
}

// SessionDataResponse is the authoritative pull of a session's form state.
type SessionDataResponse struct {
	Success      bool   `json:"success"`
	CurrentState string `json:"current_state"`
	FormData     *struct {
		PersonalDetails *domain.PersonalDetails `json:"personalDetails,omitempty"`
		QuoteDetails    *domain.QuoteDetails    `json:"quoteDetails,omitempty"`
		PaymentDetails  *domain.PaymentDetails  `json:"paymentDetails,omitempty"`
		FormCompletion  *domain.FormCompletion  `json:"formCompletion,omitempty"`
	} `json:"form_data,omitempty"`
}

// UploadResponse is returned after a document upload.
type UploadResponse struct {
	FilePath string `json:"file_path"`
}

// HealthResponse reports backend component health.
type HealthResponse struct {
	Status        string `json:"status"`
	ChatService   string `json:"chat_service"`
	OllamaService string `json:"ollama_service"`
}

// HistoryResponse is the stored transcript of a session.
type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	History   []HistoryEntry `json:"history"`
}

// HistoryEntry is one stored turn.
type HistoryEntry struct {
	Role      string `json:"role"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}
