// Package domain contains core domain types for the insure-chat client.
package domain

import (
	"time"

	"github.com/etouchhq/insure-chat/internal/action"
)

// MessageRole describes who authored a chat message.
type MessageRole string

const (
	// RoleUser marks a message typed (or dispatched) by the customer.
	RoleUser MessageRole = "user"
	// RoleBot marks a reply from the conversational agent.
	RoleBot MessageRole = "bot"
)

// Message is a single entry in the conversation transcript. Messages are
// immutable once appended and the transcript is append-only for the life
// of a session.
type Message struct {
	ID        string          `json:"id"`
	Role      MessageRole     `json:"role"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"created_at"`
	Actions   []action.Action `json:"actions,omitempty"`
}

// DataCollection is the backend's progressive snapshot of which customer
// fields have been gathered so far.
type DataCollection struct {
	Collected            []string `json:"collected"`
	Missing              []string `json:"missing"`
	CompletionPercentage float64  `json:"completion_percentage"`
	NextRequiredField    string   `json:"next_required_field,omitempty"`
}

// SessionSnapshot mirrors the authoritative backend session. CurrentState
// and DataCollection are replaced wholesale on every successful turn; the
// session id is assigned once by the backend and never changes afterwards.
type SessionSnapshot struct {
	SessionID      string         `json:"session_id,omitempty"`
	CurrentState   string         `json:"current_state"`
	DataCollection DataCollection `json:"data_collection"`
}

// SessionInfo is the backend's administrative view of a session.
type SessionInfo struct {
	SessionID             string   `json:"session_id"`
	CurrentState          string   `json:"current_state"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`
	CustomerDataCollected []string `json:"customer_data_collected"`
	ConversationTurns     int      `json:"conversation_turns"`
	SelectedVariant       string   `json:"selected_variant,omitempty"`
}
