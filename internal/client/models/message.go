package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/edachat/internal/timex"
)

type MessageType string

const (
	MessageUser  MessageType = "user"
	MessageBot   MessageType = "bot"
	MessageError MessageType = "error"
)

// TempIDPrefix marks ids generated on the client for messages the server
// has not confirmed yet.
const TempIDPrefix = "temp-"

// Message is one entry of a room's conversation. ChartData and Summary are
// passed through untouched for the renderer.
type Message struct {
	ID        string          `json:"id,omitempty"`
	Type      MessageType     `json:"type"`
	Content   string          `json:"content"`
	Timestamp timex.Time      `json:"timestamp"`
	Intent    string          `json:"intent,omitempty"`
	Query     string          `json:"query,omitempty"`
	ChartData json.RawMessage `json:"chart_data,omitempty"`
	Summary   json.RawMessage `json:"summary,omitempty"`
}

// IsTemporary reports whether m is an unconfirmed optimistic message.
func (m Message) IsTemporary() bool {
	return strings.HasPrefix(m.ID, TempIDPrefix)
}

func (m Message) HasChart() bool {
	return len(m.ChartData) > 0 && string(m.ChartData) != "null"
}

// NewPendingUserMessage builds the optimistic copy of a message the user
// is about to send.
func NewPendingUserMessage(content string, now time.Time) Message {
	return Message{
		ID:        TempIDPrefix + uuid.NewString(),
		Type:      MessageUser,
		Content:   content,
		Timestamp: timex.NewTime(now),
	}
}

// NewErrorMessage builds the synthetic entry shown in place of a message
// that failed to send.
func NewErrorMessage(content string, now time.Time) Message {
	return Message{
		Type:      MessageError,
		Content:   content,
		Timestamp: timex.NewTime(now),
	}
}
