// Package models defines the chat rooms, messages and response envelopes
// exchanged with the EDA chat backend.
package models

import "github.com/dmitrijs2005/edachat/internal/timex"

// DefaultRoomTitle is used when a room is created without a title.
const DefaultRoomTitle = "New Chat"

// Room is a conversation owned by the signed-in user.
type Room struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	MessageCount int        `json:"message_count"`
	CreatedAt    timex.Time `json:"created_at"`
	UpdatedAt    timex.Time `json:"updated_at"`
}

// RoomDetail is the body of GET /rooms/{id}. Room is nil when the backend
// does not return one.
type RoomDetail struct {
	Room     *Room     `json:"room"`
	Messages []Message `json:"messages"`
}

type RoomList struct {
	Rooms []Room `json:"rooms"`
}

type RoomCreated struct {
	Message string `json:"message"`
	Room    *Room  `json:"room"`
}

type MessageList struct {
	Messages []Message `json:"messages"`
}

// MessagesCleared is the body of DELETE /rooms/{id}/messages.
type MessagesCleared struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}
