// Package state holds the observable application state of a signed-in
// session and the operations that keep it consistent with the backend.
//
// Every mutation is applied under one lock and then delivered to
// subscribers as an immutable snapshot, so a reader never sees a room
// without its messages or a half-applied send. Results of requests that
// were started before a logout are dropped.
package state

import (
	"slices"

	"github.com/dmitrijs2005/edachat/internal/client/models"
)

// Tabs known to the front end.
const (
	TabDashboard = "dashboard"
	TabChat      = "chat"
	TabEDA       = "eda"
)

// State is a point-in-time copy of everything a front end renders.
type State struct {
	Authenticated  bool
	Username       string
	Rooms          []models.Room
	CurrentRoom    *models.Room
	Messages       []models.Message
	SidebarVisible bool
	CurrentTab     string
	Loading        bool
	Error          string
}

func initialState() State {
	return State{
		Rooms:      []models.Room{},
		Messages:   []models.Message{},
		CurrentTab: TabDashboard,
	}
}

func (s State) clone() State {
	out := s
	out.Rooms = slices.Clone(s.Rooms)
	out.Messages = slices.Clone(s.Messages)
	if s.CurrentRoom != nil {
		r := *s.CurrentRoom
		out.CurrentRoom = &r
	}
	if out.Rooms == nil {
		out.Rooms = []models.Room{}
	}
	if out.Messages == nil {
		out.Messages = []models.Message{}
	}
	return out
}

// CurrentRoomID is the id of the room being viewed, or "".
func (s State) CurrentRoomID() string {
	if s.CurrentRoom == nil {
		return ""
	}
	return s.CurrentRoom.ID
}

// Room returns the room with id from the room list.
func (s State) Room(id string) (models.Room, bool) {
	i := slices.IndexFunc(s.Rooms, func(r models.Room) bool { return r.ID == id })
	if i < 0 {
		return models.Room{}, false
	}
	return s.Rooms[i], true
}
