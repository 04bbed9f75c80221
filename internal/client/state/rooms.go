package state

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/edachat/internal/client/models"
	"github.com/dmitrijs2005/edachat/internal/common"
	"github.com/dmitrijs2005/edachat/internal/timex"
)

const (
	sendFailed = "Failed to send message"

	// messagesPerSend is one user message plus one reply.
	messagesPerSend = 2
)

func (s *Store) LoadRooms(ctx context.Context) ([]models.Room, error) {
	gen := s.generation()
	rooms, err := s.api.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	if !s.apply(gen, func(st *State) { st.Rooms = slices.Clone(rooms) }) {
		return nil, ErrSessionChanged
	}
	return rooms, nil
}

// CreateRoom creates a room and puts it first in the list.
func (s *Store) CreateRoom(ctx context.Context, title string) (*models.Room, error) {
	gen := s.generation()
	room, err := s.api.CreateRoom(ctx, title)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: create response has no room", ErrRoomNotFound)
	}
	if !s.apply(gen, func(st *State) { st.Rooms = append([]models.Room{*room}, st.Rooms...) }) {
		return nil, ErrSessionChanged
	}
	return room, nil
}

// SelectRoom makes id the current room. The room and its messages replace
// the previous ones in a single update, and the choice is persisted.
func (s *Store) SelectRoom(ctx context.Context, id string) (*models.RoomDetail, error) {
	gen := s.generation()
	detail, err := s.api.Room(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Room == nil {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
	}

	ok := s.apply(gen, func(st *State) {
		room := *detail.Room
		st.CurrentRoom = &room
		st.Messages = slices.Clone(detail.Messages)
	})
	if !ok {
		return nil, ErrSessionChanged
	}
	s.persistRoomID(ctx, id)
	return detail, nil
}

func (s *Store) UpdateRoomTitle(ctx context.Context, id, title string) error {
	gen := s.generation()
	if err := s.api.UpdateRoom(ctx, id, title); err != nil {
		return err
	}
	s.apply(gen, func(st *State) {
		for i := range st.Rooms {
			if st.Rooms[i].ID == id {
				st.Rooms[i].Title = title
			}
		}
		if st.CurrentRoom != nil && st.CurrentRoom.ID == id {
			st.CurrentRoom.Title = title
		}
	})
	return nil
}

// DeleteRoom deletes a room. Deleting the current room also clears the
// message list and the persisted selection.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	gen := s.generation()
	if err := s.api.DeleteRoom(ctx, id); err != nil {
		return err
	}

	wasCurrent := false
	s.apply(gen, func(st *State) {
		st.Rooms = slices.DeleteFunc(st.Rooms, func(r models.Room) bool { return r.ID == id })
		if st.CurrentRoom != nil && st.CurrentRoom.ID == id {
			wasCurrent = true
			st.CurrentRoom = nil
			st.Messages = []models.Message{}
		}
	})
	if wasCurrent {
		s.forgetRoomID(ctx)
	}
	return nil
}

// ClearRoomMessages empties a room on the backend and resets its counter.
func (s *Store) ClearRoomMessages(ctx context.Context, id string) error {
	gen := s.generation()
	if _, err := s.api.ClearRoomMessages(ctx, id); err != nil {
		return err
	}
	s.apply(gen, func(st *State) {
		if st.CurrentRoom == nil || st.CurrentRoom.ID == id {
			st.Messages = []models.Message{}
		}
		for i := range st.Rooms {
			if st.Rooms[i].ID == id {
				st.Rooms[i].MessageCount = 0
			}
		}
		if st.CurrentRoom != nil && st.CurrentRoom.ID == id {
			st.CurrentRoom.MessageCount = 0
		}
	})
	return nil
}

// SendMessage sends text to roomID in two phases. The user message is shown
// at once under a temporary id. After the backend accepts it the room is
// reloaded, replacing the temporary entry with the stored conversation. If
// anything fails only this send's temporary entry is removed and an error
// entry added; other sends still in flight keep theirs.
func (s *Store) SendMessage(ctx context.Context, roomID, text string) (*models.ChatReply, error) {
	gen := s.generation()
	pending := models.NewPendingUserMessage(text, s.now())
	s.apply(gen, func(st *State) { st.Messages = append(st.Messages, pending) })

	reply, err := s.api.SendMessage(ctx, roomID, text)
	if err == nil {
		_, err = s.SelectRoom(ctx, roomID)
	}

	if err != nil {
		s.apply(gen, func(st *State) {
			st.Messages = slices.DeleteFunc(st.Messages, func(m models.Message) bool { return m.ID == pending.ID })
			st.Messages = append(st.Messages, models.NewErrorMessage("Error: "+failureMessage(err, sendFailed), s.now()))
		})
		return nil, err
	}

	now := timex.NewTime(s.now())
	s.apply(gen, func(st *State) {
		for i := range st.Rooms {
			if st.Rooms[i].ID == roomID {
				st.Rooms[i].MessageCount += messagesPerSend
				st.Rooms[i].UpdatedAt = now
			}
		}
	})
	return reply, nil
}

// InitializeFromStorage reselects the room persisted by an earlier run. A
// room that cannot be loaded any more is forgotten without error.
func (s *Store) InitializeFromStorage(ctx context.Context) error {
	raw, err := s.prefs.Get(ctx, common.CurrentRoomIDKey)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	id := string(raw)
	if _, err := s.SelectRoom(ctx, id); err != nil {
		s.log.Debug(ctx, "saved room not restored", "room_id", id, "error", err)
		s.forgetRoomID(ctx)
	}
	return nil
}
