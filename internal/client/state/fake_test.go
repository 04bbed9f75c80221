package state

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/edachat/internal/client/client"
	"github.com/dmitrijs2005/edachat/internal/client/models"
)

// fakeAPI is an in-memory backend. Rooms and messages live in maps and
// individual calls can be made to fail.
type fakeAPI struct {
	mu sync.Mutex

	authenticated bool
	rooms         []models.Room
	messages      map[string][]models.Message

	loginErr  error
	roomsErr  error
	sendErr   error
	roomErr   error
	deleteErr error

	// loginNoTokens makes Login succeed without storing credentials.
	loginNoTokens bool

	// beforeRoom runs inside Room before it answers.
	beforeRoom func()
	// beforeSend runs inside SendMessage before it answers; a non-nil
	// result fails that send.
	beforeSend func(message string) error

	logoutCalls int
	sent        []string
}

var _ client.Client = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{messages: make(map[string][]models.Message)}
}

func (f *fakeAPI) addRoom(r models.Room, msgs ...models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, r)
	f.messages[r.ID] = msgs
}

func (f *fakeAPI) findRoom(id string) (*models.Room, bool) {
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			r := f.rooms[i]
			return &r, true
		}
	}
	return nil, false
}

func notFound(path string) error {
	return &client.RequestError{Method: "GET", Path: path, Status: 404, Message: "Room not found"}
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (*models.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginNoTokens {
		return &models.AuthResponse{}, nil
	}
	f.authenticated = true
	return &models.AuthResponse{AccessToken: "A", RefreshToken: "R"}, nil
}

func (f *fakeAPI) Register(context.Context, string, string) (*models.StatusMessage, error) {
	return &models.StatusMessage{Message: "User created"}, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	f.authenticated = false
	return nil
}

func (f *fakeAPI) IsAuthenticated(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

func (f *fakeAPI) EnsureValidToken(context.Context) (string, error) {
	if !f.IsAuthenticated(context.Background()) {
		return "", client.ErrNoToken
	}
	return "A", nil
}

func (f *fakeAPI) Rooms(context.Context) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roomsErr != nil {
		return nil, f.roomsErr
	}
	return append([]models.Room(nil), f.rooms...), nil
}

func (f *fakeAPI) CreateRoom(_ context.Context, title string) (*models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := models.Room{ID: "new-" + title, Title: title}
	f.rooms = append(f.rooms, r)
	return &r, nil
}

func (f *fakeAPI) Room(_ context.Context, id string) (*models.RoomDetail, error) {
	if f.beforeRoom != nil {
		f.beforeRoom()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roomErr != nil {
		return nil, f.roomErr
	}
	r, ok := f.findRoom(id)
	if !ok {
		return nil, notFound("/rooms/" + id)
	}
	return &models.RoomDetail{Room: r, Messages: append([]models.Message(nil), f.messages[id]...)}, nil
}

func (f *fakeAPI) UpdateRoom(_ context.Context, id, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			f.rooms[i].Title = title
			return nil
		}
	}
	return notFound("/rooms/" + id)
}

func (f *fakeAPI) DeleteRoom(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.rooms {
		if f.rooms[i].ID == id {
			f.rooms = append(f.rooms[:i], f.rooms[i+1:]...)
			delete(f.messages, id)
			return nil
		}
	}
	return notFound("/rooms/" + id)
}

func (f *fakeAPI) RoomMessages(_ context.Context, id string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages[id]...), nil
}

func (f *fakeAPI) ClearRoomMessages(_ context.Context, id string) (*models.MessagesCleared, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.messages[id])
	f.messages[id] = nil
	return &models.MessagesCleared{DeletedCount: n}, nil
}

func (f *fakeAPI) SendMessage(_ context.Context, roomID, message string) (*models.ChatReply, error) {
	if f.beforeSend != nil {
		if err := f.beforeSend(message); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, message)
	f.messages[roomID] = append(f.messages[roomID],
		models.Message{ID: "u" + message, Type: models.MessageUser, Content: message},
		models.Message{ID: "b" + message, Type: models.MessageBot, Content: "reply to " + message},
	)
	return &models.ChatReply{Response: "reply to " + message}, nil
}

func (f *fakeAPI) EDASummary(context.Context) (json.RawMessage, error) { return nil, nil }

func (f *fakeAPI) Breakdown(context.Context, string, int) (json.RawMessage, error) { return nil, nil }

func (f *fakeAPI) TimeSeries(context.Context, string) (json.RawMessage, error) { return nil, nil }

func (f *fakeAPI) DetectAnomalies(context.Context, string, map[string]string) (*models.Analysis, error) {
	return &models.Analysis{}, nil
}

func (f *fakeAPI) Chart(context.Context, client.ChartKind, client.ChartOptions) (*models.Chart, error) {
	return &models.Chart{}, nil
}

func (f *fakeAPI) Health(context.Context) (*models.Health, error) {
	return &models.Health{Status: "healthy"}, nil
}

// fakeCreds tracks whether a token pair is stored.
type fakeCreds struct {
	mu     sync.Mutex
	has    bool
	clears int
}

func (c *fakeCreds) HasAny(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.has, nil
}

func (c *fakeCreds) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.has = false
	c.clears++
	return nil
}
