package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/edachat/internal/client/models"
)

func roomPath(id string) string {
	return "/rooms/" + url.PathEscape(id)
}

func (c *HTTPClient) Rooms(ctx context.Context) ([]models.Room, error) {
	var resp models.RoomList
	if err := c.do(ctx, call{method: http.MethodGet, path: "/rooms", out: &resp}); err != nil {
		return nil, err
	}
	if resp.Rooms == nil {
		return []models.Room{}, nil
	}
	return resp.Rooms, nil
}

// CreateRoom creates a room titled title, or DefaultRoomTitle when empty.
// The returned room is nil if the backend did not echo it.
func (c *HTTPClient) CreateRoom(ctx context.Context, title string) (*models.Room, error) {
	if title == "" {
		title = models.DefaultRoomTitle
	}
	var resp models.RoomCreated
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/rooms",
		body:   map[string]string{"title": title},
		out:    &resp,
	})
	if err != nil {
		return nil, err
	}
	return resp.Room, nil
}

func (c *HTTPClient) Room(ctx context.Context, id string) (*models.RoomDetail, error) {
	var resp models.RoomDetail
	if err := c.do(ctx, call{method: http.MethodGet, path: roomPath(id), out: &resp}); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateRoom(ctx context.Context, id, title string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   roomPath(id),
		body:   map[string]string{"title": title},
	})
}

func (c *HTTPClient) DeleteRoom(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: roomPath(id)})
}

func (c *HTTPClient) RoomMessages(ctx context.Context, id string) ([]models.Message, error) {
	var resp models.MessageList
	if err := c.do(ctx, call{method: http.MethodGet, path: roomPath(id) + "/messages", out: &resp}); err != nil {
		return nil, err
	}
	if resp.Messages == nil {
		return []models.Message{}, nil
	}
	return resp.Messages, nil
}

func (c *HTTPClient) ClearRoomMessages(ctx context.Context, id string) (*models.MessagesCleared, error) {
	var resp models.MessagesCleared
	if err := c.do(ctx, call{method: http.MethodDelete, path: roomPath(id) + "/messages", out: &resp}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessage posts a chat message. The backend stores the user message and
// its reply; the reply text is also returned here.
func (c *HTTPClient) SendMessage(ctx context.Context, roomID, message string) (*models.ChatReply, error) {
	var resp models.ChatReply
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/chat/" + url.PathEscape(roomID),
		body:   map[string]string{"message": message},
		out:    &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
