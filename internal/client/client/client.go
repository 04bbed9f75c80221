package client

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/edachat/internal/client/models"
)

// Client is the backend API consumed by the state store and the CLI.
type Client interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, username, password string) (*models.StatusMessage, error)
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	EnsureValidToken(ctx context.Context) (string, error)

	Rooms(ctx context.Context) ([]models.Room, error)
	CreateRoom(ctx context.Context, title string) (*models.Room, error)
	Room(ctx context.Context, id string) (*models.RoomDetail, error)
	UpdateRoom(ctx context.Context, id, title string) error
	DeleteRoom(ctx context.Context, id string) error
	RoomMessages(ctx context.Context, id string) ([]models.Message, error)
	ClearRoomMessages(ctx context.Context, id string) (*models.MessagesCleared, error)
	SendMessage(ctx context.Context, roomID, message string) (*models.ChatReply, error)

	EDASummary(ctx context.Context) (json.RawMessage, error)
	Breakdown(ctx context.Context, dimension string, topN int) (json.RawMessage, error)
	TimeSeries(ctx context.Context, groupBy string) (json.RawMessage, error)
	DetectAnomalies(ctx context.Context, method string, params map[string]string) (*models.Analysis, error)
	Chart(ctx context.Context, kind ChartKind, opts ChartOptions) (*models.Chart, error)
	Health(ctx context.Context) (*models.Health, error)
}

var _ Client = (*HTTPClient)(nil)
