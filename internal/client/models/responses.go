package models

import (
	"encoding/json"

	"github.com/dmitrijs2005/edachat/internal/timex"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by /login and /refresh.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// StatusMessage is the generic {"message": ...} acknowledgement.
type StatusMessage struct {
	Message string `json:"message"`
}

// ChatReply is the body of POST /chat/{id}.
type ChatReply struct {
	Response            string          `json:"response"`
	Intents             []string        `json:"intents,omitempty"`
	IndividualResponses json.RawMessage `json:"individual_responses,omitempty"`
}

// Analysis is the envelope of the anomaly endpoints.
type Analysis struct {
	Status     string          `json:"status"`
	Method     string          `json:"method,omitempty"`
	Parameters map[string]any  `json:"parameters,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// Chart is the envelope of the /charts endpoints.
type Chart struct {
	Status      string          `json:"status"`
	Data        json.RawMessage `json:"data,omitempty"`
	SavedToChat bool            `json:"saved_to_chat"`
	Message     string          `json:"message,omitempty"`
}

type Health struct {
	Status    string     `json:"status"`
	Message   string     `json:"message,omitempty"`
	Timestamp timex.Time `json:"timestamp"`
	Uptime    string     `json:"uptime,omitempty"`
}

// ErrorBody is the shape of backend error responses. Either field may be
// set depending on the route.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
