// Package common contains shared constants and sentinel errors used across
// edachat client components.
package common

// Durable storage keys. The values match the keys the web frontend kept in
// browser storage so a store can be migrated as is.
const (
	AccessTokenKey   = "access_token"
	RefreshTokenKey  = "refresh_token"
	CurrentRoomIDKey = "current_room_id"

	// ChatHistoryKey is no longer written; it is purged on logout.
	ChatHistoryKey = "chat_history"
)

// AuthorizationHeader and BearerPrefix form the outbound credential header.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)
