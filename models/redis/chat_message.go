package redis

import "time"

// ChatMessage is one entry of a lobby's chat history list
type ChatMessage struct {
	LobbyID   string    `json:"lobby_id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
