package redis

type PlayerStatus string

const (
	StatusOnline  PlayerStatus = "online"
	StatusOffline PlayerStatus = "offline"
)

// PlayerPresence tracks which socket a user is currently connected through.
// Purely informational: the authoritative connection registry lives in
// process memory (services/socket_io/types).
type PlayerPresence struct {
	UserID   string       `json:"user_id"`
	Username string       `json:"username"`
	LobbyID  string       `json:"lobby_id"`
	SocketID string       `json:"socket_id"`
	Status   PlayerStatus `json:"status"`
	LastPing int64        `json:"last_ping"` // Unix timestamp
}
