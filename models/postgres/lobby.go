package postgres

import (
	"encoding/json"
	"time"

	lobby_constants "Showdown/constants/lobby"

	"gorm.io/datatypes"
)

/*
 * 'GameLobby' is a joinable pre-game waiting room for a 3-5-7 Poker table.
 * Players are stored as an ordered jsonb array inside the row itself, and the
 * 'Version' column is bumped on every write so concurrent mutations can be
 * detected (compare-and-swap in services/lobby).
 */
type GameLobby struct {
	ID   string `gorm:"primaryKey;size:36;not null"`
	Name string `gorm:"size:100;not null"`

	// 4-digit human-entry code and 16-char shareable url id. Only unique among
	// lobbies that are still retrievable, so no DB unique index here: expired
	// rows keep their codes until the sweep deletes them.
	Code  string `gorm:"size:4;not null;index:idx_game_lobbies_code"`
	URLID string `gorm:"column:url_id;size:16;not null;index:idx_game_lobbies_url_id"`

	HostID  string `gorm:"size:36;not null"`
	Status  string `gorm:"size:20;default:'waiting';index:idx_game_lobbies_status"`
	Private bool   `gorm:"default:false"`

	Players      datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	GameSettings datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Version int `gorm:"default:0;not null"`

	LastActivity time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	ExpiresAt    time.Time `gorm:"index:idx_game_lobbies_expires_at"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// LobbyPlayer is one entry of the Players jsonb array. The username is
// denormalized into the entry so roster broadcasts don't need a user lookup.
type LobbyPlayer struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Status   string    `json:"status"` // "waiting" | "ready"
	JoinedAt time.Time `json:"joinedAt"`
}

// GameSettings is the gameSettings jsonb payload. The banker fields are only
// read by the money ledger in game.go.
type GameSettings struct {
	MaxPlayers int    `json:"maxPlayers"`
	HasBanker  bool   `json:"hasBanker"`
	BankerID   string `json:"bankerId,omitempty"`
}

func (l *GameLobby) PlayerList() ([]LobbyPlayer, error) {
	var players []LobbyPlayer
	if len(l.Players) == 0 {
		return players, nil
	}
	if err := json.Unmarshal(l.Players, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (l *GameLobby) SetPlayerList(players []LobbyPlayer) error {
	if players == nil {
		players = []LobbyPlayer{}
	}
	data, err := json.Marshal(players)
	if err != nil {
		return err
	}
	l.Players = datatypes.JSON(data)
	return nil
}

func (l *GameLobby) Settings() GameSettings {
	settings := GameSettings{MaxPlayers: lobby_constants.DefaultMaxPlayers}
	if len(l.GameSettings) > 0 {
		// ignore garbage, fall back to defaults
		_ = json.Unmarshal(l.GameSettings, &settings)
	}
	if settings.MaxPlayers <= 0 {
		settings.MaxPlayers = lobby_constants.DefaultMaxPlayers
	}
	return settings
}

func (l *GameLobby) SetSettings(settings GameSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	l.GameSettings = datatypes.JSON(data)
	return nil
}

func (l *GameLobby) PlayerCount() int {
	players, err := l.PlayerList()
	if err != nil {
		return 0
	}
	return len(players)
}

func (l *GameLobby) HasPlayer(userID string) bool {
	players, err := l.PlayerList()
	if err != nil {
		return false
	}
	for _, p := range players {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (l *GameLobby) IsHost(userID string) bool {
	return l.HostID == userID
}

// IsJoinable tells whether a new player can still enter the lobby
func (l *GameLobby) IsJoinable() bool {
	return l.Status == lobby_constants.StatusWaiting &&
		l.PlayerCount() < l.Settings().MaxPlayers
}

func (l *GameLobby) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
