package postgres_test

import (
	"testing"
	"time"

	lobby_constants "Showdown/constants/lobby"
	"Showdown/models/postgres"

	"github.com/stretchr/testify/assert"
)

func makeLobby(t *testing.T, playerCount, maxPlayers int) *postgres.GameLobby {
	l := &postgres.GameLobby{
		ID:        "lobby1",
		Name:      "Friday Game",
		Code:      "4242",
		URLID:     "abcdefgh12345678",
		HostID:    "user-0",
		Status:    lobby_constants.StatusWaiting,
		ExpiresAt: time.Now().Add(lobby_constants.LobbyTTL),
	}
	assert.NoError(t, l.SetSettings(postgres.GameSettings{MaxPlayers: maxPlayers}))

	players := make([]postgres.LobbyPlayer, 0, playerCount)
	for i := 0; i < playerCount; i++ {
		players = append(players, postgres.LobbyPlayer{
			UserID:   "user-" + string(rune('0'+i)),
			Username: "player" + string(rune('0'+i)),
			Status:   lobby_constants.PlayerStatusWaiting,
			JoinedAt: time.Now(),
		})
	}
	assert.NoError(t, l.SetPlayerList(players))
	return l
}

func TestPlayerListRoundTrip(t *testing.T) {
	l := makeLobby(t, 3, 6)

	players, err := l.PlayerList()
	assert.NoError(t, err)
	assert.Len(t, players, 3)
	assert.Equal(t, "user-0", players[0].UserID)
	assert.Equal(t, "player2", players[2].Username)

	assert.Equal(t, 3, l.PlayerCount())
	assert.True(t, l.HasPlayer("user-1"))
	assert.False(t, l.HasPlayer("someone-else"))
}

func TestSettingsDefaults(t *testing.T) {
	// empty jsonb falls back to the default capacity
	l := &postgres.GameLobby{}
	assert.Equal(t, lobby_constants.DefaultMaxPlayers, l.Settings().MaxPlayers)

	// zero maxPlayers in stored settings is also treated as default
	assert.NoError(t, l.SetSettings(postgres.GameSettings{MaxPlayers: 0}))
	assert.Equal(t, lobby_constants.DefaultMaxPlayers, l.Settings().MaxPlayers)

	assert.NoError(t, l.SetSettings(postgres.GameSettings{MaxPlayers: 2}))
	assert.Equal(t, 2, l.Settings().MaxPlayers)
}

func TestIsJoinable(t *testing.T) {
	l := makeLobby(t, 1, 2)
	assert.True(t, l.IsJoinable())

	// full lobby is not joinable
	l = makeLobby(t, 2, 2)
	assert.False(t, l.IsJoinable())

	// only waiting lobbies are joinable
	l = makeLobby(t, 1, 6)
	l.Status = lobby_constants.StatusInProgress
	assert.False(t, l.IsJoinable())
}

func TestIsHostAndExpiry(t *testing.T) {
	l := makeLobby(t, 1, 6)
	assert.True(t, l.IsHost("user-0"))
	assert.False(t, l.IsHost("user-1"))

	assert.False(t, l.IsExpired(time.Now()))
	assert.True(t, l.IsExpired(time.Now().Add(13*time.Hour)))
}
