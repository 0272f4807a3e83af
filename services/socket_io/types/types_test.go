package socketio_types

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndUnregisterConnection(t *testing.T) {
	s := NewSocketServer()

	s.RegisterConnection("lobby1", "sock1")
	s.RegisterConnection("lobby1", "sock2")
	s.RegisterConnection("lobby2", "sock3")

	assert.Equal(t, 2, s.ConnectionCount("lobby1"))
	assert.Equal(t, 1, s.ConnectionCount("lobby2"))

	lobbyID, remaining, found := s.UnregisterConnection("sock1")
	assert.True(t, found)
	assert.Equal(t, "lobby1", lobbyID)
	assert.Equal(t, 1, remaining)

	// unknown socket is a no-op, not an error
	_, _, found = s.UnregisterConnection("sock1")
	assert.False(t, found)

	// emptying a lobby prunes its tracking entry entirely
	_, remaining, found = s.UnregisterConnection("sock2")
	assert.True(t, found)
	assert.Equal(t, 0, remaining)
	_, ok := s.LobbyConnections["lobby1"]
	assert.False(t, ok)
}

func TestSocketIdentityLifecycle(t *testing.T) {
	s := NewSocketServer()

	info := ConnInfo{UserID: "u1", Username: "alice", LobbyID: "lobby1"}
	s.MapSocketToUser("sock1", info)

	got, ok := s.SocketIdentity("sock1")
	assert.True(t, ok)
	assert.Equal(t, info, got)

	// LookupAndForget returns the identity exactly once
	got, ok = s.LookupAndForget("sock1")
	assert.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	_, ok = s.LookupAndForget("sock1")
	assert.False(t, ok)
	_, ok = s.SocketIdentity("sock1")
	assert.False(t, ok)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	s := NewSocketServer()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sockID := fmt.Sprintf("sock%d", i)
			s.RegisterConnection("lobby1", sockID)
			s.MapSocketToUser(sockID, ConnInfo{UserID: sockID, Username: sockID, LobbyID: "lobby1"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.ConnectionCount("lobby1"))

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sockID := fmt.Sprintf("sock%d", i)
			s.UnregisterConnection(sockID)
			s.LookupAndForget(sockID)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, s.ConnectionCount("lobby1"))
	assert.Empty(t, s.SocketIdentities)
}
