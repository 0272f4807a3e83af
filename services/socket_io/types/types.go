package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// ConnInfo is the ephemeral identity behind one socket: which user it is and
// which lobby it joined. Needed to resolve a disconnect back to a store
// mutation once the socket is already gone.
type ConnInfo struct {
	UserID   string
	Username string
	LobbyID  string
}

// SocketServer holds the socket.io server plus the process-local connection
// registry: username -> socket, socket id -> identity, lobby id -> live
// socket set. Always injected, never a package-level singleton, so a test can
// own one and a future multi-instance deployment can swap the maps for a
// shared presence layer.
type SocketServer struct {
	Sio_server *socket.Server

	// Map to track username -> socket connections
	UserConnections map[string]*socket.Socket
	// Map to track socket id -> (user, lobby)
	SocketIdentities map[string]ConnInfo
	// Map to track lobby id -> set of live socket ids
	LobbyConnections map[string]map[string]bool

	mutex sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		UserConnections:  make(map[string]*socket.Socket),
		SocketIdentities: make(map[string]ConnInfo),
		LobbyConnections: make(map[string]map[string]bool),
	}
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(username string, sock *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[username] = sock
}

func (s *SocketServer) RemoveConnection(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, username)
}

func (s *SocketServer) GetConnection(username string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	sock, exists := s.UserConnections[username]
	return sock, exists
}

// RegisterConnection adds a socket to a lobby's live set, creating the set on
// first join
func (s *SocketServer) RegisterConnection(lobbyID, socketID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	set, ok := s.LobbyConnections[lobbyID]
	if !ok {
		set = make(map[string]bool)
		s.LobbyConnections[lobbyID] = set
	}
	set[socketID] = true
}

// UnregisterConnection removes a socket from whichever lobby tracks it and
// prunes the set once it empties. Reports the lobby it was in and how many
// sockets remain there.
func (s *SocketServer) UnregisterConnection(socketID string) (lobbyID string, remaining int, found bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, set := range s.LobbyConnections {
		if set[socketID] {
			delete(set, socketID)
			if len(set) == 0 {
				delete(s.LobbyConnections, id)
			}
			return id, len(set), true
		}
	}
	return "", 0, false
}

// MapSocketToUser associates the ephemeral identity needed to resolve a later
// disconnect
func (s *SocketServer) MapSocketToUser(socketID string, info ConnInfo) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.SocketIdentities[socketID] = info
}

// SocketIdentity returns the identity behind a socket without dropping it
func (s *SocketServer) SocketIdentity(socketID string) (ConnInfo, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	info, ok := s.SocketIdentities[socketID]
	return info, ok
}

// LookupAndForget returns the identity behind a socket and drops it. Dropping
// unconditionally is the point: a failed disconnect handler must not leak
// registry entries.
func (s *SocketServer) LookupAndForget(socketID string) (ConnInfo, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	info, ok := s.SocketIdentities[socketID]
	if ok {
		delete(s.SocketIdentities, socketID)
	}
	return info, ok
}

// ConnectionCount reports how many live sockets a lobby's room has
func (s *SocketServer) ConnectionCount(lobbyID string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.LobbyConnections[lobbyID])
}
