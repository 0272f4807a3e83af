package socketio_utils

import (
	"log"

	"Showdown/models/postgres"
	"Showdown/services/lobby"
	socketio_types "Showdown/services/socket_io/types"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// EmitLobbyError reports a failed lobby operation back to the socket that
// asked for it. The connection itself always survives: a broken join must
// never look like "still loading" on the client.
func EmitLobbyError(client *socket.Socket, err error) {
	client.Emit("lobbyError", gin.H{
		"kind":  lobby.ErrorKind(err),
		"error": err.Error(),
	})
}

// BroadcastRoster pushes the {username, isHost} player list to everybody in
// the lobby's room
func BroadcastRoster(sio *socketio_types.SocketServer, l *postgres.GameLobby) {
	players, err := l.PlayerList()
	if err != nil {
		log.Printf("[ROSTER-ERROR] Lobby %s has an unreadable player list: %v", l.ID, err)
		return
	}

	roster := make([]gin.H, 0, len(players))
	for _, p := range players {
		roster = append(roster, gin.H{
			"username": p.Username,
			"isHost":   p.UserID == l.HostID,
		})
	}

	sio.Sio_server.To(socket.Room(l.ID)).Emit("updatePlayerList", gin.H{"players": roster})
}

// BroadcastConnectionCount pushes the live socket count of a room to its
// members
func BroadcastConnectionCount(sio *socketio_types.SocketServer, lobbyID string, count int) {
	sio.Sio_server.To(socket.Room(lobbyID)).Emit("connectionUpdate", gin.H{"count": count})
}

// BroadcastDirectory republishes the public lobby listing to every connected
// client (used after a visibility toggle; the 5s client poll covers the rest)
func BroadcastDirectory(sio *socketio_types.SocketServer, store *lobby.Store) {
	summaries, err := store.AvailableLobbySummaries()
	if err != nil {
		log.Printf("[DIRECTORY-ERROR] Could not build directory broadcast: %v", err)
		return
	}
	sio.Sio_server.Emit("availableLobbies", summaries)
}
