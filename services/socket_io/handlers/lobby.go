package handlers

import (
	"errors"
	"log"
	"time"

	redis_models "Showdown/models/redis"
	"Showdown/services/lobby"
	"Showdown/services/redis"
	socketio_types "Showdown/services/socket_io/types"
	socketio_utils "Showdown/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// lobbyIDFromArgs accepts either the documented {lobbyId: ...} payload or a
// bare string, which is what some older frontend builds still send
func lobbyIDFromArgs(args []interface{}) (string, bool) {
	if len(args) < 1 {
		return "", false
	}
	switch v := args[0].(type) {
	case string:
		return v, v != ""
	case map[string]interface{}:
		id, _ := v["lobbyId"].(string)
		return id, id != ""
	}
	return "", false
}

// HandleJoinLobby enters the user into the lobby (idempotent on membership),
// registers the socket and pushes the refreshed roster + connection count to
// the whole room. A second tab of the same user just re-registers its own
// connection.
func HandleJoinLobby(store *lobby.Store, redisClient *redis.RedisClient, client *socket.Socket,
	sio *socketio_types.SocketServer, userID, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[JOIN] HandleJoinLobby started - User: %s, Args: %v, Socket ID: %s",
			username, args, client.Id())

		lobbyID, ok := lobbyIDFromArgs(args)
		if !ok {
			log.Printf("[JOIN-ERROR] Missing lobby id for user %s", username)
			socketio_utils.EmitLobbyError(client, lobby.ErrLobbyNotFound)
			return
		}

		l, err := store.FindByID(lobbyID)
		if err != nil {
			log.Printf("[JOIN-ERROR] Lobby %s not loadable: %v", lobbyID, err)
			socketio_utils.EmitLobbyError(client, err)
			return
		}

		if !l.HasPlayer(userID) {
			l, err = store.AddPlayer(lobbyID, userID, username)
			if err != nil && !errors.Is(err, lobby.ErrAlreadyMember) {
				// Full lobby, concurrent conflict that never settled, ...
				log.Printf("[JOIN-ERROR] Could not add %s to lobby %s: %v", username, lobbyID, err)
				socketio_utils.EmitLobbyError(client, err)
				return
			}
		}

		if err := store.UpdateActivity(lobbyID); err != nil {
			log.Printf("[JOIN-WARN] Could not bump activity for lobby %s: %v", lobbyID, err)
		}

		socketID := string(client.Id())
		sio.RegisterConnection(lobbyID, socketID)
		sio.MapSocketToUser(socketID, socketio_types.ConnInfo{
			UserID:   userID,
			Username: username,
			LobbyID:  lobbyID,
		})
		client.Join(socket.Room(lobbyID))

		if redisClient != nil {
			err := redisClient.SavePlayerPresence(&redis_models.PlayerPresence{
				UserID:   userID,
				Username: username,
				LobbyID:  lobbyID,
				SocketID: socketID,
				Status:   redis_models.StatusOnline,
				LastPing: time.Now().Unix(),
			})
			if err != nil {
				log.Printf("[JOIN-WARN] Presence write failed for %s: %v", username, err)
			}

			// replay retained chat to the joining tab only
			if history, err := redisClient.GetChatHistory(lobbyID); err == nil && len(history) > 0 {
				client.Emit("chatHistory", history)
			}
		}

		socketio_utils.BroadcastRoster(sio, l)
		socketio_utils.BroadcastConnectionCount(sio, lobbyID, sio.ConnectionCount(lobbyID))

		log.Printf("[JOIN-SUCCESS] User %s joined lobby %s (%d sockets in room)",
			username, lobbyID, sio.ConnectionCount(lobbyID))
	}
}

// HandleDisconnecting resolves the dying socket back to its (user, lobby),
// removes the player, abandons the lobby if that emptied it and rebroadcasts
// roster + connection count. The socket identity is forgotten no matter what
// goes wrong in between, so the registry can't leak.
func HandleDisconnecting(store *lobby.Store, redisClient *redis.RedisClient, client *socket.Socket,
	sio *socketio_types.SocketServer, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		socketID := string(client.Id())
		log.Printf("[DISCONNECT] HandleDisconnecting started - User: %s, Socket ID: %s", username, socketID)

		info, found := sio.LookupAndForget(socketID)
		roomID, remaining, inRoom := sio.UnregisterConnection(socketID)
		sio.RemoveConnection(username)

		if redisClient != nil {
			if err := redisClient.DeletePlayerPresence(username); err != nil {
				log.Printf("[DISCONNECT-WARN] Presence delete failed for %s: %v", username, err)
			}
		}

		if !found {
			// socket never joined a lobby, nothing to mutate
			if inRoom {
				socketio_utils.BroadcastConnectionCount(sio, roomID, remaining)
			}
			log.Printf("[DISCONNECT-DONE] User disconnected without lobby: %s", username)
			return
		}

		removed, l, err := store.RemovePlayer(info.LobbyID, info.UserID)
		if err != nil {
			log.Printf("[DISCONNECT-ERROR] Could not remove %s from lobby %s: %v",
				username, info.LobbyID, err)
		} else if removed {
			abandoned, err := store.CheckAndAbandonIfEmpty(info.LobbyID)
			if err != nil {
				log.Printf("[DISCONNECT-ERROR] Abandon check failed for lobby %s: %v", info.LobbyID, err)
			}
			if !abandoned && l != nil {
				socketio_utils.BroadcastRoster(sio, l)
			}
		}

		socketio_utils.BroadcastConnectionCount(sio, info.LobbyID, sio.ConnectionCount(info.LobbyID))
		log.Printf("[DISCONNECT-DONE] User disconnected: %s (lobby %s)", username, info.LobbyID)
	}
}

// HandleTogglePrivate flips a lobby's directory visibility. Host only.
func HandleTogglePrivate(store *lobby.Store, client *socket.Socket,
	sio *socketio_types.SocketServer, userID string) func(args ...interface{}) {
	return func(args ...interface{}) {
		lobbyID, ok := lobbyIDFromArgs(args)
		if !ok {
			socketio_utils.EmitLobbyError(client, lobby.ErrLobbyNotFound)
			return
		}

		l, err := store.FindByID(lobbyID)
		if err != nil {
			socketio_utils.EmitLobbyError(client, err)
			return
		}
		if !l.IsHost(userID) {
			log.Printf("[PRIVACY-DENIED] User %s is not host of lobby %s", userID, lobbyID)
			socketio_utils.EmitLobbyError(client, lobby.ErrPermissionDenied)
			return
		}

		isPrivate, err := store.SetPrivate(lobbyID, !l.Private)
		if err != nil {
			log.Printf("[PRIVACY-ERROR] Toggle failed for lobby %s: %v", lobbyID, err)
			socketio_utils.EmitLobbyError(client, err)
			return
		}
		if err := store.UpdateActivity(lobbyID); err != nil {
			log.Printf("[PRIVACY-WARN] Could not bump activity for lobby %s: %v", lobbyID, err)
		}

		log.Printf("[PRIVACY] Lobby %s private=%v", lobbyID, isPrivate)
		sio.Sio_server.To(socket.Room(lobbyID)).Emit("privacyStatusChanged", gin.H{"isPrivate": isPrivate})

		// the public listing just changed for everyone browsing it
		socketio_utils.BroadcastDirectory(sio, store)
	}
}
