package handlers

import (
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

// HandleLobbyMessage broadcasts a chat line to the sender's lobby room and
// keeps it in the Redis-backed history. Only sockets that went through
// joinLobby have an identity, everyone else gets rejected.
func HandleLobbyMessage(redisClient *redis.RedisClient, client *socket.Socket,
	sio *socketio_types.SocketServer, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		message, ok := args[0].(string)
		if !ok || message == "" {
			return
		}

		info, ok := sio.SocketIdentity(string(client.Id()))
		if !ok {
			log.Printf("[CHAT-DENIED] Socket %s tried to chat without joining a lobby", client.Id())
			socketio_utils.EmitLobbyError(client, lobby.ErrNotAMember)
			return
		}

		msg := &redis_models.ChatMessage{
			LobbyID:   info.LobbyID,
			Username:  username,
			Message:   message,
			Timestamp: time.Now(),
		}
		if redisClient != nil {
			if err := redisClient.SaveChatMessage(msg); err != nil {
				// history is best-effort, the live broadcast still goes out
				log.Printf("[CHAT-WARN] Could not persist chat for lobby %s: %v", info.LobbyID, err)
			}
		}

		sio.Sio_server.To(socket.Room(info.LobbyID)).Emit("newLobbyMessage", gin.H{
			"lobby_id":  info.LobbyID,
			"username":  username,
			"message":   message,
			"timestamp": msg.Timestamp,
		})
	}
}
