package socket_io

import (
	"fmt"
	"time"

	"Showdown/services/lobby"
	"Showdown/services/redis"
	"Showdown/services/socket_io/handlers"
	socketio_types "Showdown/services/socket_io/types"
	socketio_utils "Showdown/services/socket_io/utils"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// Start mounts the socket.io endpoint on the gin router and wires the lobby
// session protocol per connection. The store and redis client are injected so
// tests can run handlers against their own instances.
func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient, store *lobby.Store) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	// KEY: initialize the maps, otherwise it panics
	sio.UserConnections = make(map[string]*socket.Socket)
	sio.SocketIdentities = make(map[string]socketio_types.ConnInfo)
	sio.LobbyConnections = make(map[string]map[string]bool)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, userID, username := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		// Add connection to map
		(*socketio_types.SocketServer)(sio).AddConnection(username, client)

		fmt.Println("An individual just connected!: ", username)

		registry := (*socketio_types.SocketServer)(sio)

		// Join the room of a lobby and receive its roster pushes
		client.On("joinLobby", handlers.HandleJoinLobby(store, redisClient, client, registry, userID, username))

		// Join page directory snapshot (client polls this every 5s)
		client.On("requestAvailableLobbies", handlers.HandleRequestAvailableLobbies(store, client))

		// Validate a typed 4-digit join code
		client.On("checkLobbyCode", handlers.HandleCheckLobbyCode(store, client))

		// Host-only visibility flip
		client.On("togglePrivate", handlers.HandleTogglePrivate(store, client, registry, userID))

		// Lobby chat
		client.On("lobbyMessage", handlers.HandleLobbyMessage(redisClient, client, registry, username))

		// NOTE: removes the player and the registry entries
		client.On("disconnecting", handlers.HandleDisconnecting(store, redisClient, client, registry, username))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	fmt.Println("Socket server started")
}

// Close shuts the socket.io server down (used by main on SIGTERM)
func (sio *MySocketServer) Close() {
	if sio.Sio_server != nil {
		sio.Sio_server.Close(nil)
	}
}
