package socketio_utils

import (
	"fmt"

	"Showdown/middleware"
	"Showdown/models/postgres"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
	"gorm.io/gorm"
)

// VerifyUserConnection authenticates a fresh socket from its handshake auth
// payload ({token: <JWT from /login>}) and checks the account still exists.
// Returns (false, ...) after emitting the error, the caller just drops the
// connection.
func VerifyUserConnection(client *socket.Socket, db *gorm.DB) (success bool, userID string, username string) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		fmt.Println("Handshake auth data is missing or invalid!")
		client.Emit("lobbyError", gin.H{"kind": "PermissionDenied", "error": "Authentication failed: missing auth data"})
		return false, "", ""
	}

	token, exists := authData["token"].(string)
	if !exists {
		fmt.Println("No token provided in handshake!")
		client.Emit("lobbyError", gin.H{"kind": "PermissionDenied", "error": "Authentication failed: missing token"})
		return false, "", ""
	}

	userID, username, err := middleware.DecodeToken(token)
	if err != nil {
		fmt.Println("Invalid token in handshake:", err)
		client.Emit("lobbyError", gin.H{"kind": "PermissionDenied", "error": "Authentication failed: invalid token"})
		return false, "", ""
	}

	var user postgres.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		fmt.Println("Token for unknown user:", userID)
		client.Emit("lobbyError", gin.H{"kind": "PermissionDenied", "error": "Authentication failed: unknown user"})
		return false, "", ""
	}

	return true, userID, username
}
