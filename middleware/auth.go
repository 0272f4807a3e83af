package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys set by controllers.Login
const (
	SessionUserIDKey   = "UserID"
	SessionUsernameKey = "Username"
)

// AuthRequired is a simple middleware to check the session.
func AuthRequired(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get(SessionUserIDKey)
	if userID == nil {
		// Abort the request with the appropriate error code
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	// Continue down the chain to handler etc
	c.Next()
}

// SessionUser pulls the logged-in identity out of the cookie session
func SessionUser(c *gin.Context) (userID, username string, ok bool) {
	session := sessions.Default(c)
	id, okID := session.Get(SessionUserIDKey).(string)
	name, okName := session.Get(SessionUsernameKey).(string)
	if !okID || !okName || id == "" {
		return "", "", false
	}
	return id, name, true
}
