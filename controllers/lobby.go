package controllers

import (
	"errors"
	"log"
	"net/http"

	"Showdown/middleware"
	"Showdown/services/lobby"

	"github.com/gin-gonic/gin"
)

// CreateLobbyRequest is the POST body for lobby creation
type CreateLobbyRequest struct {
	Name       string `json:"name" binding:"required"`
	MaxPlayers int    `json:"max_players" binding:"omitempty,min=2,max=10"`
}

// @Summary Creates a new lobby
// @Description Allocates code + shareable url id and seats the caller as host
// @Tags lobby
// @Accept json
// @Produce json
// @Param body body CreateLobbyRequest true "Lobby settings"
// @Success 200 {object} object{lobby_id=string,code=string,url_id=string}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/lobbies [post]
// @Security ApiKeyAuth
func CreateLobby(store *lobby.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, username, ok := middleware.SessionUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CreateLobbyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Lobby name is required"})
			return
		}

		l, err := store.Create(req.Name, userID, username, req.MaxPlayers)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating lobby"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"lobby_id": l.ID,
			"code":     l.Code,
			"url_id":   l.URLID,
			"message":  "Lobby created successfully",
		})
	}
}

// @Summary Gives info of a lobby
// @Description Initial render data for the lobby page, fetched before the
// socket connection is up
// @Tags lobby
// @Produce json
// @Param url_id path string true "Shareable id of the lobby"
// @Success 200 {object} object{lobby_id=string,name=string,players=object}
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /lobbies/{url_id} [get]
func GetLobbyInfo(store *lobby.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		urlID := c.Param("url_id")

		l, err := store.FindByURLID(urlID)
		if err != nil {
			if errors.Is(err, lobby.ErrLobbyNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
			} else {
				log.Printf("[LOBBY-ERROR] Lookup for url id %s failed: %v", urlID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading lobby"})
			}
			return
		}

		players, err := l.PlayerList()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Corrupt player list"})
			return
		}
		roster := make([]gin.H, 0, len(players))
		for _, p := range players {
			roster = append(roster, gin.H{
				"username": p.Username,
				"isHost":   p.UserID == l.HostID,
				"status":   p.Status,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"lobby_id":    l.ID,
			"name":        l.Name,
			"code":        l.Code,
			"url_id":      l.URLID,
			"status":      l.Status,
			"is_private":  l.Private,
			"players":     roster,
			"max_players": l.Settings().MaxPlayers,
			"created_at":  l.CreatedAt,
		})
	}
}

// @Summary Lists available lobbies
// @Description Pull-side directory snapshot used for the first paint of the
// join page (the socket push takes over afterwards)
// @Tags lobby
// @Produce json
// @Success 200 {array} lobby.LobbySummary
// @Failure 500 {object} object{error=string}
// @Router /lobbies [get]
func GetAvailableLobbies(store *lobby.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := store.AvailableLobbySummaries()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing lobbies"})
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}
