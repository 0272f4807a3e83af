package handlers

import (
	"errors"
	"log"

	"Showdown/services/lobby"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleRequestAvailableLobbies answers the join page's directory poll. The
// reply goes only to the asking socket, the 5s cadence is client-driven.
func HandleRequestAvailableLobbies(store *lobby.Store, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		summaries, err := store.AvailableLobbySummaries()
		if err != nil {
			log.Printf("[DIRECTORY-ERROR] Listing failed: %v", err)
			client.Emit("lobbyError", gin.H{"kind": "Internal", "error": "could not list lobbies"})
			return
		}
		client.Emit("availableLobbies", summaries)
	}
}

// HandleCheckLobbyCode validates a typed 4-digit code. Exactly one of
// validCode / invalidCode comes back, never both.
func HandleCheckLobbyCode(store *lobby.Store, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("invalidCode")
			return
		}
		code, ok := args[0].(string)
		if !ok || code == "" {
			client.Emit("invalidCode")
			return
		}

		l, err := store.FindByCode(code)
		if err != nil {
			if !errors.Is(err, lobby.ErrLobbyNotFound) {
				log.Printf("[CODE-ERROR] Lookup for code %s failed: %v", code, err)
			}
			client.Emit("invalidCode")
			return
		}
		client.Emit("validCode", gin.H{"urlId": l.URLID})
	}
}
