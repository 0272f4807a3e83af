package lobby_constants

import "time"

const DefaultMaxPlayers = 6

// Lobbies live 12 hours from their last activity
const LobbyTTL = 12 * time.Hour

// Grace periods used by the cleanup sweep
const (
	IdleGracePeriod  = 1 * time.Hour   // lobby with players but no activity
	EmptyGracePeriod = 5 * time.Minute // lobby with zero players
)

// How often the background sweep runs
const CleanupInterval = 5 * time.Minute

// Join code / shareable url id generation
const (
	CodeLength  = 4
	URLIDLength = 16
	// NOTE: frontend builds /game/lobby/{urlId} links out of this charset
	URLIDCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

	// The id space is big enough that collisions basically never chain, but
	// we still cap the probe loop instead of spinning forever on a sick DB.
	MaxGenerationAttempts = 50
)

// Lobby statuses
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// Per-player statuses inside a lobby
const (
	PlayerStatusWaiting = "waiting"
	PlayerStatusReady   = "ready"
)

// How many CAS retries a store mutation gets before giving up
const MaxUpdateRetries = 5

// Chat history kept per lobby in Redis
const ChatHistoryLimit = 50
