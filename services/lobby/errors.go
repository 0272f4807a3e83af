package lobby

import "errors"

// Store-level error kinds. Socket handlers translate these into "lobbyError"
// events via ErrorKind, HTTP controllers map them onto status codes.
var (
	ErrLobbyNotFound       = errors.New("lobby not found")
	ErrLobbyFull           = errors.New("lobby is full")
	ErrAlreadyMember       = errors.New("player already in lobby")
	ErrNotAMember          = errors.New("player is not in the lobby")
	ErrInvalidStatus       = errors.New("invalid lobby status")
	ErrPermissionDenied    = errors.New("only the host can do that")
	ErrGenerationExhausted = errors.New("could not generate a unique identifier")

	// Internal to the compare-and-swap retry loop, callers never see it
	// unless every retry lost the race.
	ErrVersionConflict = errors.New("lobby was modified concurrently")
)

// ErrorKind gives the wire-level kind string for a store error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrLobbyNotFound):
		return "NotFound"
	case errors.Is(err, ErrLobbyFull):
		return "Full"
	case errors.Is(err, ErrAlreadyMember):
		return "AlreadyMember"
	case errors.Is(err, ErrNotAMember):
		return "NotAMember"
	case errors.Is(err, ErrInvalidStatus):
		return "InvalidStatus"
	case errors.Is(err, ErrPermissionDenied):
		return "PermissionDenied"
	case errors.Is(err, ErrGenerationExhausted):
		return "GenerationExhausted"
	default:
		return "Internal"
	}
}
