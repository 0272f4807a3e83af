package lobby

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	lobby_constants "Showdown/constants/lobby"
	"Showdown/models/postgres"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store owns every read and write of game_lobbies rows. All mutations are
// read-modify-write against the row's jsonb players array, so they go through
// a compare-and-swap on the version column: two sockets joining the same
// lobby at once can never push it past maxPlayers.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// LobbySummary is the directory listing shape sent in "availableLobbies"
type LobbySummary struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	URLID      string `json:"urlId"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	HostName   string `json:"hostName"`
}

// saveCAS persists the mutated lobby only if nobody else wrote it since it
// was loaded. On a lost race it restores the in-memory version and reports
// ErrVersionConflict so the caller can reload and retry.
func (s *Store) saveCAS(l *postgres.GameLobby) error {
	prev := l.Version
	result := s.db.Model(&postgres.GameLobby{}).
		Where("id = ? AND version = ?", l.ID, prev).
		Updates(map[string]interface{}{
			"name":          l.Name,
			"host_id":       l.HostID,
			"status":        l.Status,
			"private":       l.Private,
			"players":       l.Players,
			"game_settings": l.GameSettings,
			"last_activity": l.LastActivity,
			"expires_at":    l.ExpiresAt,
			"version":       prev + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	l.Version = prev + 1
	return nil
}

// mutate runs fn against a freshly loaded lobby and saves it, retrying the
// whole thing on a CAS conflict. fn returning (false, nil) means "nothing to
// persist".
func (s *Store) mutate(lobbyID string, fn func(l *postgres.GameLobby) (bool, error)) (*postgres.GameLobby, error) {
	for attempt := 0; attempt < lobby_constants.MaxUpdateRetries; attempt++ {
		l, err := s.FindByID(lobbyID)
		if err != nil {
			return nil, err
		}
		dirty, err := fn(l)
		if err != nil {
			return l, err
		}
		if !dirty {
			return l, nil
		}
		err = s.saveCAS(l)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
		// lost the race, reload and try again
	}
	return nil, ErrVersionConflict
}

// GenerateUniqueCode produces a 4-digit join code that no live lobby holds
func (s *Store) GenerateUniqueCode() (string, error) {
	for attempt := 0; attempt < lobby_constants.MaxGenerationAttempts; attempt++ {
		code := fmt.Sprintf("%04d", 1000+rand.Intn(9000))

		var count int64
		err := s.db.Model(&postgres.GameLobby{}).
			Where("code = ? AND expires_at > ?", code, time.Now()).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrGenerationExhausted
}

// GenerateURLID produces the 16-char shareable id used in /game/lobby/ links
func (s *Store) GenerateURLID() (string, error) {
	charset := lobby_constants.URLIDCharset
	for attempt := 0; attempt < lobby_constants.MaxGenerationAttempts; attempt++ {
		b := make([]byte, lobby_constants.URLIDLength)
		for i := range b {
			b[i] = charset[rand.Intn(len(charset))]
		}
		urlID := string(b)

		var count int64
		err := s.db.Model(&postgres.GameLobby{}).
			Where("url_id = ? AND expires_at > ?", urlID, time.Now()).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return urlID, nil
		}
	}
	return "", ErrGenerationExhausted
}

// Create allocates code + url id and seeds the lobby with its host
func (s *Store) Create(name, hostID, hostUsername string, maxPlayers int) (*postgres.GameLobby, error) {
	if maxPlayers <= 0 {
		maxPlayers = lobby_constants.DefaultMaxPlayers
	}

	code, err := s.GenerateUniqueCode()
	if err != nil {
		return nil, err
	}
	urlID, err := s.GenerateURLID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	l := &postgres.GameLobby{
		ID:           uuid.NewString(),
		Name:         name,
		Code:         code,
		URLID:        urlID,
		HostID:       hostID,
		Status:       lobby_constants.StatusWaiting,
		LastActivity: now,
		ExpiresAt:    now.Add(lobby_constants.LobbyTTL),
		CreatedAt:    now,
	}
	if err := l.SetSettings(postgres.GameSettings{MaxPlayers: maxPlayers}); err != nil {
		return nil, err
	}
	err = l.SetPlayerList([]postgres.LobbyPlayer{{
		UserID:   hostID,
		Username: hostUsername,
		Status:   lobby_constants.PlayerStatusWaiting,
		JoinedAt: now,
	}})
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(l).Error; err != nil {
		return nil, err
	}
	log.Printf("[LOBBY-CREATE] Lobby %s (%s) created by %s, code %s", l.ID, name, hostUsername, code)
	return l, nil
}

// AddPlayer appends a player, holding players.length <= maxPlayers even under
// concurrent joins. An abandoned lobby is already dead to joiners even if the
// sweep hasn't deleted the row yet. Seating someone into an emptied roster
// makes them the host, the previous host left with everyone else.
func (s *Store) AddPlayer(lobbyID, userID, username string) (*postgres.GameLobby, error) {
	return s.mutate(lobbyID, func(l *postgres.GameLobby) (bool, error) {
		if l.Status == lobby_constants.StatusAbandoned {
			return false, ErrLobbyNotFound
		}
		players, err := l.PlayerList()
		if err != nil {
			return false, err
		}
		for _, p := range players {
			if p.UserID == userID {
				return false, ErrAlreadyMember
			}
		}
		if len(players) >= l.Settings().MaxPlayers {
			return false, ErrLobbyFull
		}
		if len(players) == 0 {
			l.HostID = userID
			log.Printf("[LOBBY-HOST] Lobby %s was empty, joiner %s becomes host", l.ID, username)
		}
		players = append(players, postgres.LobbyPlayer{
			UserID:   userID,
			Username: username,
			Status:   lobby_constants.PlayerStatusWaiting,
			JoinedAt: time.Now(),
		})
		return true, l.SetPlayerList(players)
	})
}

// RemovePlayer takes a player out of the lobby. A missing player is not an
// error, just a false result. If the host leaves and others remain, the host
// role moves to the new first player.
func (s *Store) RemovePlayer(lobbyID, userID string) (bool, *postgres.GameLobby, error) {
	removed := false
	l, err := s.mutate(lobbyID, func(l *postgres.GameLobby) (bool, error) {
		removed = false
		players, err := l.PlayerList()
		if err != nil {
			return false, err
		}
		remaining := make([]postgres.LobbyPlayer, 0, len(players))
		for _, p := range players {
			if p.UserID == userID {
				removed = true
				continue
			}
			remaining = append(remaining, p)
		}
		if !removed {
			return false, nil
		}
		if l.HostID == userID && len(remaining) > 0 {
			l.HostID = remaining[0].UserID
			log.Printf("[LOBBY-HOST] Lobby %s host transferred to %s", l.ID, l.HostID)
		}
		return true, l.SetPlayerList(remaining)
	})
	if err != nil {
		return false, nil, err
	}
	return removed, l, nil
}

// CheckAndAbandonIfEmpty flips an emptied lobby to abandoned so the sweep can
// delete it. Reports whether it did.
func (s *Store) CheckAndAbandonIfEmpty(lobbyID string) (bool, error) {
	abandoned := false
	_, err := s.mutate(lobbyID, func(l *postgres.GameLobby) (bool, error) {
		abandoned = false
		players, err := l.PlayerList()
		if err != nil {
			return false, err
		}
		if len(players) > 0 || l.Status == lobby_constants.StatusAbandoned {
			return false, nil
		}
		l.Status = lobby_constants.StatusAbandoned
		abandoned = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if abandoned {
		log.Printf("[LOBBY-ABANDON] Lobby %s emptied out, marked abandoned", lobbyID)
	}
	return abandoned, nil
}

// TransferHost hands the host role to another seated player
func (s *Store) TransferHost(lobbyID, newHostID string) error {
	_, err := s.mutate(lobbyID, func(l *postgres.GameLobby) (bool, error) {
		if !l.HasPlayer(newHostID) {
			return false, ErrNotAMember
		}
		if l.HostID == newHostID {
			return false, nil
		}
		l.HostID = newHostID
		return true, nil
	})
	return err
}

// UpdateLobbyStatus moves the lobby between the three directly settable
// statuses. "abandoned" is only ever reached through emptiness or the idle
// sweep, never by request.
func (s *Store) UpdateLobbyStatus(lobbyID, newStatus string) error {
	switch newStatus {
	case lobby_constants.StatusWaiting, lobby_constants.StatusInProgress, lobby_constants.StatusCompleted:
	default:
		return ErrInvalidStatus
	}
	_, err := s.mutate(lobbyID, func(l *postgres.GameLobby) (bool, error) {
		if l.Status == newStatus {
			return false, nil
		}
		l.Status = newStatus
		return true, nil
	})
	return err
}

// UpdateActivity bumps lastActivity and, while the lobby is still alive,
// pushes the hard expiry another 12 hours out
func (s *Store) UpdateActivity(lobbyID string) error {
	_, err := s.mutate(lobbyID, func(l *postgres.GameLobby) (bool, error) {
		now := time.Now()
		l.LastActivity = now
		if l.Status == lobby_constants.StatusWaiting || l.Status == lobby_constants.StatusInProgress {
			l.ExpiresAt = now.Add(lobby_constants.LobbyTTL)
		}
		return true, nil
	})
	return err
}

// SetPrivate flips the directory visibility flag and reports the new value
func (s *Store) SetPrivate(lobbyID string, private bool) (bool, error) {
	l, err := s.mutate(lobbyID, func(l *postgres.GameLobby) (bool, error) {
		if l.Private == private {
			return false, nil
		}
		l.Private = private
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return l.Private, nil
}

func (s *Store) FindByID(lobbyID string) (*postgres.GameLobby, error) {
	var l postgres.GameLobby
	err := s.db.Where("id = ?", lobbyID).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByCode resolves a 4-digit join code to a lobby that is still waiting
// and unexpired
func (s *Store) FindByCode(code string) (*postgres.GameLobby, error) {
	var l postgres.GameLobby
	err := s.db.
		Where("code = ? AND status = ? AND expires_at > ?",
			code, lobby_constants.StatusWaiting, time.Now()).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return &l, nil
}

// FindByURLID resolves a shareable link id to an unexpired lobby (any status,
// the lobby page itself decides what to show)
func (s *Store) FindByURLID(urlID string) (*postgres.GameLobby, error) {
	var l postgres.GameLobby
	err := s.db.
		Where("url_id = ? AND expires_at > ?", urlID, time.Now()).
		First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, err
	}
	return &l, nil
}

// GetAvailableLobbies lists what the public directory shows: waiting,
// unexpired, at least one seated player and not flagged private
func (s *Store) GetAvailableLobbies() ([]postgres.GameLobby, error) {
	var lobbies []postgres.GameLobby
	err := s.db.
		Where("status = ? AND expires_at > ? AND private = ? AND jsonb_array_length(players) > 0",
			lobby_constants.StatusWaiting, time.Now(), false).
		Order("created_at DESC").
		Find(&lobbies).Error
	if err != nil {
		return nil, err
	}
	return lobbies, nil
}

// AvailableLobbySummaries is GetAvailableLobbies shaped for the wire
func (s *Store) AvailableLobbySummaries() ([]LobbySummary, error) {
	lobbies, err := s.GetAvailableLobbies()
	if err != nil {
		return nil, err
	}
	summaries := make([]LobbySummary, 0, len(lobbies))
	for i := range lobbies {
		summaries = append(summaries, Summarize(&lobbies[i]))
	}
	return summaries, nil
}

// Summarize builds the directory entry for one lobby
func Summarize(l *postgres.GameLobby) LobbySummary {
	players, _ := l.PlayerList()
	hostName := ""
	for _, p := range players {
		if p.UserID == l.HostID {
			hostName = p.Username
			break
		}
	}
	return LobbySummary{
		Name:       l.Name,
		Code:       l.Code,
		URLID:      l.URLID,
		Players:    len(players),
		MaxPlayers: l.Settings().MaxPlayers,
		HostName:   hostName,
	}
}
