package lobby

import (
	"log"
	"time"

	lobby_constants "Showdown/constants/lobby"
	"Showdown/models/postgres"
)

// CleanupStats reports what one sweep pass did
type CleanupStats struct {
	Expired int // hard-expired lobbies marked abandoned
	Idle    int // lobbies idle past the 1h grace period
	Emptied int // zero-player lobbies idle past the 5min grace period
	Deleted int // abandoned lobbies physically removed
}

// CleanUpExpiredLobbies is the periodic sweep: it first flags everything that
// should die as abandoned, then deletes all abandoned rows. It runs on a
// timer, never from a socket event.
func (s *Store) CleanUpExpiredLobbies() (CleanupStats, error) {
	var stats CleanupStats
	now := time.Now()

	// 1. hard expiry
	result := s.db.Model(&postgres.GameLobby{}).
		Where("expires_at <= ? AND status <> ?", now, lobby_constants.StatusAbandoned).
		Update("status", lobby_constants.StatusAbandoned)
	if result.Error != nil {
		return stats, result.Error
	}
	stats.Expired = int(result.RowsAffected)

	// 2. idle beyond the grace period while supposedly active
	result = s.db.Model(&postgres.GameLobby{}).
		Where("last_activity <= ? AND status IN ?",
			now.Add(-lobby_constants.IdleGracePeriod),
			[]string{lobby_constants.StatusWaiting, lobby_constants.StatusInProgress}).
		Update("status", lobby_constants.StatusAbandoned)
	if result.Error != nil {
		return stats, result.Error
	}
	stats.Idle = int(result.RowsAffected)

	// 3. emptied out and nobody came back within 5 minutes
	result = s.db.Model(&postgres.GameLobby{}).
		Where("status <> ? AND last_activity <= ? AND jsonb_array_length(players) = 0",
			lobby_constants.StatusAbandoned,
			now.Add(-lobby_constants.EmptyGracePeriod)).
		Update("status", lobby_constants.StatusAbandoned)
	if result.Error != nil {
		return stats, result.Error
	}
	stats.Emptied = int(result.RowsAffected)

	// 4. physically drop everything abandoned
	result = s.db.Where("status = ?", lobby_constants.StatusAbandoned).
		Delete(&postgres.GameLobby{})
	if result.Error != nil {
		return stats, result.Error
	}
	stats.Deleted = int(result.RowsAffected)

	return stats, nil
}

// StartCleanupSweep runs CleanUpExpiredLobbies on a ticker until stop is
// closed. Call it from main in its own goroutine.
func (s *Store) StartCleanupSweep(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := s.CleanUpExpiredLobbies()
			if err != nil {
				log.Printf("[CLEANUP-ERROR] Sweep failed: %v", err)
				continue
			}
			if stats.Expired+stats.Idle+stats.Emptied+stats.Deleted > 0 {
				log.Printf("[CLEANUP] expired=%d idle=%d emptied=%d deleted=%d",
					stats.Expired, stats.Idle, stats.Emptied, stats.Deleted)
			}
		case <-stop:
			return
		}
	}
}
