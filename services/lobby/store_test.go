package lobby

import (
	"sync"
	"testing"
	"time"

	pgconfig "Showdown/config/postgres"
	lobby_constants "Showdown/constants/lobby"
	"Showdown/models/postgres"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// testStore connects to the database from the environment. Tests are skipped
// when PostgreSQL is not reachable so the pure unit suites still run anywhere.
func testStore(t *testing.T) *Store {
	t.Helper()
	godotenv.Load("../../.env")

	db, err := pgconfig.ConnectGORM()
	if err != nil {
		t.Skipf("PostgreSQL not reachable, skipping: %v", err)
	}
	if err := pgconfig.MigrateDatabase(db); err != nil {
		t.Skipf("migration failed, skipping: %v", err)
	}
	return NewStore(db)
}

func createTestLobby(t *testing.T, s *Store, maxPlayers int) *postgres.GameLobby {
	t.Helper()
	hostID := uuid.NewString()
	l, err := s.Create("test lobby", hostID, "host_"+hostID[:8], maxPlayers)
	assert.NoError(t, err)
	t.Cleanup(func() {
		s.db.Where("id = ?", l.ID).Delete(&postgres.GameLobby{})
	})
	return l
}

func TestCreateAndFindByCode(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)

	assert.Len(t, l.Code, lobby_constants.CodeLength)
	assert.Len(t, l.URLID, lobby_constants.URLIDLength)
	assert.Equal(t, 1, l.PlayerCount())

	found, err := s.FindByCode(l.Code)
	assert.NoError(t, err)
	assert.Equal(t, l.ID, found.ID)
	assert.Equal(t, l.URLID, found.URLID)

	byURL, err := s.FindByURLID(l.URLID)
	assert.NoError(t, err)
	assert.Equal(t, l.ID, byURL.ID)

	_, err = s.FindByCode("0000")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestFindByCodeIgnoresExpired(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)

	err := s.db.Model(&postgres.GameLobby{}).
		Where("id = ?", l.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	assert.NoError(t, err)

	_, err = s.FindByCode(l.Code)
	assert.ErrorIs(t, err, ErrLobbyNotFound)
	_, err = s.FindByURLID(l.URLID)
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestAddPlayerIsIdempotent(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)

	_, err := s.AddPlayer(l.ID, "bob-id", "bob")
	assert.NoError(t, err)

	after, err := s.AddPlayer(l.ID, "bob-id", "bob")
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Equal(t, 2, after.PlayerCount())
}

func TestFullLobbyRejectsJoinUnchanged(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 2)

	_, err := s.AddPlayer(l.ID, "bob-id", "bob")
	assert.NoError(t, err)

	_, err = s.AddPlayer(l.ID, "carol-id", "carol")
	assert.ErrorIs(t, err, ErrLobbyFull)

	reloaded, err := s.FindByID(l.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, reloaded.PlayerCount())
	assert.False(t, reloaded.HasPlayer("carol-id"))
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	ids := []string{"bob-id", "carol-id"}
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.AddPlayer(l.ID, ids[i], ids[i])
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrLobbyFull)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	reloaded, err := s.FindByID(l.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, reloaded.PlayerCount())
}

func TestHostReassignmentOnLeave(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)
	hostID := l.HostID

	_, err := s.AddPlayer(l.ID, "p1-id", "p1")
	assert.NoError(t, err)
	_, err = s.AddPlayer(l.ID, "p2-id", "p2")
	assert.NoError(t, err)

	removed, after, err := s.RemovePlayer(l.ID, hostID)
	assert.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, "p1-id", after.HostID)
	assert.Equal(t, 2, after.PlayerCount())

	// removing someone not seated is not an error
	removed, _, err = s.RemovePlayer(l.ID, "stranger-id")
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestJoinAfterLobbyEmptied(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)
	hostID := l.HostID

	// roster emptied but the 5min grace period hasn't abandoned it yet
	_, _, err := s.RemovePlayer(l.ID, hostID)
	assert.NoError(t, err)

	after, err := s.AddPlayer(l.ID, "bob-id", "bob")
	assert.NoError(t, err)
	assert.Equal(t, "bob-id", after.HostID)
	assert.True(t, after.HasPlayer("bob-id"))

	// once abandoned the row is dead even though it still exists
	l2 := createTestLobby(t, s, 6)
	_, _, err = s.RemovePlayer(l2.ID, l2.HostID)
	assert.NoError(t, err)
	abandoned, err := s.CheckAndAbandonIfEmpty(l2.ID)
	assert.NoError(t, err)
	assert.True(t, abandoned)

	_, err = s.AddPlayer(l2.ID, "carol-id", "carol")
	assert.ErrorIs(t, err, ErrLobbyNotFound)

	reloaded, err := s.FindByID(l2.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, reloaded.PlayerCount())
}

func TestEmptiedLobbyIsAbandoned(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)

	_, _, err := s.RemovePlayer(l.ID, l.HostID)
	assert.NoError(t, err)

	abandoned, err := s.CheckAndAbandonIfEmpty(l.ID)
	assert.NoError(t, err)
	assert.True(t, abandoned)

	reloaded, err := s.FindByID(l.ID)
	assert.NoError(t, err)
	assert.Equal(t, lobby_constants.StatusAbandoned, reloaded.Status)

	// a seated lobby is left alone
	l2 := createTestLobby(t, s, 6)
	abandoned, err = s.CheckAndAbandonIfEmpty(l2.ID)
	assert.NoError(t, err)
	assert.False(t, abandoned)
}

func TestTransferHost(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)

	assert.ErrorIs(t, s.TransferHost(l.ID, "stranger-id"), ErrNotAMember)

	_, err := s.AddPlayer(l.ID, "bob-id", "bob")
	assert.NoError(t, err)
	assert.NoError(t, s.TransferHost(l.ID, "bob-id"))

	reloaded, err := s.FindByID(l.ID)
	assert.NoError(t, err)
	assert.Equal(t, "bob-id", reloaded.HostID)
}

func TestUpdateLobbyStatus(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)

	assert.ErrorIs(t, s.UpdateLobbyStatus(l.ID, "abandoned"), ErrInvalidStatus)
	assert.NoError(t, s.UpdateLobbyStatus(l.ID, lobby_constants.StatusInProgress))

	reloaded, err := s.FindByID(l.ID)
	assert.NoError(t, err)
	assert.Equal(t, lobby_constants.StatusInProgress, reloaded.Status)
}

func TestUpdateActivityExtendsExpiry(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)

	err := s.db.Model(&postgres.GameLobby{}).
		Where("id = ?", l.ID).
		Update("expires_at", time.Now().Add(time.Hour)).Error
	assert.NoError(t, err)

	assert.NoError(t, s.UpdateActivity(l.ID))

	reloaded, err := s.FindByID(l.ID)
	assert.NoError(t, err)
	assert.True(t, reloaded.ExpiresAt.After(time.Now().Add(11*time.Hour)))

	// a completed lobby keeps its expiry, only last_activity moves
	assert.NoError(t, s.UpdateLobbyStatus(l.ID, lobby_constants.StatusInProgress))
	assert.NoError(t, s.UpdateLobbyStatus(l.ID, lobby_constants.StatusCompleted))
	err = s.db.Model(&postgres.GameLobby{}).
		Where("id = ?", l.ID).
		Update("expires_at", time.Now().Add(time.Hour)).Error
	assert.NoError(t, err)

	before := time.Now()
	assert.NoError(t, s.UpdateActivity(l.ID))

	reloaded, err = s.FindByID(l.ID)
	assert.NoError(t, err)
	assert.True(t, reloaded.ExpiresAt.Before(time.Now().Add(2*time.Hour)))
	assert.False(t, reloaded.LastActivity.Before(before.Add(-time.Second)))
}

func TestDirectoryExclusions(t *testing.T) {
	s := testStore(t)

	visible := createTestLobby(t, s, 6)

	private := createTestLobby(t, s, 6)
	_, err := s.SetPrivate(private.ID, true)
	assert.NoError(t, err)

	running := createTestLobby(t, s, 6)
	assert.NoError(t, s.UpdateLobbyStatus(running.ID, lobby_constants.StatusInProgress))

	emptied := createTestLobby(t, s, 6)
	_, _, err = s.RemovePlayer(emptied.ID, emptied.HostID)
	assert.NoError(t, err)

	expired := createTestLobby(t, s, 6)
	err = s.db.Model(&postgres.GameLobby{}).
		Where("id = ?", expired.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	assert.NoError(t, err)

	lobbies, err := s.GetAvailableLobbies()
	assert.NoError(t, err)

	listed := make(map[string]bool, len(lobbies))
	for _, l := range lobbies {
		listed[l.ID] = true
	}
	assert.True(t, listed[visible.ID])
	assert.False(t, listed[private.ID])
	assert.False(t, listed[running.ID])
	assert.False(t, listed[emptied.ID])
	assert.False(t, listed[expired.ID])
}

func TestGeneratedIdentifiersAreLiveUnique(t *testing.T) {
	s := testStore(t)

	codes := make(map[string]bool)
	urlIDs := make(map[string]bool)
	for i := 0; i < 20; i++ {
		l := createTestLobby(t, s, 6)

		assert.Regexp(t, `^[1-9][0-9]{3}$`, l.Code)
		assert.False(t, codes[l.Code], "code %s issued twice among live lobbies", l.Code)
		codes[l.Code] = true

		assert.Regexp(t, `^[a-zA-Z0-9_-]{16}$`, l.URLID)
		assert.False(t, urlIDs[l.URLID])
		urlIDs[l.URLID] = true
	}
}

func TestSummarizeCarriesHostName(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 4)

	summary := Summarize(l)
	assert.Equal(t, l.Code, summary.Code)
	assert.Equal(t, l.URLID, summary.URLID)
	assert.Equal(t, 1, summary.Players)
	assert.Equal(t, 4, summary.MaxPlayers)
	assert.NotEmpty(t, summary.HostName)
}

func TestCleanupSweepDeletesAbandoned(t *testing.T) {
	s := testStore(t)
	l := createTestLobby(t, s, 6)

	_, _, err := s.RemovePlayer(l.ID, l.HostID)
	assert.NoError(t, err)
	_, err = s.CheckAndAbandonIfEmpty(l.ID)
	assert.NoError(t, err)

	// backdate emptiness past the grace period so the sweep picks it up
	err = s.db.Model(&postgres.GameLobby{}).
		Where("id = ?", l.ID).
		Update("last_activity", time.Now().Add(-10*time.Minute)).Error
	assert.NoError(t, err)

	_, err = s.CleanUpExpiredLobbies()
	assert.NoError(t, err)

	_, err = s.FindByID(l.ID)
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}
