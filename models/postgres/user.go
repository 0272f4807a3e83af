package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'User' is a registered player account. Statistics and the per-game money
 * history live in jsonb columns (see UserStatistics / GameHistoryEntry).
 */
type User struct {
	ID           string `gorm:"primaryKey;size:36;not null"`
	Username     string `gorm:"size:50;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`

	// Set when joining a table, tracked by the banker ledger
	CurrentGameMoney int `gorm:"default:0"`

	Statistics  datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	GameHistory datatypes.JSON `gorm:"type:jsonb;default:'[]'"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

// UserStatistics is the shape of the Statistics jsonb column
type UserStatistics struct {
	TotalGamesPlayed int `json:"totalGamesPlayed"`
	TotalWinnings    int `json:"totalWinnings"`
	GamesWon         int `json:"gamesWon"`
	TimesAsBanker    int `json:"timesAsBanker"`
	BiggestWin       int `json:"biggestWin"`
	BiggestLoss      int `json:"biggestLoss"`
}

// GameHistoryEntry is one element of the GameHistory jsonb array
type GameHistoryEntry struct {
	GameID         string    `json:"gameId"`
	LobbyName      string    `json:"lobbyName"`
	StartingAmount int       `json:"startingAmount"`
	EndingAmount   int       `json:"endingAmount"`
	Profit         int       `json:"profit"`
	WasBanker      bool      `json:"wasBanker"`
	PlayedAt       time.Time `json:"playedAt"`
}
