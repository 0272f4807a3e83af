package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

/*
 * 'Game' is the money-tracking ledger for one played table, with or without a
 * banker. Nothing in the controllers or socket handlers writes it yet: the
 * 3-5-7 dealing engine was never built, so this schema is only exercised by
 * its own methods and tests.
 */
type Game struct {
	ID      string `gorm:"primaryKey;size:36;not null"`
	LobbyID string `gorm:"size:36;index:idx_games_lobby"`
	HostID  string `gorm:"size:36;not null"`

	HasBanker bool   `gorm:"default:false"`
	BankerID  string `gorm:"size:36"`

	Players        datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	BankerTracking datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	GameStatus string `gorm:"size:20;default:'waiting'"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	EndedAt   *time.Time
}

// GamePlayer is one entry of the Players jsonb array
type GamePlayer struct {
	UserID           string        `json:"userId"`
	InitialBuyIn     int           `json:"initialBuyIn"`
	CurrentAmount    int           `json:"currentAmount"`
	Winnings         int           `json:"winnings"`
	AdditionalBuyIns []BuyInRecord `json:"additionalBuyIns"`
}

type BuyInRecord struct {
	Amount    int       `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// BankerTracking is the shape of the BankerTracking jsonb column
type BankerTracking struct {
	TotalPoolAmount int                 `json:"totalPoolAmount"`
	Transactions    []BankerTransaction `json:"transactions"`
}

type BankerTransaction struct {
	PlayerID  string    `json:"playerId"`
	Type      string    `json:"type"` // "buy-in" | "cash-out" | "additional-buy-in"
	Amount    int       `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// GameSummaryEntry is what Summary() reports per player
type GameSummaryEntry struct {
	UserID        string `json:"userId"`
	InitialBuyIn  int    `json:"initialBuyIn"`
	CurrentAmount int    `json:"currentAmount"`
	Profit        int    `json:"profit"`
	TotalBuyIn    int    `json:"totalBuyIn"`
}

var gameStatusTransitions = map[string][]string{
	"waiting":     {"in-progress"},
	"in-progress": {"completed"},
	"completed":   {},
}

func (g *Game) GamePlayers() ([]GamePlayer, error) {
	var players []GamePlayer
	if len(g.Players) == 0 {
		return players, nil
	}
	if err := json.Unmarshal(g.Players, &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (g *Game) setGamePlayers(players []GamePlayer) error {
	data, err := json.Marshal(players)
	if err != nil {
		return err
	}
	g.Players = datatypes.JSON(data)
	return nil
}

func (g *Game) Tracking() (BankerTracking, error) {
	var tracking BankerTracking
	if len(g.BankerTracking) == 0 {
		return tracking, nil
	}
	err := json.Unmarshal(g.BankerTracking, &tracking)
	return tracking, err
}

func (g *Game) setTracking(tracking BankerTracking) error {
	data, err := json.Marshal(tracking)
	if err != nil {
		return err
	}
	g.BankerTracking = datatypes.JSON(data)
	return nil
}

// UpdateGameStatus only allows waiting -> in-progress -> completed
func (g *Game) UpdateGameStatus(newStatus string) error {
	allowed, ok := gameStatusTransitions[g.GameStatus]
	if !ok {
		return fmt.Errorf("unknown game status %q", g.GameStatus)
	}
	for _, s := range allowed {
		if s == newStatus {
			if newStatus == "completed" {
				now := time.Now()
				g.EndedAt = &now
			}
			g.GameStatus = newStatus
			return nil
		}
	}
	return fmt.Errorf("invalid status transition from %s to %s", g.GameStatus, newStatus)
}

// AssignBanker marks a seated player as the banker and seeds the pool with
// the sum of everyone's current money
func (g *Game) AssignBanker(bankerID string) error {
	players, err := g.GamePlayers()
	if err != nil {
		return err
	}
	found := false
	pool := 0
	for _, p := range players {
		pool += p.CurrentAmount
		if p.UserID == bankerID {
			found = true
		}
	}
	if !found {
		return errors.New("selected banker must be a player in the game")
	}

	g.HasBanker = true
	g.BankerID = bankerID

	tracking, err := g.Tracking()
	if err != nil {
		return err
	}
	tracking.TotalPoolAmount = pool
	return g.setTracking(tracking)
}

// UpdatePlayerAmount sets a player's stack and recomputes their winnings
func (g *Game) UpdatePlayerAmount(playerID string, newAmount int) error {
	players, err := g.GamePlayers()
	if err != nil {
		return err
	}
	for i := range players {
		if players[i].UserID == playerID {
			players[i].Winnings = newAmount - players[i].InitialBuyIn
			players[i].CurrentAmount = newAmount
			return g.setGamePlayers(players)
		}
	}
	return errors.New("player not found in game")
}

// AddBuyIn records an additional buy-in, and grows the banker pool if one is
// assigned
func (g *Game) AddBuyIn(playerID string, amount int) error {
	if amount <= 0 {
		return errors.New("invalid buy-in amount")
	}
	players, err := g.GamePlayers()
	if err != nil {
		return err
	}
	idx := -1
	for i := range players {
		if players[i].UserID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New("player not found in game")
	}

	players[idx].AdditionalBuyIns = append(players[idx].AdditionalBuyIns, BuyInRecord{
		Amount:    amount,
		Timestamp: time.Now(),
	})
	players[idx].CurrentAmount += amount
	if err := g.setGamePlayers(players); err != nil {
		return err
	}

	if g.HasBanker {
		tracking, err := g.Tracking()
		if err != nil {
			return err
		}
		tracking.TotalPoolAmount += amount
		tracking.Transactions = append(tracking.Transactions, BankerTransaction{
			PlayerID:  playerID,
			Type:      "additional-buy-in",
			Amount:    amount,
			Timestamp: time.Now(),
		})
		return g.setTracking(tracking)
	}
	return nil
}

// PlayerBalance reports one player's stack, total buy-in and winnings
func (g *Game) PlayerBalance(playerID string) (current, totalBuyIn, winnings int, err error) {
	players, err := g.GamePlayers()
	if err != nil {
		return 0, 0, 0, err
	}
	for _, p := range players {
		if p.UserID == playerID {
			total := p.InitialBuyIn
			for _, b := range p.AdditionalBuyIns {
				total += b.Amount
			}
			return p.CurrentAmount, total, p.Winnings, nil
		}
	}
	return 0, 0, 0, errors.New("player not found in game")
}

// Summary reports the ledger state for every seated player
func (g *Game) Summary() ([]GameSummaryEntry, error) {
	players, err := g.GamePlayers()
	if err != nil {
		return nil, err
	}
	summary := make([]GameSummaryEntry, 0, len(players))
	for _, p := range players {
		total := p.InitialBuyIn
		for _, b := range p.AdditionalBuyIns {
			total += b.Amount
		}
		summary = append(summary, GameSummaryEntry{
			UserID:        p.UserID,
			InitialBuyIn:  p.InitialBuyIn,
			CurrentAmount: p.CurrentAmount,
			Profit:        p.Winnings,
			TotalBuyIn:    total,
		})
	}
	return summary, nil
}

// End completes an in-progress game. With a banker assigned it first checks
// that the player money still adds up to the tracked pool.
func (g *Game) End() ([]GameSummaryEntry, error) {
	if g.GameStatus != "in-progress" {
		return nil, errors.New("cannot end a game that is not in progress")
	}
	if g.HasBanker {
		players, err := g.GamePlayers()
		if err != nil {
			return nil, err
		}
		tracking, err := g.Tracking()
		if err != nil {
			return nil, err
		}
		total := 0
		for _, p := range players {
			total += p.CurrentAmount
		}
		if total != tracking.TotalPoolAmount {
			return nil, errors.New("pool amount mismatch detected")
		}
	}

	summary, err := g.Summary()
	if err != nil {
		return nil, err
	}
	if err := g.UpdateGameStatus("completed"); err != nil {
		return nil, err
	}
	return summary, nil
}
