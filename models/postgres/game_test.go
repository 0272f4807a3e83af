package postgres_test

import (
	"encoding/json"
	"testing"

	"Showdown/models/postgres"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func makeGame(t *testing.T) *postgres.Game {
	g := &postgres.Game{
		ID:         "game1",
		HostID:     "alice",
		GameStatus: "waiting",
	}
	players := []postgres.GamePlayer{
		{UserID: "alice", InitialBuyIn: 20, CurrentAmount: 20},
		{UserID: "bob", InitialBuyIn: 20, CurrentAmount: 20},
	}
	raw, err := json.Marshal(players)
	assert.NoError(t, err)
	g.Players = datatypes.JSON(raw)
	return g
}

func TestGameStatusTransitions(t *testing.T) {
	g := makeGame(t)

	// waiting -> completed is illegal
	assert.Error(t, g.UpdateGameStatus("completed"))
	assert.Equal(t, "waiting", g.GameStatus)

	assert.NoError(t, g.UpdateGameStatus("in-progress"))
	assert.NoError(t, g.UpdateGameStatus("completed"))
	assert.NotNil(t, g.EndedAt)

	// completed is terminal
	assert.Error(t, g.UpdateGameStatus("in-progress"))
}

func TestAssignBankerSeedsPool(t *testing.T) {
	g := makeGame(t)

	assert.Error(t, g.AssignBanker("nobody"))

	assert.NoError(t, g.AssignBanker("alice"))
	assert.True(t, g.HasBanker)
	assert.Equal(t, "alice", g.BankerID)

	tracking, err := g.Tracking()
	assert.NoError(t, err)
	assert.Equal(t, 40, tracking.TotalPoolAmount)
}

func TestBuyInsAndBalances(t *testing.T) {
	g := makeGame(t)
	assert.NoError(t, g.AssignBanker("alice"))

	assert.Error(t, g.AddBuyIn("bob", 0))
	assert.Error(t, g.AddBuyIn("nobody", 10))

	assert.NoError(t, g.AddBuyIn("bob", 10))

	current, total, winnings, err := g.PlayerBalance("bob")
	assert.NoError(t, err)
	assert.Equal(t, 30, current)
	assert.Equal(t, 30, total)
	assert.Equal(t, 0, winnings)

	tracking, err := g.Tracking()
	assert.NoError(t, err)
	assert.Equal(t, 50, tracking.TotalPoolAmount)
	assert.Len(t, tracking.Transactions, 1)
	assert.Equal(t, "additional-buy-in", tracking.Transactions[0].Type)
}

func TestEndGameValidatesPool(t *testing.T) {
	g := makeGame(t)
	assert.NoError(t, g.AssignBanker("alice"))
	assert.NoError(t, g.UpdateGameStatus("in-progress"))

	// move money between players, pool total unchanged
	assert.NoError(t, g.UpdatePlayerAmount("alice", 30))
	assert.NoError(t, g.UpdatePlayerAmount("bob", 10))

	summary, err := g.End()
	assert.NoError(t, err)
	assert.Equal(t, "completed", g.GameStatus)
	assert.Len(t, summary, 2)
	assert.Equal(t, 10, summary[0].Profit)
	assert.Equal(t, -10, summary[1].Profit)
}

func TestEndGameDetectsPoolMismatch(t *testing.T) {
	g := makeGame(t)
	assert.NoError(t, g.AssignBanker("alice"))
	assert.NoError(t, g.UpdateGameStatus("in-progress"))

	// money appeared out of nowhere
	assert.NoError(t, g.UpdatePlayerAmount("alice", 100))

	_, err := g.End()
	assert.Error(t, err)
	assert.Equal(t, "in-progress", g.GameStatus)
}
