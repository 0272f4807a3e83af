package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RuleSection is one block of the 3-5-7 rules page
type RuleSection struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// Static rules text for the frontend rules page. The actual dealing engine
// was never built; this prose is the only place the game exists.
var rules = []RuleSection{
	{
		Title: "Round Structure",
		Details: []string{
			"Players start with 3 cards (3s are wild)",
			"Then get 2 more cards (5s are wild)",
			"Finally get 2 more cards (7s are wild)",
		},
	},
	{
		Title: "Starting the Game",
		Details: []string{
			"Each player puts in a pre-set ante before playing",
			"Example: If ante is $0.25, everyone puts this in to start",
		},
	},
	{
		Title: "Playing Options",
		Details: []string{
			"Play against another player: Player vs Player",
			"Play against the dealer: Player vs Dealer",
			"Choose not to play: When No Player Plays, Non-Playing Participants",
			"Fold",
		},
	},
	{
		Title: "Player vs Player",
		Details: []string{
			"If two players want to play with their current hand, they swap hands",
			"Winner takes the pot",
			"Loser must match the pot amount",
		},
	},
	{
		Title: "Player vs Dealer",
		Details: []string{
			"If only one player wants to play they will go against the dealer",
			"Player reveals their hand to the table",
			"Dealer draws the same amount of cards",
			"If player wins, they take the pot, game ends",
			"If dealer wins, player must match the pot, deck is reshuffled and game continues",
		},
	},
	{
		Title: "When No Player Plays",
		Details: []string{
			"All players must reveal their cards",
			"Players with the best hand must match the pot",
			"Deck is reshuffled for new round",
			"Players don't need an additional ante for the next round",
		},
	},
	{
		Title: "Non-Playing Participants",
		Details: []string{
			"Players who do not play in the round will put in another $.25 to reveal the next round",
			"Exception: When no one plays all players reveal their hands",
		},
	},
	{
		Title: "Banker Option (Optional)",
		Details: []string{
			"Host can select a banker",
			"Banker will collect total of all chips",
			"Tracks and distributes winnings/losses at the end",
			"Example: 4 players with $20 each, banker holds $80",
		},
	},
	{
		Title: "Player limit",
		Details: []string{
			"Standard game: Maximum 6 players with one deck, 42 cards for six players, 7 cards for dealer",
			"7+ players will require an additional deck",
		},
	},
}

// @Summary 3-5-7 Poker rules
// @Description Returns the rules text the frontend renders on /rules
// @Tags pages
// @Produce json
// @Success 200 {array} RuleSection
// @Router /rules [get]
func GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, rules)
}
