// internal/game/rules.go
package game

import (
	"time"

	"github.com/jason-s-yu/munchkin/internal/cards"
)

// Rules are the per-session knobs. The zero value is not usable; start from DefaultRules.
type Rules struct {
	MinPlayers     int           `json:"minPlayers"`     // seats needed before the deal starts automatically
	HandSize       int           `json:"handSize"`       // door and treasure cards dealt to each player at setup
	WinLevel       int           `json:"winLevel"`       // level that ends the game, only reachable by a monster kill
	StallTimeout   time.Duration `json:"stallTimeout"`   // idle time before every player is forced ready; 0 disables
	AutoReadyIdle  bool          `json:"autoReadyIdle"`  // vote ready for players whose only legal move is DONE
	IdleReadyDelay time.Duration `json:"idleReadyDelay"` // how long an idle player is left alone before the vote

	// Seed fixes the shuffle and turn-holder choice. 0 seeds from the clock.
	Seed int64 `json:"-"`

	DoorDeck     []cards.Entry `json:"-"`
	TreasureDeck []cards.Entry `json:"-"`
}

// DefaultRules returns the classic ruleset with the default catalog.
func DefaultRules() Rules {
	return Rules{
		MinPlayers:     2,
		HandSize:       4,
		WinLevel:       10,
		StallTimeout:   30 * time.Second,
		IdleReadyDelay: time.Second,
		DoorDeck:       cards.DoorCatalog,
		TreasureDeck:   cards.TreasureCatalog,
	}
}

// withDefaults fills unset fields from DefaultRules.
func (r Rules) withDefaults() Rules {
	def := DefaultRules()
	if r.MinPlayers <= 0 {
		r.MinPlayers = def.MinPlayers
	}
	if r.HandSize < 0 {
		r.HandSize = 0
	}
	if r.WinLevel <= 0 {
		r.WinLevel = def.WinLevel
	}
	if r.IdleReadyDelay <= 0 {
		r.IdleReadyDelay = def.IdleReadyDelay
	}
	if r.DoorDeck == nil {
		r.DoorDeck = def.DoorDeck
	}
	if r.TreasureDeck == nil {
		r.TreasureDeck = def.TreasureDeck
	}
	return r
}
