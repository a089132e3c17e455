// internal/game/event.go
package game

import (
	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/models"
)

// EventType names an outbound message kind.
type EventType string

const (
	EventPlayers    EventType = "players"
	EventPlayer     EventType = "player"
	EventDraw       EventType = "draw"
	EventCombat     EventType = "combat"
	EventValidMoves EventType = "valid_moves"
	EventMessage    EventType = "message"
	EventTimeout    EventType = "timeout"
	EventError      EventType = "error"
	EventPhase      EventType = "phase"
	EventTurn       EventType = "turn"
	EventWelcome    EventType = "welcome"
	EventEnd        EventType = "end"
)

// Event is one outbound message. Only the fields of its kind are set.
type Event struct {
	Type         EventType `json:"type"`
	ActionNumber int       `json:"action_number"`

	// Player is a *PlayerView for "player", or a display id for "draw", "turn",
	// "welcome" and "end".
	Player  interface{}  `json:"player,omitempty"`
	Players []PlayerView `json:"players,omitempty"`
	Card    *cards.Info  `json:"card,omitempty"`
	Combat  *CombatView  `json:"combat,omitempty"`
	Moves   ValidMoves   `json:"moves,omitempty"`
	Message *ChatMessage `json:"message,omitempty"`
	Timeout int64        `json:"timeout,omitempty"` // milliseconds
	Phase   models.Phase `json:"phase,omitempty"`
	Reason  string       `json:"reason,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// ChatMessage is a system or player broadcast.
type ChatMessage struct {
	From    string `json:"from"`
	Private bool   `json:"private"`
	Text    string `json:"text"`
}

// PlayerView is a player as seen by one viewer.
type PlayerView struct {
	Name      string       `json:"name"`
	ID        int          `json:"id"`
	Level     int          `json:"level"`
	Bonus     int          `json:"bonus"`
	Total     int          `json:"total"`
	Race      string       `json:"race,omitempty"`
	Ready     bool         `json:"ready"`
	Connected bool         `json:"connected"`
	Hand      []cards.Info `json:"hand"`
	Carried   []cards.Info `json:"carried"`
}

// CombatView is the public snapshot of the active combat.
type CombatView struct {
	Players          []int        `json:"players"`
	Monsters         []cards.Info `json:"monsters"`
	PlayerModifiers  []cards.Info `json:"player_modifiers"`
	MonsterModifiers []cards.Info `json:"monster_modifiers"`
	PlayerTotal      int          `json:"player_total"`
	MonsterTotal     int          `json:"monster_total"`
}

// NoCardKey is the ValidMoves key for moves that need no card (DONE).
const NoCardKey = "null"

// ValidMoves maps a card id (or NoCardKey) to move type to the legal targets.
type ValidMoves map[string]map[models.MoveType][]models.Target

func (v ValidMoves) add(key string, mt models.MoveType, t models.Target) {
	byType, ok := v[key]
	if !ok {
		byType = make(map[models.MoveType][]models.Target)
		v[key] = byType
	}
	byType[mt] = append(byType[mt], t)
}

// OnlyDone reports whether the set is empty or holds nothing but the card-less DONE.
func (v ValidMoves) OnlyDone() bool {
	if len(v) == 0 {
		return true
	}
	_, ok := v[NoCardKey]
	return len(v) == 1 && ok
}
