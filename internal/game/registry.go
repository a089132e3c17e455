// internal/game/registry.go
package game

import (
	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/events"
)

// registry is the session's id -> card index. Decks keep it current on shuffle,
// and handlers bound to a card follow it to its new id.
type registry struct {
	byID map[int]cards.Card
	bus  *events.Bus
}

func newRegistry(bus *events.Bus) *registry {
	return &registry{byID: make(map[int]cards.Card), bus: bus}
}

func (r *registry) Register(c cards.Card) {
	r.byID[c.ID()] = c
}

func (r *registry) Rekey(c cards.Card, oldID int) {
	if cur, ok := r.byID[oldID]; ok && cur == c {
		delete(r.byID, oldID)
	}
	r.byID[c.ID()] = c
	r.bus.Rekey(string(c.Category()), oldID, c.ID())
}

func (r *registry) Lookup(id int) (cards.Card, bool) {
	c, ok := r.byID[id]
	return c, ok
}

func (r *registry) Len() int { return len(r.byID) }

// cardKey scopes a bus event to one card.
func cardKey(c cards.Card, event string) events.Key {
	return events.Key{Category: string(c.Category()), ID: c.ID(), Event: event}
}

// PlayerKey scopes a bus event to one seat. Unlike the display id it does not
// change when earlier seats leave before the deal.
func PlayerKey(p *Player, event string) events.Key {
	return events.Key{Category: "player", ID: p.key, Event: event}
}

// Bus event names fired by the session.
const (
	CardCarried   = "carried"
	CardPlayed    = "played"
	CardDiscarded = "discarded"
	PlayerLevelUp = "level_up"
	PlayerLevelDn = "level_down"
)
