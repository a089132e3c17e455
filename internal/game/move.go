// internal/game/move.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/models"
)

// Move is a player intent with every id resolved to a live reference.
type Move struct {
	Type   models.MoveType
	Player *Player
	Card   cards.Card // nil for DONE and WAIT
	Target models.Target
}

// resolveMove turns a raw action into a Move. Any id that does not resolve fails
// with ErrUnresolvable. Assumes lock is held.
func (s *Session) resolveMove(a models.Action) (Move, error) {
	mt, err := a.Move()
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	player, ok := s.playerByID(a.Player)
	if !ok {
		return Move{}, fmt.Errorf("%w: no player %d", ErrUnresolvable, a.Player)
	}
	m := Move{Type: mt, Player: player, Target: a.Target}

	cardID, hasCard, err := a.CardID()
	if err != nil {
		return Move{}, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	if hasCard {
		c, ok := s.registry.Lookup(cardID)
		if !ok {
			return Move{}, fmt.Errorf("%w: no card %d", ErrUnresolvable, cardID)
		}
		m.Card = c
	} else if mt != models.MoveDone && mt != models.MoveWait {
		return Move{}, fmt.Errorf("%w: %s needs a card", ErrUnresolvable, mt)
	}

	switch a.Target.Kind {
	case models.TargetCard:
		if _, ok := s.registry.Lookup(a.Target.ID); !ok {
			return Move{}, fmt.Errorf("%w: no target card %d", ErrUnresolvable, a.Target.ID)
		}
	case models.TargetPlayer:
		if _, ok := s.playerByID(a.Target.ID); !ok {
			return Move{}, fmt.Errorf("%w: no target player %d", ErrUnresolvable, a.Target.ID)
		}
	}
	return m, nil
}

func (m Move) cardID() interface{} {
	if m.Card == nil {
		return nil
	}
	return m.Card.ID()
}
