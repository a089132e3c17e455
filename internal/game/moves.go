// internal/game/moves.go
package game

import (
	"fmt"
	"strconv"

	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/models"
	"github.com/sirupsen/logrus"
)

// HandleAction resolves and plays a move sent by from. A move on behalf of
// another seat is rejected.
func (s *Session) HandleAction(from *Player, a models.Action) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if err := s.checkRunning(); err != nil {
		return err
	}
	m, err := s.resolveMove(a)
	if err != nil {
		s.log.WithError(err).Debug("rejected malformed action")
		return err
	}
	if from != nil && m.Player != from {
		return fmt.Errorf("%w: cannot act for %s", ErrInvalidMove, m.Player.Name)
	}
	return s.playMove(m)
}

// isValid reports whether m is legal right now. WAIT always is; DONE needs only
// the phase to allow it; every other move needs the phase to allow it, the actor
// to hold the card, and the card to accept the move. Assumes lock is held.
func (s *Session) isValid(m Move) bool {
	switch m.Type {
	case models.MoveWait:
		return true
	case models.MoveDone:
		return s.phase.Permits(models.MoveDone)
	}
	if !s.phase.Permits(m.Type) || m.Card == nil || m.Player == nil {
		return false
	}
	if !m.Player.Holds(m.Card) {
		return false
	}
	return m.Card.CanPlay(m.Type, m.Target, s.phase, s.isActorsTurn(m.Player))
}

// targets lists every target a move may name right now: none, every card held
// by a seat or on the combat table, and the two combat sides during COMBAT.
// Assumes lock is held.
func (s *Session) targets() []models.Target {
	out := []models.Target{models.NoTarget}
	for _, p := range s.players {
		for _, c := range p.AllCards() {
			out = append(out, models.CardTarget(c.ID()))
		}
	}
	if s.combat != nil {
		for _, c := range s.combat.Cards() {
			out = append(out, models.CardTarget(c.ID()))
		}
	}
	if s.phase == models.PhaseCombat && s.combat != nil {
		out = append(out,
			models.CombatTarget(models.SidePlayers),
			models.CombatTarget(models.SideMonsters))
	}
	return out
}

// getValidMoves sweeps p's cards against every move the phase allows and every
// target. DONE is always offered under NoCardKey when the phase allows it.
// Assumes lock is held.
func (s *Session) getValidMoves(p *Player) ValidMoves {
	valid := make(ValidMoves)
	if s.phase == "" {
		return valid
	}
	targets := s.targets()
	for _, mt := range models.PotentialMoves(s.phase) {
		if mt == models.MoveDone {
			valid.add(NoCardKey, mt, models.NoTarget)
			continue
		}
		for _, c := range p.AllCards() {
			for _, t := range targets {
				if s.isValid(Move{Type: mt, Player: p, Card: c, Target: t}) {
					valid.add(strconv.Itoa(c.ID()), mt, t)
				}
			}
		}
	}
	return valid
}

// ValidMoves returns the legal moves of p.
func (s *Session) ValidMoves(p *Player) ValidMoves {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.getValidMoves(p)
}

// updateValidMoves pushes each seat its legal moves. Assumes lock is held.
func (s *Session) updateValidMoves() {
	var idle []*Player
	for _, p := range s.players {
		moves := s.getValidMoves(p)
		s.send(p, Event{Type: EventValidMoves, Moves: moves})
		if !p.Ready && moves.OnlyDone() {
			idle = append(idle, p)
		}
	}
	s.scheduleIdleReady(idle)
}

// playMove validates and applies m. Assumes lock is held.
func (s *Session) playMove(m Move) error {
	if !s.isValid(m) {
		s.log.WithFields(logrus.Fields{"player": m.Player.Name, "move": m.Type, "card": m.cardID()}).Debug("invalid move")
		return fmt.Errorf("%w: cannot %s that now", ErrInvalidMove, m.Type)
	}
	return s.applyMove(m)
}

// applyMove carries out an already validated move. Assumes lock is held.
func (s *Session) applyMove(m Move) error {
	p := m.Player
	switch m.Type {
	case models.MoveDone:
		s.ready(p)
		return nil

	case models.MoveWait:
		s.logAction(p, "wait", nil)
		s.broadcastMessage(p.Name, "asks everyone to wait")
		s.timeout(s.Rules.StallTimeout)
		return nil

	case models.MoveCarry:
		if !p.carry(m.Card) {
			return fmt.Errorf("%w: %s is not in hand", ErrInvalidMove, m.Card.Name())
		}
		s.logAction(p, "carry", map[string]interface{}{"card": m.Card.ID()})
		if it, ok := m.Card.(cards.Item); ok && it.CanEquip(p) {
			p.Equip(it)
			s.broadcastMessage(p.Name, "equipped", m.Card.Name())
		} else {
			s.broadcastMessage(p.Name, "is carrying", m.Card.Name())
		}
		s.bus.Fire(cardKey(m.Card, CardCarried), p)

	case models.MovePlay:
		playable, ok := m.Card.(cards.Playable)
		if !ok {
			return fmt.Errorf("%w: %s cannot be played", ErrInvalidMove, m.Card.Name())
		}
		effect, err := playable.Play(m.Target)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMove, err)
		}
		if err := s.applyEffect(p, m.Card, effect); err != nil {
			return err
		}
		s.bus.Fire(cardKey(m.Card, CardPlayed), p)

	case models.MoveFight:
		monster, ok := m.Card.(cards.Monster)
		if !ok {
			return fmt.Errorf("%w: %s is not a monster", ErrInvalidMove, m.Card.Name())
		}
		p.take(monster)
		monster.SetInHand(false)
		s.logAction(p, "fight", map[string]interface{}{"card": monster.ID()})
		s.updatePlayer(p)
		s.startCombat(p, monster)
		return nil

	case models.MoveGive:
		to, ok := s.playerByID(m.Target.ID)
		if m.Target.Kind != models.TargetPlayer || !ok {
			return fmt.Errorf("%w: give needs a player target", ErrInvalidMove)
		}
		p.take(m.Card)
		to.give(m.Card)
		s.logAction(p, "give", map[string]interface{}{"card": m.Card.ID(), "to": to.ID})
		s.broadcastMessage(p.Name, "gave a card to", to.Name)
		s.updatePlayer(to)

	default:
		return fmt.Errorf("%w: %s has no effect", ErrInvalidMove, m.Type)
	}

	s.updatePlayer(p)
	s.updateValidMoves()
	s.timeout(s.Rules.StallTimeout)
	return nil
}

// applyEffect interprets what a played card asked for. Assumes lock is held.
func (s *Session) applyEffect(p *Player, c cards.Card, effect cards.Effect) error {
	switch effect.Kind {
	case cards.EffectAttachToCombat:
		if s.combat == nil {
			return fmt.Errorf("%w: there is no combat", ErrInvalidMove)
		}
		p.take(c)
		c.SetInHand(false)
		s.combat.Attach(effect.Side, c)
		s.logAction(p, "play", map[string]interface{}{"card": c.ID(), "side": string(effect.Side)})
		s.broadcastMessage(p.Name, "played", c.Name(), "for the", string(effect.Side))
		s.broadcastCombat()
		return nil
	}
	return fmt.Errorf("%w: unknown effect %q", ErrInvalidMove, effect.Kind)
}
