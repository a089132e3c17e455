// internal/game/phase.go
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/models"
)

// Ready records p's vote to advance. Once every seat has voted the current
// phase's transition runs.
func (s *Session) Ready(p *Player) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if err := s.checkRunning(); err != nil {
		return err
	}
	s.ready(p)
	return nil
}

// checkRunning assumes lock is held.
func (s *Session) checkRunning() error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case !s.started || s.phase == "":
		return ErrNotStarted
	case s.phase.Terminal():
		return fmt.Errorf("%w: the game is over", ErrInvalidMove)
	}
	return nil
}

// ready votes and then advances if the vote was the last one missing.
// Assumes lock is held.
func (s *Session) ready(p *Player) {
	s.vote(p)
	s.advanceIfAllReady()
}

// vote marks p ready, versions the change and re-arms the stall timer.
// Assumes lock is held.
func (s *Session) vote(p *Player) {
	if p.Ready {
		return
	}
	p.Ready = true
	s.logAction(p, "ready", nil)
	s.broadcastMessage(p.Name + " is ready")
	s.updatePlayer(p)
	s.timeout(s.Rules.StallTimeout)
}

// advanceIfAllReady clears every vote and runs nextPhase once all seats voted.
// Assumes lock is held.
func (s *Session) advanceIfAllReady() {
	if len(s.players) == 0 {
		return
	}
	for _, p := range s.players {
		if !p.Ready {
			return
		}
	}
	for _, p := range s.players {
		p.Ready = false
	}
	s.nextPhase()
	// A transition that stays in the phase leaves the last timer stale.
	if s.stallArmedAt != s.actionNumber {
		s.timeout(s.Rules.StallTimeout)
	}
}

// nextPhase executes the transition wired for the current phase. Leaving SETUP
// picks the first turn holder and kicks the door in one step. Phases without a
// rule stay where they are. Assumes lock is held.
func (s *Session) nextPhase() {
	switch s.phase {
	case models.PhaseSetup:
		first := s.players[s.rng.Intn(len(s.players))]
		s.changePhase(first, models.PhaseBegin)
		s.kickDoor()
	case models.PhaseBegin:
		s.kickDoor()
	case models.PhaseCombat:
		s.resolveCombat()
	case models.PhasePostCombat:
		s.changePhase(s.nextTurnHolder(), models.PhaseBegin)
	default:
		s.log.Debugf("no transition out of %s", s.phase)
		s.updatePlayers()
	}
}

// nextTurnHolder is the seat after the current turn holder, cyclically.
func (s *Session) nextTurnHolder() *Player {
	if s.turn == nil {
		return s.players[0]
	}
	for i, p := range s.players {
		if p == s.turn {
			return s.players[(i+1)%len(s.players)]
		}
	}
	return s.players[0]
}

// kickDoor draws the door card for the turn holder. A monster starts combat; any
// other door card goes to the turn holder's hand face up and the phase stays.
// Assumes lock is held.
func (s *Session) kickDoor() {
	door, err := s.doors.Draw()
	if err != nil {
		s.log.WithError(err).Warn("cannot kick down the door")
		s.broadcastMessage("The door deck is empty")
		s.updatePlayers()
		return
	}
	holder := s.turn
	if holder == nil {
		holder = s.players[0]
	}
	s.logAction(holder, "kick_door", map[string]interface{}{"card": door.ID()})

	monster, ok := door.(cards.Monster)
	if !ok {
		holder.give(door)
		info := door.Info(nil)
		s.broadcast(func(*Player) Event { return Event{Type: EventDraw, Player: holder.ID, Card: &info} })
		s.updatePlayers()
		return
	}
	s.startCombat(holder, monster)
}

// startCombat opens a combat between p and m and enters COMBAT.
// Assumes lock is held.
func (s *Session) startCombat(p *Player, m cards.Monster) {
	s.combat = NewCombat([]*Player{p}, []cards.Monster{m})
	s.log.WithField("monster", m.Name()).Infof("%s is fighting", p.Name)
	s.broadcastMessage(p.Name, "is fighting", m.Name())
	s.broadcastCombat()
	s.changePhase(p, models.PhaseCombat)
}

// resolveCombat scores the active combat, applies the reward or the bad stuff
// and clears the table. Assumes lock is held.
func (s *Session) resolveCombat() {
	c := s.combat
	if c == nil || len(c.Players) == 0 || len(c.Monsters) == 0 {
		s.combat = nil
		s.changePhase(s.turn, models.PhasePostCombat)
		return
	}

	party, monsters := c.PlayerTotal(), c.MonsterTotal()
	won := c.PartyWins()
	s.logAction(nil, "combat", map[string]interface{}{
		"won":           won,
		"player_total":  party,
		"monster_total": monsters,
	})

	var champion *Player
	if won {
		champion = c.Players[0]
		s.broadcastMessage(fmt.Sprintf("The party wins %d to %d!", party, monsters))
		s.deal(champion, s.treasures, len(c.Players) > 1, c.Treasure())
		before := champion.Level()
		champion.LevelUp(c.LevelsGranted(), true)
		s.levelChanged(champion, before)
	} else {
		s.broadcastMessage(fmt.Sprintf("The monsters win %d to %d!", monsters, party))
		first := c.Monsters[0]
		for _, p := range c.Players {
			before := p.Level()
			first.BadStuff(p)
			s.levelChanged(p, before)
			if rule := first.BadStuffRule(); rule != "" {
				s.broadcastMessage(p.Name+":", rule)
			}
		}
	}

	for _, card := range c.Cards() {
		s.discard(card)
	}
	s.combat = nil
	s.updatePlayers()

	if champion != nil && champion.Level() >= s.Rules.WinLevel {
		s.endGame(champion)
		return
	}
	s.changePhase(s.turn, models.PhasePostCombat)
}

// levelChanged fires the level bus events for p. Assumes lock is held.
func (s *Session) levelChanged(p *Player, before int) {
	switch delta := p.Level() - before; {
	case delta > 0:
		s.bus.Fire(PlayerKey(p, PlayerLevelUp), delta)
	case delta < 0:
		s.bus.Fire(PlayerKey(p, PlayerLevelDn), -delta)
	}
}

// endGame moves to END, announces the winner and hands the result off.
// Assumes lock is held.
func (s *Session) endGame(winner *Player) {
	s.sched.Cancel(stallTimerKey)
	s.sched.Cancel(idleTimerKey)
	s.changePhase(winner, models.PhaseEnd)
	s.log.WithField("winner", winner.Name).Info("game over")
	s.broadcastMessage(winner.Name, "has won the game!")
	s.broadcast(func(viewer *Player) Event {
		return Event{Type: EventEnd, Player: winner.ID, Players: s.playerViews(viewer)}
	})

	if s.Results != nil {
		res := s.result(winner)
		store := s.Results
		s.sched.Go("save_result", func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
			defer cancel()
			if err := store.SaveResult(ctx, res); err != nil {
				s.log.WithError(err).Error("failed to save session result")
			}
			return nil
		})
	}
	if s.OnEnd != nil {
		s.OnEnd(s, winner)
	}
}

func (s *Session) result(winner *Player) models.SessionResult {
	res := models.SessionResult{
		SessionID:  s.ID,
		Name:       s.Name,
		Winner:     winner.Name,
		Actions:    s.actionNumber,
		StartedAt:  s.startedAt.UnixMilli(),
		FinishedAt: time.Now().UnixMilli(),
	}
	for _, p := range s.players {
		res.Players = append(res.Players, models.PlayerResult{Name: p.Name, Seat: p.ID, Level: p.Level()})
	}
	return res
}

// changePhase installs the new turn holder and phase, tells everyone and arms
// the stall timer. Assumes lock is held.
func (s *Session) changePhase(p *Player, phase models.Phase) {
	turnChanged := p != s.turn
	s.turn = p
	s.phase = phase

	payload := map[string]interface{}{"phase": string(phase)}
	if p != nil {
		payload["turn"] = p.ID
	}
	s.logAction(p, "phase", payload)
	s.log.WithField("phase", phase).Info("phase changed")

	if turnChanged && p != nil {
		s.broadcast(func(*Player) Event { return Event{Type: EventTurn, Player: p.ID} })
		s.broadcastMessage("It is now " + p.Name + "'s turn")
	}
	s.broadcast(func(*Player) Event {
		ev := Event{Type: EventPhase, Phase: phase}
		if p != nil {
			ev.Player = p.ID
		}
		return ev
	})
	s.updateValidMoves()
	if !phase.Terminal() {
		s.timeout(s.Rules.StallTimeout)
	}
}

// timeout arms the stall timer for d and tells clients how long they have. When
// it fires with the action number unchanged every seat is forced ready.
// Assumes lock is held.
func (s *Session) timeout(d time.Duration) {
	if d <= 0 || s.phase == "" || s.phase.Terminal() {
		return
	}
	snapshot := s.actionNumber
	s.stallArmedAt = snapshot
	s.sched.Debounce(stallTimerKey, d, func() { s.stalled(snapshot) })
	s.broadcast(func(*Player) Event { return Event{Type: EventTimeout, Timeout: d.Milliseconds()} })
}

func (s *Session) stalled(snapshot int) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.closed || s.phase.Terminal() {
		return
	}
	if s.actionNumber != snapshot {
		s.log.Debugf("stale timer (armed at %d, now %d)", snapshot, s.actionNumber)
		return
	}
	s.log.WithField("phase", s.phase).Info("phase stalled, forcing every player ready")
	s.logAction(nil, "timeout", map[string]interface{}{"phase": string(s.phase)})
	s.broadcastMessage("Time is up!")
	for _, p := range s.players {
		p.Ready = true
	}
	s.advanceIfAllReady()
}

// scheduleIdleReady arms the idle vote when some seat has nothing to do but DONE.
// Assumes lock is held.
func (s *Session) scheduleIdleReady(idle []*Player) {
	if !s.Rules.AutoReadyIdle || len(idle) == 0 || s.phase.Terminal() {
		return
	}
	s.sched.Debounce(idleTimerKey, s.Rules.IdleReadyDelay, s.readyIdle)
}

func (s *Session) readyIdle() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.closed || s.phase == "" || s.phase.Terminal() {
		return
	}
	voted := false
	for _, p := range s.players {
		if !p.Ready && s.getValidMoves(p).OnlyDone() {
			s.vote(p)
			voted = true
		}
	}
	if voted {
		s.advanceIfAllReady()
	}
}
