// internal/game/views.go
package game

import (
	"strings"

	"github.com/jason-s-yu/munchkin/internal/cards"
)

// send stamps ev with the current action number and pushes it to p.
// Assumes lock is held.
func (s *Session) send(p *Player, ev Event) {
	ev.ActionNumber = s.actionNumber
	if p.conn == nil {
		return
	}
	p.conn.Send(ev)
}

// broadcast sends every seat the event built for it. Assumes lock is held.
func (s *Session) broadcast(build func(viewer *Player) Event) {
	for _, p := range s.players {
		s.send(p, build(p))
	}
}

// broadcastMessage sends a public system message made of the words joined by
// spaces. Assumes lock is held.
func (s *Session) broadcastMessage(words ...string) {
	msg := &ChatMessage{From: "system", Text: strings.Join(words, " ")}
	s.broadcast(func(*Player) Event { return Event{Type: EventMessage, Message: msg} })
}

// broadcastCombat assumes lock is held.
func (s *Session) broadcastCombat() {
	if s.combat == nil {
		return
	}
	s.broadcast(func(viewer *Player) Event { return Event{Type: EventCombat, Combat: s.combat.View(viewer)} })
}

// updatePlayer sends every seat its view of p. Assumes lock is held.
func (s *Session) updatePlayer(p *Player) {
	s.broadcast(func(viewer *Player) Event {
		v := s.playerView(p, viewer)
		return Event{Type: EventPlayer, Player: &v}
	})
}

// updatePlayers renumbers the seats, sends every seat the full table and, once
// the game runs, refreshed valid moves. Assumes lock is held.
func (s *Session) updatePlayers() {
	for i, p := range s.players {
		p.ID = i
	}
	s.broadcast(func(viewer *Player) Event { return Event{Type: EventPlayers, Players: s.playerViews(viewer)} })
	if s.phase != "" {
		s.updateValidMoves()
	}
}

// playerView renders p for viewer. Hand cards are hidden from everyone but p;
// carried cards are public. A nil viewer sees everything.
func (s *Session) playerView(p, viewer *Player) PlayerView {
	v := PlayerView{
		Name:      p.Name,
		ID:        p.ID,
		Level:     p.Level(),
		Bonus:     p.Bonus(),
		Total:     p.Total(),
		Race:      p.Race(),
		Ready:     p.Ready,
		Connected: p.Connected,
		Hand:      make([]cards.Info, 0, len(p.Hand)),
		Carried:   make([]cards.Info, 0, len(p.Carried)),
	}
	showHand := viewer == nil || viewer == p
	for _, c := range p.Hand {
		if showHand {
			v.Hand = append(v.Hand, c.Info(p))
		} else {
			v.Hand = append(v.Hand, s.deckFor(c).HiddenCard(c.ID()).Info(nil))
		}
	}
	for _, c := range p.Carried {
		v.Carried = append(v.Carried, c.Info(p))
	}
	return v
}

func (s *Session) playerViews(viewer *Player) []PlayerView {
	out := make([]PlayerView, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, s.playerView(p, viewer))
	}
	return out
}

// Welcome tells p its seat and resume token.
func (s *Session) Welcome(p *Player, token string) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.send(p, Event{Type: EventWelcome, Player: p.ID, Token: token})
}

// SendError reports a rejected request to p only.
func (s *Session) SendError(p *Player, reason string) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.send(p, Event{Type: EventError, Reason: reason})
}

// Chat broadcasts a message from p to every seat.
func (s *Session) Chat(p *Player, text string) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	msg := &ChatMessage{From: p.Name, Text: text}
	s.broadcast(func(*Player) Event { return Event{Type: EventMessage, Message: msg} })
}

// View returns the table as seen by viewer, for tests and debugging.
func (s *Session) View(viewer *Player) []PlayerView {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.playerViews(viewer)
}
