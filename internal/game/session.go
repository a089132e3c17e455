// internal/game/session.go
package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/deck"
	"github.com/jason-s-yu/munchkin/internal/events"
	"github.com/jason-s-yu/munchkin/internal/ids"
	"github.com/jason-s-yu/munchkin/internal/models"
	"github.com/sirupsen/logrus"
)

// Recorder receives every state-changing action of a session.
type Recorder interface {
	Record(ctx context.Context, rec models.ActionRecord) error
}

// ResultStore persists the outcome of a finished session.
type ResultStore interface {
	SaveResult(ctx context.Context, res models.SessionResult) error
}

// OnEndFunc runs once a session reaches END, after the result was handed off.
// It is called with the session lock held and must not call Close synchronously.
type OnEndFunc func(s *Session, winner *Player)

const (
	stallTimerKey = "stall"
	idleTimerKey  = "idle"
	recordTimeout = 2 * time.Second
)

// Session holds the entire state of one game. Every exported method takes Mu;
// unexported helpers assume it is held.
type Session struct {
	ID    uuid.UUID
	Name  string
	Rules Rules

	Mu sync.Mutex

	players      []*Player
	registry     *registry
	ids          *ids.Generator
	doors        *deck.Deck
	treasures    *deck.Deck
	phase        models.Phase // empty until the deal
	turn         *Player
	combat       *Combat
	actionNumber int
	stallArmedAt int // action number the stall timer was last armed at
	seated       int // seats ever created, for player bus keys
	started      bool
	closed       bool
	startedAt    time.Time
	passHash     string

	bus   *events.Bus
	sched *events.Scheduler
	rng   *rand.Rand
	log   *logrus.Entry

	Recorder Recorder
	Results  ResultStore
	OnEnd    OnEndFunc
}

// NewSession builds an unstarted session with freshly shuffled decks.
func NewSession(name string, rules Rules) *Session {
	rules = rules.withDefaults()
	seed := rules.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	id, _ := uuid.NewRandom()
	log := logrus.WithFields(logrus.Fields{"session": id, "name": name})
	bus := events.NewBus()

	s := &Session{
		ID:       id,
		Name:     name,
		Rules:    rules,
		registry: newRegistry(bus),
		ids:      ids.New(),
		bus:      bus,
		sched:    events.NewScheduler(context.Background(), log),
		rng:      rand.New(rand.NewSource(seed)),
		log:      log,
	}
	s.doors = deck.NewFromCatalog(cards.Door, rules.DoorDeck, s.ids, s.registry, s.rng)
	s.treasures = deck.NewFromCatalog(cards.Treasure, rules.TreasureDeck, s.ids, s.registry, s.rng)
	return s
}

// Bus exposes the session's card and player event bus for extension hooks.
func (s *Session) Bus() *events.Bus { return s.bus }

// Join seats name on the session. Before the deal a new seat is created; once the
// game runs only a disconnected seat with the same name can be resumed.
func (s *Session) Join(name string, conn Conn) (*Player, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.join(name, conn)
}

// join assumes lock is held.
func (s *Session) join(name string, conn Conn) (*Player, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if existing := s.playerByName(name); existing != nil {
		if existing.Connected {
			return nil, ErrNameTaken
		}
		s.reconnect(existing, conn)
		return existing, nil
	}
	if s.started {
		return nil, ErrSessionStarted
	}

	p := NewPlayer(name, conn)
	s.seated++
	p.key = s.seated
	s.players = append(s.players, p)
	s.updatePlayers()
	s.log.WithField("player", name).Infof("player joined (%d/%d)", len(s.players), s.Rules.MinPlayers)

	if len(s.players) == s.Rules.MinPlayers {
		s.sched.Go("start", func(context.Context) error {
			s.Start()
			return nil
		})
	}
	return p, nil
}

// AddObserver seats a participant that discards everything it is sent.
func (s *Session) AddObserver() (*Player, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	name := ObserverName
	for i := 2; s.playerByName(name) != nil; i++ {
		name = fmt.Sprintf("%s%d", ObserverName, i)
	}
	return s.join(name, Observer{})
}

// Resume reattaches conn to the seat with the given name, connected or not. A
// conn still attached to the seat is replaced.
func (s *Session) Resume(name string, conn Conn) (*Player, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	p := s.playerByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: no seat named %q", ErrUnresolvable, name)
	}
	s.reconnect(p, conn)
	return p, nil
}

// reconnect attaches conn to an existing seat and resyncs everyone. A live conn
// it displaces is told so it stops acting for the seat. Assumes lock is held.
func (s *Session) reconnect(p *Player, conn Conn) {
	if old := p.conn; old != nil && old != conn {
		if r, ok := old.(Replaceable); ok {
			r.Replaced()
		}
	}
	p.attach(conn)
	s.log.WithField("player", p.Name).Info("player reconnected")
	s.broadcastMessage(p.Name + " reconnected")
	s.updatePlayers()
	if s.combat != nil {
		s.send(p, Event{Type: EventCombat, Combat: s.combat.View(p)})
	}
}

// HandleDisconnect clears p's connection. Before the deal the seat is removed
// outright; afterwards the seat and its cards are kept for a later Join. A conn
// that was already replaced by a newer one is ignored.
func (s *Session) HandleDisconnect(p *Player, conn Conn) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.closed || (conn != nil && p.conn != conn) {
		return
	}
	if !s.started {
		for i, x := range s.players {
			if x == p {
				s.players = append(s.players[:i], s.players[i+1:]...)
				break
			}
		}
		p.detach()
		s.log.WithField("player", p.Name).Info("player left before start")
		s.updatePlayers()
		return
	}
	p.detach()
	s.log.WithField("player", p.Name).Info("player disconnected")
	s.broadcastMessage(p.Name + " disconnected")
	s.updatePlayer(p)
}

// Start deals the opening hands and enters SETUP. It runs at most once and is
// a no-op while fewer than MinPlayers are seated.
func (s *Session) Start() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.started || s.closed || len(s.players) < s.Rules.MinPlayers {
		return
	}
	s.started = true
	s.startedAt = time.Now()
	s.log.Infof("starting game with %d players", len(s.players))
	s.logAction(nil, "start", map[string]interface{}{"players": len(s.players)})
	s.broadcastMessage("Starting game!")

	for _, p := range s.players {
		s.deal(p, s.doors, false, s.Rules.HandSize)
		s.deal(p, s.treasures, false, s.Rules.HandSize)
	}
	s.changePhase(nil, models.PhaseSetup)
}

// Close stops timers and joins background tasks. It must not be called with Mu
// held or from inside a session timer.
func (s *Session) Close() error {
	s.Mu.Lock()
	if s.closed {
		s.Mu.Unlock()
		return nil
	}
	s.closed = true
	s.Mu.Unlock()

	s.log.Info("closing session")
	return s.sched.Close()
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.closed
}

// Started reports whether the opening hands were dealt.
func (s *Session) Started() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.started
}

// Phase returns the current phase, empty before the deal.
func (s *Session) Phase() models.Phase {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.phase
}

// ActionNumber returns the current state version.
func (s *Session) ActionNumber() int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.actionNumber
}

// Players returns a copy of the seat list.
func (s *Session) Players() []*Player {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return append([]*Player(nil), s.players...)
}

// Turn returns the current turn holder, nil during free-for-all phases.
func (s *Session) Turn() *Player {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.turn
}

// HasPassphrase reports whether joining requires a passphrase.
func (s *Session) HasPassphrase() bool { return s.passHash != "" }

// deal draws count cards from d into p's hand. Everyone sees the card if faceUp,
// otherwise only p does. Assumes lock is held.
func (s *Session) deal(p *Player, d *deck.Deck, faceUp bool, count int) {
	for i := 0; i < count; i++ {
		c, err := d.Draw()
		if err != nil {
			s.log.WithError(err).Warnf("cannot deal %s card to %s", d.Category(), p.Name)
			return
		}
		p.give(c)
		s.logAction(p, "draw", map[string]interface{}{"card": c.ID(), "deck": string(d.Category()), "face_up": faceUp})
		for _, viewer := range s.players {
			info := d.HiddenCard(c.ID()).Info(nil)
			if viewer == p || faceUp {
				info = c.Info(viewer)
			}
			s.send(viewer, Event{Type: EventDraw, Player: p.ID, Card: &info})
		}
	}
}

// discard takes c away from whoever holds it and puts it on its deck's discard
// pile. Assumes lock is held.
func (s *Session) discard(c cards.Card) {
	for _, p := range s.players {
		if p.take(c) {
			break
		}
	}
	if s.combat != nil {
		s.combat.remove(c)
	}
	s.deckFor(c).Discard(c)
	s.bus.Fire(cardKey(c, CardDiscarded), nil)
}

func (s *Session) deckFor(c cards.Card) *deck.Deck {
	if c.Category() == cards.Treasure {
		return s.treasures
	}
	return s.doors
}

// playerByID returns the seat with display id id. Assumes lock is held.
func (s *Session) playerByID(id int) (*Player, bool) {
	if id < 0 || id >= len(s.players) {
		return nil, false
	}
	return s.players[id], true
}

// playerByName assumes lock is held.
func (s *Session) playerByName(name string) *Player {
	for _, p := range s.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// isActorsTurn is true during free-for-all phases or when p holds the turn.
func (s *Session) isActorsTurn(p *Player) bool {
	return s.turn == nil || s.turn == p
}

// logAction bumps the action number and hands a record to the Recorder.
// Assumes lock is held.
func (s *Session) logAction(actor *Player, actionType string, payload map[string]interface{}) {
	s.actionNumber++
	if s.Recorder == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := models.ActionRecord{
		SessionID:    s.ID,
		ActionNumber: s.actionNumber,
		Type:         actionType,
		Payload:      payload,
		Timestamp:    time.Now().UnixMilli(),
	}
	if actor != nil {
		id := actor.ID
		rec.Actor = &id
		rec.ActorName = actor.Name
	}
	recorder := s.Recorder
	s.sched.Go("record", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
		if err := recorder.Record(ctx, rec); err != nil {
			s.log.WithError(err).Warnf("failed to record action %d", rec.ActionNumber)
		}
		return nil
	})
}
