// internal/game/player.go
package game

import "github.com/jason-s-yu/munchkin/internal/cards"

const (
	minLevel   = 1
	maxNonKill = 9
	startLevel = 1
)

// Player is one seat in a session. All fields are guarded by the session lock.
type Player struct {
	ID        int // display id, equal to the seat index
	Name      string
	Hand      []cards.Card
	Carried   []cards.Card
	Ready     bool
	Connected bool

	level int
	bonus int
	race  string
	conn  Conn
	key   int // bus id, fixed when the seat is created
}

// NewPlayer creates a level 1 player attached to conn. A nil conn starts disconnected.
func NewPlayer(name string, conn Conn) *Player {
	return &Player{
		Name:      name,
		Connected: conn != nil,
		level:     startLevel,
		conn:      conn,
	}
}

func (p *Player) Level() int   { return p.level }
func (p *Player) Bonus() int   { return p.bonus }
func (p *Player) Total() int   { return p.level + p.bonus }
func (p *Player) Race() string { return p.race }

// SetRace changes the race and recomputes conditional item bonuses.
func (p *Player) SetRace(race string) {
	p.race = race
	p.recomputeBonus()
}

// LevelUp raises the level by count. Only a monster kill may go past 9.
func (p *Player) LevelUp(count int, monsterKill bool) {
	p.level += count
	if !monsterKill && p.level > maxNonKill {
		p.level = maxNonKill
	}
}

// LevelDown lowers the level by count, never below 1.
func (p *Player) LevelDown(count int) {
	p.level -= count
	if p.level < minLevel {
		p.level = minLevel
	}
}

// Equip recomputes the running bonus after item joined the carried cards.
func (p *Player) Equip(item cards.Item) {
	p.recomputeBonus()
}

// recomputeBonus sums the bonus of every carried item the player can equip.
func (p *Player) recomputeBonus() {
	total := 0
	for _, c := range p.Carried {
		if it, ok := c.(cards.Item); ok && it.CanEquip(p) {
			total += it.BonusOnPlayer(p)
		}
	}
	p.bonus = total
}

// AllCards lists the hand followed by the carried cards.
func (p *Player) AllCards() []cards.Card {
	out := make([]cards.Card, 0, len(p.Hand)+len(p.Carried))
	out = append(out, p.Hand...)
	return append(out, p.Carried...)
}

// Holds reports whether c is in the player's hand or carried cards.
func (p *Player) Holds(c cards.Card) bool {
	return indexOf(p.Hand, c) >= 0 || indexOf(p.Carried, c) >= 0
}

// take removes c from wherever the player holds it and reports whether it was there.
func (p *Player) take(c cards.Card) bool {
	if i := indexOf(p.Hand, c); i >= 0 {
		p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
		return true
	}
	if i := indexOf(p.Carried, c); i >= 0 {
		p.Carried = append(p.Carried[:i], p.Carried[i+1:]...)
		p.recomputeBonus()
		return true
	}
	return false
}

// give puts c into the player's hand.
func (p *Player) give(c cards.Card) {
	c.SetInHand(true)
	p.Hand = append(p.Hand, c)
}

// carry moves c from the hand to the carried cards.
func (p *Player) carry(c cards.Card) bool {
	i := indexOf(p.Hand, c)
	if i < 0 {
		return false
	}
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	c.SetInHand(false)
	p.Carried = append(p.Carried, c)
	return true
}

// Conn is the player's outbound connection, nil while disconnected.
func (p *Player) Conn() Conn { return p.conn }

func (p *Player) attach(conn Conn) {
	p.conn = conn
	p.Connected = conn != nil
}

func (p *Player) detach() {
	p.conn = nil
	p.Connected = false
}

func indexOf(list []cards.Card, c cards.Card) int {
	for i, x := range list {
		if x == c {
			return i
		}
	}
	return -1
}
