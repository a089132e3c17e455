// internal/game/combat.go
package game

import (
	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/models"
)

// Combat is one battle: who fights, what they face, and the one-shots thrown in
// on either side. It lives from the door draw until resolution.
type Combat struct {
	Players          []*Player
	Monsters         []cards.Monster
	PlayerModifiers  []cards.Card
	MonsterModifiers []cards.Card
}

func NewCombat(players []*Player, monsters []cards.Monster) *Combat {
	return &Combat{Players: players, Monsters: monsters}
}

// Attach adds a played card to the named side.
func (c *Combat) Attach(side models.CombatSide, card cards.Card) {
	if side == models.SideMonsters {
		c.MonsterModifiers = append(c.MonsterModifiers, card)
		return
	}
	c.PlayerModifiers = append(c.PlayerModifiers, card)
}

// PlayerTotal is the sum of level plus bonus over participants, plus the player side modifiers.
func (c *Combat) PlayerTotal() int {
	total := 0
	for _, p := range c.Players {
		total += p.Total()
	}
	return total + modifierBonus(c.PlayerModifiers)
}

// MonsterTotal sums, per monster, its level plus the largest situational bonus it
// gets against any participant, plus the monster side modifiers.
func (c *Combat) MonsterTotal() int {
	total := 0
	for _, m := range c.Monsters {
		best := 0
		for i, p := range c.Players {
			if b := m.Bonus(p); i == 0 || b > best {
				best = b
			}
		}
		total += m.Level() + best
	}
	return total + modifierBonus(c.MonsterModifiers)
}

// PartyWins is true only when the party strictly beats the monsters.
func (c *Combat) PartyWins() bool {
	return c.PlayerTotal() > c.MonsterTotal()
}

// Treasure is the combined treasure count of every monster.
func (c *Combat) Treasure() int {
	n := 0
	for _, m := range c.Monsters {
		n += m.Treasure()
	}
	return n
}

// LevelsGranted is the combined level reward of every monster.
func (c *Combat) LevelsGranted() int {
	n := 0
	for _, m := range c.Monsters {
		n += m.LevelsGranted()
	}
	return n
}

// Cards lists every card the combat holds: monsters then both modifier piles.
func (c *Combat) Cards() []cards.Card {
	out := make([]cards.Card, 0, len(c.Monsters)+len(c.PlayerModifiers)+len(c.MonsterModifiers))
	for _, m := range c.Monsters {
		out = append(out, m)
	}
	out = append(out, c.PlayerModifiers...)
	return append(out, c.MonsterModifiers...)
}

// Holds reports whether card is one of the combat's monsters or modifiers.
func (c *Combat) Holds(card cards.Card) bool {
	for _, x := range c.Cards() {
		if x == card {
			return true
		}
	}
	return false
}

// Involves reports whether p is a participant.
func (c *Combat) Involves(p *Player) bool {
	for _, x := range c.Players {
		if x == p {
			return true
		}
	}
	return false
}

// View renders the combat for viewer, who may be nil.
func (c *Combat) View(viewer *Player) *CombatView {
	v := &CombatView{
		Players:          make([]int, 0, len(c.Players)),
		Monsters:         make([]cards.Info, 0, len(c.Monsters)),
		PlayerModifiers:  infos(c.PlayerModifiers, viewer),
		MonsterModifiers: infos(c.MonsterModifiers, viewer),
		PlayerTotal:      c.PlayerTotal(),
		MonsterTotal:     c.MonsterTotal(),
	}
	for _, p := range c.Players {
		v.Players = append(v.Players, p.ID)
	}
	var holder cards.Holder
	if viewer != nil {
		holder = viewer
	} else if len(c.Players) > 0 {
		holder = c.Players[0]
	}
	for _, m := range c.Monsters {
		v.Monsters = append(v.Monsters, m.Info(holder))
	}
	return v
}

func modifierBonus(list []cards.Card) int {
	n := 0
	for _, c := range list {
		if it, ok := c.(cards.Item); ok {
			n += it.Bonus()
		}
	}
	return n
}

func infos(list []cards.Card, viewer *Player) []cards.Info {
	var holder cards.Holder
	if viewer != nil {
		holder = viewer
	}
	out := make([]cards.Info, 0, len(list))
	for _, c := range list {
		out = append(out, c.Info(holder))
	}
	return out
}

// remove drops card from whichever modifier pile or monster list holds it.
func (c *Combat) remove(card cards.Card) {
	for i, m := range c.Monsters {
		if cards.Card(m) == card {
			c.Monsters = append(c.Monsters[:i], c.Monsters[i+1:]...)
			return
		}
	}
	if i := indexOf(c.PlayerModifiers, card); i >= 0 {
		c.PlayerModifiers = append(c.PlayerModifiers[:i], c.PlayerModifiers[i+1:]...)
		return
	}
	if i := indexOf(c.MonsterModifiers, card); i >= 0 {
		c.MonsterModifiers = append(c.MonsterModifiers[:i], c.MonsterModifiers[i+1:]...)
	}
}
