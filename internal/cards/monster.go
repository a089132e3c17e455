// internal/cards/monster.go
package cards

import "github.com/jason-s-yu/munchkin/internal/models"

// MonsterSpec describes one monster type. Nil hooks fall back to the defaults:
// no bonus, no bad stuff, fleeing always allowed.
type MonsterSpec struct {
	Name     string
	Image    string
	Level    int
	Treasure int
	Levels   int // levels granted on a kill, 1 if zero
	Rule     string
	Bonus    func(p Holder) int
	BadStuff func(p Holder)
	CanFlee  func(p Holder) bool
}

// MonsterCard is the standard Monster implementation.
type MonsterCard struct {
	Base
	def MonsterSpec
}

var _ Monster = (*MonsterCard)(nil)

func NewMonster(id int, def MonsterSpec) *MonsterCard {
	if def.Levels == 0 {
		def.Levels = 1
	}
	return &MonsterCard{Base: NewBase(id, Door, def.Name, def.Image), def: def}
}

// monsterClause: fought as a whole from the hand, on the actor's turn, never targeted.
func monsterClause(c Card, move models.MoveType, target models.Target, inTurn bool) bool {
	return move == models.MoveFight && c.InHand() && inTurn && target.IsNone()
}

func (m *MonsterCard) CanPlay(move models.MoveType, target models.Target, phase models.Phase, inTurn bool) bool {
	return m.Base.CanPlay(move, target, phase, inTurn) || monsterClause(m, move, target, inTurn)
}

func (m *MonsterCard) Level() int         { return m.def.Level }
func (m *MonsterCard) Treasure() int      { return m.def.Treasure }
func (m *MonsterCard) LevelsGranted() int { return m.def.Levels }
func (m *MonsterCard) BadStuffRule() string {
	return m.def.Rule
}

func (m *MonsterCard) Bonus(p Holder) int {
	if m.def.Bonus == nil {
		return 0
	}
	return m.def.Bonus(p)
}

func (m *MonsterCard) BadStuff(p Holder) {
	if m.def.BadStuff != nil {
		m.def.BadStuff(p)
	}
}

func (m *MonsterCard) CanFlee(p Holder) bool {
	if m.def.CanFlee == nil {
		return true
	}
	return m.def.CanFlee(p)
}

func (m *MonsterCard) Info(viewer Holder) Info {
	info := m.Base.Info(viewer)
	level := m.def.Level
	info.Level = &level
	info.Rule = m.def.Rule
	if viewer != nil {
		bonus := m.Bonus(viewer)
		info.Bonus = &bonus
	}
	return info
}
