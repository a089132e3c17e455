// internal/cards/item.go
package cards

import (
	"errors"
	"fmt"

	"github.com/jason-s-yu/munchkin/internal/models"
)

// ErrBadTarget is returned by Play when the target cannot receive the card.
var ErrBadTarget = errors.New("card cannot be played on that target")

// ItemSpec describes one item type.
type ItemSpec struct {
	Name  string
	Image string
	Bonus int
	// BonusOn overrides the static bonus for a specific player.
	BonusOn func(p Holder, static int) int
}

// ItemCard is a carryable treasure whose bonus applies once equipped.
type ItemCard struct {
	Base
	def ItemSpec
}

var _ Item = (*ItemCard)(nil)

func NewItem(id int, def ItemSpec) *ItemCard {
	return &ItemCard{Base: NewBase(id, Treasure, def.Name, def.Image), def: def}
}

// itemClause: carried out of the hand on the actor's turn, with no target.
func itemClause(c Card, move models.MoveType, target models.Target, inTurn bool) bool {
	return move == models.MoveCarry && c.InHand() && inTurn && target.IsNone()
}

func (i *ItemCard) CanPlay(move models.MoveType, target models.Target, phase models.Phase, inTurn bool) bool {
	return i.Base.CanPlay(move, target, phase, inTurn) || itemClause(i, move, target, inTurn)
}

func (i *ItemCard) Bonus() int { return i.def.Bonus }

func (i *ItemCard) BonusOnPlayer(p Holder) int {
	if i.def.BonusOn == nil {
		return i.def.Bonus
	}
	return i.def.BonusOn(p, i.def.Bonus)
}

func (i *ItemCard) CanEquip(Holder) bool { return true }

func (i *ItemCard) Info(viewer Holder) Info {
	info := i.Base.Info(viewer)
	bonus := i.def.Bonus
	info.Bonus = &bonus
	return info
}

// OneShotCard is an item used up during combat. It is never equipped.
type OneShotCard struct {
	ItemCard
}

var (
	_ Item     = (*OneShotCard)(nil)
	_ Playable = (*OneShotCard)(nil)
)

func NewOneShot(id int, def ItemSpec) *OneShotCard {
	return &OneShotCard{ItemCard: *NewItem(id, def)}
}

func oneShotClause(move models.MoveType, target models.Target, phase models.Phase) bool {
	return move == models.MovePlay && phase == models.PhaseCombat && target.IsCombatSide()
}

func (o *OneShotCard) CanPlay(move models.MoveType, target models.Target, phase models.Phase, inTurn bool) bool {
	return o.ItemCard.CanPlay(move, target, phase, inTurn) || oneShotClause(move, target, phase)
}

func (o *OneShotCard) CanEquip(Holder) bool { return false }

// Play attaches the card to the named side of the active combat.
func (o *OneShotCard) Play(target models.Target) (Effect, error) {
	if !target.IsCombatSide() {
		return Effect{}, fmt.Errorf("%s on %s: %w", o.Name(), target, ErrBadTarget)
	}
	return Effect{Kind: EffectAttachToCombat, Side: target.Side}, nil
}
