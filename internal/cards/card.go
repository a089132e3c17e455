// internal/cards/card.go
package cards

import "github.com/jason-s-yu/munchkin/internal/models"

// ImageRoot prefixes every card image path sent to clients.
const ImageRoot = "res/"

// Category is the deck a card belongs to.
type Category string

const (
	Door     Category = "door"
	Treasure Category = "treasure"
)

// BackName is the generic name shown for a face-down card of the category.
func (c Category) BackName() string {
	if c == Treasure {
		return "Treasure Card"
	}
	return "Door Card"
}

// BackImage is the generic back-face image of the category.
func (c Category) BackImage() string {
	if c == Treasure {
		return "treasure_back.png"
	}
	return "room_back.png"
}

// Holder is what a card may read or mutate on the player it is evaluated against.
type Holder interface {
	Level() int
	Race() string
	LevelUp(count int, monsterKill bool)
	LevelDown(count int)
}

// Info is the client-facing view of a card.
type Info struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Level *int   `json:"level,omitempty"`
	Bonus *int   `json:"bonus,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

// Card is the contract every card variant satisfies. Session and combat logic only
// ever talk to cards through this interface and the capability interfaces below.
type Card interface {
	ID() int
	SetID(id int)
	Category() Category
	Name() string
	InHand() bool
	SetInHand(inHand bool)
	// CanPlay decides whether the card may be used for the move right now.
	CanPlay(move models.MoveType, target models.Target, phase models.Phase, inTurn bool) bool
	// Info renders the card; viewer may be nil.
	Info(viewer Holder) Info
}

// Monster is a door card that can be fought.
type Monster interface {
	Card
	Level() int
	Treasure() int
	LevelsGranted() int
	// Bonus is the situational combat modifier against p.
	Bonus(p Holder) int
	// BadStuff is applied to p when the party loses.
	BadStuff(p Holder)
	BadStuffRule() string
	CanFlee(p Holder) bool
}

// Item is a treasure card that can be carried.
type Item interface {
	Card
	Bonus() int
	BonusOnPlayer(p Holder) int
	// CanEquip reports whether carrying the item adds its bonus to p.
	CanEquip(p Holder) bool
}

// EffectKind is what the session must do after a card is played.
type EffectKind string

const (
	EffectAttachToCombat EffectKind = "attach_to_combat"
)

// Effect is the descriptor returned by Play; the session interprets it.
type Effect struct {
	Kind EffectKind
	Side models.CombatSide
}

// Playable cards support the PLAY move.
type Playable interface {
	Card
	Play(target models.Target) (Effect, error)
}

// Base carries the identity every card has and the default (always false) predicate.
type Base struct {
	id       int
	category Category
	name     string
	image    string
	inHand   bool
}

// NewBase builds the shared card state. Cards start in the deck, not in a hand.
func NewBase(id int, category Category, name, image string) Base {
	return Base{id: id, category: category, name: name, image: image}
}

func (b *Base) ID() int               { return b.id }
func (b *Base) SetID(id int)          { b.id = id }
func (b *Base) Category() Category    { return b.category }
func (b *Base) Name() string          { return b.name }
func (b *Base) InHand() bool          { return b.inHand }
func (b *Base) SetInHand(inHand bool) { b.inHand = inHand }

// CanPlay is the general clause shared by all cards: nothing is playable by default.
func (b *Base) CanPlay(models.MoveType, models.Target, models.Phase, bool) bool {
	return false
}

func (b *Base) Info(Holder) Info {
	return Info{ID: b.id, Name: b.name, Image: ImageRoot + b.image}
}

// Hidden returns a content-blind stand-in for card id of the given category.
func Hidden(category Category, id int) Card {
	b := NewBase(id, category, category.BackName(), category.BackImage())
	return &b
}
