// internal/deck/deck.go
package deck

import (
	"errors"
	"math/rand"

	"github.com/jason-s-yu/munchkin/internal/cards"
	"github.com/jason-s-yu/munchkin/internal/ids"
)

// ErrEmpty is returned by Draw when both the draw pile and the discard pile are empty.
var ErrEmpty = errors.New("deck is empty")

// Registry is the session-wide id -> card lookup a deck keeps current.
type Registry interface {
	Register(c cards.Card)
	// Rekey drops oldID and indexes c under its current id.
	Rekey(c cards.Card, oldID int)
}

// Deck is one category's draw pile and discard pile. It is not safe for concurrent
// use; the owning session serializes access.
type Deck struct {
	category cards.Category
	cards    []cards.Card // top of the pile is the end of the slice
	discards []cards.Card
	ids      *ids.Generator
	registry Registry
	rng      *rand.Rand
}

// New returns an empty deck.
func New(category cards.Category, gen *ids.Generator, registry Registry, rng *rand.Rand) *Deck {
	return &Deck{
		category: category,
		ids:      gen,
		registry: registry,
		rng:      rng,
	}
}

// NewFromCatalog builds a deck from a deck list and shuffles it.
func NewFromCatalog(category cards.Category, entries []cards.Entry, gen *ids.Generator, registry Registry, rng *rand.Rand) *Deck {
	d := New(category, gen, registry, rng)
	for _, e := range entries {
		d.Add(e.New, e.Count)
	}
	d.Shuffle()
	return d
}

// Add creates count cards from f, registers them and puts them on the draw pile.
func (d *Deck) Add(f cards.Factory, count int) {
	for i := 0; i < count; i++ {
		c := f(d.ids.Next())
		d.cards = append(d.cards, c)
		d.registry.Register(c)
	}
}

func (d *Deck) Category() cards.Category { return d.category }

// Size is the number of cards left in the draw pile.
func (d *Deck) Size() int { return len(d.cards) }

// DiscardSize is the number of cards in the discard pile.
func (d *Deck) DiscardSize() int { return len(d.discards) }

// Draw pops the top card, first recycling the discard pile if the draw pile is empty.
func (d *Deck) Draw() (cards.Card, error) {
	if len(d.cards) == 0 {
		d.Reset()
	}
	if len(d.cards) == 0 {
		return nil, ErrEmpty
	}
	top := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return top, nil
}

// Reset moves every discard back into the draw pile and shuffles.
func (d *Deck) Reset() {
	d.cards = append(d.cards, d.discards...)
	d.discards = nil
	d.Shuffle()
}

// Shuffle randomizes the draw pile and gives every card in it a fresh id, so a
// card cannot be followed across a reshuffle by its id.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
	for _, c := range d.cards {
		old := c.ID()
		c.SetID(d.ids.Next())
		d.registry.Rekey(c, old)
	}
}

// Discard puts c on top of the discard pile. The caller has already taken it away
// from whoever held it.
func (d *Deck) Discard(c cards.Card) {
	c.SetInHand(false)
	d.discards = append(d.discards, c)
}

// HiddenCard is the face-down stand-in for id.
func (d *Deck) HiddenCard(id int) cards.Card {
	return cards.Hidden(d.category, id)
}

// Cards returns a copy of the draw pile, bottom first.
func (d *Deck) Cards() []cards.Card {
	out := make([]cards.Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Discards returns a copy of the discard pile, bottom first.
func (d *Deck) Discards() []cards.Card {
	out := make([]cards.Card, len(d.discards))
	copy(out, d.discards)
	return out
}
