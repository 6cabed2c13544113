package poker

import (
	"math/rand"
	"slices"
)

// Deck deals cards without replacement in a seeded order. The same rng seed
// always produces the same deal.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// FullDeck returns all 52 cards ordered by suit then rank.
func FullDeck() []Card {
	cards := make([]Card, 0, 52)
	for s := Clubs; s <= Spades; s++ {
		for r := Two; r <= Ace; r++ {
			cards = append(cards, NewCard(r, s))
		}
	}
	return cards
}

// NewDeck returns a shuffled deck. A nil rng uses the global source.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.Shuffle()
	return d
}

// Shuffle restores all 52 cards and shuffles them.
func (d *Deck) Shuffle() {
	d.cards = FullDeck()
	swap := func(i, j int) { d.cards[i], d.cards[j] = d.cards[j], d.cards[i] }
	if d.rng != nil {
		d.rng.Shuffle(len(d.cards), swap)
	} else {
		rand.Shuffle(len(d.cards), swap)
	}
}

// Remove takes known cards out of the deck, e.g. hole cards already dealt.
func (d *Deck) Remove(cards ...Card) {
	gone := NewHand(cards...)
	d.cards = slices.DeleteFunc(d.cards, gone.HasCard)
}

// Deal returns the next n cards, or nil when fewer than n remain.
func (d *Deck) Deal(n int) []Card {
	if n < 0 || n > len(d.cards) {
		return nil
	}
	dealt := append([]Card(nil), d.cards[:n]...)
	d.cards = d.cards[n:]
	return dealt
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
