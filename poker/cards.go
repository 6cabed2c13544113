package poker

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// Rank is a card rank from Two (2) to Ace (14).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suit is one of the four card suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const (
	rankChars = "??23456789TJQKA"
	suitChars = "cdhs"
)

var ErrInvalidCard = errors.New("invalid card")

// Card packs a rank and suit into one byte as rank<<2 | suit, so comparing two
// cards orders them by rank and then by suit. The zero Card is invalid.
type Card uint8

// NewCard creates a card. It does not validate its arguments; use Valid.
func NewCard(rank Rank, suit Suit) Card {
	return Card(uint8(rank)<<2 | uint8(suit)&3)
}

func (c Card) Rank() Rank { return Rank(c >> 2) }
func (c Card) Suit() Suit { return Suit(c & 3) }

// Valid reports whether the card has a rank between Two and Ace.
func (c Card) Valid() bool {
	r := c.Rank()
	return r >= Two && r <= Ace
}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r])
}

func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return string(suitChars[s])
}

// ParseCard parses a two character token such as "Ah", "Td" or "2c".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	r := strings.IndexByte(rankChars[2:], upper(s[0]))
	su := strings.IndexByte(suitChars, lower(s[1]))
	if r < 0 || su < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	return NewCard(Rank(r+2), Suit(su)), nil
}

// ParseCards parses a list of card tokens.
func ParseCards(tokens ...string) ([]Card, error) {
	cards := make([]Card, 0, len(tokens))
	for _, tok := range tokens {
		c, err := ParseCard(tok)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses a space separated list of cards and panics on error.
// Intended for tests and literals.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(strings.Fields(s)...)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards joins cards with single spaces.
func FormatCards(cards []Card) string {
	var b strings.Builder
	for i, c := range cards {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// Hand is a set of cards stored as a bitset. Bit suit*16+rank is set for each
// card, so each suit occupies one 16 bit lane indexed by rank.
type Hand uint64

// NewHand builds a hand from cards. Invalid cards are ignored.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h.AddCard(c)
	}
	return h
}

func cardBit(c Card) Hand {
	return Hand(1) << (uint(c.Suit())*16 + uint(c.Rank()))
}

func (h *Hand) AddCard(c Card) {
	if c.Valid() {
		*h |= cardBit(c)
	}
}

func (h *Hand) RemoveCard(c Card) {
	*h &^= cardBit(c)
}

func (h Hand) HasCard(c Card) bool {
	return c.Valid() && h&cardBit(c) != 0
}

func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// GetSuitMask returns the rank bits present in the given suit.
func (h Hand) GetSuitMask(s Suit) uint16 {
	return uint16(h >> (uint(s&3) * 16))
}

// GetRankMask returns the rank bits present in any suit.
func (h Hand) GetRankMask() uint16 {
	return uint16(h) | uint16(h>>16) | uint16(h>>32) | uint16(h>>48)
}

// Cards lists the cards in the hand in ascending order.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for r := Two; r <= Ace; r++ {
		for s := Clubs; s <= Spades; s++ {
			if c := NewCard(r, s); h.HasCard(c) {
				cards = append(cards, c)
			}
		}
	}
	return cards
}

func (h Hand) String() string {
	return FormatCards(h.Cards())
}
