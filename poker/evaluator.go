package poker

import (
	"cmp"
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

var (
	ErrInsufficientCards = errors.New("insufficient cards")
	ErrTooManyCards      = errors.New("too many cards")
	ErrDuplicateCard     = errors.New("duplicate card")
)

// Category enumerates the categories of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandKey is a comparable encoding of 5-card hand strength. The category sits
// in bits 20-23 and five 4-bit rank slots follow, most significant first.
// A larger key is a stronger hand and equal keys tie.
type HandKey uint32

const categoryShift = 20

func (k HandKey) Category() Category {
	return Category(k >> categoryShift)
}

// Ranks returns the tie-break ranks in comparison order. Unused slots are
// zero. A wheel straight reports its ace as 1.
func (k HandKey) Ranks() [5]Rank {
	var out [5]Rank
	for i := range out {
		out[i] = Rank(k >> (16 - 4*i) & 0xF)
	}
	return out
}

func (k HandKey) String() string {
	var parts []string
	for _, r := range k.Ranks() {
		switch {
		case r == 0:
		case r == 1:
			parts = append(parts, "A")
		default:
			parts = append(parts, r.String())
		}
	}
	return fmt.Sprintf("%s (%s)", k.Category(), strings.Join(parts, " "))
}

// Compare returns 1 if a is stronger, -1 if b is stronger, and 0 on a tie.
func Compare(a, b HandKey) int {
	return cmp.Compare(a, b)
}

func makeKey(cat Category, ranks ...Rank) HandKey {
	key := HandKey(cat) << categoryShift
	for i, r := range ranks {
		key |= HandKey(r&0xF) << (16 - 4*i)
	}
	return key
}

// Classify computes the key of exactly five cards. Cards are grouped into
// counting buckets by rank and suit; flush and straight membership come from
// the rank bitmask.
func Classify(cards [5]Card) HandKey {
	var rankCount [16]uint8
	var suitCount [4]uint8
	var rankMask uint16
	for _, c := range cards {
		rankCount[c.Rank()&0xF]++
		suitCount[c.Suit()]++
		rankMask |= 1 << (c.Rank() & 0xF)
	}

	flush := suitCount[cards[0].Suit()] == 5
	if high := straightHigh(rankMask); high > 0 {
		ranks := [5]Rank{high, high - 1, high - 2, high - 3, high - 4}
		if flush {
			return makeKey(StraightFlush, ranks[:]...)
		}
		return makeKey(Straight, ranks[:]...)
	}

	// Ranks ordered by multiplicity, then by rank, high to low.
	var ordered [5]Rank
	n := 0
	var groups [5]uint8
	for count := uint8(4); count >= 1; count-- {
		for r := Ace; r >= Two; r-- {
			if rankCount[r] == count {
				ordered[n] = r
				n++
				groups[count]++
			}
		}
	}

	switch {
	case groups[4] == 1:
		return makeKey(FourOfAKind, ordered[:2]...)
	case groups[3] == 1 && groups[2] == 1:
		return makeKey(FullHouse, ordered[:2]...)
	case flush:
		return makeKey(Flush, ordered[:5]...)
	case groups[3] == 1:
		return makeKey(ThreeOfAKind, ordered[:3]...)
	case groups[2] == 2:
		return makeKey(TwoPair, ordered[:3]...)
	case groups[2] == 1:
		return makeKey(Pair, ordered[:4]...)
	default:
		return makeKey(HighCard, ordered[:5]...)
	}
}

// straightHigh returns the top rank of a straight made by exactly the five
// distinct ranks in mask, or 0. The wheel (A-2-3-4-5) reports Five.
func straightHigh(mask uint16) Rank {
	if bits.OnesCount16(mask) != 5 {
		return 0
	}
	if mask&(1<<Ace) != 0 {
		mask |= 1 << 1
	}
	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq == 0 {
		return 0
	}
	return Rank(bits.Len16(seq)-1) + 4
}

// combos6 and combos7 list every 5-card subset of 6 and 7 positions in
// lexicographic order.
var (
	combos6 = fiveOf(6)
	combos7 = fiveOf(7)
)

func fiveOf(n uint8) [][5]uint8 {
	var table [][5]uint8
	for a := uint8(0); a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						table = append(table, [5]uint8{a, b, c, d, e})
					}
				}
			}
		}
	}
	return table
}

// BestHand selects the strongest 5-card hand from 5 to 7 distinct cards.
// Five cards are returned unchanged. For six or seven cards the chosen cards
// keep their input order and the first subset wins a tie. The input slice is
// never modified.
func BestHand(cards []Card) ([5]Card, HandKey, error) {
	var best [5]Card
	switch {
	case len(cards) < 5:
		return best, 0, fmt.Errorf("%w: need 5, got %d", ErrInsufficientCards, len(cards))
	case len(cards) > 7:
		return best, 0, fmt.Errorf("%w: at most 7, got %d", ErrTooManyCards, len(cards))
	}
	if err := checkCards(cards); err != nil {
		return best, 0, err
	}

	if len(cards) == 5 {
		copy(best[:], cards)
		return best, Classify(best), nil
	}

	combos := combos7
	if len(cards) == 6 {
		combos = combos6
	}

	var bestKey HandKey
	for i, idx := range combos {
		hand := [5]Card{cards[idx[0]], cards[idx[1]], cards[idx[2]], cards[idx[3]], cards[idx[4]]}
		if key := Classify(hand); i == 0 || key > bestKey {
			best, bestKey = hand, key
		}
	}
	return best, bestKey, nil
}

// Evaluate returns the key of the best hand in h.
func Evaluate(h Hand) (HandKey, error) {
	_, key, err := BestHand(h.Cards())
	return key, err
}

func checkCards(cards []Card) error {
	var seen Hand
	for _, c := range cards {
		if !c.Valid() {
			return fmt.Errorf("%w: %#x", ErrInvalidCard, uint8(c))
		}
		if seen.HasCard(c) {
			return fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen.AddCard(c)
	}
	return nil
}
