// Package classification detects draws and board texture for bots that want
// more than a made-hand key.
//
// All functions work on poker.Hand bitsets: each suit is a 16 bit lane with
// bit r set for rank r, so rank masks are plain uint16 values.
package classification

import (
	"math/bits"

	"github.com/lox/pokerbots/poker"
)

// DrawType represents the types of draws a hand can have
type DrawType int

const (
	FlushDraw DrawType = iota
	NutFlushDraw
	OpenEndedStraightDraw
	Gutshot
	StraightFlushDraw
	ComboDraw // Multiple draws
	BackdoorFlush
	Overcards
	NoDraw
)

func (dt DrawType) String() string {
	switch dt {
	case FlushDraw:
		return "flush draw"
	case NutFlushDraw:
		return "nut flush draw"
	case OpenEndedStraightDraw:
		return "open-ended straight draw"
	case Gutshot:
		return "gutshot"
	case StraightFlushDraw:
		return "straight flush draw"
	case ComboDraw:
		return "combo draw"
	case BackdoorFlush:
		return "backdoor flush"
	case Overcards:
		return "overcards"
	case NoDraw:
		return "no draw"
	default:
		return "unknown"
	}
}

// DrawInfo contains information about draws in a hand
type DrawInfo struct {
	Draws   []DrawType
	Outs    int
	NutOuts int
}

// Has reports whether d is among the detected draws.
func (d DrawInfo) Has(t DrawType) bool {
	for _, draw := range d.Draws {
		if draw == t {
			return true
		}
	}
	return false
}

// HasStrongDraw returns true for eight or more outs to a straight or flush.
func (d DrawInfo) HasStrongDraw() bool {
	for _, draw := range d.Draws {
		switch draw {
		case FlushDraw, NutFlushDraw, OpenEndedStraightDraw, StraightFlushDraw, ComboDraw:
			return true
		}
	}
	return false
}

// HasWeakDraw returns true if the hand has a weak draw
func (d DrawInfo) HasWeakDraw() bool {
	for _, draw := range d.Draws {
		switch draw {
		case Gutshot, BackdoorFlush, Overcards:
			return true
		}
	}
	return false
}

const (
	allRanks   uint16 = 0x7ffc // Two through Ace
	aceBit     uint16 = 1 << poker.Ace
	tenOrAbove uint16 = 0x7c00
)

// DetectDraws lists the draws hole makes with board. Draws need cards to
// come, so a board of fewer than 3 or all 5 cards has none.
func DetectDraws(hole, board poker.Hand) DrawInfo {
	n := board.CountCards()
	if n < 3 || n >= 5 {
		return DrawInfo{Draws: []DrawType{NoDraw}}
	}

	all := hole | board
	var draws []DrawType
	var outs, nutOuts poker.Hand
	made := hasStraight(all.GetRankMask())

	for s := poker.Clubs; s <= poker.Spades; s++ {
		h, b := hole.GetSuitMask(s), board.GetSuitMask(s)
		if h == 0 {
			continue
		}
		switch bits.OnesCount16(h | b) {
		case 4:
			flushOuts := suitCards(s, allRanks&^(h|b))
			if top := topBit(allRanks &^ b); h&top != 0 {
				draws = append(draws, NutFlushDraw)
				nutOuts |= flushOuts
			} else {
				draws = append(draws, FlushDraw)
			}
			outs |= flushOuts
		case 3:
			if n == 3 {
				draws = append(draws, BackdoorFlush)
			}
		case 5, 6:
			made = true
		}
		if r := straightOuts(h|b, b); r != 0 {
			draws = append(draws, StraightFlushDraw)
			outs |= suitCards(s, r)
		}
	}

	switch r := straightOuts(all.GetRankMask(), board.GetRankMask()); bits.OnesCount16(r) {
	case 0:
	case 1:
		draws = append(draws, Gutshot)
		outs |= rankCards(r) &^ all
	default:
		draws = append(draws, OpenEndedStraightDraw)
		outs |= rankCards(r) &^ all
	}

	if !made && !(DrawInfo{Draws: draws}).HasStrongDraw() {
		if over := overcards(hole, board); over != 0 {
			draws = append(draws, Overcards)
			outs |= rankCards(over) &^ all
		}
	}

	if len(draws) >= 2 && outs.CountCards() >= 12 {
		draws = append(draws, ComboDraw)
	}
	if len(draws) == 0 {
		draws = []DrawType{NoDraw}
	}
	return DrawInfo{Draws: draws, Outs: outs.CountCards(), NutOuts: nutOuts.CountCards()}
}

// straightOuts returns the ranks that complete a straight for mask but not for
// the board alone.
func straightOuts(mask, board uint16) uint16 {
	if hasStraight(mask) {
		return 0
	}
	var out uint16
	for r := poker.Two; r <= poker.Ace; r++ {
		bit := uint16(1) << r
		if mask&bit == 0 && hasStraight(mask|bit) && !hasStraight(board|bit) {
			out |= bit
		}
	}
	return out
}

func hasStraight(mask uint16) bool {
	if mask&aceBit != 0 {
		mask |= 1 << 1
	}
	for lo := 1; lo <= 10; lo++ {
		if (mask>>lo)&0x1f == 0x1f {
			return true
		}
	}
	return false
}

// overcards returns hole ranks above every board card when nothing pairs.
func overcards(hole, board poker.Hand) uint16 {
	h, b := hole.GetRankMask(), board.GetRankMask()
	if bits.OnesCount16(h) < 2 || h&b != 0 {
		return 0
	}
	return h &^ (topBit(b)<<1 - 1)
}

func topBit(m uint16) uint16 {
	if m == 0 {
		return 0
	}
	return 1 << (15 - bits.LeadingZeros16(m))
}

func suitCards(s poker.Suit, ranks uint16) poker.Hand {
	return poker.Hand(ranks) << (uint(s) * 16)
}

func rankCards(ranks uint16) poker.Hand {
	r := poker.Hand(ranks)
	return r | r<<16 | r<<32 | r<<48
}
