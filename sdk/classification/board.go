package classification

import (
	"math/bits"

	"github.com/lox/pokerbots/poker"
)

// BoardTexture represents the "wetness" of a poker board from dry to very wet
type BoardTexture int

const (
	Dry BoardTexture = iota
	SemiWet
	Wet
	VeryWet
)

func (bt BoardTexture) String() string {
	switch bt {
	case Dry:
		return "dry"
	case SemiWet:
		return "semi-wet"
	case Wet:
		return "wet"
	case VeryWet:
		return "very wet"
	default:
		return "unknown"
	}
}

// FlushInfo describes the suit distribution of a board.
type FlushInfo struct {
	MaxSuitCount int
	DominantSuit poker.Suit
	IsMonotone   bool // every card shares a suit
	IsRainbow    bool // no two cards share a suit
}

// AnalyzeFlushPotential counts suits on the board.
func AnalyzeFlushPotential(board poker.Hand) FlushInfo {
	var info FlushInfo
	for s := poker.Clubs; s <= poker.Spades; s++ {
		if c := bits.OnesCount16(board.GetSuitMask(s)); c > info.MaxSuitCount {
			info.MaxSuitCount = c
			info.DominantSuit = s
		}
	}
	n := board.CountCards()
	info.IsMonotone = n >= 3 && info.MaxSuitCount == n
	info.IsRainbow = n > 0 && info.MaxSuitCount == 1
	return info
}

// ConnectedRanks returns the longest run of consecutive ranks, counting the
// ace as both high and low.
func ConnectedRanks(board poker.Hand) int {
	m := board.GetRankMask()
	if m&aceBit != 0 {
		m |= 1 << 1
	}
	longest, run := 0, 0
	for r := 1; r <= int(poker.Ace); r++ {
		if m&(1<<r) == 0 {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return longest
}

// AnalyzeBoardTexture scores how many strong hands and draws a board allows.
func AnalyzeBoardTexture(board poker.Hand) BoardTexture {
	n := board.CountCards()
	if n < 3 {
		return Dry
	}

	var wetness int
	switch flush := AnalyzeFlushPotential(board); {
	case flush.MaxSuitCount >= 3:
		wetness += 3
		if flush.IsMonotone || flush.MaxSuitCount >= 4 {
			wetness++
		}
	case flush.MaxSuitCount == 2:
		wetness++
	}

	switch run := ConnectedRanks(board); {
	case run >= 4:
		wetness += 4
	case run == 3:
		wetness += 3
	case run == 2:
		wetness++
	}

	if bits.OnesCount16(board.GetRankMask()) < n {
		wetness++ // paired
	}
	if bits.OnesCount16(board.GetRankMask()&tenOrAbove) >= 3 {
		wetness++
	}

	switch {
	case wetness <= 1:
		return Dry
	case wetness <= 3:
		return SemiWet
	case wetness <= 5:
		return Wet
	default:
		return VeryWet
	}
}
