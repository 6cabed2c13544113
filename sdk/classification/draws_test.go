package classification

import (
	"slices"
	"testing"

	"github.com/lox/pokerbots/poker"
)

func hand(s string) poker.Hand {
	return poker.NewHand(poker.MustParseCards(s)...)
}

func TestDrawTypeString(t *testing.T) {
	tests := []struct {
		drawType DrawType
		expected string
	}{
		{FlushDraw, "flush draw"},
		{NutFlushDraw, "nut flush draw"},
		{OpenEndedStraightDraw, "open-ended straight draw"},
		{Gutshot, "gutshot"},
		{StraightFlushDraw, "straight flush draw"},
		{ComboDraw, "combo draw"},
		{NoDraw, "no draw"},
		{DrawType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.drawType.String(); got != tt.expected {
				t.Errorf("DrawType.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDetectDraws(t *testing.T) {
	tests := []struct {
		name    string
		hole    string
		board   string
		draws   []DrawType
		outs    int
		nutOuts int
	}{
		{
			name:    "nut flush draw",
			hole:    "Ah 5h",
			board:   "Kh 9h 2c",
			draws:   []DrawType{NutFlushDraw},
			outs:    9,
			nutOuts: 9,
		},
		{
			name:  "flush draw",
			hole:  "Qh 5h",
			board: "Kh 9h 2c",
			draws: []DrawType{FlushDraw},
			outs:  9,
		},
		{
			name:  "open-ended",
			hole:  "8c 9d",
			board: "Ts Jh 2c",
			draws: []DrawType{OpenEndedStraightDraw},
			outs:  8,
		},
		{
			name:  "gutshot",
			hole:  "8c 9d",
			board: "Js Qh 2c",
			draws: []DrawType{Gutshot},
			outs:  4,
		},
		{
			name:  "wheel gutshot with an overcard",
			hole:  "Ac 2d",
			board: "3s 4h 9c",
			draws: []DrawType{Gutshot, Overcards},
			outs:  7,
		},
		{
			name:  "combo draw",
			hole:  "9h Th",
			board: "8h Jh 2c",
			draws: []DrawType{FlushDraw, StraightFlushDraw, OpenEndedStraightDraw, ComboDraw},
			outs:  15,
		},
		{
			name:  "backdoor flush with overcards",
			hole:  "Ah Kh",
			board: "7h 2c 9d",
			draws: []DrawType{BackdoorFlush, Overcards},
			outs:  6,
		},
		{
			name:  "made flush has no overcards",
			hole:  "Ah Kh",
			board: "7h 2h 9h",
			draws: []DrawType{NoDraw},
		},
		{
			name:  "pocket pair",
			hole:  "5c 5d",
			board: "Kh 9s 2c",
			draws: []DrawType{NoDraw},
		},
		{
			name:  "river",
			hole:  "8c 9d",
			board: "Ts Jh 2c 3d 4s",
			draws: []DrawType{NoDraw},
		},
		{
			name:  "preflop",
			hole:  "Ah Kh",
			board: "",
			draws: []DrawType{NoDraw},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DetectDraws(hand(tt.hole), hand(tt.board))
			if !slices.Equal(info.Draws, tt.draws) {
				t.Errorf("Draws = %v, want %v", info.Draws, tt.draws)
			}
			if info.Outs != tt.outs {
				t.Errorf("Outs = %d, want %d", info.Outs, tt.outs)
			}
			if info.NutOuts != tt.nutOuts {
				t.Errorf("NutOuts = %d, want %d", info.NutOuts, tt.nutOuts)
			}
		})
	}
}

func TestDrawStrength(t *testing.T) {
	strong := DetectDraws(hand("Ah 5h"), hand("Kh 9h 2c"))
	if !strong.HasStrongDraw() || strong.HasWeakDraw() {
		t.Errorf("flush draw should be strong only: %+v", strong)
	}

	weak := DetectDraws(hand("8c 9d"), hand("Js Qh 2c"))
	if weak.HasStrongDraw() || !weak.HasWeakDraw() {
		t.Errorf("gutshot should be weak only: %+v", weak)
	}
	if !weak.Has(Gutshot) || weak.Has(FlushDraw) {
		t.Errorf("unexpected draws %v", weak.Draws)
	}
}

func TestBoardTexture(t *testing.T) {
	tests := []struct {
		board    string
		expected BoardTexture
	}{
		{"", Dry},
		{"Kc 7d 2h", Dry},
		{"Kc Kd 7c", SemiWet},
		{"8c 9d Tc", Wet},
		{"9h Th Jh", VeryWet},
	}

	for _, tt := range tests {
		t.Run(tt.board, func(t *testing.T) {
			if got := AnalyzeBoardTexture(hand(tt.board)); got != tt.expected {
				t.Errorf("AnalyzeBoardTexture(%s) = %v, want %v", tt.board, got, tt.expected)
			}
		})
	}
}

func TestFlushPotential(t *testing.T) {
	rainbow := AnalyzeFlushPotential(hand("Kc 7d 2h"))
	if !rainbow.IsRainbow || rainbow.IsMonotone || rainbow.MaxSuitCount != 1 {
		t.Errorf("unexpected rainbow info %+v", rainbow)
	}

	mono := AnalyzeFlushPotential(hand("9h Th Jh"))
	if !mono.IsMonotone || mono.DominantSuit != poker.Hearts || mono.MaxSuitCount != 3 {
		t.Errorf("unexpected monotone info %+v", mono)
	}
}

func TestConnectedRanks(t *testing.T) {
	tests := map[string]int{
		"Ac 2d 3h": 3,
		"Qc Kd Ah": 3,
		"2c 7d Qh": 1,
		"5c 6d 8h": 2,
	}
	for board, want := range tests {
		if got := ConnectedRanks(hand(board)); got != want {
			t.Errorf("ConnectedRanks(%s) = %d, want %d", board, got, want)
		}
	}
}
