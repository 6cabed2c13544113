package strength

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerbots/poker"
	"github.com/lox/pokerbots/sdk"
)

func snapshot(hole, board string) sdk.Snapshot {
	s := sdk.Snapshot{Seat: 0, Street: sdk.Preflop}
	copy(s.Hole[:], poker.MustParseCards(hole))
	s.BoardLen = copy(s.BoardSet[:], poker.MustParseCards(board))
	if s.BoardLen > 0 {
		s.Street = sdk.Flop
	}
	return s
}

func TestDecide(t *testing.T) {
	all := poker.NewActionSet(poker.Fold, poker.Call, poker.Raise)
	checkRaise := poker.NewActionSet(poker.Check, poker.Raise)

	tests := []struct {
		name string
		snap func() sdk.Snapshot
		want poker.Action
	}{
		{
			name: "premium pair raises the pot",
			snap: func() sdk.Snapshot {
				s := snapshot("Ah Ad", "")
				s.Pips, s.Pot, s.Legal, s.MinRaise, s.MaxRaise = [2]int{1, 2}, 3, all, 4, 200
				return s
			},
			want: poker.RaiseAction(5),
		},
		{
			name: "trash folds to the blind",
			snap: func() sdk.Snapshot {
				s := snapshot("7c 2d", "")
				s.Pips, s.Pot, s.Legal, s.MinRaise, s.MaxRaise = [2]int{1, 2}, 3, all, 4, 200
				return s
			},
			want: poker.FoldAction(),
		},
		{
			name: "two pair bets for value",
			snap: func() sdk.Snapshot {
				s := snapshot("Ah Kd", "As Kc 2h")
				s.Pot, s.Legal, s.MinRaise, s.MaxRaise = 4, checkRaise, 2, 198
				return s
			},
			want: poker.RaiseAction(3),
		},
		{
			name: "air folds to a bet",
			snap: func() sdk.Snapshot {
				s := snapshot("7c 8d", "As Kc 2h")
				s.Pips, s.Pot, s.Legal, s.MinRaise, s.MaxRaise = [2]int{0, 4}, 8, all, 8, 196
				return s
			},
			want: poker.FoldAction(),
		},
		{
			name: "priced flush draw calls",
			snap: func() sdk.Snapshot {
				s := snapshot("Qh 5h", "Kh 9h 2c")
				s.Pips, s.Pot, s.Legal, s.MinRaise, s.MaxRaise = [2]int{0, 1}, 8, all, 2, 196
				return s
			},
			want: poker.CallAction(),
		},
		{
			name: "top pair checks when free",
			snap: func() sdk.Snapshot {
				s := snapshot("Ac 7d", "As Kc 2h")
				s.Pot, s.Legal, s.MinRaise, s.MaxRaise = 4, checkRaise, 2, 198
				return s
			},
			want: poker.CheckAction(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewHandler().Decide(context.Background(), tt.snap(), sdk.DefaultEvaluator{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObserverStats(t *testing.T) {
	h := NewHandler()
	h.OnRoundStart(sdk.Snapshot{})
	h.OnRoundOver(sdk.Snapshot{}, 4)
	h.OnRoundStart(sdk.Snapshot{})
	h.OnRoundOver(sdk.Snapshot{}, -2)

	rounds, won, net := h.Stats()
	assert.Equal(t, int64(2), rounds)
	assert.Equal(t, int64(1), won)
	assert.Equal(t, int64(2), net)
}
