package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/lox/pokerbots/poker"
	"github.com/lox/pokerbots/sdk/classification"
)

type EvalCmd struct {
	Hands []string `arg:"" help:"Hands to rank, each a quoted card list ('Ah Kd Qs Jc Tc')"`
	Board string   `short:"b" help:"Board shared by every hand, e.g. 'Td 7s 8h'"`
}

type evalRow struct {
	Input string
	Cards []poker.Card
	Best  [5]poker.Card
	Key   poker.HandKey
	Place int
}

func (c *EvalCmd) Run() error {
	rows, err := evaluate(c.Hands, c.Board)
	if err != nil {
		return err
	}
	printEval(os.Stdout, rows, c.Board)
	return nil
}

// evaluate ranks each hand with the shared board, strongest first. Tied
// hands share a place.
func evaluate(hands []string, board string) ([]evalRow, error) {
	shared, err := poker.ParseCards(strings.Fields(board)...)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}

	rows := make([]evalRow, 0, len(hands))
	for i, h := range hands {
		cards, err := poker.ParseCards(strings.Fields(h)...)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		cards = append(cards, shared...)
		best, key, err := poker.BestHand(cards)
		if err != nil {
			return nil, fmt.Errorf("hand %d (%s): %w", i+1, h, err)
		}
		rows = append(rows, evalRow{Input: h, Cards: cards, Best: best, Key: key})
	}

	slices.SortStableFunc(rows, func(a, b evalRow) int { return poker.Compare(b.Key, a.Key) })
	for i := range rows {
		rows[i].Place = i + 1
		if i > 0 && rows[i].Key == rows[i-1].Key {
			rows[i].Place = rows[i-1].Place
		}
	}
	return rows, nil
}

func printEval(w io.Writer, rows []evalRow, board string) {
	fmt.Fprintln(w, headerStyle.Render("Hand ranking"))
	for _, r := range rows {
		fmt.Fprintf(w, "%d. %-22s %s  %s\n",
			r.Place, r.Input, categoryStyle.Render(r.Key.String()), poker.FormatCards(r.Best[:]))

		if n := len(strings.Fields(board)); n >= 3 && n < 5 {
			hole := poker.NewHand(r.Cards[:len(r.Cards)-n]...)
			draws := classification.DetectDraws(hole, poker.NewHand(r.Cards[len(r.Cards)-n:]...))
			if !draws.Has(classification.NoDraw) {
				fmt.Fprintf(w, "   draws: %v (%d outs)\n", draws.Draws, draws.Outs)
			}
		}
	}
}
