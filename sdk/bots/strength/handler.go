// Package strength is a rule based bot: preflop buckets, made hand category
// and draw outs decide between folding, calling and value raising.
package strength

import (
	"context"
	"sync/atomic"

	"github.com/lox/pokerbots/poker"
	"github.com/lox/pokerbots/sdk"
	"github.com/lox/pokerbots/sdk/classification"
)

// Handler plays by hand strength alone. It also counts rounds through
// sdk.RoundObserver.
type Handler struct {
	rounds atomic.Int64
	won    atomic.Int64
	net    atomic.Int64
}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Decide(_ context.Context, s sdk.Snapshot, eval sdk.Evaluator) (poker.Action, error) {
	if s.Street == sdk.Preflop {
		return h.preflop(s), nil
	}

	key, err := eval.Strength(s.Cards())
	if err != nil {
		return poker.Action{}, err
	}

	switch cat := key.Category(); {
	case cat >= poker.TwoPair:
		return valueRaise(s, 3, 4), nil
	case cat == poker.Pair && pairsBoard(s):
		if s.ContinueCost() <= s.Pot/2 {
			return checkOrCall(s), nil
		}
	}

	draws := classification.DetectDraws(poker.NewHand(s.Hole[:]...), poker.NewHand(s.Board()...))
	if draws.HasStrongDraw() && priced(s, draws.Outs) {
		return checkOrCall(s), nil
	}
	return checkOrFold(s), nil
}

func (h *Handler) preflop(s sdk.Snapshot) poker.Action {
	cost := s.ContinueCost()
	switch poker.CategorizeHoleCards(s.Hole[0], s.Hole[1]) {
	case poker.CategoryPremium:
		return valueRaise(s, 1, 1)
	case poker.CategoryStrong:
		if cost <= 3*s.Pot/4 {
			return valueRaise(s, 1, 2)
		}
		return checkOrCall(s)
	case poker.CategoryMedium:
		if cost <= s.Pot/2+2 {
			return checkOrCall(s)
		}
	case poker.CategoryWeak:
		if cost <= 2 {
			return checkOrCall(s)
		}
	}
	return checkOrFold(s)
}

func (h *Handler) OnRoundStart(sdk.Snapshot) {
	h.rounds.Add(1)
}

func (h *Handler) OnRoundOver(_ sdk.Snapshot, delta int64) {
	if delta > 0 {
		h.won.Add(1)
	}
	h.net.Add(delta)
}

// Stats returns rounds started, rounds won and the running chip total.
func (h *Handler) Stats() (rounds, won, net int64) {
	return h.rounds.Load(), h.won.Load(), h.net.Load()
}

// valueRaise raises to the opponent's pip plus num/den of the pot, clamped to
// the legal bounds, and calls when raising is not possible.
func valueRaise(s sdk.Snapshot, num, den int) poker.Action {
	lo, hi, ok := s.CanRaise()
	if !ok {
		return checkOrCall(s)
	}
	target := uint32(s.Pips[1-s.Seat] + s.Pot*num/den)
	return poker.RaiseAction(max(lo, min(hi, target)))
}

// pairsBoard reports whether one of our hole cards makes the pair.
func pairsBoard(s sdk.Snapshot) bool {
	if s.Hole[0].Rank() == s.Hole[1].Rank() {
		return true
	}
	for _, c := range s.Board() {
		if c.Rank() == s.Hole[0].Rank() || c.Rank() == s.Hole[1].Rank() {
			return true
		}
	}
	return false
}

// priced compares the chance of hitting one of outs on the next card against
// the price of calling.
func priced(s sdk.Snapshot, outs int) bool {
	cost := s.ContinueCost()
	if cost == 0 {
		return true
	}
	unseen := 52 - 2 - s.BoardLen
	return outs*(s.Pot+cost) >= cost*unseen
}

func checkOrCall(s sdk.Snapshot) poker.Action {
	if s.Legal.Has(poker.Check) {
		return poker.CheckAction()
	}
	return poker.CallAction()
}

func checkOrFold(s sdk.Snapshot) poker.Action {
	if s.Legal.Has(poker.Check) {
		return poker.CheckAction()
	}
	return poker.FoldAction()
}

var (
	_ sdk.Handler       = (*Handler)(nil)
	_ sdk.RoundObserver = (*Handler)(nil)
)
