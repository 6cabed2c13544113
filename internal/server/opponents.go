package server

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/lox/pokerbots/internal/game"
	"github.com/lox/pokerbots/poker"
)

// View is what the house opponent sees when it is asked to act.
type View struct {
	Round game.Round
	Seat  int
	Hole  [2]poker.Card
	Board []poker.Card
}

// Opponent is the house player. Illegal actions are replaced by a check or fold.
type Opponent interface {
	Name() string
	Act(v View) poker.Action
}

// OpponentFunc adapts a function to the Opponent interface.
type OpponentFunc func(v View) poker.Action

func (OpponentFunc) Name() string              { return "func" }
func (f OpponentFunc) Act(v View) poker.Action { return f(v) }

type callingStation struct{}

func (callingStation) Name() string { return "calling" }

func (callingStation) Act(v View) poker.Action {
	if v.Round.LegalActions().Has(poker.Check) {
		return poker.CheckAction()
	}
	return poker.CallAction()
}

type aggressive struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (*aggressive) Name() string { return "aggressive" }

// Act raises roughly two to three times the pot 70% of the time, otherwise
// calls or checks.
func (a *aggressive) Act(v View) poker.Action {
	legal := v.Round.LegalActions()
	a.mu.Lock()
	roll := a.rng.Float32()
	mult := 2 + a.rng.Intn(2)
	a.mu.Unlock()

	if roll < 0.7 && legal.Has(poker.Raise) {
		lo, hi := v.Round.RaiseBounds()
		amount := v.Round.Pips[v.Seat] + v.Round.Pot()*mult
		return poker.RaiseAction(uint32(max(lo, min(hi, amount))))
	}
	if legal.Has(poker.Call) {
		return poker.CallAction()
	}
	return poker.CheckAction()
}

type random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (*random) Name() string { return "random" }

// Act picks a uniformly random legal action, raising to a uniformly random
// legal amount.
func (r *random) Act(v View) poker.Action {
	kinds := v.Round.LegalActions().Kinds()
	if len(kinds) == 0 {
		return poker.FoldAction()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := kinds[r.rng.Intn(len(kinds))]
	if kind != poker.Raise {
		return poker.Action{Kind: kind}
	}
	lo, hi := v.Round.RaiseBounds()
	return poker.RaiseAction(uint32(lo + r.rng.Intn(hi-lo+1)))
}

// NewOpponent resolves a strategy name: calling, aggressive or random.
func NewOpponent(name string, seed int64) (Opponent, error) {
	switch strings.ToLower(name) {
	case "", "calling", "call":
		return callingStation{}, nil
	case "aggressive", "aggro":
		return &aggressive{rng: rand.New(rand.NewSource(seed))}, nil
	case "random", "rand":
		return &random{rng: rand.New(rand.NewSource(seed))}, nil
	}
	return nil, fmt.Errorf("unknown opponent strategy %q", name)
}
