// Package game tracks the betting state of a single heads-up round.
package game

import (
	"errors"
	"fmt"

	"github.com/lox/pokerbots/poker"
)

// Street represents the betting round
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	if s < Preflop || s > Showdown {
		return "unknown"
	}
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// BoardSize is the number of community cards visible on the street.
func (s Street) BoardSize() int {
	switch s {
	case Preflop:
		return 0
	case Flop:
		return 3
	case Turn:
		return 4
	default:
		return 5
	}
}

var (
	ErrIllegalAction = errors.New("illegal action")
	ErrRoundOver     = errors.New("round is over")
	ErrInvalidRules  = errors.New("invalid rules")
)

// Rules are the fixed chip amounts of a match. Every round starts with full stacks.
type Rules struct {
	StartingStack int
	SmallBlind    int
	BigBlind      int
}

func DefaultRules() Rules {
	return Rules{StartingStack: 200, SmallBlind: 1, BigBlind: 2}
}

func (r Rules) Validate() error {
	switch {
	case r.SmallBlind <= 0:
		return fmt.Errorf("%w: small blind must be positive", ErrInvalidRules)
	case r.BigBlind < r.SmallBlind:
		return fmt.Errorf("%w: big blind %d below small blind %d", ErrInvalidRules, r.BigBlind, r.SmallBlind)
	case r.StartingStack < r.BigBlind:
		return fmt.Errorf("%w: starting stack %d below big blind %d", ErrInvalidRules, r.StartingStack, r.BigBlind)
	}
	return nil
}

// Round is the betting state of one heads-up round. Seat 0 posts the small
// blind and acts first preflop. Button counts actions taken on the street,
// offset so that Button%2 is always the seat to act.
//
// Round is a value; Proceed returns the next state and leaves the receiver alone.
type Round struct {
	Rules  Rules
	Street Street
	Button int
	Pips   [2]int
	Stacks [2]int
	// Folded is the seat that folded, or -1.
	Folded int
}

// NewRound posts the blinds.
func NewRound(rules Rules) Round {
	return Round{
		Rules:  rules,
		Street: Preflop,
		Pips:   [2]int{rules.SmallBlind, rules.BigBlind},
		Stacks: [2]int{rules.StartingStack - rules.SmallBlind, rules.StartingStack - rules.BigBlind},
		Folded: -1,
	}
}

// Active returns the seat to act.
func (r Round) Active() int { return r.Button % 2 }

// Terminal reports whether betting has finished, by fold or by reaching showdown.
func (r Round) Terminal() bool { return r.Folded >= 0 || r.Street == Showdown }

// ContinueCost is the amount the active seat must add to call.
func (r Round) ContinueCost() int {
	a := r.Active()
	return r.Pips[1-a] - r.Pips[a]
}

// Contributed returns the chips a seat has put in this round.
func (r Round) Contributed(seat int) int {
	return r.Rules.StartingStack - r.Stacks[seat&1]
}

// Pot returns every chip committed this round, including the current street.
func (r Round) Pot() int {
	return r.Contributed(0) + r.Contributed(1)
}

// LegalActions returns the moves available to the active seat.
func (r Round) LegalActions() poker.ActionSet {
	if r.Terminal() {
		return 0
	}
	a := r.Active()
	cost := r.ContinueCost()
	if cost == 0 {
		if r.Stacks[0] == 0 || r.Stacks[1] == 0 {
			return poker.NewActionSet(poker.Check)
		}
		return poker.NewActionSet(poker.Check, poker.Raise)
	}
	if cost == r.Stacks[a] || r.Stacks[1-a] == 0 {
		return poker.NewActionSet(poker.Fold, poker.Call)
	}
	return poker.NewActionSet(poker.Fold, poker.Call, poker.Raise)
}

// RaiseBounds returns the smallest and largest legal raise-to amounts for the
// active seat. A raise never puts in more than the opponent can match.
func (r Round) RaiseBounds() (lo, hi int) {
	a := r.Active()
	cost := r.ContinueCost()
	maxContrib := min(r.Stacks[a], r.Stacks[1-a]+cost)
	minContrib := min(maxContrib, cost+max(cost, r.Rules.BigBlind))
	return r.Pips[a] + minContrib, r.Pips[a] + maxContrib
}

// Proceed applies the active seat's action.
func (r Round) Proceed(act poker.Action) (Round, error) {
	if r.Terminal() {
		return r, ErrRoundOver
	}
	if !r.LegalActions().Has(act.Kind) {
		return r, fmt.Errorf("%w: %s not in %s", ErrIllegalAction, act, r.LegalActions())
	}
	a := r.Active()

	switch act.Kind {
	case poker.Fold:
		r.Folded = a
		return r, nil

	case poker.Call:
		if r.Button == 0 {
			// Small blind completes; the big blind keeps the option.
			bb := r.Rules.BigBlind
			r.Pips = [2]int{bb, bb}
			r.Stacks = [2]int{r.Rules.StartingStack - bb, r.Rules.StartingStack - bb}
			r.Button = 1
			return r, nil
		}
		cost := r.ContinueCost()
		r.Stacks[a] -= cost
		r.Pips[a] += cost
		return r.nextStreet(), nil

	case poker.Check:
		if (r.Street == Preflop && r.Button > 0) || r.Button > 1 {
			return r.nextStreet(), nil
		}
		r.Button++
		return r, nil

	default:
		lo, hi := r.RaiseBounds()
		amount := int(act.Amount)
		if amount < lo || amount > hi {
			return r, fmt.Errorf("%w: raise to %d outside [%d, %d]", ErrIllegalAction, amount, lo, hi)
		}
		contrib := amount - r.Pips[a]
		r.Stacks[a] -= contrib
		r.Pips[a] += contrib
		r.Button++
		return r, nil
	}
}

func (r Round) nextStreet() Round {
	r.Street++
	r.Button = 1
	r.Pips = [2]int{}
	return r
}

// Settle returns each seat's chip delta for a finished round. showdown is the
// comparison of seat 0's hand against seat 1's and is ignored after a fold.
func (r Round) Settle(showdown int) [2]int {
	switch {
	case r.Folded >= 0:
		loss := r.Contributed(r.Folded)
		var d [2]int
		d[r.Folded] = -loss
		d[1-r.Folded] = loss
		return d
	case showdown > 0:
		return [2]int{r.Contributed(1), -r.Contributed(1)}
	case showdown < 0:
		return [2]int{-r.Contributed(0), r.Contributed(0)}
	default:
		return [2]int{}
	}
}
