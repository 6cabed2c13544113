package game

import (
	"errors"
	"testing"

	"github.com/lox/pokerbots/poker"
)

func mustProceed(t *testing.T, r Round, acts ...poker.Action) Round {
	t.Helper()
	for _, a := range acts {
		var err error
		r, err = r.Proceed(a)
		if err != nil {
			t.Fatalf("Proceed(%s): %v", a, err)
		}
	}
	return r
}

func TestNewRoundPostsBlinds(t *testing.T) {
	r := NewRound(DefaultRules())

	if r.Pips != [2]int{1, 2} {
		t.Errorf("Expected pips [1 2], got %v", r.Pips)
	}
	if r.Stacks != [2]int{199, 198} {
		t.Errorf("Expected stacks [199 198], got %v", r.Stacks)
	}
	if r.Active() != 0 {
		t.Errorf("Small blind should act first, got seat %d", r.Active())
	}
	if r.Pot() != 3 {
		t.Errorf("Expected pot 3, got %d", r.Pot())
	}
	if want := poker.NewActionSet(poker.Fold, poker.Call, poker.Raise); r.LegalActions() != want {
		t.Errorf("Expected %s, got %s", want, r.LegalActions())
	}
	if lo, hi := r.RaiseBounds(); lo != 4 || hi != 200 {
		t.Errorf("Expected raise bounds [4, 200], got [%d, %d]", lo, hi)
	}
}

func TestLimpGivesBigBlindOption(t *testing.T) {
	r := mustProceed(t, NewRound(DefaultRules()), poker.CallAction())

	if r.Street != Preflop {
		t.Fatalf("Completing the small blind should not end preflop, got %s", r.Street)
	}
	if r.Active() != 1 {
		t.Errorf("Big blind should act, got seat %d", r.Active())
	}
	if want := poker.NewActionSet(poker.Check, poker.Raise); r.LegalActions() != want {
		t.Errorf("Expected %s, got %s", want, r.LegalActions())
	}

	r = mustProceed(t, r, poker.CheckAction())
	if r.Street != Flop {
		t.Fatalf("Expected flop, got %s", r.Street)
	}
	if r.Active() != 1 {
		t.Errorf("Big blind acts first postflop, got seat %d", r.Active())
	}
	if r.Pips != [2]int{} || r.Pot() != 4 {
		t.Errorf("Expected cleared pips and pot 4, got %v pot %d", r.Pips, r.Pot())
	}
}

func TestCheckedDownToShowdown(t *testing.T) {
	r := mustProceed(t, NewRound(DefaultRules()), poker.CallAction(), poker.CheckAction())
	for _, want := range []Street{Turn, River, Showdown} {
		r = mustProceed(t, r, poker.CheckAction(), poker.CheckAction())
		if r.Street != want {
			t.Fatalf("Expected %s, got %s", want, r.Street)
		}
	}
	if !r.Terminal() {
		t.Error("Showdown should be terminal")
	}
	if _, err := r.Proceed(poker.CheckAction()); !errors.Is(err, ErrRoundOver) {
		t.Errorf("Expected ErrRoundOver, got %v", err)
	}
	if d := r.Settle(1); d != [2]int{2, -2} {
		t.Errorf("Expected [2 -2], got %v", d)
	}
	if d := r.Settle(0); d != [2]int{} {
		t.Errorf("Expected split, got %v", d)
	}
}

func TestRaiseAndCall(t *testing.T) {
	r := mustProceed(t, NewRound(DefaultRules()), poker.RaiseAction(6))
	if r.Pips != [2]int{6, 2} || r.Active() != 1 {
		t.Fatalf("Unexpected state after raise: pips %v active %d", r.Pips, r.Active())
	}
	if lo, hi := r.RaiseBounds(); lo != 10 || hi != 200 {
		t.Errorf("Expected re-raise bounds [10, 200], got [%d, %d]", lo, hi)
	}

	r = mustProceed(t, r, poker.CallAction())
	if r.Street != Flop || r.Pot() != 12 {
		t.Errorf("Expected flop with pot 12, got %s pot %d", r.Street, r.Pot())
	}
}

func TestFoldSettles(t *testing.T) {
	r := mustProceed(t, NewRound(DefaultRules()), poker.RaiseAction(10), poker.FoldAction())
	if !r.Terminal() || r.Folded != 1 {
		t.Fatalf("Expected seat 1 to have folded, got %d", r.Folded)
	}
	if d := r.Settle(-1); d != [2]int{2, -2} {
		t.Errorf("Fold ignores showdown result, expected [2 -2], got %v", d)
	}
}

func TestAllInLeavesOnlyChecks(t *testing.T) {
	r := mustProceed(t, NewRound(DefaultRules()), poker.RaiseAction(200))
	if want := poker.NewActionSet(poker.Fold, poker.Call); r.LegalActions() != want {
		t.Errorf("Facing all-in, expected %s, got %s", want, r.LegalActions())
	}
	r = mustProceed(t, r, poker.CallAction())
	if want := poker.NewActionSet(poker.Check); r.LegalActions() != want {
		t.Errorf("With no chips behind, expected %s, got %s", want, r.LegalActions())
	}
	if r.Pot() != 400 {
		t.Errorf("Expected pot 400, got %d", r.Pot())
	}
}

func TestProceedRejectsIllegal(t *testing.T) {
	r := NewRound(DefaultRules())
	tests := []poker.Action{
		poker.CheckAction(),
		poker.RaiseAction(3),
		poker.RaiseAction(201),
	}
	for _, a := range tests {
		if _, err := r.Proceed(a); !errors.Is(err, ErrIllegalAction) {
			t.Errorf("Proceed(%s) error = %v, want ErrIllegalAction", a, err)
		}
	}
}

func TestRulesValidate(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Errorf("Default rules should be valid: %v", err)
	}
	bad := []Rules{
		{StartingStack: 200, SmallBlind: 0, BigBlind: 2},
		{StartingStack: 200, SmallBlind: 2, BigBlind: 1},
		{StartingStack: 1, SmallBlind: 1, BigBlind: 2},
	}
	for _, r := range bad {
		if err := r.Validate(); !errors.Is(err, ErrInvalidRules) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidRules", r, err)
		}
	}
}
