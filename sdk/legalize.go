package sdk

import "github.com/lox/pokerbots/poker"

// Legalize maps an action onto the legal set of an action request:
//
//   - a raise outside the bounds, or when raising is not allowed, becomes a
//     check if legal and a call otherwise
//   - a check that is not legal becomes a fold
//   - a fold or call when checking is legal becomes a check
func Legalize(a poker.Action, s Snapshot) poker.Action {
	legal := s.Legal
	switch a.Kind {
	case poker.Raise:
		if legal.Has(poker.Raise) && a.Amount >= s.MinRaise && a.Amount <= s.MaxRaise {
			return a
		}
		if legal.Has(poker.Check) {
			return poker.CheckAction()
		}
		return fallback(legal, poker.Call)
	case poker.Check:
		if legal.Has(poker.Check) {
			return a
		}
		return fallback(legal, poker.Fold)
	default:
		if legal.Has(poker.Check) {
			return poker.CheckAction()
		}
		return fallback(legal, a.Kind)
	}
}

// forcedAction is sent when no decision is available.
func forcedAction(s Snapshot) poker.Action {
	return Legalize(poker.FoldAction(), s)
}

// fallback returns want if legal, otherwise the first legal kind in the
// order fold, check, call.
func fallback(legal poker.ActionSet, want poker.ActionKind) poker.Action {
	if legal.Has(want) {
		return poker.Action{Kind: want}
	}
	for _, k := range []poker.ActionKind{poker.Fold, poker.Check, poker.Call} {
		if legal.Has(k) {
			return poker.Action{Kind: k}
		}
	}
	return poker.FoldAction()
}
