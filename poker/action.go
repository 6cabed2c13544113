package poker

import "fmt"

// ActionKind enumerates the moves available to a player.
type ActionKind uint8

const (
	Fold ActionKind = iota
	Check
	Call
	Raise
)

func (k ActionKind) String() string {
	switch k {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	default:
		return "unknown"
	}
}

// Action is a player's move. Amount is the total contribution for the
// street after a raise and is ignored for every other kind. A bet is a raise
// made when nothing is owed.
type Action struct {
	Kind   ActionKind
	Amount uint32
}

func FoldAction() Action               { return Action{Kind: Fold} }
func CheckAction() Action              { return Action{Kind: Check} }
func CallAction() Action               { return Action{Kind: Call} }
func RaiseAction(amount uint32) Action { return Action{Kind: Raise, Amount: amount} }

func (a Action) String() string {
	if a.Kind == Raise {
		return fmt.Sprintf("raise %d", a.Amount)
	}
	return a.Kind.String()
}

// ActionSet is a bitmask of legal action kinds.
type ActionSet uint8

func NewActionSet(kinds ...ActionKind) ActionSet {
	var s ActionSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

func (s ActionSet) Has(k ActionKind) bool { return s&(1<<k) != 0 }

func (s ActionSet) Kinds() []ActionKind {
	var kinds []ActionKind
	for k := Fold; k <= Raise; k++ {
		if s.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (s ActionSet) String() string {
	return fmt.Sprint(s.Kinds())
}
