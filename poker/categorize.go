package poker

// HoleCardCategory buckets a starting hand for simple preflop play. Larger
// values are stronger, so categories compare with < and >.
type HoleCardCategory uint8

const (
	CategoryUnknown HoleCardCategory = iota
	CategoryTrash
	CategoryWeak
	CategoryMedium
	CategoryStrong
	CategoryPremium
)

func (c HoleCardCategory) String() string {
	switch c {
	case CategoryTrash:
		return "Trash"
	case CategoryWeak:
		return "Weak"
	case CategoryMedium:
		return "Medium"
	case CategoryStrong:
		return "Strong"
	case CategoryPremium:
		return "Premium"
	default:
		return "Unknown"
	}
}

// CategorizeHoleCards buckets two hole cards:
//
//	Premium  JJ+, AK
//	Strong   TT, AQ, AJ
//	Medium   77-99, suited broadway
//	Weak     22-66, suited cards at most two ranks apart
//	Trash    everything else
func CategorizeHoleCards(a, b Card) HoleCardCategory {
	if !a.Valid() || !b.Valid() || a == b {
		return CategoryUnknown
	}
	hi, lo := a.Rank(), b.Rank()
	if lo > hi {
		hi, lo = lo, hi
	}
	suited := a.Suit() == b.Suit()

	if hi == lo {
		switch {
		case hi >= Jack:
			return CategoryPremium
		case hi == Ten:
			return CategoryStrong
		case hi >= Seven:
			return CategoryMedium
		default:
			return CategoryWeak
		}
	}

	switch {
	case hi == Ace && lo == King:
		return CategoryPremium
	case hi == Ace && lo >= Jack:
		return CategoryStrong
	case suited && lo >= Ten:
		return CategoryMedium
	case suited && hi-lo <= 2:
		return CategoryWeak
	}
	return CategoryTrash
}
