package random

import (
	"context"
	rand "math/rand/v2"
	"sync"

	"github.com/lox/pokerbots/poker"
	"github.com/lox/pokerbots/sdk"
)

// Handler implements a random strategy that makes random valid actions.
// Decide runs on several workers at once, so the generator is locked.
type Handler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewHandler(seed uint64) *Handler {
	return &Handler{rng: rand.New(rand.NewPCG(seed, 0))}
}

func (h *Handler) Decide(_ context.Context, s sdk.Snapshot, _ sdk.Evaluator) (poker.Action, error) {
	kinds := s.Legal.Kinds()
	if len(kinds) == 0 {
		return poker.FoldAction(), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	kind := kinds[h.rng.IntN(len(kinds))]
	if kind != poker.Raise {
		return poker.Action{Kind: kind}, nil
	}
	lo, hi, _ := s.CanRaise()
	return poker.RaiseAction(lo + h.rng.Uint32N(hi-lo+1)), nil
}

// Check it implements the sdk.Handler interface
var _ sdk.Handler = (*Handler)(nil)
