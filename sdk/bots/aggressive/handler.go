package aggressive

import (
	"context"
	rand "math/rand/v2"
	"sync"

	"github.com/lox/pokerbots/poker"
	"github.com/lox/pokerbots/sdk"
)

// Handler implements an aggressive strategy that raises 70% of the time when possible
type Handler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewHandler(seed uint64) *Handler {
	return &Handler{rng: rand.New(rand.NewPCG(seed, 0))}
}

func (h *Handler) Decide(_ context.Context, s sdk.Snapshot, _ sdk.Evaluator) (poker.Action, error) {
	h.mu.Lock()
	roll := h.rng.Float64()
	h.mu.Unlock()

	if lo, _, ok := s.CanRaise(); ok && roll < 0.7 {
		return poker.RaiseAction(lo), nil
	}
	if s.Legal.Has(poker.Check) {
		return poker.CheckAction(), nil
	}
	return poker.CallAction(), nil
}

// Check it implements the sdk.Handler interface
var _ sdk.Handler = (*Handler)(nil)
