package sdk

import (
	"context"

	"github.com/lox/pokerbots/poker"
)

// Handler defines the interface for bot decision-making
type Handler interface {
	// Decide is called once per action request on a worker goroutine. It
	// should return within the time bank and honour ctx, which is cancelled
	// when the decision times out or the run ends. An error or a panic is
	// treated as a fold.
	Decide(ctx context.Context, state Snapshot, eval Evaluator) (poker.Action, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, state Snapshot, eval Evaluator) (poker.Action, error)

func (f HandlerFunc) Decide(ctx context.Context, state Snapshot, eval Evaluator) (poker.Action, error) {
	return f(ctx, state, eval)
}

// RoundObserver may be implemented by a Handler to follow round boundaries.
// Both methods are called from the commit step, in protocol order, and must
// not block.
type RoundObserver interface {
	// OnRoundStart is called after our hole cards are dealt.
	OnRoundStart(state Snapshot)

	// OnRoundOver is called with the chips won or lost in the round.
	OnRoundOver(state Snapshot, delta int64)
}
