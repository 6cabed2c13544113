package callingstation

import (
	"context"

	"github.com/lox/pokerbots/poker"
	"github.com/lox/pokerbots/sdk"
)

// Handler implements a calling station strategy that always calls or checks
type Handler struct{}

func (Handler) Decide(_ context.Context, s sdk.Snapshot, _ sdk.Evaluator) (poker.Action, error) {
	if s.Legal.Has(poker.Check) {
		return poker.CheckAction(), nil
	}
	return poker.CallAction(), nil
}

// Check it implements the sdk.Handler interface
var _ sdk.Handler = Handler{}
