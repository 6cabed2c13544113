package sdk_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerbots/internal/server"
	"github.com/lox/pokerbots/internal/transport"
	"github.com/lox/pokerbots/poker"
	"github.com/lox/pokerbots/sdk"
)

// strengthBot raises strong made hands, calls pairs and checks or folds the rest.
var strengthBot = sdk.HandlerFunc(func(_ context.Context, s sdk.Snapshot, e sdk.Evaluator) (poker.Action, error) {
	if s.BoardLen == 0 {
		if s.Hole[0].Rank() == s.Hole[1].Rank() {
			if lo, _, ok := s.CanRaise(); ok {
				return poker.RaiseAction(lo), nil
			}
		}
		return poker.CallAction(), nil
	}
	key, err := e.Strength(s.Cards())
	if err != nil {
		return poker.Action{}, err
	}
	switch {
	case key.Category() >= poker.TwoPair:
		if lo, hi, ok := s.CanRaise(); ok {
			return poker.RaiseAction(min(hi, lo*2)), nil
		}
		return poker.CallAction(), nil
	case key.Category() == poker.Pair:
		return poker.CallAction(), nil
	default:
		return poker.CheckAction(), nil
	}
})

func TestRunAgainstDealer(t *testing.T) {
	t.Parallel()
	for _, strategy := range []string{"calling", "aggressive", "random"} {
		t.Run(strategy, func(t *testing.T) {
			t.Parallel()
			serverSide, clientSide := net.Pipe()

			opp, err := server.NewOpponent(strategy, 5)
			require.NoError(t, err)
			cfg := server.DefaultMatchConfig()
			cfg.Rounds = 60
			cfg.Seed = 99
			logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
			dealer := server.NewDealer(cfg, opp, nil, logger)

			type played struct {
				res server.Result
				err error
			}
			dealt := make(chan played, 1)
			go func() {
				line := transport.NewLine(serverSide, 0)
				defer line.Close()
				res, err := dealer.Play(context.Background(), line)
				dealt <- played{res, err}
			}()

			eval, err := sdk.NewCachedEvaluator(4096)
			require.NoError(t, err)
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			out, err := sdk.Run(ctx, sdk.NewLineConn(clientSide, 0), strengthBot, 8, sdk.WithEvaluator(eval))
			require.NoError(t, err)

			p := <-dealt
			require.NoError(t, p.err)
			assert.Equal(t, p.res.Rounds, out.Rounds)
			assert.Equal(t, p.res.Bankroll, out.Bankroll)
			assert.Zero(t, p.res.Illegal, "every reply should be legal after legalization")
			assert.Zero(t, out.HandlerErrors)
			assert.Equal(t, 60, out.Rounds)
		})
	}
}
