package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerbots/internal/game"
	"github.com/lox/pokerbots/internal/protocol"
	"github.com/lox/pokerbots/poker"
)

var (
	ErrTimeBankExhausted = errors.New("time bank exhausted")
	ErrClientGone        = errors.New("client disconnected")
)

// Conn is the line transport a Dealer plays over.
type Conn interface {
	ReadLine() (string, error)
	WriteLine(line string) error
}

// MatchConfig describes one heads-up match.
type MatchConfig struct {
	Rounds   int
	Rules    game.Rules
	TimeBank time.Duration
	Seed     int64
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		Rounds:   1000,
		Rules:    game.DefaultRules(),
		TimeBank: 30 * time.Second,
	}
}

// Result is the client's view of a finished match.
type Result struct {
	Rounds   int
	Bankroll int64
	// Illegal counts client replies that were replaced by a check or fold.
	Illegal  int
	Sent     []string
	Received []string
}

// Dealer runs matches between a remote client and a local Opponent. The
// client's seat alternates every round, starting in seat 0.
type Dealer struct {
	cfg      MatchConfig
	opponent Opponent
	clock    quartz.Clock
	logger   *log.Logger
	record   bool
}

// NewDealer creates a dealer. A nil clock uses the real clock.
func NewDealer(cfg MatchConfig, opponent Opponent, clock quartz.Clock, logger *log.Logger) *Dealer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Dealer{
		cfg:      cfg,
		opponent: opponent,
		clock:    clock,
		logger:   logger.WithPrefix("dealer"),
	}
}

// Record keeps every line sent and received in the Result.
func (d *Dealer) Record(on bool) { d.record = on }

type match struct {
	*Dealer
	conn   Conn
	rng    *rand.Rand
	bank   time.Duration
	result Result
}

// Play runs the configured number of rounds over conn and sends the
// match-end line. It stops early if ctx is done, the client disconnects, or
// the client's time bank runs out.
func (d *Dealer) Play(ctx context.Context, conn Conn) (Result, error) {
	if err := d.cfg.Rules.Validate(); err != nil {
		return Result{}, err
	}
	m := &match{
		Dealer: d,
		conn:   conn,
		rng:    rand.New(rand.NewSource(d.cfg.Seed)),
		bank:   d.cfg.TimeBank,
	}

	for i := 0; i < d.cfg.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			return m.result, err
		}
		if err := m.playRound(i); err != nil {
			if errors.Is(err, ErrTimeBankExhausted) {
				_ = m.send(protocol.Event{Kind: protocol.KindMatchOver})
			}
			return m.result, err
		}
	}

	if err := m.send(protocol.Event{Kind: protocol.KindMatchOver}); err != nil {
		return m.result, err
	}
	d.logger.Info("Match complete", "rounds", m.result.Rounds, "bankroll", m.result.Bankroll, "illegal", m.result.Illegal)
	return m.result, nil
}

func (m *match) send(ev protocol.Event) error {
	line := protocol.EncodeEvent(ev)
	if m.record {
		m.result.Sent = append(m.result.Sent, line)
	}
	if err := m.conn.WriteLine(line); err != nil {
		return fmt.Errorf("%w: %v", ErrClientGone, err)
	}
	return nil
}

func (m *match) playRound(i int) error {
	seat := i % 2
	deck := poker.NewDeck(m.rng)
	dealt := deck.Deal(9)
	var holes [2][2]poker.Card
	copy(holes[0][:], dealt[0:2])
	copy(holes[1][:], dealt[2:4])
	board := dealt[4:9]

	for _, ev := range []protocol.Event{
		{Kind: protocol.KindTimeBank, TimeBank: m.bank},
		{Kind: protocol.KindSeat, Seat: seat},
		{Kind: protocol.KindDeal, Cards: holes[seat][:]},
	} {
		if err := m.send(ev); err != nil {
			return err
		}
	}

	r := game.NewRound(m.cfg.Rules)
	for !r.Terminal() {
		legal := r.LegalActions()
		active := r.Active()

		var act poker.Action
		switch {
		case legal == poker.NewActionSet(poker.Check):
			// Someone is all in; run the board out.
			act = poker.CheckAction()
		case active == seat:
			a, err := m.ask(r, legal)
			if err != nil {
				return err
			}
			act = a
		default:
			act = m.opponent.Act(View{
				Round: r,
				Seat:  active,
				Hole:  holes[active],
				Board: board[:r.Street.BoardSize()],
			})
		}

		next, err := r.Proceed(act)
		if err != nil {
			if active == seat {
				m.result.Illegal++
			}
			m.logger.Debug("Replacing illegal action", "seat", active, "action", act, "error", err)
			act = fallback(legal)
			if next, err = r.Proceed(act); err != nil {
				return err
			}
		}
		if err := m.send(protocol.Event{Kind: protocol.KindPlayerAction, Action: act}); err != nil {
			return err
		}
		if !next.Terminal() && next.Street != r.Street {
			if err := m.send(protocol.Event{Kind: protocol.KindBoard, Cards: board[:next.Street.BoardSize()]}); err != nil {
				return err
			}
		}
		r = next
	}

	var deltas [2]int
	if r.Folded >= 0 {
		deltas = r.Settle(0)
	} else {
		if err := m.send(protocol.Event{Kind: protocol.KindReveal, Cards: holes[1-seat][:]}); err != nil {
			return err
		}
		k0, err := strength(holes[0], board)
		if err != nil {
			return err
		}
		k1, err := strength(holes[1], board)
		if err != nil {
			return err
		}
		deltas = r.Settle(poker.Compare(k0, k1))
	}

	delta := int64(deltas[seat])
	if err := m.send(protocol.Event{Kind: protocol.KindRoundOver, Delta: delta}); err != nil {
		return err
	}
	m.result.Rounds++
	m.result.Bankroll += delta
	m.logger.Debug("Round over", "round", i+1, "seat", seat, "delta", delta, "street", r.Street)
	return nil
}

// ask sends an action request and charges the reply time to the time bank.
func (m *match) ask(r game.Round, legal poker.ActionSet) (poker.Action, error) {
	req := protocol.Event{Kind: protocol.KindActionRequest, Legal: legal}
	if legal.Has(poker.Raise) {
		lo, hi := r.RaiseBounds()
		req.MinRaise, req.MaxRaise = uint32(lo), uint32(hi)
	}
	if err := m.send(req); err != nil {
		return poker.Action{}, err
	}

	start := m.clock.Now()
	line, err := m.conn.ReadLine()
	if err != nil {
		return poker.Action{}, fmt.Errorf("%w: %v", ErrClientGone, err)
	}
	if m.record {
		m.result.Received = append(m.result.Received, line)
	}
	m.bank -= m.clock.Since(start)
	if m.bank <= 0 {
		return poker.Action{}, fmt.Errorf("%w after %d rounds", ErrTimeBankExhausted, m.result.Rounds)
	}

	act, err := protocol.ParseAction(line)
	if err != nil {
		m.logger.Warn("Unparseable client action", "line", line, "error", err)
		m.result.Illegal++
		return fallback(legal), nil
	}
	return act, nil
}

func strength(hole [2]poker.Card, board []poker.Card) (poker.HandKey, error) {
	cards := append(hole[:], board...)
	_, key, err := poker.BestHand(cards)
	return key, err
}

// fallback is a check when possible and a fold otherwise.
func fallback(legal poker.ActionSet) poker.Action {
	if legal.Has(poker.Check) {
		return poker.CheckAction()
	}
	return poker.FoldAction()
}
