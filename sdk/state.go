package sdk

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/lox/pokerbots/internal/game"
	"github.com/lox/pokerbots/internal/protocol"
	"github.com/lox/pokerbots/poker"
)

// Street represents the betting round
type Street = game.Street

const (
	Preflop  = game.Preflop
	Flop     = game.Flop
	Turn     = game.Turn
	River    = game.River
	Showdown = game.Showdown
)

// Rules are the chip amounts of the match.
type Rules = game.Rules

// DefaultRules returns a 200 chip stack with 1/2 blinds.
func DefaultRules() Rules { return game.DefaultRules() }

// Snapshot is an immutable copy of the match state handed to a Handler.
// Per-seat arrays are indexed by seat; Seat is ours.
type Snapshot struct {
	Round    int
	Seat     int
	Street   Street
	Hole     [2]poker.Card
	Opponent [2]poker.Card // zero until revealed
	BoardSet [5]poker.Card
	BoardLen int
	Pips     [2]int
	Stacks   [2]int
	Pot      int

	// Set while an action request is outstanding.
	Legal    poker.ActionSet
	MinRaise uint32
	MaxRaise uint32

	TimeBank    time.Duration
	HasTimeBank bool
	Bankroll    int64
}

// Board returns the community cards dealt so far.
func (s Snapshot) Board() []poker.Card {
	return append([]poker.Card(nil), s.BoardSet[:s.BoardLen]...)
}

// Cards returns our hole cards followed by the board.
func (s Snapshot) Cards() []poker.Card {
	cards := make([]poker.Card, 0, 2+s.BoardLen)
	if s.Hole[0].Valid() {
		cards = append(cards, s.Hole[:]...)
	}
	return append(cards, s.BoardSet[:s.BoardLen]...)
}

// ContinueCost is the amount we must add to call, zero when we are not behind.
func (s Snapshot) ContinueCost() int {
	return max(0, s.Pips[1-s.Seat]-s.Pips[s.Seat])
}

// CanRaise reports whether a raise is legal and returns its bounds.
func (s Snapshot) CanRaise() (lo, hi uint32, ok bool) {
	return s.MinRaise, s.MaxRaise, s.Legal.Has(poker.Raise)
}

const (
	phaseIdle     = "idle"
	phaseBetting  = "betting"
	phaseFolded   = "folded"
	phaseShowdown = "showdown"
)

// effect tells the runner what a committed event changed.
type effect struct {
	roundStarted bool
	roundOver    bool
	matchOver    bool
	delta        int64
}

// matchState is the single shared record of the match. Only the runner's
// commit step calls apply; workers read snapshots. The time bank is the one
// field written out of order, by the reader, and is kept atomically.
type matchState struct {
	mu        sync.RWMutex
	rules     game.Rules
	lifecycle *fsm.FSM
	log       zerolog.Logger

	seat     int
	round    game.Round
	roundNum int
	hole     [2]poker.Card
	opp      [2]poker.Card
	board    [5]poker.Card
	boardLen int
	legal    poker.ActionSet
	minRaise uint32
	maxRaise uint32
	bankroll int64

	timeBank    atomic.Int64
	hasTimeBank atomic.Bool
}

func newMatchState(rules game.Rules, log zerolog.Logger) *matchState {
	s := &matchState{rules: rules, log: log, round: game.NewRound(rules)}
	s.lifecycle = fsm.NewFSM(
		phaseIdle,
		fsm.Events{
			{Name: "deal", Src: []string{phaseIdle}, Dst: phaseBetting},
			{Name: "fold", Src: []string{phaseBetting}, Dst: phaseFolded},
			{Name: "showdown", Src: []string{phaseBetting}, Dst: phaseShowdown},
			{Name: "settle", Src: []string{phaseBetting, phaseFolded, phaseShowdown}, Dst: phaseIdle},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) {
				s.log.Debug().Str("from", e.Src).Str("to", e.Dst).Msg("round phase")
			},
		},
	)
	return s
}

func (s *matchState) setTimeBank(d time.Duration) {
	s.timeBank.Store(int64(d))
	s.hasTimeBank.Store(true)
}

func (s *matchState) transition(event string, ev protocol.Event) error {
	if err := s.lifecycle.Event(event); err != nil {
		return fmt.Errorf("%w: %s during %s phase: %v", ErrMalformedMessage, ev.Kind, s.lifecycle.Current(), err)
	}
	return nil
}

func (s *matchState) requirePhase(ev protocol.Event, phases ...string) error {
	for _, p := range phases {
		if s.lifecycle.Is(p) {
			return nil
		}
	}
	return fmt.Errorf("%w: unexpected %s during %s phase", ErrMalformedMessage, ev.Kind, s.lifecycle.Current())
}

// apply commits one ordered event.
func (s *matchState) apply(ev protocol.Event) (effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var eff effect
	switch ev.Kind {
	case protocol.KindTimeBank:
		s.setTimeBank(ev.TimeBank)

	case protocol.KindSeat:
		if err := s.requirePhase(ev, phaseIdle); err != nil {
			return eff, err
		}
		s.seat = ev.Seat

	case protocol.KindDeal:
		if err := s.transition("deal", ev); err != nil {
			return eff, err
		}
		s.round = game.NewRound(s.rules)
		s.roundNum++
		copy(s.hole[:], ev.Cards)
		s.opp = [2]poker.Card{}
		s.board = [5]poker.Card{}
		s.boardLen = 0
		s.legal, s.minRaise, s.maxRaise = 0, 0, 0
		eff.roundStarted = true

	case protocol.KindBoard:
		if err := s.requirePhase(ev, phaseBetting, phaseShowdown); err != nil {
			return eff, err
		}
		if want := s.round.Street.BoardSize(); len(ev.Cards) != want {
			return eff, fmt.Errorf("%w: %d board cards on the %s", ErrMalformedMessage, len(ev.Cards), s.round.Street)
		}
		for i := 0; i < s.boardLen; i++ {
			if ev.Cards[i] != s.board[i] {
				return eff, fmt.Errorf("%w: board changed from %s", ErrMalformedMessage, poker.FormatCards(s.board[:s.boardLen]))
			}
		}
		s.boardLen = copy(s.board[:], ev.Cards)

	case protocol.KindPlayerAction:
		if err := s.requirePhase(ev, phaseBetting); err != nil {
			return eff, err
		}
		next, err := s.round.Proceed(ev.Action)
		if err != nil {
			return eff, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		s.round = next
		s.legal, s.minRaise, s.maxRaise = 0, 0, 0
		switch {
		case next.Folded >= 0:
			return eff, s.transition("fold", ev)
		case next.Street == game.Showdown:
			return eff, s.transition("showdown", ev)
		}

	case protocol.KindReveal:
		if err := s.requirePhase(ev, phaseBetting, phaseShowdown); err != nil {
			return eff, err
		}
		if s.lifecycle.Is(phaseBetting) {
			if err := s.transition("showdown", ev); err != nil {
				return eff, err
			}
		}
		copy(s.opp[:], ev.Cards)

	case protocol.KindActionRequest:
		if err := s.requirePhase(ev, phaseBetting); err != nil {
			return eff, err
		}
		if s.round.Active() != s.seat {
			return eff, fmt.Errorf("%w: action requested while seat %d is to act", ErrMalformedMessage, s.round.Active())
		}
		s.legal, s.minRaise, s.maxRaise = ev.Legal, ev.MinRaise, ev.MaxRaise

	case protocol.KindRoundOver:
		if err := s.transition("settle", ev); err != nil {
			return eff, err
		}
		s.bankroll += ev.Delta
		s.legal, s.minRaise, s.maxRaise = 0, 0, 0
		eff.roundOver = true
		eff.delta = ev.Delta

	case protocol.KindMatchOver:
		eff.matchOver = true
	}
	return eff, nil
}

func (s *matchState) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Round:       s.roundNum,
		Seat:        s.seat,
		Street:      s.round.Street,
		Hole:        s.hole,
		Opponent:    s.opp,
		BoardSet:    s.board,
		BoardLen:    s.boardLen,
		Pips:        s.round.Pips,
		Stacks:      s.round.Stacks,
		Pot:         s.round.Pot(),
		Legal:       s.legal,
		MinRaise:    s.minRaise,
		MaxRaise:    s.maxRaise,
		TimeBank:    time.Duration(s.timeBank.Load()),
		HasTimeBank: s.hasTimeBank.Load(),
		Bankroll:    s.bankroll,
	}
}

// snapshotFor returns the snapshot a decision for req is made against.
func (s *matchState) snapshotFor(req protocol.Event) Snapshot {
	snap := s.snapshot()
	snap.Legal, snap.MinRaise, snap.MaxRaise = req.Legal, req.MinRaise, req.MaxRaise
	return snap
}

func (s *matchState) currentBankroll() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bankroll
}
