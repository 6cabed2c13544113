package server

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerbots/internal/game"
	"github.com/lox/pokerbots/poker"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// scriptedClient answers every action request synchronously with reply.
type scriptedClient struct {
	reply   func(request string) string
	pending []string
	onRead  func()
	readErr error
}

func (c *scriptedClient) WriteLine(line string) error {
	if strings.HasPrefix(line, "A ") {
		c.pending = append(c.pending, c.reply(line))
	}
	return nil
}

func (c *scriptedClient) ReadLine() (string, error) {
	if c.readErr != nil {
		return "", c.readErr
	}
	if c.onRead != nil {
		c.onRead()
	}
	if len(c.pending) == 0 {
		return "", io.EOF
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func checkOrCall(request string) string {
	if strings.Contains(strings.Fields(request)[1], "K") {
		return "K"
	}
	return "C"
}

func testMatch(rounds int) MatchConfig {
	cfg := DefaultMatchConfig()
	cfg.Rounds = rounds
	cfg.Seed = 7
	return cfg
}

func sumDeltas(t *testing.T, sent []string) int64 {
	t.Helper()
	var total int64
	for _, line := range sent {
		if strings.HasPrefix(line, "D ") {
			d, err := strconv.ParseInt(line[2:], 10, 64)
			if err != nil {
				t.Fatalf("bad delta line %q", line)
			}
			total += d
		}
	}
	return total
}

func TestDealerPlaysFullMatch(t *testing.T) {
	t.Parallel()
	dealer := NewDealer(testMatch(10), callingStation{}, nil, quietLogger())
	dealer.Record(true)

	res, err := dealer.Play(context.Background(), &scriptedClient{reply: checkOrCall})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if res.Rounds != 10 {
		t.Errorf("Expected 10 rounds, got %d", res.Rounds)
	}
	if res.Illegal != 0 {
		t.Errorf("Expected no illegal actions, got %d", res.Illegal)
	}
	if last := res.Sent[len(res.Sent)-1]; last != "Q" {
		t.Errorf("Expected match to end with Q, got %q", last)
	}
	if got := sumDeltas(t, res.Sent); got != res.Bankroll {
		t.Errorf("Bankroll %d does not match deltas %d", res.Bankroll, got)
	}

	var seats, reveals int
	for _, line := range res.Sent {
		switch {
		case strings.HasPrefix(line, "P "):
			if want := "P " + strconv.Itoa(seats%2); line != want {
				t.Errorf("Round %d: expected %q, got %q", seats+1, want, line)
			}
			seats++
		case strings.HasPrefix(line, "O "):
			reveals++
		}
	}
	if seats != 10 {
		t.Errorf("Expected 10 seat lines, got %d", seats)
	}
	// Neither side ever folds, so every round reaches showdown.
	if reveals != 10 {
		t.Errorf("Expected 10 showdowns, got %d", reveals)
	}
}

func TestDealerOpeningRequest(t *testing.T) {
	t.Parallel()
	dealer := NewDealer(testMatch(1), callingStation{}, nil, quietLogger())

	var first string
	client := &scriptedClient{reply: func(req string) string {
		if first == "" {
			first = req
		}
		return checkOrCall(req)
	}}
	if _, err := dealer.Play(context.Background(), client); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// Small blind 1, big blind 2, 200 chip stacks.
	if first != "A FCR 4 200" {
		t.Errorf("Expected opening request %q, got %q", "A FCR 4 200", first)
	}
}

func TestDealerReplacesIllegalActions(t *testing.T) {
	t.Parallel()
	dealer := NewDealer(testMatch(2), callingStation{}, nil, quietLogger())
	dealer.Record(true)

	res, err := dealer.Play(context.Background(), &scriptedClient{reply: func(string) string { return "F" }})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// Round 1: seat 0 folds the small blind.
	var deltas []string
	for _, line := range res.Sent {
		if strings.HasPrefix(line, "D ") {
			deltas = append(deltas, line)
		}
	}
	if len(deltas) != 2 || deltas[0] != "D -1" {
		t.Fatalf("Expected first round to lose the small blind, got %v", deltas)
	}

	// Round 2: the opponent limps and the client can never fold, so each of
	// its four folds becomes a check.
	if res.Illegal != 4 {
		t.Errorf("Expected 4 replaced actions, got %d", res.Illegal)
	}
}

func TestDealerGarbageReply(t *testing.T) {
	t.Parallel()
	dealer := NewDealer(testMatch(1), callingStation{}, nil, quietLogger())

	res, err := dealer.Play(context.Background(), &scriptedClient{reply: func(string) string { return "bet big" }})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if res.Illegal != 1 {
		t.Errorf("Expected the unparseable reply to fold, got %d replacements", res.Illegal)
	}
}

func TestDealerTimeBankExhausted(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	cfg := testMatch(5)
	cfg.TimeBank = 30 * time.Second
	dealer := NewDealer(cfg, callingStation{}, mClock, quietLogger())
	dealer.Record(true)

	client := &scriptedClient{
		reply:  checkOrCall,
		onRead: func() { mClock.Advance(31 * time.Second) },
	}
	res, err := dealer.Play(context.Background(), client)
	if !errors.Is(err, ErrTimeBankExhausted) {
		t.Fatalf("Expected ErrTimeBankExhausted, got %v", err)
	}
	if res.Rounds != 0 {
		t.Errorf("Expected no completed rounds, got %d", res.Rounds)
	}
	if last := res.Sent[len(res.Sent)-1]; last != "Q" {
		t.Errorf("Expected Q after exhausting the time bank, got %q", last)
	}
}

func TestDealerTimeBankReported(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	dealer := NewDealer(testMatch(3), callingStation{}, mClock, quietLogger())
	dealer.Record(true)

	client := &scriptedClient{
		reply:  checkOrCall,
		onRead: func() { mClock.Advance(100 * time.Millisecond) },
	}
	res, err := dealer.Play(context.Background(), client)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	var banks []string
	for _, line := range res.Sent {
		if strings.HasPrefix(line, "T ") {
			banks = append(banks, line)
		}
	}
	if len(banks) != 3 || banks[0] != "T 30" {
		t.Fatalf("Unexpected time bank lines %v", banks)
	}
	if banks[1] == banks[0] || banks[2] == banks[1] {
		t.Errorf("Expected the time bank to shrink, got %v", banks)
	}
}

func TestDealerClientGone(t *testing.T) {
	t.Parallel()
	dealer := NewDealer(testMatch(3), callingStation{}, nil, quietLogger())

	_, err := dealer.Play(context.Background(), &scriptedClient{reply: checkOrCall, readErr: io.ErrUnexpectedEOF})
	if !errors.Is(err, ErrClientGone) {
		t.Fatalf("Expected ErrClientGone, got %v", err)
	}
}

func TestDealerDeterministic(t *testing.T) {
	t.Parallel()
	play := func() []string {
		opp, err := NewOpponent("random", 3)
		if err != nil {
			t.Fatal(err)
		}
		// A real clock would leak wall time into the T lines.
		mClock := quartz.NewMock(t)
		dealer := NewDealer(testMatch(20), opp, mClock, quietLogger())
		dealer.Record(true)
		client := &scriptedClient{reply: checkOrCall, onRead: func() { mClock.Advance(10 * time.Millisecond) }}
		res, err := dealer.Play(context.Background(), client)
		if err != nil {
			t.Fatalf("Play failed: %v", err)
		}
		return res.Sent
	}

	a, b := play(), play()
	if strings.Join(a, "\n") != strings.Join(b, "\n") {
		t.Error("Expected identical transcripts for the same seed")
	}
	var banks int
	for _, line := range a {
		if strings.HasPrefix(line, "T ") {
			banks++
		}
	}
	if banks != 20 {
		t.Errorf("Expected a time bank line per round, got %d", banks)
	}
}

func TestOpponentsStayLegal(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"calling", "aggressive", "random"} {
		opp, err := NewOpponent(name, 11)
		if err != nil {
			t.Fatalf("NewOpponent(%q): %v", name, err)
		}
		for i := 0; i < 200; i++ {
			r := game.NewRound(game.DefaultRules())
			for !r.Terminal() {
				act := opp.Act(View{Round: r, Seat: r.Active()})
				next, err := r.Proceed(act)
				if err != nil {
					t.Fatalf("%s produced illegal %s: %v", name, act, err)
				}
				r = next
			}
		}
	}

	if _, err := NewOpponent("shark", 0); err == nil {
		t.Error("Expected unknown strategy to fail")
	}
}

func TestStrengthUsesBoard(t *testing.T) {
	t.Parallel()
	board := poker.MustParseCards("2c 7d 9h Jc Qs")
	pair, err := strength([2]poker.Card{poker.MustParseCards("Qh")[0], poker.MustParseCards("3d")[0]}, board)
	if err != nil {
		t.Fatal(err)
	}
	high, err := strength([2]poker.Card{poker.MustParseCards("Ah")[0], poker.MustParseCards("Kd")[0]}, board)
	if err != nil {
		t.Fatal(err)
	}
	if poker.Compare(pair, high) <= 0 {
		t.Errorf("Expected %s to beat %s", pair, high)
	}
}
