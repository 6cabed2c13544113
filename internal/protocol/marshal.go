package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lox/pokerbots/poker"
)

// ErrMalformedMessage is wrapped by every decode failure.
var ErrMalformedMessage = errors.New("malformed message")

func malformed(line, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %q", ErrMalformedMessage, fmt.Sprintf(format, args...), line)
}

// Decode parses one protocol line. It is pure and safe for concurrent use.
func Decode(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Event{}, malformed(line, "empty line")
	}
	if len(fields[0]) != 1 {
		return Event{}, malformed(line, "bad opcode %q", fields[0])
	}
	op, args := fields[0][0], fields[1:]

	want := func(n int) error {
		if len(args) != n {
			return malformed(line, "opcode %c takes %d fields, got %d", op, n, len(args))
		}
		return nil
	}

	var ev Event
	switch op {
	case OpTimeBank:
		if err := want(1); err != nil {
			return Event{}, err
		}
		secs, err := strconv.ParseFloat(args[0], 64)
		nanos := secs * float64(time.Second)
		// NaN fails every comparison, so test for the valid range.
		if err != nil || !(nanos >= 0 && nanos < math.MaxInt64) {
			return Event{}, malformed(line, "bad time bank %q", args[0])
		}
		ev = Event{Kind: KindTimeBank, TimeBank: time.Duration(nanos)}

	case OpSeat:
		if err := want(1); err != nil {
			return Event{}, err
		}
		seat, err := strconv.Atoi(args[0])
		if err != nil || seat < 0 || seat > 1 {
			return Event{}, malformed(line, "bad seat %q", args[0])
		}
		ev = Event{Kind: KindSeat, Seat: seat}

	case OpDeal, OpReveal:
		if err := want(2); err != nil {
			return Event{}, err
		}
		cards, err := decodeCards(line, args)
		if err != nil {
			return Event{}, err
		}
		ev = Event{Kind: KindDeal, Cards: cards}
		if op == OpReveal {
			ev.Kind = KindReveal
		}

	case OpBoard:
		if len(args) < 3 || len(args) > 5 {
			return Event{}, malformed(line, "board takes 3 to 5 cards, got %d", len(args))
		}
		cards, err := decodeCards(line, args)
		if err != nil {
			return Event{}, err
		}
		ev = Event{Kind: KindBoard, Cards: cards}

	case OpFold, OpCall, OpCheck, OpRaise:
		action, err := decodeAction(line, op, args)
		if err != nil {
			return Event{}, err
		}
		ev = Event{Kind: KindPlayerAction, Action: action}

	case OpActionRequest:
		if len(args) == 0 {
			return Event{}, malformed(line, "action request without legal actions")
		}
		legal, err := decodeLegal(line, args[0])
		if err != nil {
			return Event{}, err
		}
		ev = Event{Kind: KindActionRequest, Legal: legal}
		if !legal.Has(poker.Raise) {
			if err := want(1); err != nil {
				return Event{}, err
			}
			break
		}
		if err := want(3); err != nil {
			return Event{}, err
		}
		if ev.MinRaise, err = decodeAmount(line, args[1]); err != nil {
			return Event{}, err
		}
		if ev.MaxRaise, err = decodeAmount(line, args[2]); err != nil {
			return Event{}, err
		}
		if ev.MinRaise > ev.MaxRaise {
			return Event{}, malformed(line, "raise bounds %d > %d", ev.MinRaise, ev.MaxRaise)
		}

	case OpRoundOver:
		if err := want(1); err != nil {
			return Event{}, err
		}
		delta, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return Event{}, malformed(line, "bad delta %q", args[0])
		}
		ev = Event{Kind: KindRoundOver, Delta: delta}

	case OpQuit:
		if err := want(0); err != nil {
			return Event{}, err
		}
		ev = Event{Kind: KindMatchOver}

	default:
		return Event{}, malformed(line, "unknown opcode %c", op)
	}

	ev.Ordered = IsOrdered(ev.Kind)
	return ev, nil
}

func decodeCards(line string, tokens []string) ([]poker.Card, error) {
	cards := make([]poker.Card, 0, len(tokens))
	var seen poker.Hand
	for _, tok := range tokens {
		c, err := poker.ParseCard(tok)
		if err != nil {
			return nil, malformed(line, "%v", err)
		}
		if seen.HasCard(c) {
			return nil, malformed(line, "duplicate card %s", c)
		}
		seen.AddCard(c)
		cards = append(cards, c)
	}
	return cards, nil
}

func decodeAmount(line, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, malformed(line, "bad amount %q", s)
	}
	return uint32(v), nil
}

func decodeAction(line string, op byte, args []string) (poker.Action, error) {
	if op != OpRaise {
		if len(args) != 0 {
			return poker.Action{}, malformed(line, "opcode %c takes no fields", op)
		}
		switch op {
		case OpFold:
			return poker.FoldAction(), nil
		case OpCall:
			return poker.CallAction(), nil
		default:
			return poker.CheckAction(), nil
		}
	}
	if len(args) != 1 {
		return poker.Action{}, malformed(line, "raise takes 1 field, got %d", len(args))
	}
	amount, err := decodeAmount(line, args[0])
	if err != nil {
		return poker.Action{}, err
	}
	return poker.RaiseAction(amount), nil
}

func decodeLegal(line, letters string) (poker.ActionSet, error) {
	var set poker.ActionSet
	for i := 0; i < len(letters); i++ {
		k, ok := actionKind(letters[i])
		if !ok || set.Has(k) {
			return 0, malformed(line, "bad legal actions %q", letters)
		}
		set |= poker.NewActionSet(k)
	}
	return set, nil
}

func actionKind(op byte) (poker.ActionKind, bool) {
	switch op {
	case OpFold:
		return poker.Fold, true
	case OpCheck:
		return poker.Check, true
	case OpCall:
		return poker.Call, true
	case OpRaise:
		return poker.Raise, true
	}
	return 0, false
}

func actionOp(k poker.ActionKind) byte {
	switch k {
	case poker.Check:
		return OpCheck
	case poker.Call:
		return OpCall
	case poker.Raise:
		return OpRaise
	default:
		return OpFold
	}
}

// Encode formats an action as a client reply line, without the trailing newline.
func Encode(a poker.Action) string {
	if a.Kind == poker.Raise {
		return "R " + strconv.FormatUint(uint64(a.Amount), 10)
	}
	return string(actionOp(a.Kind))
}

// ParseAction decodes a client reply line.
func ParseAction(line string) (poker.Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields[0]) != 1 {
		return poker.Action{}, malformed(line, "bad action")
	}
	if _, ok := actionKind(fields[0][0]); !ok {
		return poker.Action{}, malformed(line, "unknown action %q", fields[0])
	}
	return decodeAction(line, fields[0][0], fields[1:])
}

// EncodeEvent formats an event as a server line. It is the inverse of Decode.
func EncodeEvent(ev Event) string {
	var b strings.Builder
	writeCards := func(op byte) {
		b.WriteByte(op)
		for _, c := range ev.Cards {
			b.WriteByte(' ')
			b.WriteString(c.String())
		}
	}

	switch ev.Kind {
	case KindTimeBank:
		b.WriteByte(OpTimeBank)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(ev.TimeBank.Seconds(), 'f', -1, 64))
	case KindSeat:
		fmt.Fprintf(&b, "%c %d", OpSeat, ev.Seat)
	case KindDeal:
		writeCards(OpDeal)
	case KindBoard:
		writeCards(OpBoard)
	case KindReveal:
		writeCards(OpReveal)
	case KindPlayerAction:
		b.WriteString(Encode(ev.Action))
	case KindActionRequest:
		b.WriteByte(OpActionRequest)
		b.WriteByte(' ')
		for _, k := range ev.Legal.Kinds() {
			b.WriteByte(actionOp(k))
		}
		if ev.Legal.Has(poker.Raise) {
			fmt.Fprintf(&b, " %d %d", ev.MinRaise, ev.MaxRaise)
		}
	case KindRoundOver:
		fmt.Fprintf(&b, "%c %d", OpRoundOver, ev.Delta)
	case KindMatchOver:
		b.WriteByte(OpQuit)
	}
	return b.String()
}
