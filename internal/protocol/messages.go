// Package protocol implements the line oriented match protocol. Every message
// is one line: an opcode character followed by space separated fields.
package protocol

import (
	"time"

	"github.com/lox/pokerbots/poker"
)

// Kind identifies the type of an Event.
type Kind uint8

const (
	KindTimeBank      Kind = iota // T <seconds>
	KindSeat                      // P <seat>
	KindDeal                      // H <card> <card>
	KindBoard                     // B <card> <card> <card> [<card> [<card>]]
	KindPlayerAction              // F | C | K | R <amount>
	KindReveal                    // O <card> <card>
	KindActionRequest             // A <legal> [<min> <max>]
	KindRoundOver                 // D <delta>
	KindMatchOver                 // Q
)

var kindNames = [...]string{
	KindTimeBank:      "time_bank",
	KindSeat:          "seat",
	KindDeal:          "deal",
	KindBoard:         "board",
	KindPlayerAction:  "player_action",
	KindReveal:        "reveal",
	KindActionRequest: "action_request",
	KindRoundOver:     "round_over",
	KindMatchOver:     "match_over",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Opcodes
const (
	OpTimeBank      = 'T'
	OpSeat          = 'P'
	OpDeal          = 'H'
	OpBoard         = 'B'
	OpFold          = 'F'
	OpCall          = 'C'
	OpCheck         = 'K'
	OpRaise         = 'R'
	OpReveal        = 'O'
	OpActionRequest = 'A'
	OpRoundOver     = 'D'
	OpQuit          = 'Q'
)

// Event is one decoded server message. Only the fields relevant to Kind are set.
type Event struct {
	// Seq is assigned by the reader, not by Decode.
	Seq  uint64
	Kind Kind
	// Ordered events must be applied to match state in arrival order.
	// Informational events (the time bank) may be applied out of band.
	Ordered bool

	TimeBank time.Duration
	Seat     int
	Cards    []poker.Card
	Action   poker.Action

	Legal    poker.ActionSet
	MinRaise uint32
	MaxRaise uint32

	Delta int64
}

// IsOrdered reports whether events of kind k take part in ordering.
func IsOrdered(k Kind) bool {
	return k != KindTimeBank
}
