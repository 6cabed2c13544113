package sdk

import (
	"errors"

	"github.com/lox/pokerbots/internal/protocol"
	"github.com/lox/pokerbots/poker"
)

// MaxWorkers is the hard cap on the decision worker pool.
const MaxWorkers = 16

var (
	// ErrConfiguration is returned before any I/O when Run is misconfigured.
	ErrConfiguration = errors.New("configuration error")

	// ErrConnectionLost reports a failed read or write. The match server does
	// not support resuming, so the run ends.
	ErrConnectionLost = errors.New("connection lost")

	// ErrDecisionTimeout is only returned under TimeoutFail. Under the default
	// policy a slow decision becomes a forced fold.
	ErrDecisionTimeout = errors.New("decision timeout")

	// ErrMalformedMessage reports a line that cannot be decoded or an event
	// that does not fit the current round.
	ErrMalformedMessage = protocol.ErrMalformedMessage

	// ErrInsufficientCards is returned by the evaluator for fewer than 5 cards.
	ErrInsufficientCards = poker.ErrInsufficientCards
)
