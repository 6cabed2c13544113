// Package bots resolves reference strategies by name.
package bots

import (
	"fmt"
	"strings"

	"github.com/lox/pokerbots/sdk"
	"github.com/lox/pokerbots/sdk/bots/aggressive"
	"github.com/lox/pokerbots/sdk/bots/callingstation"
	"github.com/lox/pokerbots/sdk/bots/random"
	"github.com/lox/pokerbots/sdk/bots/strength"
)

// Names lists the strategies New accepts.
var Names = []string{"calling", "random", "aggressive", "strength"}

// New returns the named strategy. seed feeds the randomized strategies.
func New(name string, seed int64) (sdk.Handler, error) {
	switch strings.ToLower(name) {
	case "calling", "callingstation", "calling-station":
		return callingstation.Handler{}, nil
	case "random":
		return random.NewHandler(uint64(seed)), nil
	case "aggressive", "aggro":
		return aggressive.NewHandler(uint64(seed)), nil
	case "", "strength":
		return strength.NewHandler(), nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q (want one of %s)",
		sdk.ErrConfiguration, name, strings.Join(Names, ", "))
}
