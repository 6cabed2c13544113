package sdk

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"

	"github.com/lox/pokerbots/poker"
)

// Evaluator is the hand ranking capability handed to a Handler.
type Evaluator interface {
	// BestHand returns the strongest 5 of 5 to 7 cards and its key.
	BestHand(cards []poker.Card) ([5]poker.Card, poker.HandKey, error)

	// Strength returns only the key of the best hand.
	Strength(cards []poker.Card) (poker.HandKey, error)

	// Compare returns 1 if a is stronger, -1 if b is stronger and 0 on a tie.
	Compare(a, b poker.HandKey) int
}

// DefaultEvaluator evaluates every call directly.
type DefaultEvaluator struct{}

func (DefaultEvaluator) BestHand(cards []poker.Card) ([5]poker.Card, poker.HandKey, error) {
	return poker.BestHand(cards)
}

func (DefaultEvaluator) Strength(cards []poker.Card) (poker.HandKey, error) {
	_, key, err := poker.BestHand(cards)
	return key, err
}

func (DefaultEvaluator) Compare(a, b poker.HandKey) int {
	return poker.Compare(a, b)
}

// CachedEvaluator memoizes Strength by card set. Card order does not affect
// strength, so the key is the set bitmask. It is safe for concurrent use.
type CachedEvaluator struct {
	DefaultEvaluator
	cache  *lru.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedEvaluator returns an evaluator holding up to size entries.
func NewCachedEvaluator(size int) (*CachedEvaluator, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("%w: evaluator cache: %v", ErrConfiguration, err)
	}
	return &CachedEvaluator{cache: cache}, nil
}

func (e *CachedEvaluator) Strength(cards []poker.Card) (poker.HandKey, error) {
	set := poker.NewHand(cards...)
	if v, ok := e.cache.Get(set); ok && set.CountCards() == len(cards) {
		e.hits.Add(1)
		return v.(poker.HandKey), nil
	}
	e.misses.Add(1)

	_, key, err := poker.BestHand(cards)
	if err != nil {
		return 0, err
	}
	e.cache.Add(set, key)
	return key, nil
}

// Stats returns cache hits and misses.
func (e *CachedEvaluator) Stats() (hits, misses uint64) {
	return e.hits.Load(), e.misses.Load()
}
