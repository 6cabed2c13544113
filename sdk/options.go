package sdk

import (
	"fmt"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// TimeoutPolicy decides what happens when a decision overruns its budget.
type TimeoutPolicy int

const (
	// TimeoutFold sends a fold (or a check when folding is not legal) and
	// keeps playing.
	TimeoutFold TimeoutPolicy = iota
	// TimeoutFail ends the run with ErrDecisionTimeout.
	TimeoutFail
)

func (p TimeoutPolicy) String() string {
	switch p {
	case TimeoutFold:
		return "fold"
	case TimeoutFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseTimeoutPolicy parses "fold" or "fail".
func ParseTimeoutPolicy(s string) (TimeoutPolicy, error) {
	switch s {
	case "", "fold":
		return TimeoutFold, nil
	case "fail":
		return TimeoutFail, nil
	}
	return 0, fmt.Errorf("%w: unknown timeout policy %q", ErrConfiguration, s)
}

// DefaultDecisionBudget caps a single decision when the server has not sent a
// smaller time bank.
const DefaultDecisionBudget = 2 * time.Second

type options struct {
	logger    zerolog.Logger
	clock     quartz.Clock
	evaluator Evaluator
	metrics   *Metrics
	budget    time.Duration
	policy    TimeoutPolicy
	rules     Rules
}

func defaultOptions() options {
	return options{
		logger:    zerolog.Nop(),
		clock:     quartz.NewReal(),
		evaluator: DefaultEvaluator{},
		budget:    DefaultDecisionBudget,
		policy:    TimeoutFold,
		rules:     DefaultRules(),
	}
}

func (o options) validate() error {
	if o.budget <= 0 {
		return fmt.Errorf("%w: decision budget must be positive, got %s", ErrConfiguration, o.budget)
	}
	if o.policy != TimeoutFold && o.policy != TimeoutFail {
		return fmt.Errorf("%w: unknown timeout policy %d", ErrConfiguration, o.policy)
	}
	if o.clock == nil || o.evaluator == nil {
		return fmt.Errorf("%w: nil clock or evaluator", ErrConfiguration)
	}
	if err := o.rules.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return nil
}

// Option configures Run.
type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces the clock used for decision timeouts. Tests pass a quartz mock.
func WithClock(c quartz.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithEvaluator(e Evaluator) Option {
	return func(o *options) { o.evaluator = e }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithDecisionBudget bounds each decision. The effective budget is the
// smaller of this and the remaining time bank.
func WithDecisionBudget(d time.Duration) Option {
	return func(o *options) { o.budget = d }
}

func WithTimeoutPolicy(p TimeoutPolicy) Option {
	return func(o *options) { o.policy = p }
}

func WithRules(r Rules) Option {
	return func(o *options) { o.rules = r }
}
