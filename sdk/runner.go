package sdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerbots/internal/protocol"
	"github.com/lox/pokerbots/internal/sequencer"
	"github.com/lox/pokerbots/poker"
)

// Outcome summarises a finished run.
type Outcome struct {
	RunID         uuid.UUID
	Rounds        int
	Bankroll      int64
	Decisions     int
	ForcedFolds   int
	HandlerErrors int
	Elapsed       time.Duration
}

// result is what a worker hands to the sequencer for one event.
type result struct {
	ev      protocol.Event
	action  poker.Action
	respond bool
}

type runner struct {
	opts     options
	conn     Conn
	handler  Handler
	observer RoundObserver
	state    *matchState
	buf      *sequencer.Buffer[result]
	log      zerolog.Logger

	decisions     atomic.Int64
	forcedFolds   atomic.Int64
	handlerErrors atomic.Int64
	roundsDone    atomic.Int64
	matchOver     atomic.Bool

	mu     sync.Mutex
	err    error
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// Run plays one match over conn. Lines are read on the calling goroutine and
// decoded into sequence-numbered events; decisions and state updates run on a
// pool of at most workers goroutines, and their results are committed to the
// match state and written back strictly in the order the events arrived.
//
// Misconfiguration is reported as ErrConfiguration before conn is used.
// Otherwise Run owns conn and closes it on return. It returns when the match
// ends or on the first fatal error: ErrConnectionLost, ErrMalformedMessage,
// or ErrDecisionTimeout under TimeoutFail. Cancelling ctx ends the run as a
// lost connection.
func Run(ctx context.Context, conn Conn, h Handler, workers int, opts ...Option) (Outcome, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if conn == nil || h == nil {
		return Outcome{}, fmt.Errorf("%w: nil connection or handler", ErrConfiguration)
	}
	if workers < 1 || workers > MaxWorkers {
		return Outcome{}, fmt.Errorf("%w: workers must be between 1 and %d, got %d", ErrConfiguration, MaxWorkers, workers)
	}
	if err := o.validate(); err != nil {
		return Outcome{}, err
	}
	defer conn.Close()

	id := uuid.New()
	r := &runner{
		opts:    o,
		conn:    conn,
		handler: h,
		log:     o.logger.With().Str("run_id", id.String()).Logger(),
	}
	r.observer, _ = h.(RoundObserver)
	r.state = newMatchState(o.rules, r.log)
	r.buf = sequencer.New[result](0, r.commit)

	start := o.clock.Now()
	r.log.Info().Int("workers", workers).Dur("budget", o.budget).Str("timeout_policy", o.policy.String()).Msg("Run started")

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	r.cancel = cancel

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(workers)
	r.ctx = gctx

	// Unblock the reader and any waiting workers once the run is over.
	stop := context.AfterFunc(gctx, func() {
		_ = conn.Close()
		r.buf.Close(context.Cause(gctx))
	})
	defer stop()

	r.read(gctx, g)
	werr := g.Wait()

	err := r.firstErr()
	if err == nil {
		err = werr
	}
	if ctx.Err() != nil && !r.matchOver.Load() && (err == nil || isContextErr(err)) {
		err = fmt.Errorf("%w: %w", ErrConnectionLost, context.Cause(ctx))
	}

	out := Outcome{
		RunID:         id,
		Rounds:        int(r.roundsDone.Load()),
		Bankroll:      r.state.currentBankroll(),
		Decisions:     int(r.decisions.Load()),
		ForcedFolds:   int(r.forcedFolds.Load()),
		HandlerErrors: int(r.handlerErrors.Load()),
		Elapsed:       o.clock.Since(start),
	}

	ev := r.log.Info()
	if err != nil {
		ev = r.log.Error().Err(err)
	}
	ev.Int("rounds", out.Rounds).Int64("bankroll", out.Bankroll).Int("decisions", out.Decisions).
		Int("forced_folds", out.ForcedFolds).Dur("elapsed", out.Elapsed).Msg("Run finished")
	return out, err
}

// read is the reader loop. It stops after submitting the match-end event or
// when the run is cancelled.
func (r *runner) read(ctx context.Context, g *errgroup.Group) {
	var seq uint64
	for ctx.Err() == nil {
		line, err := r.conn.ReadLine()
		if err != nil {
			if ctx.Err() == nil {
				r.fail(fmt.Errorf("%w: %v", ErrConnectionLost, err))
			}
			return
		}

		ev, err := protocol.Decode(line)
		if err != nil {
			r.fail(err)
			return
		}
		ev.Seq = seq
		seq++
		r.opts.metrics.EventReceived(ev.Kind)

		if !ev.Ordered {
			r.state.setTimeBank(ev.TimeBank)
			// Skip may drain held results on this goroutine. None of them
			// write: a request completes only at the watermark, so its reply
			// is always committed by its own worker.
			if err := r.buf.Skip(ev.Seq); err != nil {
				r.fail(err)
				return
			}
			continue
		}

		g.Go(func() error { return r.process(ctx, ev) })
		if ev.Kind == protocol.KindMatchOver {
			return
		}
	}
}

// process runs on a worker. Action requests wait until every earlier event
// is committed so the decision sees the state the server asked about.
func (r *runner) process(ctx context.Context, ev protocol.Event) error {
	res := result{ev: ev}
	if ev.Kind == protocol.KindActionRequest {
		if err := r.buf.WaitFor(ctx, ev.Seq); err != nil {
			return r.fail(err)
		}
		action, err := r.decide(ctx, r.state.snapshotFor(ev))
		if err != nil {
			return r.fail(err)
		}
		res.action, res.respond = action, true
	}

	if err := r.buf.Complete(ev.Seq, res); err != nil {
		return r.fail(err)
	}
	r.opts.metrics.SetHeldResults(r.buf.Pending())
	return nil
}

type decision struct {
	action poker.Action
	err    error
}

// decide calls the handler under the decision budget. Handler failures
// become a forced action; a timeout does too unless the policy is TimeoutFail.
func (r *runner) decide(ctx context.Context, snap Snapshot) (poker.Action, error) {
	budget := r.opts.budget
	if snap.HasTimeBank && snap.TimeBank < budget {
		budget = snap.TimeBank
	}

	dctx, cancel := context.WithCancel(ctx)
	defer cancel()

	expired := make(chan struct{})
	timer := r.opts.clock.AfterFunc(budget, func() {
		close(expired)
		cancel()
	}, "decide")
	defer timer.Stop()

	started := r.opts.clock.Now()
	done := make(chan decision, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- decision{err: fmt.Errorf("handler panicked: %v", p)}
			}
		}()
		a, err := r.handler.Decide(dctx, snap, r.opts.evaluator)
		done <- decision{action: a, err: err}
	}()

	select {
	case d := <-done:
		r.opts.metrics.ObserveDecision(r.opts.clock.Since(started).Seconds())
		if d.err != nil && isClosed(expired) {
			return r.timedOut(snap, budget)
		}
		if d.err != nil {
			r.handlerErrors.Add(1)
			r.opts.metrics.HandlerError()
			forced := forcedAction(snap)
			r.log.Warn().Err(d.err).Int("round", snap.Round).Str("action", forced.String()).Msg("Handler failed")
			return forced, nil
		}
		legal := Legalize(d.action, snap)
		if legal != d.action {
			r.log.Debug().Str("requested", d.action.String()).Str("sent", legal.String()).Msg("Adjusted illegal action")
		}
		return legal, nil

	case <-expired:
		return r.timedOut(snap, budget)

	case <-ctx.Done():
		return poker.Action{}, context.Cause(ctx)
	}
}

func (r *runner) timedOut(snap Snapshot, budget time.Duration) (poker.Action, error) {
	if r.opts.policy == TimeoutFail {
		return poker.Action{}, fmt.Errorf("%w: no action within %s in round %d", ErrDecisionTimeout, budget, snap.Round)
	}
	r.forcedFolds.Add(1)
	r.opts.metrics.ForcedFold()
	forced := forcedAction(snap)
	r.log.Warn().Dur("budget", budget).Int("round", snap.Round).Str("action", forced.String()).Msg("Decision timed out")
	return forced, nil
}

// commit applies one result. The sequencer guarantees it runs alone and in
// event order, so this is the only writer of the match state and the conn.
func (r *runner) commit(_ uint64, res result) error {
	// Nothing is applied or written once the run has failed.
	if r.ctx.Err() != nil {
		return context.Cause(r.ctx)
	}
	eff, err := r.state.apply(res.ev)
	if err != nil {
		return err
	}

	if res.respond {
		line := protocol.Encode(res.action)
		if err := r.conn.WriteLine(line); err != nil {
			return fmt.Errorf("%w: write: %v", ErrConnectionLost, err)
		}
		r.decisions.Add(1)
		r.opts.metrics.DecisionSent()
		r.log.Debug().Uint64("seq", res.ev.Seq).Str("line", line).Msg("Sent action")
	}

	switch {
	case eff.roundStarted:
		r.notify(func(o RoundObserver) { o.OnRoundStart(r.state.snapshot()) })
	case eff.roundOver:
		r.roundsDone.Add(1)
		r.opts.metrics.RoundCompleted()
		r.notify(func(o RoundObserver) { o.OnRoundOver(r.state.snapshot(), eff.delta) })
	case eff.matchOver:
		r.matchOver.Store(true)
	}
	return nil
}

func (r *runner) notify(fn func(RoundObserver)) {
	if r.observer == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn().Interface("panic", p).Msg("Round observer panicked")
		}
	}()
	fn(r.observer)
}

// fail records the first fatal error and cancels the run. It returns err so
// workers can hand it straight to the errgroup.
func (r *runner) fail(err error) error {
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
	r.cancel(err)
	return err
}

func (r *runner) firstErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
