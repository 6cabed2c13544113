package sdk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lox/pokerbots/internal/protocol"
)

// Metrics are the runner's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	eventsCounter       *prometheus.CounterVec
	decisionsCounter    prometheus.Counter
	forcedFoldsCounter  prometheus.Counter
	handlerErrorCounter prometheus.Counter
	roundsCounter       prometheus.Counter
	heldResultsGauge    prometheus.Gauge
	decisionSeconds     prometheus.Histogram
}

// NewMetrics registers the runner collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		eventsCounter: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pokerbot_events_total",
			Help: "Protocol events received, by kind",
		}, []string{"kind"}),
		decisionsCounter: f.NewCounter(prometheus.CounterOpts{
			Name: "pokerbot_decisions_total",
			Help: "Actions written to the server",
		}),
		forcedFoldsCounter: f.NewCounter(prometheus.CounterOpts{
			Name: "pokerbot_forced_folds_total",
			Help: "Decisions replaced by a fold after the time budget ran out",
		}),
		handlerErrorCounter: f.NewCounter(prometheus.CounterOpts{
			Name: "pokerbot_handler_errors_total",
			Help: "Decisions that failed or panicked and were treated as a fold",
		}),
		roundsCounter: f.NewCounter(prometheus.CounterOpts{
			Name: "pokerbot_rounds_total",
			Help: "Rounds completed",
		}),
		heldResultsGauge: f.NewGauge(prometheus.GaugeOpts{
			Name: "pokerbot_held_results",
			Help: "Completed results waiting for an earlier event to commit",
		}),
		decisionSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pokerbot_decision_seconds",
			Help:    "Time spent in the decision handler",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
}

func (m *Metrics) EventReceived(kind protocol.Kind) {
	if m != nil {
		m.eventsCounter.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) DecisionSent() {
	if m != nil {
		m.decisionsCounter.Inc()
	}
}

func (m *Metrics) ForcedFold() {
	if m != nil {
		m.forcedFoldsCounter.Inc()
	}
}

func (m *Metrics) HandlerError() {
	if m != nil {
		m.handlerErrorCounter.Inc()
	}
}

func (m *Metrics) RoundCompleted() {
	if m != nil {
		m.roundsCounter.Inc()
	}
}

func (m *Metrics) SetHeldResults(n int) {
	if m != nil {
		m.heldResultsGauge.Set(float64(n))
	}
}

func (m *Metrics) ObserveDecision(seconds float64) {
	if m != nil {
		m.decisionSeconds.Observe(seconds)
	}
}
