package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Pack evaluations by partition and gate outcome
	Evaluations *prometheus.CounterVec

	// Predicate compile/eval failures by rule id
	RuleFailures *prometheus.CounterVec

	// Overall evaluation latency by partition
	EvaluateLatency *prometheus.HistogramVec
}

// New creates a new Metrics instance with all decision module metrics registered.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caseflow_decision_evaluations_total",
			Help: "Total rule pack evaluations by partition and gate outcome",
		}, []string{"jurisdiction", "product", "outcome"}), // outcome: "ok", "blocked"

		RuleFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "caseflow_decision_rule_failures_total",
			Help: "Total rule predicates that failed to compile or evaluate",
		}, []string{"jurisdiction", "product", "rule_id"}),

		EvaluateLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "caseflow_decision_evaluate_duration_seconds",
			Help:    "Duration of full rule pack evaluation against case facts",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"jurisdiction", "product"}),
	}
}

// IncrementEvaluation records one completed evaluation.
func (m *Metrics) IncrementEvaluation(jurisdiction, product, outcome string) {
	if m != nil {
		m.Evaluations.WithLabelValues(jurisdiction, product, outcome).Inc()
	}
}

// IncrementRuleFailure records one isolated predicate failure.
func (m *Metrics) IncrementRuleFailure(jurisdiction, product, ruleID string) {
	if m != nil {
		m.RuleFailures.WithLabelValues(jurisdiction, product, ruleID).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(jurisdiction, product string, d time.Duration) {
	if m != nil {
		m.EvaluateLatency.WithLabelValues(jurisdiction, product).Observe(d.Seconds())
	}
}
