package usecase

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DecisionMetricsOptions configures the decision engine collectors.
type DecisionMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// DecisionMetrics exposes Prometheus collectors for policy evaluations.
type DecisionMetrics struct {
	Evaluations     *prometheus.CounterVec
	ViolationWrites *prometheus.CounterVec
}

// NewDecisionMetrics constructs and registers the decision engine collectors.
func NewDecisionMetrics(opts DecisionMetricsOptions) (*DecisionMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "wifi"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "evaluations_total",
		Help:      "Total number of policy evaluations partitioned by outcome and denying check.",
	}, []string{"outcome", "check"})

	if err := reg.Register(evaluations); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				evaluations = existing
			} else {
				return nil, fmt.Errorf("existing evaluations collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register evaluations collector: %w", err)
		}
	}

	violationWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "violation_writes_total",
		Help:      "Total number of violation write attempts partitioned by result.",
	}, []string{"result"})

	if err := reg.Register(violationWrites); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				violationWrites = existing
			} else {
				return nil, fmt.Errorf("existing violation writes collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register violation writes collector: %w", err)
		}
	}

	return &DecisionMetrics{
		Evaluations:     evaluations,
		ViolationWrites: violationWrites,
	}, nil
}

func (m *DecisionMetrics) observeDecision(outcome, check string) {
	if m == nil || m.Evaluations == nil {
		return
	}
	m.Evaluations.With(prometheus.Labels{"outcome": outcome, "check": check}).Inc()
}

func (m *DecisionMetrics) observeViolationWrite(result string) {
	if m == nil || m.ViolationWrites == nil {
		return
	}
	m.ViolationWrites.With(prometheus.Labels{"result": result}).Inc()
}
