package incident

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the detection pipeline.
type Metrics struct {
	ObservationsEvaluated *prometheus.CounterVec
	CandidatesTotal       *prometheus.CounterVec
	IncidentsCreated      *prometheus.CounterVec
	IncidentsSkipped      *prometheus.CounterVec
	RuleErrors            *prometheus.CounterVec
}

// NewMetrics registers and returns detection metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ObservationsEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vivere_detection_observations_total",
			Help: "Observations run through the detection rules, by category.",
		}, []string{"category"}),
		CandidatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vivere_detection_candidates_total",
			Help: "Candidates produced by rules, by rule id and disposition.",
		}, []string{"rule", "disposition"}),
		IncidentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vivere_incidents_created_total",
			Help: "Incidents persisted by automatic detection, by subtype and severity.",
		}, []string{"subtype", "severity"}),
		IncidentsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vivere_incidents_skipped_total",
			Help: "Incident candidates skipped as duplicates, by subtype.",
		}, []string{"subtype"}),
		RuleErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vivere_detection_rule_errors_total",
			Help: "Rule evaluations that failed with a read error, by rule id.",
		}, []string{"rule"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ObservationsEvaluated,
			m.CandidatesTotal,
			m.IncidentsCreated,
			m.IncidentsSkipped,
			m.RuleErrors,
		)
	}
	return m
}
