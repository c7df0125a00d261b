// Package metrics exposes Prometheus instrumentation for the gate.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// GateDecisionsTotal counts gate outcomes by terminal state and error code.
	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tollgate_gate_decisions_total",
			Help: "Gate decisions by terminal state and error code",
		},
		[]string{"state", "code"},
	)

	// ChallengesIssuedTotal counts issued authentication challenges.
	ChallengesIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tollgate_challenges_issued_total",
			Help: "Issued authentication challenges",
		},
	)

	// LoginsTotal counts login attempts by status.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tollgate_logins_total",
			Help: "Login attempts by status",
		},
		[]string{"status"},
	)
)

// Register registers all collectors with the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(GateDecisionsTotal, ChallengesIssuedTotal, LoginsTotal)
}
