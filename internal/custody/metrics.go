package custody

import "github.com/prometheus/client_golang/prometheus"

const (
	actionAssign  = "assign_custody"
	actionRelease = "release_custody"
)

type Metrics struct {
	transitions *prometheus.CounterVec
}

// NewMetrics registers the custody transition counter with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelf",
			Subsystem: "custody",
			Name:      "transitions_total",
			Help:      "Custody assign and release attempts by resource and outcome.",
		}, []string{"resource", "action", "outcome"}),
	}
	reg.MustRegister(m.transitions)
	return m
}

func (m *Metrics) succeeded(t Target, action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(t.Resource, action, "success").Inc()
}

func (m *Metrics) failed(t Target, action string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(t.Resource, action, "error").Inc()
}
