// Package metrics holds domain counters for uploads and grant changes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	uploads       *prometheus.CounterVec
	accessChanges *prometheus.CounterVec
}

// New creates the domain counters and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileshare_uploads_total",
				Help: "Uploaded files by outcome.",
			},
			[]string{"result"},
		),
		accessChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileshare_access_changes_total",
				Help: "Grant and revoke operations applied to file accesses.",
			},
			[]string{"op"},
		),
	}
	for _, c := range []prometheus.Collector{m.uploads, m.accessChanges} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Upload counts one upload attempt.
func (m *Metrics) Upload(ok bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if ok {
		result = "stored"
	}
	m.uploads.WithLabelValues(result).Inc()
}

// AccessChange counts one applied grant or revoke.
func (m *Metrics) AccessChange(op string) {
	if m == nil {
		return
	}
	m.accessChanges.WithLabelValues(op).Inc()
}
