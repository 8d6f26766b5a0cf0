package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"docserver/internal/errs"
)

// Metrics counts lifecycle outcomes.
type Metrics struct {
	operations   *prometheus.CounterVec
	bytesWritten prometheus.Counter
	orphanFiles  *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them on reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docserver_lifecycle_operations_total",
				Help: "Lifecycle operations by operation and outcome class.",
			},
			[]string{"operation", "outcome"},
		),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docserver_storage_bytes_written_total",
			Help: "Document bytes written to storage nodes.",
		}),
		orphanFiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docserver_orphan_files_total",
				Help: "Files left on storage because a cleanup delete failed.",
			},
			[]string{"reason"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.operations, m.bytesWritten, m.orphanFiles} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observe(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = errs.ClassOf(err).String()
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}
