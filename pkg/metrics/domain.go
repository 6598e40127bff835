package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics covers business events: scored leads, exported rows and impersonation sessions.
type DomainMetrics struct {
	leadScores     prometheus.Histogram
	exportRows     *prometheus.CounterVec
	impersonations *prometheus.CounterVec
}

// NewDomainMetrics registers the domain metrics on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	leadScores := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lead_score",
		Help:      "Distribution of computed lead scores.",
		Buckets:   prometheus.LinearBuckets(0, 20, 6),
	})
	exportRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "export_rows_total",
		Help:      "Vehicle rows written to marketplace exports.",
	}, []string{"format"})
	impersonations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "impersonation_events_total",
		Help:      "Impersonation start and stop events.",
	}, []string{"action"})
	reg.MustRegister(leadScores, exportRows, impersonations)
	return &DomainMetrics{
		leadScores:     leadScores,
		exportRows:     exportRows,
		impersonations: impersonations,
	}
}

func (d *DomainMetrics) ObserveLeadScore(score int) {
	if d == nil || d.leadScores == nil {
		return
	}
	d.leadScores.Observe(float64(score))
}

func (d *DomainMetrics) AddExportRows(format string, rows int) {
	if d == nil || d.exportRows == nil || rows <= 0 {
		return
	}
	d.exportRows.WithLabelValues(normalizeLabel(format)).Add(float64(rows))
}

func (d *DomainMetrics) IncImpersonation(action string) {
	if d == nil || d.impersonations == nil {
		return
	}
	d.impersonations.WithLabelValues(normalizeLabel(action)).Inc()
}
