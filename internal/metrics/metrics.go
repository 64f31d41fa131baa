package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the access resolver and the sign-up flow. Defined in
// a standalone package to avoid import cycles between security and HTTP packages.

var (
	ResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialguard_resolutions_total",
		Help: "Resoluciones de providers requeridos, por outcome (resolved|denied|already_allowed|error)",
	}, []string{"outcome"})

	ResolutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "socialguard_resolution_duration_ms",
		Help:    "Duración de la búsqueda combinatoria en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	OracleEvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "socialguard_oracle_evaluations_total",
		Help: "Evaluaciones del policy oracle durante resoluciones",
	})

	SignupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialguard_signups_total",
		Help: "Intentos de sign-up, por outcome (completed|rejected|error)",
	}, []string{"outcome"})
)

// Register registers all collectors on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		ResolutionsTotal,
		ResolutionDuration,
		OracleEvaluationsTotal,
		SignupsTotal,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
