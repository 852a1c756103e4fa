package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "seating"

// Prometheus implements Recorder with Prometheus collectors. Collectors are
// registered lazily on first use.
type Prometheus struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	arrangements   *prometheus.CounterVec
	failures       *prometheus.CounterVec
	people         prometheus.Histogram
	tables         prometheus.Histogram
	samePairs      *prometheus.HistogramVec
	assignDuration *prometheus.HistogramVec
	exports        *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus creates a recorder registering into reg
// (prometheus.DefaultRegisterer if nil) under namespace ("seating" if empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return &Prometheus{reg: reg, namespace: namespace}
}

func (p *Prometheus) ensureRegistered() {
	p.once.Do(func() {
		p.arrangements = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "arrangements",
			Name:      "generated_total",
			Help:      "Seating arrangements generated, by diversify mode.",
		}, []string{"diversify"})

		p.failures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "arrangements",
			Name:      "failed_total",
			Help:      "Arrangement requests rejected, by reason.",
		}, []string{"reason"})

		p.people = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "arrangements",
			Name:      "people",
			Help:      "Number of people per generated arrangement.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
		})

		p.tables = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "arrangements",
			Name:      "tables",
			Help:      "Number of tables per generated arrangement.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		})

		p.samePairs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "arrangements",
			Name:      "same_department_pairs",
			Help:      "Pairs of same-department colleagues sharing a table.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}, []string{"diversify"})

		p.assignDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "arrangements",
			Name:      "assign_duration_seconds",
			Help:      "Time spent planning and assigning seats.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"diversify"})

		p.exports = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "exports",
			Name:      "served_total",
			Help:      "Arrangement downloads served, by format.",
		}, []string{"format"})

		p.reg.MustRegister(p.arrangements)
		p.reg.MustRegister(p.failures)
		p.reg.MustRegister(p.people)
		p.reg.MustRegister(p.tables)
		p.reg.MustRegister(p.samePairs)
		p.reg.MustRegister(p.assignDuration)
		p.reg.MustRegister(p.exports)
	})
}

// ObserveArrangement implements Recorder.
func (p *Prometheus) ObserveArrangement(diversify bool, people, tables, sameDepartmentPairs int, elapsed time.Duration) {
	p.ensureRegistered()
	mode := strconv.FormatBool(diversify)
	p.arrangements.WithLabelValues(mode).Inc()
	p.people.Observe(float64(people))
	p.tables.Observe(float64(tables))
	p.samePairs.WithLabelValues(mode).Observe(float64(sameDepartmentPairs))
	p.assignDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveArrangementFailure implements Recorder.
func (p *Prometheus) ObserveArrangementFailure(reason string) {
	p.ensureRegistered()
	p.failures.WithLabelValues(reason).Inc()
}

// ObserveExport implements Recorder.
func (p *Prometheus) ObserveExport(format string) {
	p.ensureRegistered()
	p.exports.WithLabelValues(format).Inc()
}
