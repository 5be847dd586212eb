package binding

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/justyntemme/avgo/pkg/introspect"
)

var (
	// ticksTotal counts processed blocks.
	// Labels: processor
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "avgo",
		Subsystem: "binding",
		Name:      "ticks_total",
		Help:      "Total blocks processed",
	}, []string{"processor"})

	// tickDuration measures the time spent in Process per block.
	// Labels: processor
	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "avgo",
		Subsystem: "binding",
		Name:      "tick_duration_seconds",
		Help:      "Block processing time in seconds",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	}, []string{"processor"})

	// controlRejections counts control values refused for being out of range.
	// Labels: processor, control
	controlRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "avgo",
		Subsystem: "binding",
		Name:      "control_rejections_total",
		Help:      "Total control values rejected",
	}, []string{"processor", "control"})

	// boundFields reports the fields of a processor's port structs.
	// Labels: processor, direction (in, out), capability
	boundFields = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "avgo",
		Subsystem: "binding",
		Name:      "bound_fields",
		Help:      "Port struct fields per capability",
	}, []string{"processor", "direction", "capability"})
)

// metrics holds the series of one binding. A nil *metrics records nothing.
type metrics struct {
	processor string
	ticks     prometheus.Counter
	duration  prometheus.Observer
}

func newMetrics(processor string) *metrics {
	return &metrics{
		processor: processor,
		ticks:     ticksTotal.WithLabelValues(processor),
		duration:  tickDuration.WithLabelValues(processor),
	}
}

func (m *metrics) tick(d time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.duration.Observe(d.Seconds())
}

func (m *metrics) reject(control string) {
	if m == nil {
		return
	}
	controlRejections.WithLabelValues(m.processor, control).Inc()
}

func (m *metrics) bound(direction string, table *introspect.Table) {
	if m == nil || table == nil {
		return
	}
	counts := make(map[introspect.Capability]int)
	for _, tok := range table.Tokens {
		counts[tok.Capability]++
	}
	for c, n := range counts {
		boundFields.WithLabelValues(m.processor, direction, c.String()).Set(float64(n))
	}
}
