package instrument

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports buffer storage events as prometheus metrics
type Collector struct {
	grows       prometheus.Counter
	compactions prometheus.Counter
	moved       prometheus.Counter
	capacity    prometheus.Gauge
}

// NewCollector creates the metrics for the passed component label.
// They are not exported until Register is called.
func NewCollector(component string) *Collector {
	labels := prometheus.Labels{"component": component}

	return &Collector{
		grows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "bytebuffer",
			Name:        "grows_total",
			ConstLabels: labels,
			Help:        "Total number of times a buffer moved to a bigger storage region",
		}),
		compactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "bytebuffer",
			Name:        "compactions_total",
			ConstLabels: labels,
			Help:        "Total number of in place compactions",
		}),
		moved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "bytebuffer",
			Name:        "compacted_bytes_total",
			ConstLabels: labels,
			Help:        "Total number of unread bytes moved by compactions",
		}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "bytebuffer",
			Name:        "capacity_bytes",
			ConstLabels: labels,
			Help:        "Capacity of the most recently grown buffer",
		}),
	}
}

// Register registers all metrics with the passed registerer
func (c *Collector) Register(r prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{c.grows, c.compactions, c.moved, c.capacity} {
		if err := r.Register(m); err != nil {
			return errors.Wrap(err, "cannot register buffer metrics")
		}
	}
	return nil
}

// Grew records a growth event
func (c *Collector) Grew(from, to int) {
	c.grows.Inc()
	c.capacity.Set(float64(to))
}

// Compacted records a compaction event
func (c *Collector) Compacted(moved int) {
	c.compactions.Inc()
	c.moved.Add(float64(moved))
}
