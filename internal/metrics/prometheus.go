package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/san-kum/iontrim/internal/trim"
)

const namespace = "iontrim"

// Outcome label values of iontrim_ions_total.
const (
	OutcomeStopped       = "stopped"
	OutcomeBackscattered = "backscattered"
	OutcomeTransmitted   = "transmitted"
)

// Collector holds the run metrics on a registry of its own.
type Collector struct {
	registry   *prometheus.Registry
	ions       *prometheus.CounterVec
	collisions *prometheus.CounterVec
	clamped    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	progress   prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ions_total",
			Help:      "Counts simulated ions by strategy and final outcome",
		}, []string{"strategy", "outcome"}),
		collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collisions_total",
			Help:      "Counts nuclear collisions by strategy",
		}, []string{"strategy"}),
		clamped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "magic_clamped_total",
			Help:      "Counts collisions whose scattering angle had to be clamped",
		}, []string{"strategy"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of complete runs by strategy",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"strategy"}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_ratio",
			Help:      "Fraction of the current batch that has finished",
		}),
	}
	c.registry.MustRegister(c.ions, c.collisions, c.clamped, c.duration, c.progress)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Record adds a finished run.
func (c *Collector) Record(res *trim.Result) {
	s := res.Strategy
	c.ions.WithLabelValues(s, OutcomeStopped).Add(float64(res.Summary.Inside))
	c.ions.WithLabelValues(s, OutcomeBackscattered).Add(float64(res.Backscattered))
	c.ions.WithLabelValues(s, OutcomeTransmitted).Add(float64(res.Transmitted))
	c.collisions.WithLabelValues(s).Add(float64(res.Collisions))
	c.clamped.WithLabelValues(s).Add(float64(res.Clamped))
	c.duration.WithLabelValues(s).Observe(res.Elapsed.Seconds())
}

// Observer feeds the progress gauge.
func (c *Collector) Observer() trim.Observer {
	return trim.ObserverFunc(func(p trim.Progress) {
		c.progress.Set(p.Ratio())
	})
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Listen serves /metrics on addr in the background. The caller shuts the
// returned server down.
func (c *Collector) Listen(addr string, log *zap.Logger) *http.Server {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	log.Info("Serving metrics", zap.String("addr", addr))
	return server
}

// WriteTextfile writes the registry in the node exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
