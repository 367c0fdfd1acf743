package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notification_center"

const (
	ReasonExplicit = "explicit"
	ReasonExpired  = "expired"
	ReasonEvicted  = "evicted"
	ReasonCleared  = "cleared"
)

type Metrics struct {
	Added         *prometheus.CounterVec
	Removed       *prometheus.CounterVec
	Current       prometheus.Gauge
	Unread        prometheus.Gauge
	SyncReloads   prometheus.Counter
	StorageErrors *prometheus.CounterVec
	ChimeFailures prometheus.Counter
}

// NewRegistry returns a registry with the Go and process collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Added: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_added_total",
			Help:      "Notifications added, by type.",
		}, []string{"type"}),
		Removed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_removed_total",
			Help:      "Notifications removed, by reason.",
		}, []string{"reason"}),
		Current: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notifications_current",
			Help:      "Notifications currently held.",
		}),
		Unread: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notifications_unread",
			Help:      "Unread notifications currently held.",
		}),
		SyncReloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_reloads_total",
			Help:      "Wholesale list reloads triggered by other instances.",
		}),
		StorageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Swallowed slot store and change feed failures, by operation.",
		}, []string{"op"}),
		ChimeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chime_failures_total",
			Help:      "Chimes that could not be played.",
		}),
	}
}
