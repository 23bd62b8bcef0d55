package metrics

import (
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Package-level Prometheus collectors. They are registered via Register and
// safe to use unregistered (tests, embedders without a metrics endpoint).
var (
	regOK atomic.Bool

	attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runmon",
			Subsystem: "command",
			Name:      "attempts_total",
			Help:      "Number of launch attempts per command.",
		}, []string{"name"},
	)
	crashes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runmon",
			Subsystem: "command",
			Name:      "crashes_total",
			Help:      "Number of attempts that ended with a non-zero exit or spawn failure.",
		}, []string{"name"},
	)
	escalations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runmon",
			Subsystem: "command",
			Name:      "escalations_total",
			Help:      "Number of times a backup remedy has been run.",
		}, []string{"name"},
	)
	abandoned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runmon",
			Subsystem: "command",
			Name:      "abandoned_total",
			Help:      "Commands given up on after crossing the crash threshold with no remedy.",
		}, []string{"name"},
	)
	running = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "runmon",
			Subsystem: "command",
			Name:      "running",
			Help:      "Whether an attempt of the command is currently running (0 or 1).",
		}, []string{"name"},
	)
)

// Register registers all collectors with r. It is safe to call multiple
// times; AlreadyRegisteredError is tolerated so embedders can share a registry.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{attempts, crashes, escalations, abandoned, running}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

func IncAttempt(name string)    { attempts.WithLabelValues(name).Inc() }
func IncCrash(name string)      { crashes.WithLabelValues(name).Inc() }
func IncEscalation(name string) { escalations.WithLabelValues(name).Inc() }
func IncAbandoned(name string)  { abandoned.WithLabelValues(name).Inc() }

func SetRunning(name string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	running.WithLabelValues(name).Set(v)
}
