package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "rover_"

	ResultSuccess        = "success"
	ResultNotFound       = "not_found"
	ResultConflict       = "conflict"
	ResultInvalidCommand = "invalid_command"
	ResultInvalidName    = "invalid_name"
	ResultError          = "error"
)

var (
	registerOnce sync.Once

	operationsTotal  *prometheus.CounterVec
	commandsTotal    *prometheus.CounterVec
	moveLatency      prometheus.Histogram
	fleetSizeGauge   prometheus.GaugeFunc
	fleetSizeMu      sync.RWMutex
	fleetSizeCounter func() int
)

// Init registers rover metrics with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		operationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "operations_total",
				Help: "Total rover operations by operation and result",
			},
			[]string{"operation", "result"},
		)
		commandsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Total movement commands applied by command letter",
			},
			[]string{"command"},
		)
		moveLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "move_duration_seconds",
				Help:    "Move operation latency in seconds, including store round trips",
				Buckets: prometheus.DefBuckets,
			},
		)
		fleetSizeGauge = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + "fleet_size",
				Help: "Number of rovers known to the store",
			},
			func() float64 {
				fleetSizeMu.RLock()
				defer fleetSizeMu.RUnlock()
				if fleetSizeCounter == nil {
					return 0
				}
				return float64(fleetSizeCounter())
			},
		)

		prometheus.MustRegister(
			operationsTotal,
			commandsTotal,
			moveLatency,
			fleetSizeGauge,
		)
	})
}

// SetFleetSizeFunc installs the callback backing the fleet size gauge.
func SetFleetSizeFunc(fn func() int) {
	fleetSizeMu.Lock()
	defer fleetSizeMu.Unlock()
	fleetSizeCounter = fn
}

// ObserveOperation increments the operation counter.
func ObserveOperation(operation, result string) {
	if result == "" {
		result = ResultSuccess
	}
	if operationsTotal != nil {
		operationsTotal.WithLabelValues(operation, result).Inc()
	}
}

// ObserveCommand increments the per-letter command counter.
func ObserveCommand(command string) {
	if commandsTotal != nil {
		commandsTotal.WithLabelValues(command).Inc()
	}
}

// ObserveMove records move latency.
func ObserveMove(duration time.Duration) {
	if moveLatency != nil {
		moveLatency.Observe(duration.Seconds())
	}
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
