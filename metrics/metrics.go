package metrics

import (
	"net/http"

	"github.com/gr-butler/alarmstation/reporting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"
)

var Prom_sensorValue = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "alarm_sensor_value",
		Help: "Last decoded sensor reading",
	},
)

var Prom_alarmState = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "alarm_state",
		Help: "1 while the alarm is active",
	},
)

var Prom_sensorFault = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "alarm_sensor_fault",
		Help: "1 while the sensor is reading persistently out of range",
	},
)

var Prom_cycles = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "alarm_cycles_total",
		Help: "Completed control cycles",
	},
)

var Prom_transitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "alarm_transitions_total",
		Help: "Alarm state changes by the state entered",
	},
	[]string{"state"},
)

var Prom_readErrors = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "alarm_read_errors_total",
		Help: "Sensor reads that returned an error",
	},
)

func init() {
	logger.Debug("Initialize prometheus...")
	prometheus.MustRegister(
		Prom_sensorValue,
		Prom_alarmState,
		Prom_sensorFault,
		Prom_cycles,
		Prom_transitions,
		Prom_readErrors)
}

// Reporter mirrors every status report into the gauges.
type Reporter struct{}

func (Reporter) Emit(r reporting.Report) error {
	Prom_sensorValue.Set(r.Value)
	Prom_alarmState.Set(boolToFloat(r.State.IsActive()))
	Prom_sensorFault.Set(boolToFloat(r.Fault))
	Prom_cycles.Inc()
	if r.Changed {
		Prom_transitions.WithLabelValues(r.State.String()).Inc()
	}
	return nil
}

func ReadError() {
	Prom_readErrors.Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
