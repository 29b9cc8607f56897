package service

import "github.com/prometheus/client_golang/prometheus"

const metricNamespace = "vacuum_bridge"

var (
	alarmPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "alarm_polls_total",
			Help:      "Alarm state polls by result.",
		},
		[]string{"result"},
	)
	alarmTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "alarm_transitions_total",
			Help:      "Observed alarm state transitions by new state.",
		},
		[]string{"state"},
	)
	fleetOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "fleet_outcomes_total",
			Help:      "Per-device fleet command outcomes.",
		},
		[]string{"action", "result"},
	)
	monitorsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "completion_monitors_active",
			Help:      "Completion monitors currently polling a device.",
		},
	)
	monitorResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricNamespace,
			Name:      "completion_monitor_results_total",
			Help:      "Completion monitor exits by reason.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		alarmPollsTotal,
		alarmTransitionsTotal,
		fleetOutcomesTotal,
		monitorsActive,
		monitorResultsTotal,
	)
}

// Label values.
const (
	resultOK         = "ok"
	resultError      = "error"
	resultSkipped    = "skipped"
	resultNoControl  = "no_control"
	resultNotFound   = "not_found"
	resultAuthFailed = "auth_failed"
	resultReauth     = "reauth"
	resultFinished   = "finished"
	resultTimeout    = "timeout"
	resultCanceled   = "canceled"
)
