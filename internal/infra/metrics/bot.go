package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		commandsReceivedTotal,
		rateLimitTriggeredTotal,
		activityTouchFailuresTotal,
	)
}

var (
	commandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_received_total",
			Help: "Counts incoming bot commands by command name and outcome.",
		},
		// Replies to user mistakes (unknown zone, missing argument) count
		// as "ok"; the command itself was served.
		[]string{"command", "status"}, // status: ok | error | unauthorized
	)

	rateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_triggered_total",
			Help: "Total number of times command handling was rate-limited.",
		},
	)

	activityTouchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_touch_failures_total",
			Help: "Activity timestamp updates that failed and were dropped.",
		},
	)
)

func IncCommand(command, status string) {
	commandsReceivedTotal.WithLabelValues(norm(command), norm(status)).Inc()
}

func IncRateLimitTriggered() {
	rateLimitTriggeredTotal.Inc()
}

func IncActivityTouchFailure() {
	activityTouchFailuresTotal.Inc()
}
