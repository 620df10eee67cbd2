package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(distinctZones, registeredChats, registryOpLatencyMs)
}

var (
	distinctZones = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_distinct_zones",
			Help: "Distinct time zones currently registered across all chats.",
		},
	)

	registeredChats = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_chats",
			Help: "Chats holding at least one zone registration.",
		},
	)

	registryOpLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registry_op_latency_ms",
			Help:    "Registry operation latency distribution in milliseconds.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"op", "success"},
	)
)

func SetDistinctZones(n int)   { distinctZones.Set(float64(n)) }
func SetRegisteredChats(n int) { registeredChats.Set(float64(n)) }

func ObserveRegistryOp(op string, latencyMs float64, success bool) {
	outcome := "true"
	if !success {
		outcome = "false"
	}
	registryOpLatencyMs.WithLabelValues(norm(op), outcome).Observe(latencyMs)
}
