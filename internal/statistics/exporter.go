package statistics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "growctl"
)

func Register(registerer prometheus.Registerer, collectors ...prometheus.Collector) {
	for _, collector := range collectors {
		registerer.MustRegister(collector)
	}
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
