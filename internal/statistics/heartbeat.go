package statistics

import (
	"github.com/markusressel/growctl/internal/heartbeat"
	"github.com/markusressel/growctl/internal/setpoints"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	heartbeatSubsystem = "heartbeat"
	statusSubsystem    = "status"
)

type HeartbeatSource interface {
	Heartbeat() heartbeat.Statistics
}

type HeartbeatCollector struct {
	source HeartbeatSource

	connected   *prometheus.Desc
	connects    *prometheus.Desc
	disconnects *prometheus.Desc
}

func NewHeartbeatCollector(source HeartbeatSource) *HeartbeatCollector {
	return &HeartbeatCollector{
		source: source,
		connected: prometheus.NewDesc(prometheus.BuildFQName(namespace, heartbeatSubsystem, "connected"),
			"Whether the heartbeat of the client is present",
			nil, nil,
		),
		connects: prometheus.NewDesc(prometheus.BuildFQName(namespace, heartbeatSubsystem, "connects_total"),
			"Number of times the client (re)connected",
			nil, nil,
		),
		disconnects: prometheus.NewDesc(prometheus.BuildFQName(namespace, heartbeatSubsystem, "disconnects_total"),
			"Number of times the heartbeat of the client was lost",
			nil, nil,
		),
	}
}

func (collector *HeartbeatCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.connected
	ch <- collector.connects
	ch <- collector.disconnects
}

func (collector *HeartbeatCollector) Collect(ch chan<- prometheus.Metric) {
	stats := collector.source.Heartbeat()
	ch <- prometheus.MustNewConstMetric(collector.connected, prometheus.GaugeValue, boolToFloat(stats.State == heartbeat.StateConnected))
	ch <- prometheus.MustNewConstMetric(collector.connects, prometheus.CounterValue, float64(stats.Connects))
	ch <- prometheus.MustNewConstMetric(collector.disconnects, prometheus.CounterValue, float64(stats.Disconnects))
}

type StatusSource interface {
	Status() setpoints.Status
}

// StatusCollector exports the derived status values of the last control cycle
type StatusCollector struct {
	source StatusSource
	value  *prometheus.Desc
}

func NewStatusCollector(source StatusSource) *StatusCollector {
	return &StatusCollector{
		source: source,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, statusSubsystem, "value"),
			"Status value computed by the last control cycle",
			[]string{"name"}, nil,
		),
	}
}

func (collector *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
}

func (collector *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	for name, value := range collector.source.Status().Values() {
		ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, value, name)
	}
}
