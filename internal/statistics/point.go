package statistics

import (
	"github.com/markusressel/growctl/internal/points"
	"github.com/markusressel/growctl/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

const pointSubsystem = "point"

type PointSource interface {
	Points() []points.PointState
}

type PointCollector struct {
	source PointSource

	value   *prometheus.Desc
	scaled  *prometheus.Desc
	valid   *prometheus.Desc
	desired *prometheus.Desc
}

func NewPointCollector(source PointSource) *PointCollector {
	return &PointCollector{
		source: source,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, pointSubsystem, "value"),
			"Last raw value of the point, booleans are reported as 0 or 1",
			[]string{"role", "kind", "id"}, nil,
		),
		scaled: prometheus.NewDesc(prometheus.BuildFQName(namespace, pointSubsystem, "scaled"),
			"Last value of a scalable point in percent",
			[]string{"role", "kind", "id"}, nil,
		),
		valid: prometheus.NewDesc(prometheus.BuildFQName(namespace, pointSubsystem, "valid"),
			"Whether the last value of the point was valid",
			[]string{"role", "kind", "id"}, nil,
		),
		desired: prometheus.NewDesc(prometheus.BuildFQName(namespace, pointSubsystem, "desired"),
			"Desired value of an output",
			[]string{"role", "id"}, nil,
		),
	}
}

func (collector *PointCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
	ch <- collector.scaled
	ch <- collector.valid
	ch <- collector.desired
}

// Collect implements required collect function for all prometheus collectors
func (collector *PointCollector) Collect(ch chan<- prometheus.Metric) {
	for _, point := range collector.source.Points() {
		role := string(point.Role)
		kind := string(point.Kind)
		if value, ok := metricValue(point.Value); ok {
			ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, value, role, kind, point.Id)
		}
		if point.Scaled != nil {
			ch <- prometheus.MustNewConstMetric(collector.scaled, prometheus.GaugeValue, *point.Scaled, role, kind, point.Id)
		}
		ch <- prometheus.MustNewConstMetric(collector.valid, prometheus.GaugeValue, boolToFloat(point.Valid), role, kind, point.Id)
		if point.Kind == points.PointKindOutput {
			if desired, ok := metricValue(point.Desired); ok {
				ch <- prometheus.MustNewConstMetric(collector.desired, prometheus.GaugeValue, desired, role, point.Id)
			}
		}
	}
}

func metricValue(value any) (float64, bool) {
	switch v := store.Normalize(value).(type) {
	case float64:
		return v, true
	case bool:
		return boolToFloat(v), true
	default:
		return 0, false
	}
}
