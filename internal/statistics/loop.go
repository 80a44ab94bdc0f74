package statistics

import (
	"github.com/markusressel/growctl/internal/controller"
	"github.com/markusressel/growctl/internal/points"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	loopSubsystem = "loop"
	ioSubsystem   = "io"
)

type LoopSource interface {
	Loop() controller.LoopStatistics
	Io() points.EngineStatistics
}

type LoopCollector struct {
	source LoopSource

	state         *prometheus.Desc
	cycles        *prometheus.Desc
	skippedCycles *prometheus.Desc
	failedCycles  *prometheus.Desc
	avgDuration   *prometheus.Desc
	maxDuration   *prometheus.Desc
	locked        *prometheus.Desc

	reads       *prometheus.Desc
	readErrors  *prometheus.Desc
	writes      *prometheus.Desc
	retries     *prometheus.Desc
	fallbacks   *prometheus.Desc
	writeErrors *prometheus.Desc
}

func NewLoopCollector(source LoopSource) *LoopCollector {
	return &LoopCollector{
		source: source,
		state: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "state"),
			"State of the control loop (0: stopped, 1: initializing, 2: running)",
			nil, nil,
		),
		cycles: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "cycles_total"),
			"Number of executed control cycles",
			nil, nil,
		),
		skippedCycles: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "skipped_cycles_total"),
			"Number of control cycles skipped because the previous cycle was still running",
			nil, nil,
		),
		failedCycles: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "failed_cycles_total"),
			"Number of control cycles that ended with an error",
			nil, nil,
		),
		avgDuration: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "cycle_duration_avg_seconds"),
			"Average duration of the recent control cycles",
			nil, nil,
		),
		maxDuration: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "cycle_duration_max_seconds"),
			"Maximum duration of the recent control cycles",
			nil, nil,
		),
		locked: prometheus.NewDesc(prometheus.BuildFQName(namespace, loopSubsystem, "thermal_lockout"),
			"Whether the thermal lockout of an actuator is active",
			[]string{"actuator"}, nil,
		),
		reads: prometheus.NewDesc(prometheus.BuildFQName(namespace, ioSubsystem, "reads_total"),
			"Number of point reads",
			nil, nil,
		),
		readErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, ioSubsystem, "read_errors_total"),
			"Number of failed or invalid point reads",
			nil, nil,
		),
		writes: prometheus.NewDesc(prometheus.BuildFQName(namespace, ioSubsystem, "writes_total"),
			"Number of point writes, including retries and fallback values",
			nil, nil,
		),
		retries: prometheus.NewDesc(prometheus.BuildFQName(namespace, ioSubsystem, "write_retries_total"),
			"Number of repeated writes of unconfirmed values",
			nil, nil,
		),
		fallbacks: prometheus.NewDesc(prometheus.BuildFQName(namespace, ioSubsystem, "fallbacks_total"),
			"Number of fallback values written to unstick an output",
			nil, nil,
		),
		writeErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, ioSubsystem, "write_errors_total"),
			"Number of writes that could not be confirmed",
			nil, nil,
		),
	}
}

func (collector *LoopCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.state
	ch <- collector.cycles
	ch <- collector.skippedCycles
	ch <- collector.failedCycles
	ch <- collector.avgDuration
	ch <- collector.maxDuration
	ch <- collector.locked
	ch <- collector.reads
	ch <- collector.readErrors
	ch <- collector.writes
	ch <- collector.retries
	ch <- collector.fallbacks
	ch <- collector.writeErrors
}

// Collect implements required collect function for all prometheus collectors
func (collector *LoopCollector) Collect(ch chan<- prometheus.Metric) {
	loop := collector.source.Loop()
	ch <- prometheus.MustNewConstMetric(collector.state, prometheus.GaugeValue, float64(loop.State))
	ch <- prometheus.MustNewConstMetric(collector.cycles, prometheus.CounterValue, float64(loop.Cycles))
	ch <- prometheus.MustNewConstMetric(collector.skippedCycles, prometheus.CounterValue, float64(loop.SkippedCycles))
	ch <- prometheus.MustNewConstMetric(collector.failedCycles, prometheus.CounterValue, float64(loop.FailedCycles))
	ch <- prometheus.MustNewConstMetric(collector.avgDuration, prometheus.GaugeValue, loop.AvgDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(collector.maxDuration, prometheus.GaugeValue, loop.MaxDuration.Seconds())
	ch <- prometheus.MustNewConstMetric(collector.locked, prometheus.GaugeValue, boolToFloat(loop.HeaterLocked), "heater")
	ch <- prometheus.MustNewConstMetric(collector.locked, prometheus.GaugeValue, boolToFloat(loop.LampLocked), "lamp")

	io := collector.source.Io()
	ch <- prometheus.MustNewConstMetric(collector.reads, prometheus.CounterValue, float64(io.Reads))
	ch <- prometheus.MustNewConstMetric(collector.readErrors, prometheus.CounterValue, float64(io.ReadErrors))
	ch <- prometheus.MustNewConstMetric(collector.writes, prometheus.CounterValue, float64(io.Writes))
	ch <- prometheus.MustNewConstMetric(collector.retries, prometheus.CounterValue, float64(io.Retries))
	ch <- prometheus.MustNewConstMetric(collector.fallbacks, prometheus.CounterValue, float64(io.Fallbacks))
	ch <- prometheus.MustNewConstMetric(collector.writeErrors, prometheus.CounterValue, float64(io.WriteErrors))
}
