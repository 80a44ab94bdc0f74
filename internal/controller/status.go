package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/growctl/internal/heartbeat"
	"github.com/markusressel/growctl/internal/points"
	"github.com/markusressel/growctl/internal/setpoints"
	"github.com/natefinch/atomic"
)

// Snapshot is the complete observable state of the control loop
type Snapshot struct {
	Time      time.Time               `json:"time"`
	Loop      LoopStatistics          `json:"loop"`
	Status    setpoints.Status        `json:"status"`
	Heartbeat heartbeat.Statistics    `json:"heartbeat"`
	Io        points.EngineStatistics `json:"io"`
	Points    []points.PointState     `json:"points"`
	Setpoints map[string]float64      `json:"setpoints"`
}

func (c *ControlLoop) Points() []points.PointState {
	return c.definitions.Snapshot()
}

func (c *ControlLoop) Setpoints() map[string]float64 {
	return c.setpoints.Map()
}

func (c *ControlLoop) SetSetpoint(ctx context.Context, name string, value float64) error {
	return c.setpoints.Set(ctx, name, value)
}

func (c *ControlLoop) Status() setpoints.Status {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.status
}

func (c *ControlLoop) Heartbeat() heartbeat.Statistics {
	return c.watchdog.Statistics()
}

func (c *ControlLoop) Io() points.EngineStatistics {
	return c.engine.Statistics()
}

func (c *ControlLoop) Loop() LoopStatistics {
	state := c.State()
	result := LoopStatistics{
		State:         state,
		StateName:     state.String(),
		Cycles:        c.cycles.Load(),
		SkippedCycles: c.skipped.Load(),
		FailedCycles:  c.failed.Load(),
	}

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	result.LastCycle = c.lastCycle
	result.LightPhase = c.status.LightPhase.String()
	result.HeaterLocked = c.flags.heaterLocked
	result.LampLocked = c.flags.lampLocked
	result.FanTempLatched = c.flags.fanLatched
	if !c.lastCycle.IsZero() {
		result.AvgDuration = time.Duration(c.durations.Reduce(rolling.Avg))
		result.MaxDuration = time.Duration(c.durations.Reduce(rolling.Max))
	}
	return result
}

func (c *ControlLoop) Snapshot() Snapshot {
	return Snapshot{
		Time:      c.clock(),
		Loop:      c.Loop(),
		Status:    c.Status(),
		Heartbeat: c.Heartbeat(),
		Io:        c.Io(),
		Points:    c.Points(),
		Setpoints: c.Setpoints(),
	}
}

// exportStatusFile atomically replaces the file at path with a json snapshot
func (c *ControlLoop) exportStatusFile(path string) error {
	data, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
