package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/heartbeat"
	"github.com/markusressel/growctl/internal/points"
	"github.com/markusressel/growctl/internal/regulator"
	"github.com/markusressel/growctl/internal/setpoints"
	"github.com/markusressel/growctl/internal/store"
	"github.com/markusressel/growctl/internal/ui"
	"github.com/markusressel/growctl/internal/util"
)

var (
	ErrNotInitialized = errors.New("control loop is not initialized")
	ErrNoMeasurement  = errors.New("no valid measurement")
)

const cycleWindowSize = 50

type LoopState int32

const (
	LoopStateStopped LoopState = iota
	LoopStateInitializing
	LoopStateRunning
)

func (s LoopState) String() string {
	switch s {
	case LoopStateInitializing:
		return "initializing"
	case LoopStateRunning:
		return "running"
	default:
		return "stopped"
	}
}

// LoopStatistics describe the execution of the control loop
type LoopStatistics struct {
	State          LoopState     `json:"state"`
	StateName      string        `json:"stateName"`
	Cycles         uint64        `json:"cycles"`
	SkippedCycles  uint64        `json:"skippedCycles"`
	FailedCycles   uint64        `json:"failedCycles"`
	LastCycle      time.Time     `json:"lastCycle"`
	AvgDuration    time.Duration `json:"avgDuration"`
	MaxDuration    time.Duration `json:"maxDuration"`
	LightPhase     string        `json:"lightPhase"`
	HeaterLocked   bool          `json:"heaterLocked"`
	LampLocked     bool          `json:"lampLocked"`
	FanTempLatched bool          `json:"fanTempLatched"`
}

// ControlLoop reads all inputs, evaluates the actuator controllers and writes
// all outputs on a fixed interval, as long as the client heartbeat is present.
type ControlLoop struct {
	config configuration.Configuration
	store  store.Store
	clock  func() time.Time

	definitions *points.Definitions
	engine      *points.Engine
	setpoints   *setpoints.Setpoints
	watchdog    *heartbeat.Watchdog

	heater       regulator.Heater
	fan          *regulator.FanController
	dehumidifier *regulator.DehumidifierController
	lamp         *regulator.LampController

	// cycleGuard is set while a cycle (or an output reset) is running
	cycleGuard atomic.Bool

	lifecycle      sync.Mutex
	state          atomic.Int32
	baseCtx        context.Context
	cancelLoop     context.CancelFunc
	loopDone       chan struct{}
	cancelWatchdog context.CancelFunc
	watchdogDone   chan struct{}

	cycles  atomic.Uint64
	skipped atomic.Uint64
	failed  atomic.Uint64

	statsMu   sync.Mutex
	durations *rolling.PointPolicy
	lastCycle time.Time
	status    setpoints.Status
	flags     controllerFlags
}

type controllerFlags struct {
	heaterLocked bool
	lampLocked   bool
	fanLatched   bool
}

// NewControlLoop wires all components of the control loop for the given configuration
func NewControlLoop(config configuration.Configuration, s store.Store, clock func() time.Time) *ControlLoop {
	if clock == nil {
		clock = time.Now
	}

	definitions := points.NewDefinitions(config)

	c := &ControlLoop{
		config:       config,
		store:        s,
		clock:        clock,
		definitions:  definitions,
		engine:       points.NewEngine(s, definitions, config.Namespace, config.Io),
		setpoints:    setpoints.NewSetpoints(s, config.Namespace),
		fan:          regulator.NewFanController(),
		dehumidifier: regulator.NewDehumidifierController(),
		lamp:         regulator.NewLampController(clock),
		durations:    util.CreateRollingWindow(cycleWindowSize),
		baseCtx:      context.Background(),
	}

	switch config.Heating.Mode {
	case configuration.HeatingModePwm:
		c.heater = regulator.NewPwmHeatingController(clock)
	default:
		c.heater = regulator.NewHeatingController()
	}

	c.watchdog = heartbeat.NewWatchdog(
		heartbeat.NewStoreSource(s, config.ObjectIds.HeartbeatFromClient),
		config.General.HeartbeatTimeout,
		config.General.HeartbeatInterval,
		clock,
		c.handleConnect,
		c.handleDisconnect,
	)

	return c
}

func (c *ControlLoop) State() LoopState {
	return LoopState(c.state.Load())
}

func (c *ControlLoop) setState(state LoopState) {
	previous := LoopState(c.state.Swap(int32(state)))
	if previous != state {
		ui.Debug("Control loop state changed: %s -> %s", previous, state)
	}
}

// Run initializes the control loop and keeps it alive until ctx is cancelled
func (c *ControlLoop) Run(ctx context.Context) error {
	err := c.Initialize(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.Shutdown(shutdownCtx)
}

// Initialize verifies all points, initializes the setpoints and starts the heartbeat watchdog.
// The loop itself is started once the client is connected.
func (c *ControlLoop) Initialize(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.State() != LoopStateStopped {
		return nil
	}

	err := c.engine.Verify(ctx)
	if err != nil {
		return err
	}
	err = c.setpoints.Initialize(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", points.ErrConfiguration, err)
	}

	c.baseCtx = ctx
	c.setState(LoopStateInitializing)

	watchdogCtx, cancel := context.WithCancel(ctx)
	c.cancelWatchdog = cancel
	c.watchdogDone = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		err := c.watchdog.Run(watchdogCtx)
		if err != nil {
			ui.Error("Heartbeat watchdog stopped: %v", err)
		}
	}(c.watchdogDone)

	ui.Info("Control loop initialized, waiting for heartbeat of client...")
	return nil
}

func (c *ControlLoop) handleConnect() {
	err := c.Start(c.baseCtx)
	if err != nil {
		ui.Error("Unable to start control loop: %v", err)
	}
}

func (c *ControlLoop) handleDisconnect() {
	err := c.Stop(c.baseCtx)
	if err != nil {
		ui.Error("Unable to stop control loop: %v", err)
	}
}

// Start resets all outputs to their defaults and starts the cycle timer
func (c *ControlLoop) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	switch c.State() {
	case LoopStateRunning:
		return nil
	case LoopStateStopped:
		return ErrNotInitialized
	}

	ui.Info("Starting control loop, resetting all outputs")
	err := c.resetOutputs(ctx)
	if err != nil {
		ui.Warning("Unable to reset all outputs: %v", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancelLoop = cancel
	c.loopDone = make(chan struct{})
	go c.loop(loopCtx, c.loopDone)

	c.setState(LoopStateRunning)
	return nil
}

func (c *ControlLoop) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	tick := time.NewTicker(c.config.General.ControlLoopInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			// in-flight writes are not aborted when the loop is stopped
			c.RunCycle(context.WithoutCancel(ctx))
		}
	}
}

// Stop cancels the cycle timer, waits for a running cycle and resets all outputs
func (c *ControlLoop) Stop(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.stop(ctx)
}

func (c *ControlLoop) stop(ctx context.Context) error {
	if c.State() != LoopStateRunning {
		return nil
	}

	c.cancelLoop()
	<-c.loopDone
	c.setState(LoopStateInitializing)

	ui.Info("Stopping control loop, resetting all outputs")
	return c.resetOutputs(ctx)
}

// Shutdown stops the heartbeat watchdog and the control loop
func (c *ControlLoop) Shutdown(ctx context.Context) error {
	c.lifecycle.Lock()
	cancelWatchdog, watchdogDone := c.cancelWatchdog, c.watchdogDone
	c.cancelWatchdog = nil
	c.lifecycle.Unlock()

	// watchdog callbacks need the lifecycle lock, so wait for it outside of it
	if cancelWatchdog != nil {
		cancelWatchdog()
		<-watchdogDone
	}

	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	err := c.stop(ctx)
	c.setState(LoopStateStopped)
	return err
}

// resetOutputs waits for a running cycle to finish before resetting all outputs
func (c *ControlLoop) resetOutputs(ctx context.Context) error {
	for !c.cycleGuard.CompareAndSwap(false, true) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	defer c.cycleGuard.Store(false)
	return c.engine.ResetOutputs(ctx)
}

// RunCycle runs a single control cycle. It is a no-op if another cycle is still running.
func (c *ControlLoop) RunCycle(ctx context.Context) bool {
	if !c.cycleGuard.CompareAndSwap(false, true) {
		c.skipped.Add(1)
		ui.Warning("Skipping control cycle, previous cycle is still running")
		return false
	}
	defer c.cycleGuard.Store(false)

	defer func() {
		if r := recover(); r != nil {
			c.failed.Add(1)
			ui.Error("Unexpected error in control cycle: %v", r)
		}
	}()

	start := c.clock()
	err := c.runCycle(ctx)
	c.cycles.Add(1)
	if err != nil {
		c.failed.Add(1)
		ui.Error("Error in control cycle: %v", err)
	}

	c.statsMu.Lock()
	c.lastCycle = start
	c.durations.Append(float64(c.clock().Sub(start)))
	c.statsMu.Unlock()
	return true
}

func (c *ControlLoop) runCycle(ctx context.Context) error {
	c.setpoints.Refresh(ctx)
	values := c.setpoints.Snapshot()
	c.calibrate(values)

	// per point errors are logged by the engine and do not abort the cycle
	_ = c.engine.ReadAllInputs(ctx)
	_ = c.engine.ReadAllOutputs(ctx)

	c.emitHeartbeat()

	status, logicErr := c.processLogic(values)

	writeErr := c.engine.WriteAllOutputs(ctx)

	c.statsMu.Lock()
	c.flags = controllerFlags{
		heaterLocked: c.heater.IsLocked(),
		lampLocked:   c.lamp.IsLocked(),
		fanLatched:   c.fan.IsLatched(),
	}
	if logicErr == nil {
		c.status = status
	}
	c.statsMu.Unlock()

	if logicErr == nil {
		err := setpoints.WriteStatus(ctx, c.store, c.config.Namespace, status)
		if err != nil {
			ui.Warning("Unable to write status values: %v", err)
		}
	}

	if len(c.config.StatusFile) > 0 {
		err := c.exportStatusFile(c.config.StatusFile)
		if err != nil {
			ui.Warning("Unable to write status file: %v", err)
		}
	}

	return errors.Join(logicErr, writeErr)
}

func (c *ControlLoop) calibrate(values setpoints.Values) {
	for i, scaler := range values.Moisture {
		c.definitions.Calibrate(points.SoilMoistureRole(i+1), scaler.Min, scaler.Max)
	}
}

func (c *ControlLoop) emitHeartbeat() {
	value, ok := c.watchdog.Emit(c.clock())
	if !ok {
		return
	}
	output := c.definitions.Output(points.RoleHeartbeatToClient)
	c.definitions.Update(func() {
		output.SetDesired(value)
	})
}

// measurement selects the control value of a top/bottom sensor pair
func measurement(source configuration.MeasurementSource, top, bottom *points.Input) (float64, bool) {
	topValue, topOk := top.Float()
	bottomValue, bottomOk := bottom.Float()

	switch source {
	case configuration.MeasurementSourceTop:
		return topValue, topOk
	case configuration.MeasurementSourceBottom:
		return bottomValue, bottomOk
	default:
		var values []float64
		if topOk {
			values = append(values, topValue)
		}
		if bottomOk {
			values = append(values, bottomValue)
		}
		if len(values) <= 0 {
			return 0, false
		}
		return util.Avg(values), true
	}
}

func (c *ControlLoop) processLogic(values setpoints.Values) (setpoints.Status, error) {
	defs := c.definitions
	source := c.config.General.MeasurementSource

	temp, ok := measurement(source, defs.Input(points.RoleTopTemperature), defs.Input(points.RoleBottomTemperature))
	if !ok {
		c.failsafe()
		return setpoints.Status{}, fmt.Errorf("%w: temperature", ErrNoMeasurement)
	}
	humidity, ok := measurement(source, defs.Input(points.RoleTopHumidity), defs.Input(points.RoleBottomHumidity))
	if !ok {
		c.failsafe()
		return setpoints.Status{}, fmt.Errorf("%w: humidity", ErrNoMeasurement)
	}

	// the lamp decides about the phase, so it is limited by the lights on profile
	lightOn := regulator.IsOn(c.lamp.Evaluate(values.LightsOnDuration, values.Profile(setpoints.PhaseOn).MaxTemperature, temp))
	phase := setpoints.PhaseOf(lightOn)
	profile := values.Profile(phase)

	heater := c.heater.EvaluateInput(regulator.HeatingInput{
		Temperature:        temp,
		DesiredTemperature: profile.DesiredTemperature,
		Hysteresis:         profile.TemperatureHysteresis,
		MaxTemperature:     profile.MaxTemperature,
		Pwm: regulator.PwmParameters{
			Kp:         values.Pwm.Kp,
			Ki:         values.Pwm.Ki,
			MinOnTime:  values.Pwm.MinOn(),
			MinOffTime: values.Pwm.MinOff(),
			CycleTime:  values.Pwm.Cycle(),
		},
	})

	topTemp, topOk := defs.Input(points.RoleTopTemperature).Float()
	bottomTemp, bottomOk := defs.Input(points.RoleBottomTemperature).Float()
	if !topOk || !bottomOk {
		// no gradient without both sensors
		topTemp, bottomTemp = temp, temp
	}
	fan := c.fan.Evaluate(regulator.FanInput{
		TopTemperature:     topTemp,
		BottomTemperature:  bottomTemp,
		Humidity:           humidity,
		Temperature:        temp,
		DiffThreshold:      profile.TemperatureDiffThreshold,
		DesiredTemperature: profile.DesiredTemperature,
		Hysteresis:         profile.TemperatureHysteresis,
		MaxTemperature:     profile.MaxTemperature,
		MaxHumidity:        profile.MaxHumidity,
		MinPercent:         profile.FanMinPercent,
	})

	dehumidifier := c.dehumidifier.Evaluate(humidity, temp, profile.DesiredHumidity, profile.HumidityHysteresis, profile.MaxTemperature)

	ui.Debug("Phase %s: temperature %.2f, humidity %.2f -> heater %v, light %v, fan %.0f%%, dehumidifier %v",
		phase, temp, humidity, regulator.IsOn(heater), lightOn, fan, regulator.IsOn(dehumidifier))

	defs.Update(func() {
		defs.Output(points.RoleHeaterOn).SetDesired(regulator.IsOn(heater))
		defs.Output(points.RoleLightOn).SetDesired(lightOn)
		defs.Output(points.RoleDehumidifierOn).SetDesired(regulator.IsOn(dehumidifier))
		fanOutput := defs.Output(points.RoleFanPercent)
		fanOutput.SetDesired(util.Round(fanOutput.ToRaw(util.Round(fan, 0)), 2))
	})

	return setpoints.ComputeStatus(phase, profile, temp, humidity), nil
}

// failsafeRoles are set to their default value while no valid measurement is available
var failsafeRoles = []points.Role{
	points.RoleHeaterOn,
	points.RoleLightOn,
	points.RoleDehumidifierOn,
	points.RoleFanPercent,
}

func (c *ControlLoop) failsafe() {
	ui.Warning("No valid measurement, switching all actuators to their default value")
	defs := c.definitions
	defs.Update(func() {
		for _, role := range failsafeRoles {
			output := defs.Output(role)
			output.SetDesired(output.Default)
		}
	})
}
