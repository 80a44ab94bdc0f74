package points

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/store"
	"github.com/markusressel/growctl/internal/ui"
)

// FallbackValue is written when an output does not accept its desired value,
// to unstick actuators that ignore a repeated identical command.
const FallbackValue = "--"

// Engine synchronizes the registered points with the external store
type Engine struct {
	store       store.Store
	definitions *Definitions
	namespace   string

	writeCheckDelay time.Duration
	writeRetries    int

	sleep func(ctx context.Context, d time.Duration) error

	reads       atomic.Uint64
	readErrors  atomic.Uint64
	writes      atomic.Uint64
	retries     atomic.Uint64
	fallbacks   atomic.Uint64
	writeErrors atomic.Uint64
}

// EngineStatistics are the accumulated counters of an Engine
type EngineStatistics struct {
	Reads       uint64 `json:"reads"`
	ReadErrors  uint64 `json:"readErrors"`
	Writes      uint64 `json:"writes"`
	Retries     uint64 `json:"retries"`
	Fallbacks   uint64 `json:"fallbacks"`
	WriteErrors uint64 `json:"writeErrors"`
}

func NewEngine(s store.Store, definitions *Definitions, namespace string, config configuration.IoConfig) *Engine {
	return &Engine{
		store:           s,
		definitions:     definitions,
		namespace:       namespace,
		writeCheckDelay: config.WriteCheckDelay,
		writeRetries:    config.WriteRetries,
		sleep:           sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) Definitions() *Definitions {
	return e.definitions
}

func (e *Engine) Statistics() EngineStatistics {
	return EngineStatistics{
		Reads:       e.reads.Load(),
		ReadErrors:  e.readErrors.Load(),
		Writes:      e.writes.Load(),
		Retries:     e.retries.Load(),
		Fallbacks:   e.fallbacks.Load(),
		WriteErrors: e.writeErrors.Load(),
	}
}

// Verify checks that every point has an id which resolves in the store
func (e *Engine) Verify(ctx context.Context) error {
	check := func(role Role, id string) error {
		if len(id) <= 0 {
			return fmt.Errorf("%w: no id configured for %s", ErrConfiguration, role)
		}
		_, err := e.store.Read(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: state %s of %s: %v", ErrConfiguration, id, role, err)
		}
		return nil
	}

	for _, input := range e.definitions.Inputs() {
		if err := check(input.Role, input.Id); err != nil {
			return err
		}
	}
	for _, output := range e.definitions.Outputs() {
		if err := check(output.Role, output.ReadId); err != nil {
			return err
		}
	}
	return nil
}

// ReadInput reads a single input and mirrors its raw, scaled and valid values
func (e *Engine) ReadInput(ctx context.Context, input *Input) error {
	e.reads.Add(1)
	state, err := e.store.Read(ctx, input.Id)
	if err != nil {
		e.readErrors.Add(1)
		e.definitions.Update(func() {
			input.Valid = false
		})
		e.mirror(ctx, input)
		return fmt.Errorf("%w: %s (%s): %v", ErrRead, input.Role, input.Id, err)
	}

	valid := input.Validator == nil || input.Validator(state.Value)
	e.definitions.Update(func() {
		input.Value = state.Value
		input.Timestamp = state.Timestamp
		input.Valid = valid
	})
	e.mirror(ctx, input)

	if !valid {
		e.readErrors.Add(1)
		return fmt.Errorf("%w: %s (%s): invalid value %v", ErrRead, input.Role, input.Id, state.Value)
	}
	return nil
}

func (e *Engine) mirror(ctx context.Context, input *Input) {
	var scaled *float64
	if input.Scaler != nil {
		if value, ok := input.ToScaled(); ok {
			scaled = &value
		}
	}
	e.writeMirror(ctx, input.Role, input.Value, input.Valid, scaled)
}

func (e *Engine) mirrorOutput(ctx context.Context, output *Output) {
	var scaled *float64
	if output.Scaler != nil && output.Valid {
		if raw, ok := store.Normalize(output.Current).(float64); ok {
			value := output.ToScaled(raw)
			scaled = &value
		}
	}
	e.writeMirror(ctx, output.Role, output.Current, output.Valid, scaled)
}

// writeMirror writes the raw, scaled and valid values of a point to <namespace>.IO.<Role>.*
func (e *Engine) writeMirror(ctx context.Context, role Role, raw any, valid bool, scaled *float64) {
	prefix := fmt.Sprintf("%s.IO.%s", e.namespace, role)

	var mirrorErrors []error
	mirrorErrors = append(mirrorErrors, e.store.Write(ctx, prefix+".Valid", valid))
	if raw != nil {
		mirrorErrors = append(mirrorErrors, e.store.Write(ctx, prefix+".Raw", raw))
	}
	if scaled != nil {
		mirrorErrors = append(mirrorErrors, e.store.Write(ctx, prefix+".Scaled", *scaled))
	}
	if err := errors.Join(mirrorErrors...); err != nil {
		ui.Warning("Unable to mirror state of %s: %v", role, err)
	}
}

// ReadAllInputs reads every input. A failing input does not prevent reading the others.
func (e *Engine) ReadAllInputs(ctx context.Context) error {
	var readErrors []error
	for _, input := range e.definitions.Inputs() {
		err := e.ReadInput(ctx, input)
		if err != nil {
			ui.Warning("%v", err)
			readErrors = append(readErrors, err)
		}
	}
	ui.Debug("Read %d inputs", len(e.definitions.Inputs()))
	return errors.Join(readErrors...)
}

// ReadAllOutputs reads the current value of every output and seeds desired = current
func (e *Engine) ReadAllOutputs(ctx context.Context) error {
	var readErrors []error
	for _, output := range e.definitions.Outputs() {
		e.reads.Add(1)
		state, err := e.store.Read(ctx, output.ReadId)
		if err != nil {
			e.readErrors.Add(1)
			e.definitions.Update(func() {
				output.Valid = false
			})
			e.mirrorOutput(ctx, output)
			err = fmt.Errorf("%w: %s (%s): %v", ErrRead, output.Role, output.ReadId, err)
			ui.Warning("%v", err)
			readErrors = append(readErrors, err)
			continue
		}
		e.definitions.Update(func() {
			output.Current = state.Value
			output.Desired = state.Value
			output.Valid = true
		})
		e.mirrorOutput(ctx, output)
	}
	ui.Debug("Read %d outputs", len(e.definitions.Outputs()))
	return errors.Join(readErrors...)
}

// WriteAllOutputs writes every output whose desired value differs from its current one
func (e *Engine) WriteAllOutputs(ctx context.Context) error {
	var writeErrors []error
	for _, output := range e.definitions.Outputs() {
		if output.InSync() {
			continue
		}
		err := e.WriteIO(ctx, output, output.Log)
		if err != nil {
			ui.Error("%v", err)
			writeErrors = append(writeErrors, err)
		}
		e.mirrorOutput(ctx, output)
	}
	return errors.Join(writeErrors...)
}

// ResetOutputs sets every output to its default value
func (e *Engine) ResetOutputs(ctx context.Context) error {
	// refresh current values so that only outputs that differ are written,
	// unreadable outputs are reset anyway
	if err := e.ReadAllOutputs(ctx); err != nil {
		ui.Warning("Resetting outputs without a known current value: %v", err)
	}
	for _, output := range e.definitions.Outputs() {
		e.definitions.Update(func() {
			output.SetDesired(output.Default)
		})
	}
	err := e.WriteAllOutputs(ctx)
	ui.Debug("Reset %d outputs", len(e.definitions.Outputs()))
	return err
}

// WriteIO writes the desired value of the given output and confirms it by reading it back.
// Unconfirmed writes are repeated writeRetries times, after that the FallbackValue
// is written once, followed by one last attempt with the desired value.
func (e *Engine) WriteIO(ctx context.Context, output *Output, log bool) error {
	desired := output.Desired
	rounds := 1 + e.writeRetries

	for attempt := 1; attempt <= rounds; attempt++ {
		if attempt > 1 {
			e.retries.Add(1)
			ui.Warning("Retrying write of %s (%d/%d)", output.Role, attempt-1, e.writeRetries)
		} else if log {
			ui.Info("Changing %s (%s) from %v to %v", output.Role, output.writeId(), output.Current, desired)
		} else {
			ui.Debug("Changing %s (%s) from %v to %v", output.Role, output.writeId(), output.Current, desired)
		}

		confirmed, err := e.writeAndConfirm(ctx, output, desired)
		if err != nil {
			ui.Warning("Write of %s failed: %v", output.Role, err)
		}
		if confirmed {
			e.setCurrent(output, desired)
			return nil
		}
		if ctx.Err() != nil {
			e.writeErrors.Add(1)
			return fmt.Errorf("%w: %s: %v", ErrWrite, output.Role, ctx.Err())
		}
	}

	ui.Warning("Unable to write %s, trying fallback value", output.Role)
	e.fallbacks.Add(1)
	confirmed, err := e.writeAndConfirm(ctx, output, FallbackValue)
	if !confirmed {
		e.writeErrors.Add(1)
		return fmt.Errorf("%w: fallback value for %s (%s) not confirmed: %v", ErrWrite, output.Role, output.writeId(), err)
	}
	e.setCurrent(output, FallbackValue)

	confirmed, err = e.writeAndConfirm(ctx, output, desired)
	if !confirmed {
		e.writeErrors.Add(1)
		return fmt.Errorf("%w: %s (%s) not confirmed after fallback value: %v", ErrWrite, output.Role, output.writeId(), err)
	}
	e.setCurrent(output, desired)
	ui.Info("Wrote %s after fallback value", output.Role)
	return nil
}

func (e *Engine) setCurrent(output *Output, value any) {
	e.definitions.Update(func() {
		output.Current = value
		output.Valid = true
	})
}

// writeAndConfirm writes value, waits for the store to settle and reads the value back
func (e *Engine) writeAndConfirm(ctx context.Context, output *Output, value any) (bool, error) {
	e.writes.Add(1)
	err := e.store.Write(ctx, output.writeId(), value)
	if err != nil {
		return false, err
	}

	err = e.sleep(ctx, e.writeCheckDelay)
	if err != nil {
		return false, err
	}

	state, err := e.store.Read(ctx, output.ReadId)
	if err != nil {
		return false, err
	}
	return store.Equal(state.Value, value), nil
}
