package points

import (
	"sync"
	"time"

	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/util"
)

const (
	TemperatureMin = -40.0
	TemperatureMax = 85.0
)

// Definitions is the registry of all configured inputs and outputs, indexed by role.
type Definitions struct {
	mu sync.RWMutex

	inputs  []*Input
	outputs []*Output

	inputsByRole  map[Role]*Input
	outputsByRole map[Role]*Output
}

// NewDefinitions builds the registry from the given configuration
func NewDefinitions(config configuration.Configuration) *Definitions {
	ids := config.ObjectIds
	d := &Definitions{
		inputsByRole:  map[Role]*Input{},
		outputsByRole: map[Role]*Output{},
	}

	temperature := InRange(TemperatureMin, TemperatureMax)
	d.addInput(&Input{Role: RoleTopTemperature, Id: ids.TopTemperature, Validator: temperature})
	d.addInput(&Input{Role: RoleTopHumidity, Id: ids.TopHumidity, Validator: IsPercentage})
	d.addInput(&Input{Role: RoleBottomTemperature, Id: ids.BottomTemperature, Validator: temperature})
	d.addInput(&Input{Role: RoleBottomHumidity, Id: ids.BottomHumidity, Validator: IsPercentage})
	d.addInput(&Input{Role: RoleHeartbeatFromClient, Id: ids.HeartbeatFromClient, Validator: Any})

	for i, id := range ids.SoilMoisture {
		if i >= configuration.MaxSoilMoistureSensors {
			break
		}
		// calibrated from setpoints every cycle
		scaler := util.NewScaler(0, 100)
		d.addInput(&Input{Role: SoilMoistureRole(i + 1), Id: id, Validator: IsNumber, Scaler: &scaler})
	}

	// actuators fall back to the command id of the store
	writeId := func(role Role, readId string) string {
		if id := config.WriteObjectId(string(role)); len(id) > 0 {
			return id
		}
		return config.Store.CommandId(readId)
	}

	d.addOutput(&Output{Role: RoleHeaterOn, ReadId: ids.HeaterOn, WriteId: writeId(RoleHeaterOn, ids.HeaterOn), Default: false, Log: true})
	d.addOutput(&Output{Role: RoleLightOn, ReadId: ids.LightOn, WriteId: writeId(RoleLightOn, ids.LightOn), Default: false, Log: true})
	d.addOutput(&Output{Role: RoleDehumidifierOn, ReadId: ids.DehumidifierOn, WriteId: writeId(RoleDehumidifierOn, ids.DehumidifierOn), Default: false, Log: true})

	fanScaler := util.NewScaler(config.Scaling.FanPercent.Min, config.Scaling.FanPercent.Max)
	d.addOutput(&Output{
		Role:    RoleFanPercent,
		ReadId:  ids.FanPercent,
		WriteId: writeId(RoleFanPercent, ids.FanPercent),
		Default: fanScaler.Unscale(util.PercentMin),
		Log:     true,
		Scaler:  &fanScaler,
	})

	d.addOutput(&Output{Role: RoleHeartbeatToClient, ReadId: ids.HeartbeatToClient, WriteId: config.WriteObjectId(string(RoleHeartbeatToClient)), Default: 0.0, Log: false})

	return d
}

func (d *Definitions) addInput(input *Input) {
	d.inputs = append(d.inputs, input)
	d.inputsByRole[input.Role] = input
}

func (d *Definitions) addOutput(output *Output) {
	d.outputs = append(d.outputs, output)
	d.outputsByRole[output.Role] = output
}

func (d *Definitions) Inputs() []*Input {
	return d.inputs
}

func (d *Definitions) Outputs() []*Output {
	return d.outputs
}

// Input returns the input with the given role, or nil
func (d *Definitions) Input(role Role) *Input {
	return d.inputsByRole[role]
}

// Output returns the output with the given role, or nil
func (d *Definitions) Output(role Role) *Output {
	return d.outputsByRole[role]
}

// Update runs fn while holding the write lock of the registry.
// All mutations of point values must go through here.
func (d *Definitions) Update(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// Calibrate replaces the scaling range of a scalable input
func (d *Definitions) Calibrate(role Role, min, max float64) bool {
	input := d.Input(role)
	if input == nil || input.Scaler == nil {
		return false
	}
	d.Update(func() {
		input.Scaler.Min = min
		input.Scaler.Max = max
	})
	return true
}

type PointKind string

const (
	PointKindInput  PointKind = "input"
	PointKindOutput PointKind = "output"
)

// PointState is a point-in-time copy of a single point
type PointState struct {
	Role      Role      `json:"role"`
	Kind      PointKind `json:"kind"`
	Id        string    `json:"id"`
	WriteId   string    `json:"writeId,omitempty"`
	Value     any       `json:"value"`
	Desired   any       `json:"desired,omitempty"`
	Default   any       `json:"default,omitempty"`
	Scaled    *float64  `json:"scaled,omitempty"`
	Valid     bool      `json:"valid"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Snapshot returns a copy of the state of all points
func (d *Definitions) Snapshot() []PointState {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]PointState, 0, len(d.inputs)+len(d.outputs))
	for _, input := range d.inputs {
		state := PointState{
			Role:      input.Role,
			Kind:      PointKindInput,
			Id:        input.Id,
			Value:     input.Value,
			Valid:     input.Valid,
			Timestamp: input.Timestamp,
		}
		if input.Scaler != nil {
			if scaled, ok := input.ToScaled(); ok {
				state.Scaled = &scaled
			}
		}
		result = append(result, state)
	}
	for _, output := range d.outputs {
		state := PointState{
			Role:    output.Role,
			Kind:    PointKindOutput,
			Id:      output.ReadId,
			WriteId: output.WriteId,
			Value:   output.Current,
			Desired: output.Desired,
			Default: output.Default,
			Valid:   output.Valid,
		}
		if raw, ok := output.Current.(float64); ok && output.Scaler != nil {
			scaled := output.ToScaled(raw)
			state.Scaled = &scaled
		}
		result = append(result, state)
	}
	return result
}
