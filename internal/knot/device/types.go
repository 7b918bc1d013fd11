package device

import "fmt"

// ValueType identifies the type of the values a sensor produces.
// The numeric codes are fixed by the KNoT protocol.
type ValueType int

// Sensor value types.
const (
	ValueTypeInt    ValueType = 1
	ValueTypeFloat  ValueType = 2
	ValueTypeBool   ValueType = 3
	ValueTypeString ValueType = 4
)

// AllValueTypes returns every valid sensor value type.
func AllValueTypes() []ValueType {
	return []ValueType{ValueTypeInt, ValueTypeFloat, ValueTypeBool, ValueTypeString}
}

// State labels the lifecycle stage a device is in. The string values are the
// labels the protocol persists, so a stored device resumes from a
// recognisable stage after a restart.
type State string

// Lifecycle states.
const (
	StateDisconnected  State = "disconnected"
	StateRegistered    State = "registered"
	StateUnregistered  State = "unregistered"
	StateAuthenticated State = "authenticated"
	StateSchemaUpdated State = "updatedSchema"
	StateReady         State = "readyToSendData"
)

// AllStates returns every lifecycle state.
func AllStates() []State {
	return []State{
		StateDisconnected,
		StateRegistered,
		StateUnregistered,
		StateAuthenticated,
		StateSchemaUpdated,
		StateReady,
	}
}

// Schema describes what a sensor measures and how values are typed.
type Schema struct {
	TypeID    int       `json:"typeId" yaml:"typeId"`
	Unit      int       `json:"unit" yaml:"unit"`
	ValueType ValueType `json:"valueType" yaml:"valueType"`
	Name      string    `json:"name" yaml:"name"`
}

// Event describes when a sensor should report: on change, on an interval,
// or when a value crosses a threshold.
type Event struct {
	Change         bool    `json:"change" yaml:"change"`
	TimeSec        int     `json:"timeSec" yaml:"timeSec"`
	LowerThreshold float64 `json:"lowerThreshold" yaml:"lowerThreshold"`
	UpperThreshold float64 `json:"upperThreshold" yaml:"upperThreshold"`
}

// SensorConfiguration pairs a sensor identifier with its schema and
// reporting rules. Two configurations are the same sensor when their
// SensorID matches, regardless of the rest.
type SensorConfiguration struct {
	SensorID int    `json:"sensorId" yaml:"sensorId"`
	Schema   Schema `json:"schema" yaml:"schema"`
	Event    Event  `json:"event" yaml:"event"`
}

// DataPoint is one sensor reading awaiting publication.
type DataPoint struct {
	SensorID  int     `json:"sensorId" yaml:"sensorId"`
	Value     float64 `json:"value" yaml:"value"`
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
}

// Device is the entity the lifecycle state machine governs: identity,
// session credential, sensor configuration and buffered telemetry.
//
// Mutation happens through the lifecycle machine only; the Error field is
// informational (last recorded failure) and never drives behaviour.
type Device struct {
	ID     string                `json:"id" yaml:"id"`
	Name   string                `json:"name" yaml:"name"`
	Token  string                `json:"token" yaml:"token"`
	Config []SensorConfiguration `json:"config" yaml:"config"`
	Data   []DataPoint           `json:"-" yaml:"-"`
	State  State                 `json:"state" yaml:"state"`
	Error  string                `json:"error" yaml:"error"`
}

// New creates a Device with a freshly generated identifier in the
// Disconnected state.
//
// Returns an error if two sensor configurations share a sensor ID.
func New(name string, config []SensorConfiguration) (*Device, error) {
	if err := ValidateSensorUniqueness(config); err != nil {
		return nil, err
	}
	return &Device{
		ID:     NewID(),
		Name:   name,
		Config: config,
		State:  StateDisconnected,
	}, nil
}

// ValidateSensorUniqueness checks that no two sensor configurations share
// a sensor ID.
func ValidateSensorUniqueness(config []SensorConfiguration) error {
	seen := make(map[int]struct{}, len(config))
	for _, c := range config {
		if _, dup := seen[c.SensorID]; dup {
			return fmt.Errorf("%w: sensor id %d", ErrDuplicateSensorID, c.SensorID)
		}
		seen[c.SensorID] = struct{}{}
	}
	return nil
}

// Equal reports whether two devices are the same device. Device identity is
// the device ID alone.
func (d *Device) Equal(other *Device) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ID == other.ID
}

func (d *Device) String() string {
	return fmt.Sprintf("Device %s has ID %s", d.Name, d.ID)
}
