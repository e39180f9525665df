// Package configdoc decodes and validates the configuration document an
// authoring tool sends on the config-ingress port: the device descriptor
// (§3.1), the variable table (§3.2) and the wire program (§3.3). The
// document is parsed with github.com/andreyvit/tinyjson's generic decode
// (the same library services/config used for the board's embedded
// config blobs) rather than struct-tag unmarshalling, because every field
// is optional-with-default and partial/garbage input during chunked
// ingestion is the expected common case, not an exception.
package configdoc

import "fmt"

// Device is the immutable-between-applies hardware pin map (§3.1).
type Device struct {
	Name         string
	LogicVoltage float64

	DigitalInputs  []PinDecl
	DigitalOutputs []PinDecl
	AnalogInputs   []PinDecl
	DACOutputs     []PinDecl

	OneWireBuses []OneWireBus

	PWMChannels      []int
	MaxHardwareTimers int
	HasRTOS          bool

	UART []int
	I2C  []int
	SPI  []int
	USB  []int

	ParentDevices []string // MAC strings
}

// PinDecl binds a symbolic name to a numeric pin id.
type PinDecl struct {
	Name string
	ID   int
}

// OneWireBus is one physical 1-Wire bus with its discovered sensor map.
// The config document carries, per bus, parallel sensor-type and
// sensor-address arrays (§3.1, §6.1 keys
// one_wire_inputs_devices_types/_addresses). A per-bus sensor-name array
// is not named among the required §6.1 keys but §3.2's "bound OneWire
// sensor name" requires one; we accept an optional
// one_wire_inputs_devices_names array and fall back to the hex address
// itself as the binding name when it is absent (see DESIGN.md).
type OneWireBus struct {
	Name string
	ID   int

	Sensors []OneWireSensor
}

// OneWireSensor is one logical sensor hanging off a bus.
type OneWireSensor struct {
	Name    string // binding key used by store.OneWireInput
	Type    string // sensor-type tag, e.g. "DS18B20"
	Address string // 64-bit hex address, verbatim
}

// FindPin looks up a symbolic pin name across every role-grouped list.
func (d *Device) FindPin(name string) (PinDecl, PinRole, bool) {
	for _, p := range d.DigitalInputs {
		if p.Name == name {
			return p, RoleDigitalInput, true
		}
	}
	for _, p := range d.DigitalOutputs {
		if p.Name == name {
			return p, RoleDigitalOutput, true
		}
	}
	for _, p := range d.AnalogInputs {
		if p.Name == name {
			return p, RoleAnalogInput, true
		}
	}
	for _, p := range d.DACOutputs {
		if p.Name == name {
			return p, RoleDACOutput, true
		}
	}
	return PinDecl{}, 0, false
}

// FindOneWireSensor resolves a logical 1-Wire sensor name across every bus.
func (d *Device) FindOneWireSensor(name string) (OneWireSensor, OneWireBus, bool) {
	for _, bus := range d.OneWireBuses {
		for _, s := range bus.Sensors {
			if s.Name == name {
				return s, bus, true
			}
		}
	}
	return OneWireSensor{}, OneWireBus{}, false
}

// PinRole distinguishes the four pin-list roles a name can resolve against.
type PinRole int

const (
	RoleDigitalInput PinRole = iota
	RoleDigitalOutput
	RoleAnalogInput
	RoleDACOutput
)

func (r PinRole) String() string {
	switch r {
	case RoleDigitalInput:
		return "digital_input"
	case RoleDigitalOutput:
		return "digital_output"
	case RoleAnalogInput:
		return "analog_input"
	case RoleDACOutput:
		return "dac_output"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}
