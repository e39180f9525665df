package configdoc

import (
	"fmt"

	"laddercore/x/strx"

	"github.com/andreyvit/tinyjson"
)

// Document is a fully decoded, but not yet store/engine-materialized,
// configuration: the device descriptor, the variable table, and the wire
// program (§6.1's three required top-level keys).
type Document struct {
	Device    Device
	Variables []Variable
	Wires     []Wire
}

// Warning is a recoverable decode problem: the object it names was
// skipped, the rest of the document is still applied (§4.D: "individual
// wire objects that are not objects => skip with warning").
type Warning struct {
	Path   string
	Detail string
}

// ParseJSON runs buf through tinyjson's generic decoder and recovers from
// the library's panic-on-malformed-input behavior (observed in
// services/config's embedded-config usage), turning it into a normal
// error so callers can treat "not yet a complete document" uniformly
// whether tinyjson reports it via error or via panic.
func ParseJSON(buf []byte) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tinyjson: %v", r)
		}
	}()
	raw := tinyjson.Raw(buf)
	v = raw.Value()
	raw.EnsureEOF()
	return v, nil
}

// Decode validates and converts a generically-parsed JSON value (the
// result of ParseJSON) into a Document. Any structural problem — a
// missing top-level key, "Wires" not an array, a variable with an
// unrecognized "Type" — aborts the whole decode (§4.D/§7: "refuse to
// apply; prior program continues"); skip-with-warning is reserved for the
// narrower per-wire-object case the spec calls out explicitly.
func Decode(v any) (*Document, []Warning, error) {
	top, ok := v.(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("configdoc: top level is not a JSON object")
	}

	devRaw, ok := top["Device"]
	if !ok {
		return nil, nil, fmt.Errorf("configdoc: missing required key %q", "Device")
	}
	varsRaw, ok := top["Variables"]
	if !ok {
		return nil, nil, fmt.Errorf("configdoc: missing required key %q", "Variables")
	}
	wiresRaw, ok := top["Wires"]
	if !ok {
		return nil, nil, fmt.Errorf("configdoc: missing required key %q", "Wires")
	}

	dev, err := decodeDevice(devRaw)
	if err != nil {
		return nil, nil, err
	}

	varsArr, ok := varsRaw.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("configdoc: %q is not an array", "Variables")
	}
	vars := make([]Variable, 0, len(varsArr))
	seen := map[string]bool{}
	for i, raw := range varsArr {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, nil, fmt.Errorf("configdoc: Variables[%d] is not an object", i)
		}
		va, err := decodeVariable(obj)
		if err != nil {
			return nil, nil, fmt.Errorf("configdoc: Variables[%d]: %w", i, err)
		}
		if va.Name == "" {
			return nil, nil, fmt.Errorf("configdoc: Variables[%d]: empty name", i)
		}
		if len(va.Name) > 63 {
			return nil, nil, fmt.Errorf("configdoc: Variables[%d]: name %q exceeds 63 chars", i, va.Name)
		}
		if seen[va.Name] {
			return nil, nil, fmt.Errorf("configdoc: duplicate variable name %q", va.Name)
		}
		seen[va.Name] = true
		vars = append(vars, va)
	}

	wiresArr, ok := wiresRaw.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("configdoc: %q is not an array", "Wires")
	}
	var warnings []Warning
	wires := make([]Wire, 0, len(wiresArr))
	for i, raw := range wiresArr {
		obj, ok := raw.(map[string]any)
		if !ok {
			warnings = append(warnings, Warning{
				Path:   fmt.Sprintf("Wires[%d]", i),
				Detail: "not an object, skipped",
			})
			continue
		}
		w, werr := decodeWire(obj)
		if werr != nil {
			warnings = append(warnings, Warning{
				Path:   fmt.Sprintf("Wires[%d]", i),
				Detail: werr.Error(),
			})
			continue
		}
		wires = append(wires, w)
	}

	return &Document{Device: *dev, Variables: vars, Wires: wires}, warnings, nil
}

// -----------------------------------------------------------------------------
// Device
// -----------------------------------------------------------------------------

func decodeDevice(v any) (*Device, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("configdoc: Device is not an object")
	}

	d := &Device{
		Name:              asString(m["device_name"], ""),
		LogicVoltage:      asFloat(m["logic_voltage"], 0),
		MaxHardwareTimers: int(asFloat(m["max_hardware_timers"], 0)),
		HasRTOS:           asBool(m["has_rtos"], false),
	}

	var err error
	if d.DigitalInputs, err = decodePinList(m, "digital_inputs", "digital_inputs_names"); err != nil {
		return nil, err
	}
	if d.DigitalOutputs, err = decodePinList(m, "digital_outputs", "digital_outputs_names"); err != nil {
		return nil, err
	}
	if d.AnalogInputs, err = decodePinList(m, "analog_inputs", "analog_inputs_names"); err != nil {
		return nil, err
	}
	if d.DACOutputs, err = decodePinList(m, "dac_outputs", "dac_outputs_names"); err != nil {
		return nil, err
	}

	d.PWMChannels = asIntSlice(m["pwm_channels"])
	d.UART = asIntSlice(m["UART"])
	d.I2C = asIntSlice(m["I2C"])
	d.SPI = asIntSlice(m["SPI"])
	d.USB = asIntSlice(m["USB"])

	if d.OneWireBuses, err = decodeOneWireBuses(m); err != nil {
		return nil, err
	}

	for _, p := range asAnySlice(m["parent_devices"]) {
		if s, ok := p.(string); ok && s != "" {
			d.ParentDevices = append(d.ParentDevices, s)
		}
	}

	names := map[string]bool{}
	for _, group := range [][]PinDecl{d.DigitalInputs, d.DigitalOutputs, d.AnalogInputs, d.DACOutputs} {
		for _, p := range group {
			if names[p.Name] {
				return nil, fmt.Errorf("configdoc: duplicate pin name %q", p.Name)
			}
			names[p.Name] = true
		}
	}
	for _, bus := range d.OneWireBuses {
		if names[bus.Name] {
			return nil, fmt.Errorf("configdoc: duplicate pin name %q", bus.Name)
		}
		names[bus.Name] = true
		for _, s := range bus.Sensors {
			if names[s.Name] {
				return nil, fmt.Errorf("configdoc: duplicate pin name %q", s.Name)
			}
			names[s.Name] = true
		}
	}

	return d, nil
}

func decodePinList(m map[string]any, idsKey, namesKey string) ([]PinDecl, error) {
	ids := asIntSlice(m[idsKey])
	names := asStringSlice(m[namesKey])
	if len(ids) != len(names) {
		return nil, fmt.Errorf("configdoc: %s/%s length mismatch (%d vs %d)", idsKey, namesKey, len(ids), len(names))
	}
	out := make([]PinDecl, len(ids))
	for i := range ids {
		out[i] = PinDecl{ID: ids[i], Name: names[i]}
	}
	return out, nil
}

func decodeOneWireBuses(m map[string]any) ([]OneWireBus, error) {
	ids := asIntSlice(m["one_wire_inputs"])
	names := asStringSlice(m["one_wire_inputs_names"])
	if len(ids) != len(names) {
		return nil, fmt.Errorf("configdoc: one_wire_inputs/_names length mismatch")
	}
	typesPerBus := asAnySlice(m["one_wire_inputs_devices_types"])
	addrsPerBus := asAnySlice(m["one_wire_inputs_devices_addresses"])
	namesPerBus := asAnySlice(m["one_wire_inputs_devices_names"]) // optional, see DESIGN.md

	buses := make([]OneWireBus, len(ids))
	for i := range ids {
		buses[i] = OneWireBus{ID: ids[i], Name: names[i]}

		types := stringsAt(typesPerBus, i)
		addrs := stringsAt(addrsPerBus, i)
		devNames := stringsAt(namesPerBus, i)
		if len(types) != len(addrs) {
			return nil, fmt.Errorf("configdoc: bus %q device type/address length mismatch", names[i])
		}
		sensors := make([]OneWireSensor, len(addrs))
		for j := range addrs {
			var devName string
			if j < len(devNames) {
				devName = devNames[j]
			}
			sensors[j] = OneWireSensor{Name: strx.Coalesce(devName, addrs[j]), Type: types[j], Address: addrs[j]}
		}
		buses[i].Sensors = sensors
	}
	return buses, nil
}

func stringsAt(perBus []any, i int) []string {
	if i < 0 || i >= len(perBus) {
		return nil
	}
	return asStringSlice(perBus[i])
}

// -----------------------------------------------------------------------------
// Variables
// -----------------------------------------------------------------------------

func decodeVariable(m map[string]any) (Variable, error) {
	typeTag := asString(m["Type"], "")
	if typeTag == "" {
		return Variable{}, fmt.Errorf("missing Type")
	}

	v := Variable{Name: asString(m["Name"], "")}

	switch typeTag {
	case string(KindDigitalIO):
		v.Kind = KindDigitalIO
		v.PinName = asString(m["Pin"], "")
		if asString(m["Direction"], "input") == string(DirOutput) {
			v.Dir = DirOutput
		} else {
			v.Dir = DirInput
		}
		v.IsAnalog = asBool(m["Analog"], false)

	case string(KindOneWireInput):
		v.Kind = KindOneWireInput
		v.SensorName = asString(m["Sensor"], "")
		v.CachedF64 = asFloat(m["Value"], 0)

	case string(KindAdcSensor):
		v.Kind = KindAdcSensor
		v.SensorType = asString(m["SensorType"], "")
		v.ClockPin = asString(m["ClockPin"], "")
		v.DataPin = asString(m["DataPin"], "")
		v.MapLow = asFloat(m["MapLow"], 0)
		v.MapHigh = asFloat(m["MapHigh"], 0)
		v.Gain = asFloat(m["Gain"], 1)
		v.SamplingRate = asFloat(m["SamplingRate"], 0)
		v.CachedF64 = asFloat(m["Value"], 0)

	case string(KindBoolean):
		v.Kind = KindBoolean
		v.BoolValue = asBool(m["Value"], false)

	case string(KindNumber):
		v.Kind = KindNumber
		v.NumValue = asFloat(m["Value"], 0)

	case string(KindCounter):
		v.Kind = KindCounter
		v.PV = asFloat(m["PV"], 0)
		v.CV = asFloat(m["CV"], 0)
		v.CU = asBool(m["CU"], false)
		v.CD = asBool(m["CD"], false)
		v.QU = v.CV >= v.PV
		v.QD = v.CV <= 0

	case string(KindTimer):
		v.Kind = KindTimer
		v.PT = asFloat(m["PT"], 0)
		v.ET = asFloat(m["ET"], 0)
		if v.PT > 0 && (v.ET < 0 || v.ET > v.PT) {
			v.ET = 0
		}
		v.In = asBool(m["IN"], false)
		v.Q = asBool(m["Q"], false)

	case string(KindTime):
		v.Kind = KindTime
		v.NumValue = asFloat(m["Value"], 0)

	case currentTimeTag:
		v.Kind = KindTime
		v.IsCurrentTime = true
		v.NumValue = asFloat(m["Value"], 0)

	default:
		return Variable{}, fmt.Errorf("unrecognized variable Type %q", typeTag)
	}

	return v, nil
}

// -----------------------------------------------------------------------------
// Wires
// -----------------------------------------------------------------------------

func decodeWire(m map[string]any) (Wire, error) {
	nodesRaw, ok := m["Nodes"]
	if !ok {
		return Wire{}, fmt.Errorf("missing Nodes")
	}
	arr, ok := nodesRaw.([]any)
	if !ok {
		return Wire{}, fmt.Errorf("Nodes is not an array")
	}
	nodes, err := decodeNodes(arr)
	if err != nil {
		return Wire{}, err
	}
	return Wire{Nodes: nodes}, nil
}

func decodeNodes(arr []any) ([]Node, error) {
	out := make([]Node, 0, len(arr))
	for i, raw := range arr {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("node[%d] is not an object", i)
		}
		n, err := decodeNode(obj)
		if err != nil {
			return nil, fmt.Errorf("node[%d]: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeNode(m map[string]any) (Node, error) {
	switch asString(m["Type"], "") {
	case "LadderElement":
		return LadderElement{
			ElementType: asString(m["ElementType"], ""),
			Args:        asStringSlice(m["ComboBoxValues"]),
		}, nil
	case "Branch":
		left, err := decodeNodes(asAnySlice(m["Nodes1"]))
		if err != nil {
			return nil, fmt.Errorf("Nodes1: %w", err)
		}
		right, err := decodeNodes(asAnySlice(m["Nodes2"]))
		if err != nil {
			return nil, fmt.Errorf("Nodes2: %w", err)
		}
		return Branch{Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unrecognized node Type %q", asString(m["Type"], ""))
	}
}

// -----------------------------------------------------------------------------
// Generic-JSON accessors (missing/absent -> documented default, §4.A)
// -----------------------------------------------------------------------------

func asString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func asFloat(v any, def float64) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	default:
		return def
	}
}

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func asAnySlice(v any) []any {
	if a, ok := v.([]any); ok {
		return a
	}
	return nil
}

func asStringSlice(v any) []string {
	a := asAnySlice(v)
	out := make([]string, 0, len(a))
	for _, e := range a {
		out = append(out, asString(e, ""))
	}
	return out
}

func asIntSlice(v any) []int {
	a := asAnySlice(v)
	out := make([]int, 0, len(a))
	for _, e := range a {
		out = append(out, int(asFloat(e, 0)))
	}
	return out
}
