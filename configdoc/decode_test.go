package configdoc

import "testing"

func minimalDoc() map[string]any {
	return map[string]any{
		"Device": map[string]any{
			"device_name": "test-rig",
		},
		"Variables": []any{
			map[string]any{"Name": "flag", "Type": "Boolean", "Value": true},
		},
		"Wires": []any{
			map[string]any{"Nodes": []any{
				map[string]any{"Type": "LadderElement", "ElementType": "Coil", "ComboBoxValues": []any{"flag"}},
			}},
		},
	}
}

func TestDecodeMinimalDocument(t *testing.T) {
	doc, warnings, err := Decode(minimalDoc())
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if doc.Device.Name != "test-rig" {
		t.Fatalf("expected device name test-rig, got %q", doc.Device.Name)
	}
	if len(doc.Variables) != 1 || doc.Variables[0].Kind != KindBoolean {
		t.Fatalf("expected one Boolean variable, got %+v", doc.Variables)
	}
	if len(doc.Wires) != 1 {
		t.Fatalf("expected one wire, got %d", len(doc.Wires))
	}
	le, ok := doc.Wires[0].Nodes[0].(LadderElement)
	if !ok || le.ElementType != "Coil" {
		t.Fatalf("expected a Coil LadderElement, got %+v", doc.Wires[0].Nodes[0])
	}
}

func TestDecodeMissingTopLevelKeyRejectsWholeDocument(t *testing.T) {
	doc := minimalDoc()
	delete(doc, "Wires")
	if _, _, err := Decode(doc); err == nil {
		t.Fatal("expected an error for a missing required top-level key")
	}
}

func TestDecodeRejectsOneWireBusNameCollidingWithPinName(t *testing.T) {
	doc := minimalDoc()
	doc["Device"] = map[string]any{
		"device_name":                        "test-rig",
		"digital_inputs":                     []any{1},
		"digital_inputs_names":               []any{"bus0"},
		"one_wire_inputs":                    []any{2},
		"one_wire_inputs_names":              []any{"bus0"},
		"one_wire_inputs_devices_types":      []any{[]any{}},
		"one_wire_inputs_devices_addresses":  []any{[]any{}},
	}
	if _, err := decodeDevice(doc["Device"]); err == nil {
		t.Fatal("expected a OneWire bus name colliding with a pin name to be rejected")
	}
}

func TestDecodeRejectsOneWireSensorNameCollidingWithAnotherName(t *testing.T) {
	doc := minimalDoc()
	doc["Device"] = map[string]any{
		"device_name":                        "test-rig",
		"one_wire_inputs":                    []any{1, 2},
		"one_wire_inputs_names":              []any{"bus0", "bus1"},
		"one_wire_inputs_devices_types":      []any{[]any{"DS18B20"}, []any{}},
		"one_wire_inputs_devices_addresses":  []any{[]any{"28FF00112233"}, []any{}},
		"one_wire_inputs_devices_names":      []any{[]any{"bus1"}, []any{}},
	}
	if _, err := decodeDevice(doc["Device"]); err == nil {
		t.Fatal("expected a sensor name colliding with another bus/sensor name to be rejected")
	}
}

func TestDecodeOneWireSensorNameFallsBackToAddress(t *testing.T) {
	doc := minimalDoc()
	doc["Device"] = map[string]any{
		"device_name":                      "test-rig",
		"one_wire_inputs":                  []any{1},
		"one_wire_inputs_names":             []any{"bus0"},
		"one_wire_inputs_devices_types":     []any{[]any{"DS18B20"}},
		"one_wire_inputs_devices_addresses": []any{[]any{"28FF00112233"}},
	}
	d, err := decodeDevice(doc["Device"])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.OneWireBuses) != 1 || len(d.OneWireBuses[0].Sensors) != 1 {
		t.Fatalf("expected one bus with one sensor, got %+v", d.OneWireBuses)
	}
	sensor := d.OneWireBuses[0].Sensors[0]
	if sensor.Name != "28FF00112233" {
		t.Fatalf("expected sensor name to fall back to its address, got %q", sensor.Name)
	}
}
