package configdoc

import (
	"fmt"

	"laddercore/errcode"
)

// Validate cross-checks a decoded Document against itself (§3.1/§3.2,
// Testable Property #1): every wire node's argument must name a
// variable that exists in Variables, every DigitalIO variable's Pin
// must resolve against Device, and every OneWireInput variable's
// Sensor must resolve against Device. Decode alone cannot catch these —
// it builds Device, Variables, and Wires independently — so Validate is
// the apply-time gate that rejects a structurally well-formed but
// dangling document before it reaches the store or engine.
func (d *Document) Validate() error {
	names := make(map[string]bool, len(d.Variables))
	for _, v := range d.Variables {
		names[v.Name] = true
	}

	for _, v := range d.Variables {
		switch v.Kind {
		case KindDigitalIO:
			if _, _, ok := d.Device.FindPin(v.PinName); !ok {
				return errcode.New(errcode.UnknownPin, "configdoc.Validate",
					fmt.Sprintf("DigitalIO variable %q references unknown pin %q", v.Name, v.PinName), nil)
			}
		case KindOneWireInput:
			if _, _, ok := d.Device.FindOneWireSensor(v.SensorName); !ok {
				return errcode.New(errcode.UnknownVariable, "configdoc.Validate",
					fmt.Sprintf("OneWireInput variable %q references unknown sensor %q", v.Name, v.SensorName), nil)
			}
		}
	}

	for i, w := range d.Wires {
		if err := validateNodeRefs(w.Nodes, names); err != nil {
			return fmt.Errorf("configdoc: Wires[%d]: %w", i, err)
		}
	}
	return nil
}

// validateNodeRefs walks nodes recursively (Branch sub-rungs included)
// checking every LadderElement argument against names. An empty
// argument is the documented too-few-args shorthand (registry.arg) and
// is not a reference, so it is skipped rather than rejected.
func validateNodeRefs(nodes []Node, names map[string]bool) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case LadderElement:
			for _, ref := range node.Args {
				if ref == "" || names[ref] {
					continue
				}
				return errcode.New(errcode.UnknownVariable, "configdoc.Validate",
					fmt.Sprintf("element %q references unknown variable %q", node.ElementType, ref), nil)
			}
		case Branch:
			if err := validateNodeRefs(node.Left, names); err != nil {
				return err
			}
			if err := validateNodeRefs(node.Right, names); err != nil {
				return err
			}
		}
	}
	return nil
}
