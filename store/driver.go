// Package store implements the variable store (§3.2, §4.A): an ordered,
// named table of typed, scalar-addressable variables. It is the single
// shared-memory collection every wire-scan task reads and writes; see
// DESIGN.md for why a per-store RWMutex (rather than the source's
// lock-free "single core, cooperative scheduling" assumption) is the
// idiomatic Go equivalent of §5's "treat each read-or-write as an atomic
// operation".
package store

// Driver is the boundary to the physical GPIO/ADC/OneWire layer spec.md
// §1 places out of the core's scope. The store calls through it for
// DigitalIO and analog-backed variants; every other variant is
// store-local memory only.
type Driver interface {
	ReadDigital(pin string) (bool, error)
	WriteDigital(pin string, v bool) error
	ReadAnalog(pin string) (float64, error)
	WriteAnalog(pin string, v uint8) error // DAC output, clamped 0..255 by the caller
	ReadOneWire(sensor string) (float64, error)
	ReadADC(sensorType, clockPin, dataPin string, gain, samplingRate float64) (float64, error)
}

// NopDriver satisfies Driver with sentinel zero values (§7 "driver
// error ... return sentinel"); it is the default until a real backend is
// wired, and is exactly what every unbound pin name degrades to.
type NopDriver struct{}

func (NopDriver) ReadDigital(string) (bool, error)    { return false, nil }
func (NopDriver) WriteDigital(string, bool) error     { return nil }
func (NopDriver) ReadAnalog(string) (float64, error)  { return 0, nil }
func (NopDriver) WriteAnalog(string, uint8) error     { return nil }
func (NopDriver) ReadOneWire(string) (float64, error) { return 0, nil }
func (NopDriver) ReadADC(string, string, string, float64, float64) (float64, error) {
	return 0, nil
}

var _ Driver = NopDriver{}
