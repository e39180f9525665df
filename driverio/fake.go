package driverio

import "sync"

// Fake is a store.Driver implementation backed by in-memory maps, for
// tests that need to observe or inject pin/sensor state without real
// hardware.
type Fake struct {
	mu      sync.Mutex
	digital map[string]bool
	analog  map[string]float64
	onewire map[string]float64
	adc     map[string]float64

	writesDigital []FakeDigitalWrite
	writesAnalog  []FakeAnalogWrite
}

type FakeDigitalWrite struct {
	Pin   string
	Value bool
}

type FakeAnalogWrite struct {
	Pin   string
	Value uint8
}

// NewFake constructs an empty Fake driver.
func NewFake() *Fake {
	return &Fake{
		digital: map[string]bool{},
		analog:  map[string]float64{},
		onewire: map[string]float64{},
		adc:     map[string]float64{},
	}
}

func (f *Fake) SetDigital(pin string, v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digital[pin] = v
}

func (f *Fake) SetAnalog(pin string, v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analog[pin] = v
}

func (f *Fake) SetOneWire(sensor string, v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onewire[sensor] = v
}

// SetADC keys by the same clockPin|dataPin pair ReadADC looks up.
func (f *Fake) SetADC(clockPin, dataPin string, v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adc[clockPin+"|"+dataPin] = v
}

func (f *Fake) DigitalWrites() []FakeDigitalWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeDigitalWrite, len(f.writesDigital))
	copy(out, f.writesDigital)
	return out
}

func (f *Fake) AnalogWrites() []FakeAnalogWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeAnalogWrite, len(f.writesAnalog))
	copy(out, f.writesAnalog)
	return out
}

func (f *Fake) ReadDigital(pin string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.digital[pin], nil
}

func (f *Fake) WriteDigital(pin string, v bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digital[pin] = v
	f.writesDigital = append(f.writesDigital, FakeDigitalWrite{Pin: pin, Value: v})
	return nil
}

func (f *Fake) ReadAnalog(pin string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analog[pin], nil
}

func (f *Fake) WriteAnalog(pin string, v uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writesAnalog = append(f.writesAnalog, FakeAnalogWrite{Pin: pin, Value: v})
	return nil
}

func (f *Fake) ReadOneWire(sensor string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.onewire[sensor], nil
}

func (f *Fake) ReadADC(sensorType, clockPin, dataPin string, gain, samplingRate float64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adc[clockPin+"|"+dataPin], nil
}
