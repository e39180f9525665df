package store

import (
	"sync"

	"laddercore/configdoc"
	"laddercore/errcode"
	"laddercore/x/mathx"

	"github.com/sirupsen/logrus"
)

// Store is the ordered, named variable table (§3.2). The zero value is
// not usable; construct with New.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*variable
	ord  []string // insertion order, preserved across Load for snapshot_json

	driver Driver
	log    logrus.FieldLogger
}

// New constructs an empty store bound to driver (never nil: pass
// NopDriver{} when no physical backend is wired yet).
func New(driver Driver, log logrus.FieldLogger) *Store {
	if driver == nil {
		driver = NopDriver{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{byID: map[string]*variable{}, driver: driver, log: log}
}

// Handle is an opaque reference returned by Find; it is stable only until
// the next Load.
type Handle struct{ v *variable }

// Name returns the handle's variable name.
func (h Handle) Name() string { return h.v.name }

// Kind returns the handle's variable kind.
func (h Handle) Kind() configdoc.Kind { return h.v.kind }

// Load replaces the store atomically and all-or-nothing (§4.A): if any
// entry fails to convert, the previous store is left untouched. Callers
// that already validated the document with configdoc.Decode will not
// normally hit the failure path; it exists so Load stays safe to call
// directly too.
func (s *Store) Load(vars []configdoc.Variable) error {
	next := make(map[string]*variable, len(vars))
	order := make([]string, 0, len(vars))
	for _, doc := range vars {
		if doc.Name == "" {
			return errcode.New(errcode.MalformedConfig, "store.Load", "empty variable name", nil)
		}
		if _, dup := next[doc.Name]; dup {
			return errcode.New(errcode.MalformedConfig, "store.Load", "duplicate variable name: "+doc.Name, nil)
		}
		v := fromDoc(doc)
		if v.kind == configdoc.KindCounter {
			v.refreshCounterFlags()
		}
		if v.kind == configdoc.KindTimer {
			v.clampTimerET()
		}
		next[doc.Name] = v
		order = append(order, doc.Name)
	}

	s.mu.Lock()
	s.byID = next
	s.ord = order
	s.mu.Unlock()
	return nil
}

// Find does an exact-match lookup (§4.A).
func (s *Store) Find(name string) (Handle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byID[name]
	if !ok {
		return Handle{}, false
	}
	return Handle{v: v}, true
}

// SetDriver rebinds the physical I/O backend, e.g. after a board-specific
// adapter finishes initializing.
func (s *Store) SetDriver(d Driver) {
	if d == nil {
		d = NopDriver{}
	}
	s.mu.Lock()
	s.driver = d
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------
// Boolean scalar access (§4.A)
// -----------------------------------------------------------------------------

// ReadBool resolves name (optionally dotted with one of
// .CU/.CD/.QU/.QD/.IN/.Q) and returns its boolean value. An unresolved
// name or a suffix/kind mismatch silently returns false (§4.A, where it is
// flagged as an open question — reproduced on purpose, not "fixed").
func (s *Store) ReadBool(name string) bool {
	base, suffix, dotted := splitDotted(name)

	s.mu.RLock()
	v, ok := s.byID[base]
	s.mu.RUnlock()
	if !ok {
		s.log.WithField("variable", name).Debug("read_bool: unknown variable")
		return false
	}

	if dotted && boolSuffixes[suffix] {
		s.mu.RLock()
		defer s.mu.RUnlock()
		switch {
		case v.kind == configdoc.KindCounter && suffix == "CU":
			return v.cu
		case v.kind == configdoc.KindCounter && suffix == "CD":
			return v.cd
		case v.kind == configdoc.KindCounter && suffix == "QU":
			return v.qu
		case v.kind == configdoc.KindCounter && suffix == "QD":
			return v.qd
		case v.kind == configdoc.KindTimer && suffix == "IN":
			return v.in
		case v.kind == configdoc.KindTimer && suffix == "Q":
			return v.q
		default:
			return false
		}
	}
	if dotted {
		// A numeric suffix (.PV/.CV/.PT/.ET): treat as a kind mismatch
		// against the (already resolved) base variable.
		return false
	}

	switch v.kind {
	case configdoc.KindBoolean:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return v.boolValue
	case configdoc.KindDigitalIO:
		s.mu.RLock()
		pin := v.pinName
		s.mu.RUnlock()
		b, err := s.driver.ReadDigital(pin)
		if err != nil {
			s.log.WithError(err).WithField("pin", pin).Warn("read_digital failed")
			return false
		}
		return b
	default:
		return false
	}
}

// WriteBool writes name's boolean sub-field/scalar: a Boolean variable,
// a Counter/Timer boolean sub-field, or a DigitalIO output (through the
// driver). DigitalIO inputs and unknown/mismatched names are no-ops
// (§4.A).
func (s *Store) WriteBool(name string, val bool) {
	base, suffix, dotted := splitDotted(name)

	s.mu.Lock()
	v, ok := s.byID[base]
	if !ok {
		s.mu.Unlock()
		s.log.WithField("variable", name).Debug("write_bool: unknown variable")
		return
	}

	if dotted && boolSuffixes[suffix] {
		switch {
		case v.kind == configdoc.KindCounter && suffix == "CU":
			v.cu = val
		case v.kind == configdoc.KindCounter && suffix == "CD":
			v.cd = val
		case v.kind == configdoc.KindCounter && suffix == "QU":
			v.qu = val
		case v.kind == configdoc.KindCounter && suffix == "QD":
			v.qd = val
		case v.kind == configdoc.KindTimer && suffix == "IN":
			v.in = val
		case v.kind == configdoc.KindTimer && suffix == "Q":
			v.q = val
		}
		s.mu.Unlock()
		return
	}
	if dotted {
		s.mu.Unlock()
		return
	}

	switch v.kind {
	case configdoc.KindBoolean:
		v.boolValue = val
		s.mu.Unlock()
	case configdoc.KindDigitalIO:
		if v.dir != configdoc.DirOutput {
			s.mu.Unlock()
			return
		}
		pin := v.pinName
		s.mu.Unlock()
		if err := s.driver.WriteDigital(pin, val); err != nil {
			s.log.WithError(err).WithField("pin", pin).Warn("write_digital failed")
		}
	default:
		s.mu.Unlock()
	}
}

// -----------------------------------------------------------------------------
// Numeric scalar access (§4.A)
// -----------------------------------------------------------------------------

// ReadNum resolves name (optionally dotted with .PV/.CV/.PT/.ET) and
// returns its numeric value, delegating to the driver for analog IO.
func (s *Store) ReadNum(name string) float64 {
	base, suffix, dotted := splitDotted(name)

	s.mu.RLock()
	v, ok := s.byID[base]
	s.mu.RUnlock()
	if !ok {
		s.log.WithField("variable", name).Debug("read_num: unknown variable")
		return 0
	}

	if dotted && numSuffixes[suffix] {
		s.mu.RLock()
		defer s.mu.RUnlock()
		switch {
		case v.kind == configdoc.KindCounter && suffix == "PV":
			return v.pv
		case v.kind == configdoc.KindCounter && suffix == "CV":
			return v.cv
		case v.kind == configdoc.KindTimer && suffix == "PT":
			return v.pt
		case v.kind == configdoc.KindTimer && suffix == "ET":
			return v.et
		default:
			return 0
		}
	}
	if dotted {
		return 0
	}

	switch v.kind {
	case configdoc.KindNumber, configdoc.KindTime:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return v.numValue
	case configdoc.KindOneWireInput, configdoc.KindAdcSensor:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return v.cachedF64
	case configdoc.KindDigitalIO:
		s.mu.RLock()
		pin, analog := v.pinName, v.isAnalog
		s.mu.RUnlock()
		if !analog {
			return 0
		}
		f, err := s.driver.ReadAnalog(pin)
		if err != nil {
			s.log.WithError(err).WithField("pin", pin).Warn("read_analog failed")
			return 0
		}
		return f
	default:
		return 0
	}
}

// WriteNum resolves name (optionally dotted with .PV/.CV/.PT/.ET) and
// writes its numeric value. A numeric write to a DigitalIO variable
// clamps to 0..255 and writes the DAC driver (§4.A).
func (s *Store) WriteNum(name string, val float64) {
	base, suffix, dotted := splitDotted(name)

	s.mu.Lock()
	v, ok := s.byID[base]
	if !ok {
		s.mu.Unlock()
		s.log.WithField("variable", name).Debug("write_num: unknown variable")
		return
	}

	if dotted && numSuffixes[suffix] {
		switch {
		case v.kind == configdoc.KindCounter && suffix == "PV":
			v.pv = val
			v.refreshCounterFlags()
		case v.kind == configdoc.KindCounter && suffix == "CV":
			v.cv = val
			v.refreshCounterFlags()
		case v.kind == configdoc.KindTimer && suffix == "PT":
			v.pt = val
			v.clampTimerET()
		case v.kind == configdoc.KindTimer && suffix == "ET":
			v.et = val
			v.clampTimerET()
		}
		s.mu.Unlock()
		return
	}
	if dotted {
		s.mu.Unlock()
		return
	}

	switch v.kind {
	case configdoc.KindNumber, configdoc.KindTime:
		v.numValue = val
		s.mu.Unlock()
	case configdoc.KindDigitalIO:
		pin := v.pinName
		s.mu.Unlock()
		clamped := uint8(mathx.Clamp(val, 0, 255))
		if err := s.driver.WriteAnalog(pin, clamped); err != nil {
			s.log.WithError(err).WithField("pin", pin).Warn("write_analog (DAC) failed")
		}
	default:
		s.mu.Unlock()
	}
}

// -----------------------------------------------------------------------------
// Sensor refresh (driven by the OneWire/ADC samplers, §5 task table)
// -----------------------------------------------------------------------------

// RefreshOneWire updates a OneWireInput's cached value from the driver.
// Called by the dedicated OneWire sampler task, never inline in a scan
// (§5: "read_onewire may take tens of milliseconds").
func (s *Store) RefreshOneWire(name string) {
	s.mu.RLock()
	v, ok := s.byID[name]
	s.mu.RUnlock()
	if !ok || v.kind != configdoc.KindOneWireInput {
		return
	}
	s.mu.RLock()
	sensor := v.sensorName
	s.mu.RUnlock()
	f, err := s.driver.ReadOneWire(sensor)
	if err != nil {
		s.log.WithError(err).WithField("sensor", sensor).Warn("read_onewire failed")
		return
	}
	s.mu.Lock()
	v.cachedF64 = f
	s.mu.Unlock()
}

// RefreshADC updates an AdcSensor's cached value from the driver.
func (s *Store) RefreshADC(name string) {
	s.mu.RLock()
	v, ok := s.byID[name]
	s.mu.RUnlock()
	if !ok || v.kind != configdoc.KindAdcSensor {
		return
	}
	s.mu.RLock()
	st, clk, data, gain, rate := v.sensorType, v.clockPin, v.dataPin, v.gain, v.samplingRate
	s.mu.RUnlock()
	f, err := s.driver.ReadADC(st, clk, data, gain, rate)
	if err != nil {
		s.log.WithError(err).WithField("variable", name).Warn("read_adc failed")
		return
	}
	s.mu.Lock()
	v.cachedF64 = f
	s.mu.Unlock()
}

// SetCurrentTime overwrites the distinguished "Current Time" variable, if
// one exists, as HH*10000+MM*100+SS (§3.2).
func (s *Store) SetCurrentTime(hh, mm, ss int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range s.ord {
		v := s.byID[name]
		if v.kind == configdoc.KindTime && v.isCurrentTime {
			v.numValue = float64(hh*10000 + mm*100 + ss)
		}
	}
}

// -----------------------------------------------------------------------------
// Snapshot (§4.A, §8 properties 4 and 5)
// -----------------------------------------------------------------------------

// Snapshot returns every entry's type tag, name, and state fields in
// insertion order, suitable for re-encoding with configdoc.EncodeVariable.
func (s *Store) Snapshot() []configdoc.Variable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]configdoc.Variable, 0, len(s.ord))
	for _, name := range s.ord {
		out = append(out, s.byID[name].toDoc())
	}
	return out
}

// BooleanAndNumberDeltas returns every Boolean/Number variable's current
// value as a flat map, the shape Parent Sync publishes (§4.F).
func (s *Store) BooleanAndNumberDeltas() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.ord))
	for _, name := range s.ord {
		v := s.byID[name]
		switch v.kind {
		case configdoc.KindBoolean:
			out[name] = v.boolValue
		case configdoc.KindNumber:
			out[name] = v.numValue
		}
	}
	return out
}

// ApplyDeltas overwrites matching Boolean/Number variables from an
// inbound flat {name: value} object (§4.F inbound child sync).
func (s *Store) ApplyDeltas(deltas map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, raw := range deltas {
		v, ok := s.byID[name]
		if !ok {
			continue
		}
		switch v.kind {
		case configdoc.KindBoolean:
			if b, ok := raw.(bool); ok {
				v.boolValue = b
			}
		case configdoc.KindNumber:
			if f, ok := raw.(float64); ok {
				v.numValue = f
			}
		}
	}
}
