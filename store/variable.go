package store

import "laddercore/configdoc"

// variable is the runtime counterpart of configdoc.Variable: the same
// field set, minus the wire-format concerns, living behind the Store's
// mutex instead of carrying one of its own (§5: scalar reads/writes are
// the atomic unit, not the whole variable).
type variable struct {
	name string
	kind configdoc.Kind

	// DigitalIO
	pinName  string
	dir      configdoc.IODirection
	isAnalog bool

	// OneWireInput
	sensorName string
	cachedF64  float64

	// AdcSensor
	sensorType   string
	clockPin     string
	dataPin      string
	mapLow       float64
	mapHigh      float64
	gain         float64
	samplingRate float64

	// Boolean
	boolValue bool

	// Number / Time
	numValue      float64
	isCurrentTime bool

	// Counter
	pv, cv         float64
	cu, cd, qu, qd bool

	// Timer
	pt, et float64
	in, q  bool
}

func fromDoc(v configdoc.Variable) *variable {
	return &variable{
		name: v.Name, kind: v.Kind,
		pinName: v.PinName, dir: v.Dir, isAnalog: v.IsAnalog,
		sensorName: v.SensorName, cachedF64: v.CachedF64,
		sensorType: v.SensorType, clockPin: v.ClockPin, dataPin: v.DataPin,
		mapLow: v.MapLow, mapHigh: v.MapHigh, gain: v.Gain, samplingRate: v.SamplingRate,
		boolValue: v.BoolValue,
		numValue:  v.NumValue, isCurrentTime: v.IsCurrentTime,
		pv: v.PV, cv: v.CV, cu: v.CU, cd: v.CD, qu: v.QU, qd: v.QD,
		pt: v.PT, et: v.ET, in: v.In, q: v.Q,
	}
}

func (v *variable) toDoc() configdoc.Variable {
	return configdoc.Variable{
		Name: v.name, Kind: v.kind,
		PinName: v.pinName, Dir: v.dir, IsAnalog: v.isAnalog,
		SensorName: v.sensorName, CachedF64: v.cachedF64,
		SensorType: v.sensorType, ClockPin: v.clockPin, DataPin: v.dataPin,
		MapLow: v.mapLow, MapHigh: v.mapHigh, Gain: v.gain, SamplingRate: v.samplingRate,
		BoolValue: v.boolValue,
		NumValue:  v.numValue, IsCurrentTime: v.isCurrentTime,
		PV: v.pv, CV: v.cv, CU: v.cu, CD: v.cd, QU: v.qu, QD: v.qd,
		PT: v.pt, ET: v.et, In: v.in, Q: v.q,
	}
}

// refreshCounterFlags recomputes QU/QD after a CV/PV change (§3.2
// invariant: Counter.qu <=> cv>=pv, Counter.qd <=> cv<=0).
func (v *variable) refreshCounterFlags() {
	v.qu = v.cv >= v.pv
	v.qd = v.cv <= 0
}

// clampTimerET enforces §3.2's Timer.et in [0,pt] whenever pt>0.
func (v *variable) clampTimerET() {
	if v.pt > 0 {
		if v.et < 0 {
			v.et = 0
		}
		if v.et > v.pt {
			v.et = v.pt
		}
	}
}
