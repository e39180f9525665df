package configdoc

// Kind is the variant discriminant carried by a variable's JSON "Type" field.
type Kind string

const (
	KindDigitalIO    Kind = "DigitalIO"
	KindOneWireInput Kind = "OneWireInput"
	KindAdcSensor    Kind = "AdcSensor"
	KindBoolean      Kind = "Boolean"
	KindNumber       Kind = "Number"
	KindCounter      Kind = "Counter"
	KindTimer        Kind = "Timer"
	KindTime         Kind = "Time"

	// currentTimeTag is the distinguished Time variable's literal "Type"
	// string; it decodes to Kind==KindTime with Variable.IsCurrentTime set.
	currentTimeTag = "Current Time"
)

// IODirection distinguishes a DigitalIO variable's pin direction.
type IODirection string

const (
	DirInput  IODirection = "input"
	DirOutput IODirection = "output"
)

// Variable is the parsed, shape-validated form of one Variables[] entry.
// Exactly one of the kind-specific field groups is meaningful, selected by
// Kind; this mirrors the source document's tagged-variant table (§3.2)
// rather than a class hierarchy.
type Variable struct {
	Name string
	Kind Kind

	// DigitalIO
	PinName  string
	Dir      IODirection
	IsAnalog bool

	// OneWireInput
	SensorName string
	CachedF64  float64 // last-cached read for OneWireInput / AdcSensor

	// AdcSensor
	SensorType   string
	ClockPin     string
	DataPin      string
	MapLow       float64
	MapHigh      float64
	Gain         float64
	SamplingRate float64

	// Boolean
	BoolValue bool

	// Number / Time
	NumValue      float64
	IsCurrentTime bool

	// Counter
	PV, CV         float64
	CU, CD, QU, QD bool

	// Timer
	PT, ET float64 // ms
	In, Q  bool
}
