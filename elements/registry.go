package elements

import (
	"laddercore/store"

	"github.com/sirupsen/logrus"
)

// Category tells the wire scheduler how to fold an element's return
// value into the running condition (§4.C process_node semantics).
type Category int

const (
	// CategoryCondition elements AND their result into cond.
	CategoryCondition Category = iota
	// CategoryReplace elements (only OffDelayTimer) overwrite cond.
	CategoryReplace
	// CategoryAction elements run for side effects; cond passes through.
	CategoryAction
	// CategorySink elements are trailing coils invoked once per scan
	// with the series' final cond; their return value is unused.
	CategorySink
)

// Func is the uniform shape every registered element is adapted to:
// given the current store, the engine-private tables, the element's
// argument names, the running condition, and a monotonic microsecond
// clock reading, return the element's boolean result (meaningless for
// CategoryAction/CategorySink entries beyond "don't panic").
type Func func(s *store.Store, t *Tables, args []string, cond bool, nowUs uint64) bool

type entry struct {
	cat Category
	fn  Func
}

// registry is the closed set named in §4.C: element-type names are
// matched case-sensitively against exactly this table. Unknown names
// are the caller's responsibility to warn on and treat as a no-op
// returning cond unchanged (Lookup reports found=false for that case).
var registry = map[string]entry{
	"NOContact": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return NOContact(s, arg(a, 0))
	}},
	"NCContact": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return NCContact(s, arg(a, 0))
	}},
	"GreaterCompare": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return Greater(s, arg(a, 0), arg(a, 1))
	}},
	"LessCompare": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return Less(s, arg(a, 0), arg(a, 1))
	}},
	"GreaterOrEqualCompare": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return GreaterOrEqual(s, arg(a, 0), arg(a, 1))
	}},
	"LessOrEqualCompare": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return LessOrEqual(s, arg(a, 0), arg(a, 1))
	}},
	"EqualCompare": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return Equal(s, arg(a, 0), arg(a, 1))
	}},
	"NotEqualCompare": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return NotEqual(s, arg(a, 0), arg(a, 1))
	}},

	"Coil": {CategorySink, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		Coil(s, t, arg(a, 0), cond)
		return cond
	}},
	"OneShotPositiveCoil": {CategorySink, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		OneShotPositiveCoil(s, t, arg(a, 0), cond)
		return cond
	}},
	"SetCoil": {CategorySink, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		SetCoil(s, t, arg(a, 0), cond)
		return cond
	}},
	"ResetCoil": {CategorySink, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		ResetCoil(s, t, arg(a, 0), cond)
		return cond
	}},

	"AddMath": {CategoryAction, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		AddMath(s, t, arg(a, 0), arg(a, 1), arg(a, 2), cond)
		return cond
	}},
	"SubtractMath": {CategoryAction, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		SubtractMath(s, t, arg(a, 0), arg(a, 1), arg(a, 2), cond)
		return cond
	}},
	"MultiplyMath": {CategoryAction, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		MultiplyMath(s, t, arg(a, 0), arg(a, 1), arg(a, 2), cond)
		return cond
	}},
	"DivideMath": {CategoryAction, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		DivideMath(s, t, arg(a, 0), arg(a, 1), arg(a, 2), cond)
		return cond
	}},
	"MoveMath": {CategoryAction, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		MoveMath(s, t, arg(a, 0), arg(a, 1), cond)
		return cond
	}},

	"CountUp": {CategoryAction, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		CountUp(s, t, arg(a, 0), cond)
		return cond
	}},
	"CountDown": {CategoryAction, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		CountDown(s, t, arg(a, 0), cond)
		return cond
	}},
	"Reset": {CategoryAction, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		Reset(s, t, arg(a, 0), cond)
		return cond
	}},

	"OnDelayTimer": {CategoryCondition, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return OnDelayTimer(s, t, arg(a, 0), cond, now)
	}},
	"OffDelayTimer": {CategoryReplace, func(s *store.Store, t *Tables, a []string, cond bool, now uint64) bool {
		return OffDelayTimer(s, t, arg(a, 0), cond, now)
	}},
}

// arg returns args[i], or "" if short — an element invoked with too few
// names degrades to operating on the empty-string variable, which the
// store resolves as just another unknown name (silent false/no-op).
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// Lookup resolves an element-type name to its dispatch entry.
func Lookup(elementType string) (fn Func, cat Category, found bool) {
	e, ok := registry[elementType]
	if !ok {
		return nil, 0, false
	}
	return e.fn, e.cat, true
}

// WarnUnknown logs an unrecognized element type each time it is called;
// the wire scheduler treats the node as a no-op returning cond
// unchanged (§4.C).
func WarnUnknown(log logrus.FieldLogger, elementType string) {
	log.WithField("element_type", elementType).Warn("unknown element type, treating as no-op")
}
