package elements

import (
	"testing"

	"laddercore/configdoc"
	"laddercore/store"
)

func newTestStore(t *testing.T, vars []configdoc.Variable) *store.Store {
	t.Helper()
	s := store.New(store.NopDriver{}, nil)
	if err := s.Load(vars); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

// The spec documents NOContact/NCContact as inverted relative to their
// names; this locks that observed behavior in place rather than "fixing" it.
func TestContactInversionIsPreserved(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{{Name: "x", Kind: configdoc.KindBoolean}})

	s.WriteBool("x", true)
	if NOContact(s, "x") {
		t.Fatal("NOContact(true) should read false (documented inversion)")
	}
	if !NCContact(s, "x") {
		t.Fatal("NCContact(true) should read true (documented inversion)")
	}

	s.WriteBool("x", false)
	if !NOContact(s, "x") {
		t.Fatal("NOContact(false) should read true (documented inversion)")
	}
	if NCContact(s, "x") {
		t.Fatal("NCContact(false) should read false (documented inversion)")
	}
}

// MoveMath ignores its cond argument entirely and always copies.
func TestMoveMathIgnoresCond(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{
		{Name: "a", Kind: configdoc.KindNumber, NumValue: 42},
		{Name: "b", Kind: configdoc.KindNumber},
	})
	tab := NewTables(nil)

	MoveMath(s, tab, "a", "b", false)
	if got := s.ReadNum("b"); got != 42 {
		t.Fatalf("expected MoveMath to copy even with cond=false, got %v", got)
	}

	s.WriteNum("a", 7)
	MoveMath(s, tab, "a", "b", false)
	if got := s.ReadNum("b"); got != 7 {
		t.Fatalf("expected MoveMath to keep copying on every call, got %v", got)
	}
}

func TestAddMathIsEdgeGated(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{
		{Name: "a", Kind: configdoc.KindNumber, NumValue: 2},
		{Name: "b", Kind: configdoc.KindNumber, NumValue: 3},
		{Name: "c", Kind: configdoc.KindNumber},
	})
	tab := NewTables(nil)

	AddMath(s, tab, "a", "b", "c", true)
	if got := s.ReadNum("c"); got != 5 {
		t.Fatalf("expected first rising edge to write 5, got %v", got)
	}

	s.WriteNum("a", 100)
	AddMath(s, tab, "a", "b", "c", true) // still true, no new edge
	if got := s.ReadNum("c"); got != 5 {
		t.Fatalf("expected no write while cond stays true, got %v", got)
	}

	AddMath(s, tab, "a", "b", "c", false)
	AddMath(s, tab, "a", "b", "c", true) // a fresh rising edge
	if got := s.ReadNum("c"); got != 103 {
		t.Fatalf("expected a new rising edge to re-evaluate, got %v", got)
	}
}

func TestDivideMathSuppressesNearZero(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{
		{Name: "a", Kind: configdoc.KindNumber, NumValue: 10},
		{Name: "b", Kind: configdoc.KindNumber, NumValue: 0},
		{Name: "c", Kind: configdoc.KindNumber, NumValue: -1},
	})
	tab := NewTables(nil)

	DivideMath(s, tab, "a", "b", "c", true)
	if got := s.ReadNum("c"); got != -1 {
		t.Fatalf("expected divide-by-near-zero to suppress the write, got %v", got)
	}
}

func TestCountUpAndReset(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{
		{Name: "cnt", Kind: configdoc.KindCounter, PV: 2},
	})
	tab := NewTables(nil)

	CountUp(s, tab, "cnt", true)
	CountUp(s, tab, "cnt", false)
	CountUp(s, tab, "cnt", true)
	if got := s.ReadNum("cnt.CV"); got != 2 {
		t.Fatalf("expected two rising edges to count to 2, got %v", got)
	}
	if !s.ReadBool("cnt.QU") {
		t.Fatal("expected QU once CV reached PV")
	}

	s.WriteBool("cnt.CU", true)
	// Edge state is kept per variable name, shared with CountUp above, so
	// cond has to fall before Reset sees a rising edge.
	Reset(s, tab, "cnt", false)
	Reset(s, tab, "cnt", true)
	if got := s.ReadNum("cnt.CV"); got != 0 {
		t.Fatalf("expected CU-gated reset to zero CV, got %v", got)
	}
}

// TON ANDs its running condition into cond; TOF replaces it — spec.md
// documents this as an asymmetry to preserve, not a bug to fix.
func TestTONAndTOFConditionFoldingAsymmetry(t *testing.T) {
	_, conditionCat, ok := Lookup("OnDelayTimer")
	if !ok || conditionCat != CategoryCondition {
		t.Fatalf("expected OnDelayTimer registered as CategoryCondition, got %v (found=%v)", conditionCat, ok)
	}
	_, replaceCat, ok := Lookup("OffDelayTimer")
	if !ok || replaceCat != CategoryReplace {
		t.Fatalf("expected OffDelayTimer registered as CategoryReplace, got %v (found=%v)", replaceCat, ok)
	}
}

// OnDelayTimer's PT/ET are milliseconds end to end (§3.2); nowUs is a
// microsecond clock, so this pins down the unit conversion between them.
func TestOnDelayTimerElapsesInMilliseconds(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{
		{Name: "ton", Kind: configdoc.KindTimer, PT: 5000}, // 5s
	})
	tab := NewTables(nil)

	var nowUs uint64
	OnDelayTimer(s, tab, "ton", true, nowUs)
	if s.ReadBool("ton.Q") {
		t.Fatal("expected Q to stay false the instant the timer starts")
	}

	// Advance the clock by 4.999s: still short of PT.
	nowUs += 4999 * 1000
	if q := OnDelayTimer(s, tab, "ton", true, nowUs); q {
		t.Fatal("expected Q to stay false 1ms before PT elapses")
	}
	if et := s.ReadNum("ton.ET"); et != 4999 {
		t.Fatalf("expected ET=4999ms after 4999ms elapsed, got %v", et)
	}

	// Advance past PT: 5ms later, 5004ms since start.
	nowUs += 5 * 1000
	if q := OnDelayTimer(s, tab, "ton", true, nowUs); !q {
		t.Fatal("expected Q to latch true once 5000ms have elapsed")
	}
	if et := s.ReadNum("ton.ET"); et != 5000 {
		t.Fatalf("expected ET clamped to PT=5000ms once latched, got %v", et)
	}
}

func TestOffDelayTimerElapsesInMilliseconds(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{
		{Name: "tof", Kind: configdoc.KindTimer, PT: 2000}, // 2s
	})
	tab := NewTables(nil)

	var nowUs uint64
	OffDelayTimer(s, tab, "tof", true, nowUs)
	if !s.ReadBool("tof.Q") {
		t.Fatal("expected Q true immediately while cond is true")
	}

	// cond drops; the off-delay starts counting down from here.
	OffDelayTimer(s, tab, "tof", false, nowUs)
	nowUs += 1500 * 1000
	if q := OffDelayTimer(s, tab, "tof", false, nowUs); !q {
		t.Fatal("expected Q to still be true 1500ms into a 2000ms off-delay")
	}

	nowUs += 600 * 1000 // 2100ms since cond dropped
	if q := OffDelayTimer(s, tab, "tof", false, nowUs); q {
		t.Fatal("expected Q to drop false once 2000ms have elapsed since cond went false")
	}
}

// OneShotPositiveCoil shares the edge table every other edge-gated
// operator uses, so a full table degrades the same way: fail safe to
// false instead of panicking or firing spuriously.
func TestOneShotPositiveCoilDegradesSafelyWhenEdgeTableFull(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{{Name: "pulse", Kind: configdoc.KindBoolean}})
	tab := NewTables(nil)

	for i := 0; i < MaxEdges; i++ {
		tab.edges[string(rune('a'+i%26))+string(rune('0'+i/26))] = &edgeState{}
	}

	OneShotPositiveCoil(s, tab, "pulse", true)
	if s.ReadBool("pulse") {
		t.Fatal("expected a full edge table to keep the coil from firing rather than panic or fire spuriously")
	}
}

func TestOneShotPositiveCoilFiresOnce(t *testing.T) {
	s := newTestStore(t, []configdoc.Variable{{Name: "pulse", Kind: configdoc.KindBoolean}})
	tab := NewTables(nil)

	OneShotPositiveCoil(s, tab, "pulse", true)
	if !s.ReadBool("pulse") {
		t.Fatal("expected first true to pulse the coil on")
	}
	OneShotPositiveCoil(s, tab, "pulse", true)
	if s.ReadBool("pulse") {
		t.Fatal("expected the coil to drop back to false on the second call with cond still true")
	}
}
