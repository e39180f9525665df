package elements

import (
	"laddercore/errcode"
	"laddercore/store"
)

// divideSuppressThreshold is the |b| floor below which DivideMath
// suppresses its write rather than dividing by a near-zero value (§4.B).
const divideSuppressThreshold = 1e-6

// AddMath writes read_num(a)+read_num(b) into c when cond rises,
// gated by an edge tracked on c's name (§4.B).
func AddMath(s *store.Store, t *Tables, a, b, c string, cond bool) {
	if !t.risingEdge(c, cond) {
		return
	}
	s.WriteNum(c, s.ReadNum(a)+s.ReadNum(b))
}

// SubtractMath writes read_num(a)-read_num(b) into c when cond rises.
func SubtractMath(s *store.Store, t *Tables, a, b, c string, cond bool) {
	if !t.risingEdge(c, cond) {
		return
	}
	s.WriteNum(c, s.ReadNum(a)-s.ReadNum(b))
}

// MultiplyMath writes read_num(a)*read_num(b) into c when cond rises.
func MultiplyMath(s *store.Store, t *Tables, a, b, c string, cond bool) {
	if !t.risingEdge(c, cond) {
		return
	}
	s.WriteNum(c, s.ReadNum(a)*s.ReadNum(b))
}

// DivideMath writes read_num(a)/read_num(b) into c when cond rises,
// unless |b| is below divideSuppressThreshold, in which case the write
// is suppressed and logged rather than producing Inf/NaN.
func DivideMath(s *store.Store, t *Tables, a, b, c string, cond bool) {
	if !t.risingEdge(c, cond) {
		return
	}
	bv := s.ReadNum(b)
	if bv < 0 {
		bv = -bv
	}
	if bv < divideSuppressThreshold {
		t.log.WithError(errcode.New(errcode.DivisionSuppressed, "elements.DivideMath", c, nil)).
			Warn("divisor too close to zero, write suppressed")
		return
	}
	s.WriteNum(c, s.ReadNum(a)/s.ReadNum(b))
}

// MoveMath copies read_num(a) into b on every call, unconditionally.
// cond is accepted only to match the other math operators' call shape —
// it is ignored, matching the observed behavior (§4.B, §9 open question).
func MoveMath(s *store.Store, t *Tables, a, b string, cond bool) {
	s.WriteNum(b, s.ReadNum(a))
}
