package elements

import "laddercore/store"

// CountUp increments v's cv on a rising edge of cond, then refreshes the
// qu/qd flags (§4.B, §3.2 invariant).
func CountUp(s *store.Store, t *Tables, v string, cond bool) {
	if !t.risingEdge(v, cond) {
		return
	}
	s.WriteNum(v+".CV", s.ReadNum(v+".CV")+1)
	refreshCounterFlags(s, v)
}

// CountDown decrements v's cv on a rising edge of cond, then refreshes
// the qu/qd flags.
func CountDown(s *store.Store, t *Tables, v string, cond bool) {
	if !t.risingEdge(v, cond) {
		return
	}
	s.WriteNum(v+".CV", s.ReadNum(v+".CV")-1)
	refreshCounterFlags(s, v)
}

// refreshCounterFlags recomputes qu/qd from the counter's current cv/pv;
// the store itself keeps them in sync on every .CV/.PV write (see
// store.variable.refreshCounterFlags), so this is a defensive re-read
// for callers — counters and Reset share the same invariant.
func refreshCounterFlags(s *store.Store, v string) {
	cv := s.ReadNum(v + ".CV")
	pv := s.ReadNum(v + ".PV")
	s.WriteBool(v+".QU", cv >= pv)
	s.WriteBool(v+".QD", cv <= 0)
}
