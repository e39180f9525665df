package elements

import (
	"laddercore/configdoc"
	"laddercore/store"
)

// Reset clears a Counter or Timer variable on a rising edge of cond
// (§4.B). The variable's own kind (not its dotted-suffix readback, which
// is ambiguous between "false" and "not this kind of field") decides
// which shape of reset to apply.
func Reset(s *store.Store, t *Tables, v string, cond bool) {
	if !t.risingEdge(v, cond) {
		return
	}

	h, ok := s.Find(v)
	if !ok {
		return
	}

	switch h.Kind() {
	case configdoc.KindCounter:
		if s.ReadBool(v + ".CU") {
			s.WriteNum(v+".CV", 0)
		}
		if s.ReadBool(v + ".CD") {
			s.WriteNum(v+".CV", s.ReadNum(v+".PV"))
		}
		refreshCounterFlags(s, v)

	case configdoc.KindTimer:
		s.WriteNum(v+".ET", 0)
		s.WriteBool(v+".Q", false)
		s.WriteBool(v+".IN", false)
		if r, ok := t.timers[v]; ok {
			r.running = false
			r.startUs = 0
		}
	}
}
