package elements

import "laddercore/store"

// Coil writes c straight through to v (§4.B). It is a sink: the engine
// invokes it once per scan with the series' final running condition,
// never folds its result back into cond.
func Coil(s *store.Store, t *Tables, v string, c bool) {
	s.WriteBool(v, c)
}

// OneShotPositiveCoil writes c AND NOT prev[v], then updates prev[v] := c.
// The first invocation of a given v treats prev as false, which Tables'
// lazy allocation gives for free. Edge tracking goes through
// t.risingEdge, the same edge table every other edge-gated operator
// shares, so a full table degrades identically: logged and dropped to
// false, not silently dropped (§7).
func OneShotPositiveCoil(s *store.Store, t *Tables, v string, c bool) {
	s.WriteBool(v, t.risingEdge(v, c))
}

// SetCoil writes true to v only when c is true; otherwise a no-op.
func SetCoil(s *store.Store, t *Tables, v string, c bool) {
	if c {
		s.WriteBool(v, true)
	}
}

// ResetCoil writes false to v only when c is true; otherwise a no-op.
func ResetCoil(s *store.Store, t *Tables, v string, c bool) {
	if c {
		s.WriteBool(v, false)
	}
}
