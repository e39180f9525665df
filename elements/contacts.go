package elements

import "laddercore/store"

// NOContact returns not read_bool(a). This is inverted from the
// conventional PLC reading of a normally-open contact; it reproduces the
// observed behavior exactly rather than the textbook one (§4.B, §9 open
// question) — do not "fix" this to match ladder-logic convention.
func NOContact(s *store.Store, a string) bool {
	return !s.ReadBool(a)
}

// NCContact returns read_bool(a), the mirror of NOContact's inversion.
func NCContact(s *store.Store, a string) bool {
	return s.ReadBool(a)
}
