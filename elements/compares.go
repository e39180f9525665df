package elements

import "laddercore/store"

// Greater, Less, GreaterOrEqual, LessOrEqual, Equal, and NotEqual compare
// read_num(a) against read_num(b) (§4.B). They are combinational: no
// edge or timer state involved.

func Greater(s *store.Store, a, b string) bool {
	return s.ReadNum(a) > s.ReadNum(b)
}

func Less(s *store.Store, a, b string) bool {
	return s.ReadNum(a) < s.ReadNum(b)
}

func GreaterOrEqual(s *store.Store, a, b string) bool {
	return s.ReadNum(a) >= s.ReadNum(b)
}

func LessOrEqual(s *store.Store, a, b string) bool {
	return s.ReadNum(a) <= s.ReadNum(b)
}

func Equal(s *store.Store, a, b string) bool {
	return s.ReadNum(a) == s.ReadNum(b)
}

func NotEqual(s *store.Store, a, b string) bool {
	return s.ReadNum(a) != s.ReadNum(b)
}
