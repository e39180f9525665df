package store

import "strings"

// splitDotted separates a lookup key into its base variable name and an
// optional recognized sub-field suffix (§4.A: ".CU .CD .QU .QD .IN .Q" for
// booleans, ".PV .CV .PT .ET" for numerics). A dot that doesn't match one
// of the recognized suffixes is treated as part of the name itself, which
// keeps §4.A's "bare names address the primary scalar" compatible with the
// rare variable name that happens to contain a dot. A key whose last
// dot-segment is a recognized suffix is always split; the full key is not
// tried as a variable name first.
func splitDotted(key string) (base, suffix string, hasSuffix bool) {
	i := strings.LastIndexByte(key, '.')
	if i < 0 {
		return key, "", false
	}
	suffix = key[i+1:]
	if !boolSuffixes[suffix] && !numSuffixes[suffix] {
		return key, "", false
	}
	return key[:i], suffix, true
}

var boolSuffixes = map[string]bool{
	"CU": true, "CD": true, "QU": true, "QD": true, "IN": true, "Q": true,
}

var numSuffixes = map[string]bool{
	"PV": true, "CV": true, "PT": true, "ET": true,
}
