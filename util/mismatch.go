// Package util holds small sequence helpers shared by the radplex packages.
package util

// Mismatches returns the number of positions in [0, n) at which a and b
// differ, ignoring ASCII case. Both a and b must hold at least n bytes;
// callers check lengths before comparing a fragment against an adaptor.
func Mismatches(a, b string, n int) int {
	a, b = a[:n], b[:n]
	d := 0
	for i := 0; i < n; i++ {
		if lower(a[i]) != lower(b[i]) {
			d++
		}
	}
	return d
}

// HasPrefixWithin reports whether the first len(prefix) bytes of s differ from
// prefix in at most maxMismatches positions. It returns false when s is
// shorter than prefix.
func HasPrefixWithin(s, prefix string, maxMismatches int) bool {
	if len(s) < len(prefix) {
		return false
	}
	return Mismatches(s, prefix, len(prefix)) <= maxMismatches
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
