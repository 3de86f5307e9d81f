package adaptor

import "github.com/grailbio/radplex/util"

// NoMatch is returned by Matcher.Match when no tag is within the mismatch
// threshold.
const NoMatch = -1

const (
	minTagLen = 4
	maxTagLen = 7
)

// Matcher finds library tags in read fragments, allowing up to MaxMismatches
// differing bases per tag.
type Matcher struct {
	Library       *Library
	MaxMismatches int
}

// Match returns the index of the first tag of the family whose bases match
// the start of fragment with at most MaxMismatches mismatches, or NoMatch.
// The first qualifying tag wins even if a later tag matches better. A tag
// longer than fragment never matches.
func (m Matcher) Match(fragment string, f Family) int {
	for i, tag := range m.Library.tags[f] {
		if util.HasPrefixWithin(fragment, tag, m.MaxMismatches) {
			return i
		}
	}
	return NoMatch
}

// DetectByMotif looks for the restriction motif after a P1 tag of 4 to 7
// bases and returns the bases preceding it. When the motif is found at more
// than one offset the longest tag is returned. The tag is not looked up in
// the library.
func (m Matcher) DetectByMotif(seq string) (tag string, ok bool) {
	for o := minTagLen; o <= maxTagLen; o++ {
		if util.HasPrefixWithin(seq[min(o, len(seq)):], Motif, m.MaxMismatches) {
			tag, ok = seq[:o], true
		}
	}
	return tag, ok
}

// P2Fragment returns the index-read bases compared against P2 tags.
func P2Fragment(indexSeq string) string {
	return indexSeq[:min(P2Len, len(indexSeq))]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
