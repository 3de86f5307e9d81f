package demux

import (
	"fmt"
	"sort"

	"github.com/grailbio/radplex/adaptor"
)

// BinKey identifies a bin by the library indices of its P1 and P2 tags.
type BinKey struct {
	P1, P2 int
}

// Name returns the bin's display name, the P2 letter followed by the P1
// number, e.g. "A1".
func (k BinKey) Name() string {
	return adaptor.P2Label(k.P2) + adaptor.P1Label(k.P1)
}

// Less orders bins by P2, then P1.
func (k BinKey) Less(o BinKey) bool {
	if k.P2 != o.P2 {
		return k.P2 < o.P2
	}
	return k.P1 < o.P1
}

// RunCounters summarizes a run.
//
// INVARIANT: the sum of Bins plus Undetermined equals Total.
type RunCounters struct {
	// Total is the number of read triples processed.
	Total int64
	// Undetermined is the number of triples that were not binned.
	Undetermined int64
	// Bins holds the number of triples written to each bin.
	Bins map[BinKey]int64
	// Untracked counts, per family, undetermined candidates too long to be
	// entered in the frequency table.
	Untracked [2]int64
	// Checksum is a hash of the sequence of (read name, bin) assignments. Two
	// runs over the same input and options produce the same checksum.
	Checksum uint64
}

// Keys returns the keys of all non-empty bins, sorted by BinKey.Less.
func (c RunCounters) Keys() []BinKey {
	keys := make([]BinKey, 0, len(c.Bins))
	for k := range c.Bins {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Percent returns n as a percentage of Total.
func (c RunCounters) Percent(n int64) float64 {
	if c.Total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(c.Total)
}

func (c RunCounters) String() string {
	return fmt.Sprintf("total: %d, binned: %d in %d bins, undetermined: %d (%.2f%%)",
		c.Total, c.Total-c.Undetermined, len(c.Bins), c.Undetermined, c.Percent(c.Undetermined))
}

func (c RunCounters) clone() RunCounters {
	bins := make(map[BinKey]int64, len(c.Bins))
	for k, n := range c.Bins {
		bins[k] = n
	}
	c.Bins = bins
	return c
}
