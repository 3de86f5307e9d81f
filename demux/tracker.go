package demux

import (
	"github.com/grailbio/radplex/adaptor"
	"github.com/grailbio/radplex/indexhash"
)

// FrequencyEntry is one row of an undetermined-tag frequency table.
type FrequencyEntry struct {
	Seq   string
	Count uint64
}

// Tracker counts the candidate tags seen in undetermined triples, one table
// per family. Each table is a dense array over indexhash codes, allocated when
// the first candidate of that family is recorded.
type Tracker struct {
	counts [2][]uint64
	total  [2]uint64
}

// Record counts one occurrence of candidate. An empty candidate is ignored.
// Candidate must be encodable by indexhash; anything else crashes the process.
func (t *Tracker) Record(f adaptor.Family, candidate string) {
	if candidate == "" {
		return
	}
	c := indexhash.MustEncode(candidate)
	if t.counts[f] == nil {
		t.counts[f] = make([]uint64, indexhash.Size)
	}
	t.counts[f][c]++
	t.total[f]++
}

// Total returns the number of candidates recorded for the family.
func (t *Tracker) Total(f adaptor.Family) uint64 { return t.total[f] }

// Entries lists the recorded candidates of the family with their counts, in
// ascending code order.
func (t *Tracker) Entries(f adaptor.Family) []FrequencyEntry {
	var entries []FrequencyEntry
	for c, n := range t.counts[f] {
		if n > 0 {
			entries = append(entries, FrequencyEntry{indexhash.Decode(indexhash.Code(c)), n})
		}
	}
	return entries
}
