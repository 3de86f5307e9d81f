package demux

import (
	"context"
	"hash"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/radplex/adaptor"
	"github.com/grailbio/radplex/encoding/fastq"
	"github.com/grailbio/radplex/indexhash"
)

// Classification is the outcome of tag detection for one read triple.
type Classification struct {
	// P1 and P2 are library indices, or adaptor.NoMatch.
	P1, P2 int
	// P1Tag and P2Tag are the tag bases observed in the reads. P1Tag is
	// set when P1 matched, or when the restriction motif was found without a
	// library match; it is empty otherwise.
	P1Tag, P2Tag string
	// Clip is the number of bases to remove from the start of R1.
	Clip int
}

// Binned reports whether both tags matched library entries.
func (c Classification) Binned() bool {
	return c.P1 != adaptor.NoMatch && c.P2 != adaptor.NoMatch
}

// Key returns the bin of a binned classification.
func (c Classification) Key() BinKey { return BinKey{P1: c.P1, P2: c.P2} }

// Router classifies read triples and writes them to bins.
type Router struct {
	matcher adaptor.Matcher
	opts    Opts
	out     outputs
	tracker Tracker
	c       RunCounters
	h       hash.Hash64
}

// NewRouter creates a router over the given library. No files are created
// until Open is called.
func NewRouter(lib *adaptor.Library, opts Opts) *Router {
	return &Router{
		matcher: adaptor.Matcher{Library: lib, MaxMismatches: opts.MaxMismatches},
		opts:    opts,
		out:     outputs{prefix: opts.OutputPrefix, compress: opts.Compress},
		c:       RunCounters{Bins: map[BinKey]int64{}},
		h:       seahash.New(),
	}
}

// Open creates the undetermined outputs. It returns an *OutputError if they
// cannot be created.
func (r *Router) Open(ctx context.Context) error {
	return r.out.openUndetermined(ctx)
}

// Classify finds the P1 tag at the start of r1Seq and the P2 tag at the start
// of indexSeq. It has no side effects.
func (r *Router) Classify(r1Seq, indexSeq string) Classification {
	c := Classification{P1: adaptor.NoMatch, P2: adaptor.NoMatch}
	c.P2Tag = adaptor.P2Fragment(indexSeq)
	c.P2 = r.matcher.Match(c.P2Tag, adaptor.P2)

	if c.P1 = r.matcher.Match(r1Seq, adaptor.P1); c.P1 != adaptor.NoMatch {
		n := len(r.matcher.Library.Adaptor(adaptor.P1, c.P1))
		tagLen := clamp(n-adaptor.MotifLen, 0, len(r1Seq))
		c.P1Tag = r1Seq[:tagLen]
		c.Clip = n
		if r.opts.KeepMotif {
			c.Clip = tagLen
		}
		c.Clip = clamp(c.Clip, 0, len(r1Seq))
	} else if tag, ok := r.matcher.DetectByMotif(r1Seq); ok {
		// Motif-detected tags are never looked up in the library.
		c.P1Tag = tag
	}
	return c
}

// Process classifies one triple, writes it to its bin or to the undetermined
// outputs, and updates the counters. r1 is not modified.
func (r *Router) Process(ctx context.Context, r1, r2, index *fastq.Read) (Classification, error) {
	if r.out.undetermined[0] == nil {
		return Classification{}, errors.E("router used before Open")
	}
	c := r.Classify(r1.Seq, index.Seq)
	out := r.out.undetermined
	name := "undetermined"
	if c.Binned() {
		b, err := r.out.bin(ctx, c.Key())
		if err != nil {
			return c, err
		}
		out = b.out
		name = c.Key().Name()
	}

	clipped := *r1
	clipped.ID = r1.ID + " " + c.P1Tag + ":" + c.P2Tag
	clipped.Clip(c.Clip)
	if err := out.write(&clipped, r2); err != nil {
		return c, err
	}
	if c.Binned() {
		r.c.Bins[c.Key()]++
	} else {
		r.record(adaptor.P1, c.P1Tag)
		r.record(adaptor.P2, c.P2Tag)
		r.c.Undetermined++
	}
	r.c.Total++
	r.h.Write([]byte(r1.ID))
	r.h.Write([]byte{'\t'})
	r.h.Write([]byte(name))
	r.h.Write([]byte{'\n'})
	if r.opts.Verbose {
		log.Printf("Triple %d: %s\n    Read 1: %s\n    Read 2: %s\n    P1 %q P2 %q -> %s (clip %d)",
			r.c.Total, r1.ID, r1.Seq, r2.Seq, c.P1Tag, c.P2Tag, name, c.Clip)
	}
	return c, nil
}

// record adds an undetermined candidate to the frequency table.
func (r *Router) record(f adaptor.Family, candidate string) {
	if candidate == "" {
		return
	}
	if len(candidate) > indexhash.MaxLen {
		log.Debug.Printf("%v candidate %s is too long to track", f, candidate)
		r.c.Untracked[f]++
		return
	}
	r.tracker.Record(f, indexhash.Clean(candidate))
}

// Run processes every triple in sc. A malformed or truncated record ends the
// run without error after logging it; the incomplete triple is not written.
func (r *Router) Run(ctx context.Context, sc *fastq.TripleScanner) (RunCounters, error) {
	var r1, r2, index fastq.Read
	for sc.Scan(&r1, &r2, &index) {
		if _, err := r.Process(ctx, &r1, &r2, &index); err != nil {
			return r.Counters(), err
		}
		if r.c.Total%(1024*1024) == 0 {
			log.Printf("%dMi read triples", r.c.Total/(1024*1024))
		}
	}
	if err := sc.Err(); err != nil {
		if !fastq.IsTruncation(err) {
			return r.Counters(), errors.E(err, "read input")
		}
		log.Error.Printf("stopping after %d complete read triples: %v", sc.N(), err)
	}
	log.Printf("Processed %d read triples", r.c.Total)
	return r.Counters(), nil
}

// Counters returns a snapshot of the run counters.
func (r *Router) Counters() RunCounters {
	c := r.c.clone()
	c.Checksum = r.h.Sum64()
	return c
}

// Tracker returns the undetermined-tag frequency tables.
func (r *Router) Tracker() *Tracker { return &r.tracker }

// Bins returns the bins created so far, sorted by key.
func (r *Router) Bins() []*Bin {
	var bins []*Bin
	for _, k := range r.c.Keys() {
		if b, ok := r.out.bins[k]; ok {
			bins = append(bins, b)
		}
	}
	return bins
}

// Close flushes and closes all outputs. It must be called once, after the last
// call to Process.
func (r *Router) Close(ctx context.Context) error {
	return r.out.close(ctx)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
