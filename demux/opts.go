package demux

import "github.com/grailbio/radplex/adaptor"

// Opts controls classification and output.
type Opts struct {
	// MaxMismatches is the number of differing bases allowed when comparing a
	// tag or the restriction motif against a read.
	MaxMismatches int
	// OutputPrefix is prepended to every output file name.
	OutputPrefix string
	// KeepMotif leaves the restriction motif at the start of clipped R1 reads.
	KeepMotif bool
	// Compress writes gzip-compressed outputs, with a ".gz" suffix.
	Compress bool
	// MaxAdaptors caps the number of tags in each library family. Zero means
	// no limit.
	MaxAdaptors int
	// Verbose logs every triple and its classification.
	Verbose bool
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	MaxMismatches: 1,
	OutputPrefix:  "RADplex_output",
	MaxAdaptors:   adaptor.DefaultMaxAdaptors,
}
