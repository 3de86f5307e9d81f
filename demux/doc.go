// Package demux routes RAD sequencing read triples to per-sample bins.
//
// Each triple consists of R1, R2 and an index read. The P2 tag is the start of
// the index read; the P1 tag is the start of R1, followed by the restriction
// motif. A triple whose P1 and P2 tags both match library entries is written
// to the bin for that (P1, P2) pair, with the P1 tag clipped from R1. All other
// triples go to the undetermined outputs, and their candidate tags are counted
// so that unexpected barcodes can be reported at the end of the run.
//
// Bins are created on first use and stay open until Router.Close. A Router is
// not safe for concurrent use.
package demux
