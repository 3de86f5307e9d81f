package demux

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/radplex/adaptor"
)

// WriteSummary writes per-bin read counts and percentages of the total, then
// the undetermined and total counts, as TSV.
func WriteSummary(w io.Writer, c RunCounters) error {
	out := tsv.NewWriter(w)
	out.WriteString("BIN\tP1\tP2\tREADS\tPERCENT")
	if err := out.EndLine(); err != nil {
		return err
	}
	row := func(name, p1, p2 string, n int64) error {
		out.WriteString(name)
		out.WriteString(p1)
		out.WriteString(p2)
		out.WriteInt64(n)
		out.WriteString(strconv.FormatFloat(c.Percent(n), 'f', 2, 64))
		return out.EndLine()
	}
	for _, k := range c.Keys() {
		if err := row(k.Name(), adaptor.P1Label(k.P1), adaptor.P2Label(k.P2), c.Bins[k]); err != nil {
			return err
		}
	}
	if err := row("undetermined", "-", "-", c.Undetermined); err != nil {
		return err
	}
	if err := row("total", "-", "-", c.Total); err != nil {
		return err
	}
	return out.Flush()
}

// WriteFrequencies writes one "SEQ\tCOUNT" line per entry.
func WriteFrequencies(w io.Writer, entries []FrequencyEntry) error {
	out := tsv.NewWriter(w)
	for _, e := range entries {
		out.WriteString(e.Seq)
		out.WriteInt64(int64(e.Count))
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

// LogSummary prints the run summary through the logger.
func LogSummary(c RunCounters) {
	for _, k := range c.Keys() {
		log.Printf("%4s: %10d (%6.2f%%)", k.Name(), c.Bins[k], c.Percent(c.Bins[k]))
	}
	log.Printf("Undetermined: %d (%.2f%%)", c.Undetermined, c.Percent(c.Undetermined))
	log.Printf("Total: %d", c.Total)
	for f := adaptor.P1; f <= adaptor.P2; f++ {
		if c.Untracked[f] > 0 {
			log.Printf("%d undetermined %v candidates were too long to count", c.Untracked[f], f)
		}
	}
	log.Printf("Checksum: %016x", c.Checksum)
}

// SummaryPath returns the run summary file name for the prefix.
func SummaryPath(prefix string) string { return prefix + "_summary.tsv" }

// FrequencyPath returns the undetermined-tag report file name of the family.
func FrequencyPath(prefix string, f adaptor.Family) string {
	return fmt.Sprintf("%s_undetermined_%v.tsv", prefix, f)
}

// WriteReports writes the run summary and the two undetermined-tag frequency
// tables next to the FASTQ outputs.
func (r *Router) WriteReports(ctx context.Context) error {
	prefix := r.opts.OutputPrefix
	c := r.Counters()
	if err := writeFile(ctx, SummaryPath(prefix), func(w io.Writer) error {
		return WriteSummary(w, c)
	}); err != nil {
		return err
	}
	for f := adaptor.P1; f <= adaptor.P2; f++ {
		entries := r.tracker.Entries(f)
		path := FrequencyPath(prefix, f)
		if err := writeFile(ctx, path, func(w io.Writer) error {
			return WriteFrequencies(w, entries)
		}); err != nil {
			return err
		}
		log.Printf("Wrote %d undetermined %v tags to %s", len(entries), f, path)
	}
	return nil
}

func writeFile(ctx context.Context, path string, fn func(w io.Writer) error) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return &OutputError{Path: path, Err: err}
	}
	once := errors.Once{}
	once.Set(fn(out.Writer(ctx)))
	once.Set(out.Close(ctx))
	if err := once.Err(); err != nil {
		return errors.E(err, "write", path)
	}
	return nil
}
