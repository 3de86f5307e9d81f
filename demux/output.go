package demux

import (
	"context"
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/radplex/encoding/fastq"
	"github.com/klauspost/compress/gzip"
)

// OutputError is returned when an output file cannot be created.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("create %s: %v", e.Path, e.Err)
}

// stream is one FASTQ output file.
type stream struct {
	path string
	out  file.File
	gz   *gzip.Writer
	w    *fastq.Writer
}

func createStream(ctx context.Context, path string, compress bool) (*stream, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, &OutputError{Path: path, Err: err}
	}
	s := &stream{path: path, out: out}
	if compress {
		s.gz = gzip.NewWriter(out.Writer(ctx))
		s.w = fastq.NewWriter(s.gz)
	} else {
		s.w = fastq.NewWriter(out.Writer(ctx))
	}
	return s, nil
}

func (s *stream) write(r *fastq.Read) error {
	if err := s.w.Write(r); err != nil {
		return errors.E(err, "write", s.path)
	}
	return nil
}

func (s *stream) close(ctx context.Context) error {
	once := errors.Once{}
	once.Set(s.w.Flush())
	if s.gz != nil {
		once.Set(s.gz.Close())
	}
	once.Set(s.out.Close(ctx))
	if err := once.Err(); err != nil {
		return errors.E(err, "close", s.path)
	}
	log.Debug.Printf("Wrote %d reads to %s", s.w.N(), s.path)
	return nil
}

// pair is the R1 and R2 output of a bin or of the undetermined reads.
type pair [2]*stream

func createPair(ctx context.Context, paths [2]string, compress bool) (pair, error) {
	var p pair
	for i, path := range paths {
		s, err := createStream(ctx, path, compress)
		if err != nil {
			if i > 0 {
				p[0].close(ctx)
			}
			return pair{}, err
		}
		p[i] = s
	}
	return p, nil
}

func (p pair) write(r1, r2 *fastq.Read) error {
	if err := p[0].write(r1); err != nil {
		return err
	}
	return p[1].write(r2)
}

func (p pair) close(ctx context.Context) error {
	once := errors.Once{}
	for _, s := range p {
		if s != nil {
			once.Set(s.close(ctx))
		}
	}
	return once.Err()
}

// Bin is the output of one (P1, P2) tag combination.
type Bin struct {
	Key   BinKey
	Paths [2]string
	out   pair
}

// outputs owns every file written by a router.
type outputs struct {
	prefix       string
	compress     bool
	undetermined pair
	bins         map[BinKey]*Bin
}

func (o *outputs) path(label string, mate int) string {
	p := fmt.Sprintf("%s_%s_R%d.fastq", o.prefix, label, mate)
	if o.compress {
		p += ".gz"
	}
	return p
}

// binPaths returns the R1 and R2 file names of the bin.
func (o *outputs) binPaths(k BinKey) [2]string {
	return [2]string{o.path(k.Name(), 1), o.path(k.Name(), 2)}
}

func (o *outputs) undeterminedPaths() [2]string {
	return [2]string{o.path("undetermined", 1), o.path("undetermined", 2)}
}

func (o *outputs) openUndetermined(ctx context.Context) error {
	if o.undetermined[0] != nil {
		return nil
	}
	p, err := createPair(ctx, o.undeterminedPaths(), o.compress)
	if err != nil {
		return err
	}
	o.undetermined = p
	return nil
}

// bin returns the bin for k, creating its files on first use.
func (o *outputs) bin(ctx context.Context, k BinKey) (*Bin, error) {
	if b, ok := o.bins[k]; ok {
		return b, nil
	}
	paths := o.binPaths(k)
	p, err := createPair(ctx, paths, o.compress)
	if err != nil {
		return nil, err
	}
	b := &Bin{Key: k, Paths: paths, out: p}
	if o.bins == nil {
		o.bins = map[BinKey]*Bin{}
	}
	o.bins[k] = b
	log.Printf("Created %s and %s", paths[0], paths[1])
	return b, nil
}

// close flushes and closes the undetermined outputs, then every bin in key
// order.
func (o *outputs) close(ctx context.Context) error {
	once := errors.Once{}
	once.Set(o.undetermined.close(ctx))
	o.undetermined = pair{}
	keys := make([]BinKey, 0, len(o.bins))
	for k := range o.bins {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, k := range keys {
		b := o.bins[k]
		once.Set(b.out.close(ctx))
		b.out = pair{}
	}
	return once.Err()
}
