package main

// bio-radplex splits a RAD sequencing run into per-sample FASTQ files.
//
// Each fragment is read as a triple of records from the R1, R2 and index-read
// FASTQ files. The P2 tag is taken from the first 7 bases of the index read and
// the P1 tag from the start of R1, where it is followed by the PstI remnant
// TGCAG. Fragments whose P1 and P2 tags both match a library entry are written
// to <prefix>_<P2 letter><P1 number>_R{1,2}.fastq with the P1 tag clipped;
// everything else goes to <prefix>_undetermined_R{1,2}.fastq.
//
// Example:
//
//    bio-radplex -one r1.fq.gz -two r2.fq.gz -index i1.fq.gz -p1 p1.txt -p2 p2.txt -output-prefix run7

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	glog "github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/radplex/adaptor"
	"github.com/grailbio/radplex/demux"
	"github.com/grailbio/radplex/encoding/fastq"
	"v.io/x/lib/cmdline"
)

// Exit statuses.
const (
	exitMissingInput   = 2
	exitMissingAdaptor = 3
	exitBadAdaptor     = 4
	exitUndetermined   = 5
	exitBinOutput      = 6
	exitIO             = 7
)

// Collection of options set via cmdline flags.
type radplexFlags struct {
	inputs [3]string
	p1, p2 string
	opts   demux.Opts
}

// exitError reports err and makes cmdline.Main exit with the given status.
func exitError(code int, err error) error {
	glog.Error.Printf("%v", err)
	return cmdline.ErrExitCode(code)
}

func openInput(ctx context.Context, path string) (file.File, io.Reader, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	return in, r, nil
}

func loadLibrary(ctx context.Context, flags radplexFlags) (*adaptor.Library, error) {
	switch {
	case flags.p1 == "" && flags.p2 == "":
		glog.Printf("No adaptor files given, using the built-in library")
		return adaptor.DefaultLibrary(), nil
	case flags.p1 == "" || flags.p2 == "":
		return nil, exitError(exitMissingAdaptor, fmt.Errorf("-p1 and -p2 must be given together"))
	}
	lib, err := adaptor.LoadLibrary(ctx, flags.p1, flags.p2, flags.opts.MaxAdaptors)
	if err != nil {
		return nil, exitError(exitBadAdaptor, err)
	}
	return lib, nil
}

// radplex runs the demultiplexer. Errors returned are cmdline.ErrExitCode
// values; the cause has already been logged.
func radplex(ctx context.Context, flags radplexFlags) error {
	for i, name := range []string{"one", "two", "index"} {
		if flags.inputs[i] == "" {
			return exitError(exitMissingInput, fmt.Errorf("-%s is required: R1, R2 and index FASTQ files must all be given", name))
		}
	}
	lib, err := loadLibrary(ctx, flags)
	if err != nil {
		return err
	}
	lib.Log()

	var (
		files   [3]file.File
		readers [3]io.Reader
	)
	defer func() {
		for i, f := range files {
			if f == nil {
				continue
			}
			if err := f.Close(ctx); err != nil {
				glog.Error.Printf("close %s: %v", flags.inputs[i], err)
			}
		}
	}()
	for i, path := range flags.inputs {
		if files[i], readers[i], err = openInput(ctx, path); err != nil {
			return exitError(exitIO, errors.E(err, "open", path))
		}
	}

	router := demux.NewRouter(lib, flags.opts)
	if err := router.Open(ctx); err != nil {
		return exitError(exitUndetermined, err)
	}
	sc := fastq.NewTripleScanner(readers[0], readers[1], readers[2], fastq.All)
	counters, err := router.Run(ctx, sc)
	if err != nil {
		if _, ok := err.(*demux.OutputError); ok {
			return exitError(exitBinOutput, err)
		}
		return exitError(exitIO, err)
	}
	if err := router.Close(ctx); err != nil {
		return exitError(exitIO, err)
	}
	if err := router.WriteReports(ctx); err != nil {
		return exitError(exitIO, err)
	}
	for _, b := range router.Bins() {
		glog.Printf("%s: %d read pairs in %s and %s", b.Key.Name(), counters.Bins[b.Key], b.Paths[0], b.Paths[1])
	}
	demux.LogSummary(counters)
	glog.Printf("Done")
	return nil
}

func newCmdRadplex() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "bio-radplex",
		Short: "Demultiplex RAD sequencing runs",
		Long: `
bio-radplex assigns each read triple (R1, R2, index read) to the bin of its P1
and P2 tags. P1 tags are matched at the start of R1, P2 tags at the start of
the index read. Without -p1/-p2 a built-in library is used.`,
		LookPath: false,
	}
	flags := radplexFlags{opts: demux.DefaultOpts}
	cmd.Flags.StringVar(&flags.inputs[0], "one", "", "FASTQ file with R1 reads.")
	cmd.Flags.StringVar(&flags.inputs[1], "two", "", "FASTQ file with R2 reads.")
	cmd.Flags.StringVar(&flags.inputs[2], "index", "", "FASTQ file with index reads.")
	cmd.Flags.StringVar(&flags.p1, "p1", "", "P1 adaptor file, one tag per line. The TGCAG motif is appended to every tag.")
	cmd.Flags.StringVar(&flags.p2, "p2", "", "P2 adaptor file, one tag per line.")
	cmd.Flags.IntVar(&flags.opts.MaxMismatches, "mismatches", demux.DefaultOpts.MaxMismatches, "Number of allowed mismatches.")
	cmd.Flags.StringVar(&flags.opts.OutputPrefix, "output-prefix", demux.DefaultOpts.OutputPrefix, "Output filename prefix.")
	cmd.Flags.BoolVar(&flags.opts.KeepMotif, "keep-motif", demux.DefaultOpts.KeepMotif, "Clip only the P1 tag, keeping the restriction motif in R1.")
	cmd.Flags.BoolVar(&flags.opts.Compress, "compress", demux.DefaultOpts.Compress, "Write gzip-compressed FASTQ outputs.")
	cmd.Flags.IntVar(&flags.opts.MaxAdaptors, "max-adaptors", demux.DefaultOpts.MaxAdaptors, "Maximum number of adaptors per family in the adaptor files.")
	cmd.Flags.BoolVar(&flags.opts.Verbose, "verbose", false, "Log every read triple.")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return env.UsageErrorf("unexpected arguments %v", argv)
		}
		return radplex(vcontext.Background(), flags)
	})
	return cmd
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newCmdRadplex())
}
