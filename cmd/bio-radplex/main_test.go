package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/radplex/demux"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"v.io/x/lib/cmdline"
)

type triple struct {
	id, r1, r2, index string
}

func fastqText(triples []triple, mate int) string {
	var b strings.Builder
	for _, tr := range triples {
		seq := [3]string{tr.r1, tr.r2, tr.index}[mate]
		b.WriteString("@" + tr.id + "\n" + seq + "\n+\n" + strings.Repeat("I", len(seq)) + "\n")
	}
	return b.String()
}

func writeFile(t *testing.T, path, data string) {
	if strings.HasSuffix(path, ".gz") {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		_, err := w.Write([]byte(data))
		assert.NoError(t, err)
		assert.NoError(t, w.Close())
		data = buf.String()
	}
	assert.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
}

func readFile(t *testing.T, path string) string {
	data, err := ioutil.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

// writeInputs writes the three FASTQ inputs into dir. The R2 file is
// gzip-compressed.
func writeInputs(t *testing.T, dir string, triples []triple) [3]string {
	paths := [3]string{
		filepath.Join(dir, "r1.fastq"),
		filepath.Join(dir, "r2.fastq.gz"),
		filepath.Join(dir, "i1.fastq"),
	}
	for mate, path := range paths {
		writeFile(t, path, fastqText(triples, mate))
	}
	return paths
}

func newFlags(inputs [3]string, prefix string) radplexFlags {
	flags := radplexFlags{inputs: inputs, opts: demux.DefaultOpts}
	flags.opts.OutputPrefix = prefix
	return flags
}

func TestDefaultLibrary(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	inputs := writeInputs(t, dir, []triple{
		{"r0", "TGAGTGCAGAAAACCCC", "GATTACA", "AATAGTTNN"},
		{"r1", "GGGGGGGGGGGGGGGGG", "CATCATC", "CCCCCCCCC"},
	})
	prefix := filepath.Join(dir, "out")
	assert.NoError(t, radplex(vcontext.Background(), newFlags(inputs, prefix)))

	expect.EQ(t, readFile(t, prefix+"_A1_R1.fastq"), "@r0 TGAG:AATAGTT\nAAAACCCC\n+\nIIIIIIII\n")
	expect.EQ(t, readFile(t, prefix+"_A1_R2.fastq"), "@r0\nGATTACA\n+\nIIIIIII\n")
	expect.EQ(t, readFile(t, prefix+"_undetermined_R2.fastq"), "@r1\nCATCATC\n+\nIIIIIII\n")
	expect.EQ(t, readFile(t, prefix+"_undetermined_P2.tsv"), "CCCCCCC\t1\n")
	expect.EQ(t, readFile(t, prefix+"_summary.tsv"),
		"BIN\tP1\tP2\tREADS\tPERCENT\n"+
			"A1\t1\tA\t1\t50.00\n"+
			"undetermined\t-\t-\t1\t50.00\n"+
			"total\t-\t-\t2\t100.00\n")
	_, err := os.Stat(prefix + "_A2_R1.fastq")
	expect.True(t, os.IsNotExist(err))
}

func TestAdaptorFiles(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	inputs := writeInputs(t, dir, []triple{
		{"r0", "ACGTTGCAGTTTT", "GATTACA", "GGGGGGGAA"},
		{"r1", "CCGTTGCAGTTTT", "GATTACA", "TTTTTTTAA"},
	})
	p1 := filepath.Join(dir, "p1.txt")
	p2 := filepath.Join(dir, "p2.txt")
	writeFile(t, p1, "TTTT\nACGT\n\n")
	writeFile(t, p2, "GGGGGGG\r\n")

	flags := newFlags(inputs, filepath.Join(dir, "out"))
	flags.p1, flags.p2 = p1, p2
	flags.opts.MaxMismatches = 0
	flags.opts.KeepMotif = true
	flags.opts.Compress = true
	assert.NoError(t, radplex(vcontext.Background(), flags))

	f, err := os.Open(flags.opts.OutputPrefix + "_A2_R1.fastq.gz")
	assert.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	assert.NoError(t, err)
	data, err := ioutil.ReadAll(gz)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "@r0 ACGT:GGGGGGG\nTGCAGTTTT\n+\nIIIIIIIII\n")
	expect.EQ(t, readFile(t, flags.opts.OutputPrefix+"_undetermined_P1.tsv"), "CCGT\t1\n")
}

func TestExitCodes(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	inputs := writeInputs(t, dir, []triple{{"r0", "TGAGTGCAGAAAA", "GATTACA", "AATAGTTNN"}})
	p1 := filepath.Join(dir, "p1.txt")
	writeFile(t, p1, "ACGT\nTTTT\n")
	blocker := filepath.Join(dir, "blocker")
	writeFile(t, blocker, "")
	prefix := filepath.Join(dir, "out")

	tests := []struct {
		name   string
		update func(*radplexFlags)
		code   int
	}{
		{"missing index", func(f *radplexFlags) { f.inputs[2] = "" }, exitMissingInput},
		{"missing p2", func(f *radplexFlags) { f.p1 = p1 }, exitMissingAdaptor},
		{"unreadable p2", func(f *radplexFlags) { f.p1, f.p2 = p1, filepath.Join(dir, "nonexistent") }, exitBadAdaptor},
		{"too many adaptors", func(f *radplexFlags) {
			f.p1, f.p2 = p1, p1
			f.opts.MaxAdaptors = 1
		}, exitBadAdaptor},
		{"bad input", func(f *radplexFlags) { f.inputs[0] = filepath.Join(dir, "nonexistent.fastq") }, exitIO},
		{"bad output", func(f *radplexFlags) { f.opts.OutputPrefix = filepath.Join(blocker, "out") }, exitUndetermined},
	}
	for _, test := range tests {
		flags := newFlags(inputs, prefix)
		test.update(&flags)
		err := radplex(vcontext.Background(), flags)
		expect.EQ(t, err, cmdline.ErrExitCode(test.code), test.name)
	}
}

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	code := m.Run()
	shutdown()
	os.Exit(code)
}
