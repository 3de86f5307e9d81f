package fastq

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrDiscordant is returned when the FASTQ files of a triple end after a
	// different number of records.
	ErrDiscordant = errors.New("discordant FASTQ triple")
)

// maxLineLen bounds the length of a single FASTQ line.
const maxLineLen = 1 << 20

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Clip removes the first n bases of the read and its qualities. Clipping
// more than the read length leaves an empty read.
func (r *Read) Clip(n int) {
	if n <= 0 {
		return
	}
	r.Seq = clipString(r.Seq, n)
	r.Qual = clipString(r.Qual, n)
}

func clipString(s string, n int) string {
	if n >= len(s) {
		return ""
	}
	return s[n:]
}

var errEOF = errors.New("eof")

// Scanner provides a convenient interface for reading FASTQ read
// data. The Scan method returns the next read, returning a boolean
// indicating whether the read succeeded. Scanners are not
// threadsafe.
//
// Scanner performs some validation: it requires ID lines to begin
// with "@" and that line 3 begins with "+", but does not perform
// further validation (e.g., seq/qual being of equal length,
// containing only data in range, etc.) Trailing control characters,
// including '\r', are removed from every line.
type Scanner struct {
	b      *bufio.Scanner
	err    error
	fields Field
}

// Field enumerates FASTQ fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// ID causes the Read.ID field to be filled
	ID Field = 1 << iota
	// Seq causes the Read.Seq field to be filled
	Seq
	// Unk causes the Read.Unk field to be filled
	Unk
	// Qual causes the Read.Qual field to be filled
	Qual
	// All equals ID|Seq|Unk|Qual.
	All = ID | Seq | Unk | Qual
)

// NewScanner constructs a new Scanner that reads raw FASTQ data from the
// provided reader. Fields is a bitset of the fields to read. A typical value
// would be All or ID|Seq|Qual.
func NewScanner(r io.Reader, fields Field) *Scanner {
	b := bufio.NewScanner(r)
	b.Buffer(make([]byte, 0, 64<<10), maxLineLen)
	return &Scanner{b: b, fields: fields}
}

// Scan the next read into the provided read. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check
// the Err method to determine whether scanning stopped because of an
// error or because the end of the stream was reached.
func (f *Scanner) Scan(read *Read) bool {
	if f.err != nil {
		return false
	}
	if !f.b.Scan() {
		if f.err = f.b.Err(); f.err == nil {
			f.err = errEOF
		}
		return false
	}
	id := chomp(f.b.Bytes())
	if len(id) == 0 || id[0] != '@' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&ID != 0 {
		read.ID = string(id)
	}
	if !f.scan() {
		return false
	}
	if f.fields&Seq != 0 {
		read.Seq = string(chomp(f.b.Bytes()))
	}
	if !f.scan() {
		return false
	}
	unk := chomp(f.b.Bytes())
	if len(unk) == 0 || unk[0] != '+' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&Unk != 0 {
		read.Unk = string(unk)
	}
	if !f.scan() {
		return false
	}
	if f.fields&Qual != 0 {
		read.Qual = string(chomp(f.b.Bytes()))
	}
	return true
}

func (f *Scanner) scan() bool {
	ok := f.b.Scan()
	if !ok {
		if f.err = f.b.Err(); f.err == nil {
			f.err = ErrShort
		}
	}
	return ok
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}

// chomp strips trailing control characters.
func chomp(line []byte) []byte {
	n := len(line)
	for n > 0 && line[n-1] < ' ' {
		n--
	}
	return line[:n]
}

// Mate names a member of a TripleScanner triple.
type Mate int

const (
	// R1 is the first read of the fragment.
	R1 Mate = iota
	// R2 is the second read of the fragment.
	R2
	// Index is the auxiliary index read.
	Index
	nMates
)

// String returns "R1", "R2" or "index".
func (m Mate) String() string {
	switch m {
	case R1:
		return "R1"
	case R2:
		return "R2"
	case Index:
		return "index"
	}
	return "unknown"
}

// TripleScanner composes three scanners to scan the R1, R2 and index-read
// streams of one sequencing run in lockstep. A triple is returned only when
// all three records were read completely.
type TripleScanner struct {
	sc  [nMates]*Scanner
	err error
	n   int
}

// NewTripleScanner creates a new FASTQ triple scanner from the provided R1, R2
// and index-read readers.
func NewTripleScanner(r1, r2, index io.Reader, fields Field) *TripleScanner {
	return &TripleScanner{
		sc: [nMates]*Scanner{
			NewScanner(r1, fields),
			NewScanner(r2, fields),
			NewScanner(index, fields),
		},
	}
}

// Scan scans the next triple into r1, r2 and index. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it never
// returns true again. Upon completion, the user should check the Err method to
// determine whether scanning stopped because of an error or because the end of
// the streams was reached.
func (t *TripleScanner) Scan(r1, r2, index *Read) bool {
	if t.err != nil {
		return false
	}
	reads := [nMates]*Read{r1, r2, index}
	var ok [nMates]bool
	for m := R1; m < nMates; m++ {
		ok[m] = t.sc[m].Scan(reads[m])
	}
	for m := R1; m < nMates; m++ {
		if err := t.sc[m].Err(); err != nil {
			t.err = errors.Wrapf(err, "%v record %d", m, t.n+1)
			return false
		}
	}
	if ok[R1] && ok[R2] && ok[Index] {
		t.n++
		return true
	}
	if ok[R1] || ok[R2] || ok[Index] {
		t.err = errors.Wrapf(ErrDiscordant, "after %d records", t.n)
	} else {
		t.err = errEOF
	}
	return false
}

// N returns the number of complete triples scanned so far.
func (t *TripleScanner) N() int { return t.n }

// Err returns the scanning error, if any. It should be checked
// after Scan returns false.
func (t *TripleScanner) Err() error {
	if t.err == errEOF {
		return nil
	}
	return t.err
}

// IsTruncation reports whether err, as returned by TripleScanner.Err, marks a
// malformed or incomplete record rather than an I/O failure.
func IsTruncation(err error) bool {
	switch errors.Cause(err) {
	case ErrShort, ErrInvalid, ErrDiscordant:
		return true
	}
	return false
}
