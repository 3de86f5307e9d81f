package fastq

import (
	"bufio"
	"io"
)

const writerBufSize = 256 << 10

// Writer is a buffered FASTQ writer. Flush must be called once all reads have
// been written.
type Writer struct {
	w   *bufio.Writer
	err error
	n   int64
}

// NewWriter constructs a new FASTQ writer
// that writes reads to the underlying writer w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, writerBufSize)}
}

// Write writes the read r in FASTQ format.
// An error is returned if the write failed. Once a write fails, all later
// calls return the same error.
func (w *Writer) Write(r *Read) error {
	w.writeln(r.ID)
	w.writeln(r.Seq)
	w.writeln(r.Unk)
	w.writeln(r.Qual)
	if w.err == nil {
		w.n++
	}
	return w.err
}

// N returns the number of reads written.
func (w *Writer) N() int64 { return w.n }

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

func (w *Writer) writeln(line string) {
	if w.err != nil {
		return
	}
	if _, w.err = w.w.WriteString(line); w.err == nil {
		w.err = w.w.WriteByte('\n')
	}
}
