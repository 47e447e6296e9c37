package seqio

import (
	"fmt"
	"io"

	"github.com/shenwei356/xopen"
)

// defaultCache is how many records a Writer batches before handing them to
// the drain goroutine.
const defaultCache = 128

// Writer writes records asynchronously: Write buffers, a background goroutine
// formats and flushes. Call Close when done; it blocks until everything is on
// disk and reports the first write error encountered.
//
// Write is not safe for concurrent use; the orchestrator's collector is the
// single producer.
type Writer struct {
	format  Format
	out     io.Writer
	closer  io.Closer
	cache   []Record
	batches chan []Record
	done    chan error
}

// NewWriter creates a file-backed Writer. Paths ending in .gz are gzip
// compressed transparently.
func NewWriter(path string, format Format) (*Writer, error) {
	fh, err := xopen.Wopen(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	w := newWriter(fh, format)
	w.closer = fh
	return w, nil
}

// NewWriterTo creates a Writer over an arbitrary io.Writer, used by the HTTP
// surface to stream partitions into ZIP entries.
func NewWriterTo(out io.Writer, format Format) *Writer {
	return newWriter(out, format)
}

func newWriter(out io.Writer, format Format) *Writer {
	w := &Writer{
		format:  format,
		out:     out,
		cache:   make([]Record, 0, defaultCache),
		batches: make(chan []Record),
		done:    make(chan error, 1),
	}
	go w.drain()
	return w
}

// Write buffers one record, flushing a full batch to the drain goroutine.
func (w *Writer) Write(rec Record) {
	w.cache = append(w.cache, rec)
	if len(w.cache) == cap(w.cache) {
		w.flush()
	}
}

func (w *Writer) flush() {
	batch := w.cache
	w.cache = make([]Record, 0, defaultCache)
	w.batches <- batch
}

// Close flushes pending records, waits for the drain goroutine, closes the
// underlying file if any, and returns the first write error.
func (w *Writer) Close() error {
	if len(w.cache) > 0 {
		w.flush()
	}
	close(w.batches)
	err := <-w.done
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (w *Writer) drain() {
	var firstErr error
	buf := make([]byte, 0, 4096)
	for batch := range w.batches {
		if firstErr != nil {
			continue
		}
		for _, rec := range batch {
			buf = formatRecord(buf[:0], rec, w.format)
			if _, err := w.out.Write(buf); err != nil {
				firstErr = err
				break
			}
		}
	}
	w.done <- firstErr
}

// formatRecord appends one record in the requested format. Reads parsed from
// FASTQ but written as FASTA (or vice versa) degrade gracefully: quality is
// dropped for FASTA, and a missing quality string for FASTQ output is padded
// so downstream parsers stay in sync.
func formatRecord(buf []byte, rec Record, format Format) []byte {
	if format == FormatFASTA {
		buf = append(buf, '>')
		buf = append(buf, rec.Name...)
		buf = append(buf, '\n')
		buf = append(buf, rec.Seq...)
		buf = append(buf, '\n')
		return buf
	}

	qual := rec.Qual
	if qual == nil {
		qual = make([]byte, len(rec.Seq))
		for i := range qual {
			qual[i] = 'I'
		}
	}
	buf = append(buf, '@')
	buf = append(buf, rec.Name...)
	buf = append(buf, '\n')
	buf = append(buf, rec.Seq...)
	buf = append(buf, "\n+\n"...)
	buf = append(buf, qual...)
	buf = append(buf, '\n')
	return buf
}
