package seqio

import (
	"fmt"
	"io"

	"github.com/shenwei356/bio/seqio/fastx"
)

// Reader streams records from a FASTQ or FASTA file, plain or gzipped.
// It is not safe for concurrent use; a single feeder goroutine owns it.
//
// Records are pulled one at a time from the parser, so a Reader abandoned
// before EOF (a cancelled run, a handler timeout) holds nothing but the file
// handle, which Close releases.
type Reader struct {
	fx  *fastx.Reader
	err error
}

// Open prepares a streaming reader over path ("-" reads stdin).
func Open(path string) (*Reader, error) {
	fx, err := fastx.NewDefaultReader(path)
	if err != nil {
		return nil, fmt.Errorf("open reads: %w", err)
	}
	return &Reader{fx: fx}, nil
}

// Next returns the next record, copying it out of the parser's reuse buffer.
// It returns io.EOF at end of input.
func (r *Reader) Next() (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}
	rec, err := r.fx.Read()
	if err != nil {
		if err == io.EOF {
			r.err = io.EOF
		} else {
			r.err = fmt.Errorf("parse reads: %w", err)
		}
		return Record{}, r.err
	}
	return convert(rec), nil
}

// Close releases the underlying file handle. Safe to call with records still
// unread.
func (r *Reader) Close() error {
	r.fx.Close()
	return nil
}

func convert(rec *fastx.Record) Record {
	out := Record{
		ID:   string(rec.ID),
		Name: string(rec.Name),
		Seq:  append([]byte(nil), rec.Seq.Seq...),
	}
	if len(rec.Seq.Qual) > 0 {
		out.Qual = append([]byte(nil), rec.Seq.Qual...)
	}
	return out
}

// Count scans path once and returns the number of records. The CLI uses it
// to size the progress bar before the real pass, mirroring the original
// two-pass flow.
func Count(path string) (int, error) {
	fx, err := fastx.NewDefaultReader(path)
	if err != nil {
		return 0, fmt.Errorf("open reads: %w", err)
	}
	defer fx.Close()

	n := 0
	for {
		_, err := fx.Read()
		if err != nil {
			if err == io.EOF {
				return n, nil
			}
			return 0, fmt.Errorf("parse reads: %w", err)
		}
		n++
	}
}
