// Package panel holds the barcode/adapter reference panel a run screens
// against. A Panel is built once, is immutable afterwards, and is safe for
// unrestricted concurrent reads.
package panel

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shenwei356/bio/seqio/fastx"
)

var (
	// ErrEmptyPanel is returned when a panel would contain zero entries.
	// A classifier with nothing to compare against is a configuration error,
	// not a run where everything passes.
	ErrEmptyPanel = errors.New("barcode panel is empty")

	// ErrInvalidSequence is returned when an entry's sequence is empty or
	// contains no recognized nucleotide at all.
	ErrInvalidSequence = errors.New("invalid barcode sequence")
)

// Entry is a single named reference sequence. Sequences are stored
// upper-cased; names need not be unique (ties report the first entry in
// panel order).
type Entry struct {
	Name string
	Seq  []byte
}

// Panel is an ordered, read-only collection of entries.
type Panel struct {
	entries []Entry
}

// Build validates entries and constructs a Panel. Order is preserved.
func Build(entries []Entry) (*Panel, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyPanel
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		seq := normalize(e.Seq)
		if err := validate(seq); err != nil {
			return nil, fmt.Errorf("barcode %q: %w", e.Name, err)
		}
		out = append(out, Entry{Name: e.Name, Seq: seq})
	}
	return &Panel{entries: out}, nil
}

// Len returns the number of entries.
func (p *Panel) Len() int { return len(p.entries) }

// At returns the entry at index i in construction order.
func (p *Panel) At(i int) Entry { return p.entries[i] }

// Names returns the entry names in construction order.
func (p *Panel) Names() []string {
	names := make([]string, len(p.entries))
	for i, e := range p.entries {
		names[i] = e.Name
	}
	return names
}

// Option adjusts panel loading.
type Option func(*loadOptions)

type loadOptions struct {
	noRevComp bool
}

// WithoutReverseComplements disables the default expansion of each loaded
// barcode into forward + reverse-complement entries.
func WithoutReverseComplements() Option {
	return func(o *loadOptions) { o.noRevComp = true }
}

// Load reads a FASTA file (optionally gzipped) and builds a Panel.
//
// By default every barcode contributes two entries: the sequence as written
// and its reverse complement, named "<name>_rc" and placed directly after the
// forward entry so ties prefer the orientation the user wrote.
func Load(path string, opts ...Option) (*Panel, error) {
	var lo loadOptions
	for _, opt := range opts {
		opt(&lo)
	}

	reader, err := fastx.NewDefaultReader(path)
	if err != nil {
		return nil, fmt.Errorf("open barcode file: %w", err)
	}
	defer reader.Close()

	var entries []Entry
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read barcode file: %w", err)
		}

		name := string(record.Name)
		seq := normalize(record.Seq.Seq)
		entries = append(entries, Entry{Name: name, Seq: seq})
		if !lo.noRevComp {
			entries = append(entries, Entry{Name: name + "_rc", Seq: ReverseComplement(seq)})
		}
	}

	return Build(entries)
}

// ReverseComplement returns the reverse complement of a DNA sequence.
// Unrecognized bases map to N.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = complement(b)
	}
	return out
}

func complement(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	default:
		return 'N'
	}
}

func normalize(seq []byte) []byte {
	return []byte(strings.ToUpper(string(seq)))
}

// validate rejects empty sequences and sequences with no recognized base at
// all. Scattered ambiguity codes are permitted; they simply score as
// mismatches during alignment.
func validate(seq []byte) error {
	if len(seq) == 0 {
		return fmt.Errorf("%w: empty sequence", ErrInvalidSequence)
	}
	recognized := 0
	for _, b := range seq {
		switch b {
		case 'A', 'C', 'G', 'T', 'U':
			recognized++
		}
	}
	if recognized == 0 {
		return fmt.Errorf("%w: no recognized nucleotides", ErrInvalidSequence)
	}
	return nil
}
