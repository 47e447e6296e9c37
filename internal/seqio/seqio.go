// Package seqio streams sequencing records in and out of a run. Reading goes
// through shenwei356/bio's fastx parser (FASTQ and FASTA, gzip transparent);
// writing goes through gzip-aware xopen writers with an asynchronous flush
// path so classification workers never block on output I/O.
package seqio

import (
	"path/filepath"
	"strings"
)

// Format is the on-disk record format of a read file.
type Format int

const (
	FormatFASTQ Format = iota
	FormatFASTA
)

func (f Format) String() string {
	if f == FormatFASTA {
		return "FASTA"
	}
	return "FASTQ"
}

// Ext returns the conventional file extension for the format.
func (f Format) Ext() string {
	if f == FormatFASTA {
		return "fasta"
	}
	return "fastq"
}

// DetectFormat infers the record format from a filename extension:
// .fa/.fasta mean FASTA, .fq/.fastq mean FASTQ, anything else (including a
// trailing .gz stripped first) defaults to FASTQ.
func DetectFormat(filename string) Format {
	name := strings.TrimSuffix(filename, ".gz")
	switch strings.ToLower(filepath.Ext(name)) {
	case ".fa", ".fasta":
		return FormatFASTA
	case ".fq", ".fastq":
		return FormatFASTQ
	}
	return FormatFASTQ
}

// Record is one sequencing read. Qual is nil for FASTA input and is carried
// through untouched otherwise; the core never interprets quality scores.
type Record struct {
	ID   string // identifier up to the first whitespace
	Name string // full header line, without the leading @ or >
	Seq  []byte
	Qual []byte
}
