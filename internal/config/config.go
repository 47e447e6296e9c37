// Package config is for run-wide settings unmarshalled from Viper
// (see: /cmd/bcscreen). Everything the orchestrator needs travels in one
// explicit Options value; there is no ambient mutable state.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/seqtoolkit/bcscreen/internal/scoring"
)

// Options is the full configuration surface of a screening run, a mix of
// settings from the optional config file and command line flags.
type Options struct {
	// path to the FASTQ/FASTA reads file (may be gzipped)
	Reads string `mapstructure:"reads"`

	// path to the barcode/adapter FASTA file
	Barcodes string `mapstructure:"barcodes"`

	// directory the result files are written to
	OutDir string `mapstructure:"out-dir"`

	// affine-gap scoring parameters
	Match     int `mapstructure:"match"`
	Mismatch  int `mapstructure:"mismatch"`
	GapOpen   int `mapstructure:"gap-open"`
	GapExtend int `mapstructure:"gap-extend"`

	// minimum best score for a read to count as contaminated
	MinScore int `mapstructure:"min-score"`

	// classification worker count; 0 uses all CPUs
	Threads int `mapstructure:"threads"`

	// skip the reverse-complement expansion of the barcode panel
	NoRevComp bool `mapstructure:"no-revcomp"`
}

// Defaults returns the options the original tool shipped with.
func Defaults() Options {
	return Options{
		OutDir:    ".",
		Match:     scoring.DefaultMatch,
		Mismatch:  scoring.DefaultMismatch,
		GapOpen:   scoring.DefaultGapOpen,
		GapExtend: scoring.DefaultGapExtend,
		MinScore:  30,
	}
}

// FromViper returns Options populated from Viper (config file and/or bound
// command line flags).
func FromViper() (Options, error) {
	opts := Defaults()
	if err := viper.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("decode configuration: %w", err)
	}
	return opts, nil
}

// Model validates the scoring parameters and builds the scoring model.
func (o Options) Model() (scoring.Model, error) {
	return scoring.New(o.Match, o.Mismatch, o.GapOpen, o.GapExtend)
}

// Validate checks everything that must fail before any read is processed.
func (o Options) Validate() error {
	if o.Reads == "" {
		return fmt.Errorf("reads file is required")
	}
	if o.Barcodes == "" {
		return fmt.Errorf("barcodes file is required")
	}
	if _, err := o.Model(); err != nil {
		return err
	}
	if o.MinScore < 1 {
		return fmt.Errorf("invalid min_score threshold: %d (must be >= 1)", o.MinScore)
	}
	return nil
}
