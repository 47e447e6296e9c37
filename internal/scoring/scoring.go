// Package scoring defines the affine-gap scoring model used by the aligner.
//
// Penalties are stored as non-negative magnitudes and subtracted at the point
// of use, so the rest of the codebase never has to reason about sign
// conventions.
package scoring

import "fmt"

// Default parameter values, matching the thresholds the screening defaults
// were tuned against.
const (
	DefaultMatch     = 2
	DefaultMismatch  = -1
	DefaultGapOpen   = 5
	DefaultGapExtend = 1
)

// InvalidModelError reports a scoring parameter that violates its constraint.
type InvalidModelError struct {
	Param      string
	Value      int
	Constraint string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("invalid scoring model: %s = %d (%s)", e.Param, e.Value, e.Constraint)
}

// Model holds the four affine-gap scoring parameters.
//
// Match is the reward for an exact (case-insensitive) base match. Mismatch,
// GapOpen and GapExtend are penalty magnitudes: all non-negative, all
// subtracted by the aligner. A gap of length L costs GapOpen + (L-1)*GapExtend.
type Model struct {
	Match     int
	Mismatch  int
	GapOpen   int
	GapExtend int

	warnings []string
}

// New validates the parameters and returns a read-only Model.
//
// mismatch follows the CLI convention of a non-positive penalty (e.g. -1) and
// is stored as its magnitude. gapOpen and gapExtend are magnitudes and must be
// non-negative. A configuration where extending a gap costs more than opening
// one is accepted but recorded as a validation warning, since it produces
// degenerate alignments.
func New(match, mismatch, gapOpen, gapExtend int) (Model, error) {
	if match <= 0 {
		return Model{}, &InvalidModelError{Param: "match_score", Value: match, Constraint: "must be positive"}
	}
	if mismatch > 0 {
		return Model{}, &InvalidModelError{Param: "mismatch_penalty", Value: mismatch, Constraint: "must be non-positive"}
	}
	if gapOpen < 0 {
		return Model{}, &InvalidModelError{Param: "gap_open_penalty", Value: gapOpen, Constraint: "must be non-negative"}
	}
	if gapExtend < 0 {
		return Model{}, &InvalidModelError{Param: "gap_extend_penalty", Value: gapExtend, Constraint: "must be non-negative"}
	}

	m := Model{
		Match:     match,
		Mismatch:  -mismatch,
		GapOpen:   gapOpen,
		GapExtend: gapExtend,
	}
	if gapExtend > gapOpen {
		m.warnings = append(m.warnings,
			fmt.Sprintf("gap_extend_penalty (%d) exceeds gap_open_penalty (%d): gaps will never extend", gapExtend, gapOpen))
	}
	return m, nil
}

// Default returns the model used by the original screening tool.
func Default() Model {
	m, _ := New(DefaultMatch, DefaultMismatch, DefaultGapOpen, DefaultGapExtend)
	return m
}

// Warnings returns validation warnings recorded at construction.
func (m Model) Warnings() []string {
	return m.warnings
}

// Score returns the substitution score for a base pair: Match for an exact
// case-insensitive match, -Mismatch otherwise. Ambiguity codes such as N are
// never wildcards; any byte that does not match exactly scores as a mismatch.
func (m Model) Score(a, b byte) int {
	if upper(a) == upper(b) {
		return m.Match
	}
	return -m.Mismatch
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func (m Model) String() string {
	return fmt.Sprintf("Model { match: %d, mismatch: -%d, gap_open: %d, gap_extend: %d }",
		m.Match, m.Mismatch, m.GapOpen, m.GapExtend)
}
