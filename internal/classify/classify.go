// Package classify decides per-read contamination status by scoring a read
// against every entry of a barcode panel.
package classify

import (
	"github.com/seqtoolkit/bcscreen/internal/align"
	"github.com/seqtoolkit/bcscreen/internal/panel"
	"github.com/seqtoolkit/bcscreen/internal/scoring"
)

// Verdict is the per-read contamination decision plus its evidence.
//
// BestScore is always the best score seen across the whole panel, whether or
// not it clears the threshold. Barcode names the best-matching entry and is
// empty when the read is clean; the best score alone is still informative
// downstream.
type Verdict struct {
	ReadID       string
	Contaminated bool
	BestScore    int
	Barcode      string
}

// Classify aligns seq against every panel entry in order and gates the best
// score on threshold.
//
// The scan is exhaustive by design: an entry later in the panel can outscore
// one that already cleared the threshold, and the verdict must name the
// single best match, not the first sufficient one. Ties keep the earliest
// entry in panel order (strict > while scanning).
func Classify(readID string, seq []byte, p *panel.Panel, m scoring.Model, threshold int) Verdict {
	best := 0
	bestName := ""
	for i := 0; i < p.Len(); i++ {
		e := p.At(i)
		if score := align.Score(seq, e.Seq, m); score > best {
			best = score
			bestName = e.Name
		}
	}

	v := Verdict{ReadID: readID, BestScore: best}
	if best >= threshold {
		v.Contaminated = true
		v.Barcode = bestName
	}
	return v
}
