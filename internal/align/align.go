// Package align implements Smith-Waterman local alignment with affine gap
// penalties (Gotoh's variant).
//
// Three recurrences are maintained over read index i and reference index j:
//
//	E(i,j) = max(H(i,j-1) - gapOpen, E(i,j-1) - gapExtend)   gap in the read
//	F(i,j) = max(H(i-1,j) - gapOpen, F(i-1,j) - gapExtend)   gap in the reference
//	H(i,j) = max(0, H(i-1,j-1) + s(read[i], ref[j]), E(i,j), F(i,j))
//
// The optimal local score is the maximum over all H(i,j). The zero floor makes
// the alignment local: a region that cannot sustain a positive score simply
// restarts. These semantics match the SIMD routine the screening thresholds
// were tuned against, so they are a compatibility contract, not an
// implementation detail.
package align

import (
	"strings"

	"github.com/seqtoolkit/bcscreen/internal/scoring"
)

// Result is the outcome of a single pairwise local alignment. Bounds are
// half-open byte offsets into the original (ungapped) inputs. A Score of 0
// means no positive-scoring alignment exists; all other fields are zero.
type Result struct {
	Score       int
	ReadStart   int
	ReadEnd     int
	RefStart    int
	RefEnd      int
	AlignedRead string
	AlignedRef  string
}

// negInf is a safely subtractable stand-in for minus infinity.
const negInf = int(^uint(0)>>1) / -2

// Score computes the optimal local alignment score between read and ref under
// model m, keeping only two H rows and one F row (O(len(ref)) space).
//
// Scores are Go ints (64-bit on all supported platforms), so even a
// chromosome-length input at the maximum match reward cannot overflow.
// Either input being empty yields 0.
func Score(read, ref []byte, m scoring.Model) int {
	if len(read) == 0 || len(ref) == 0 {
		return 0
	}

	n := len(ref)
	prevH := make([]int, n+1)
	curH := make([]int, n+1)
	f := make([]int, n+1)
	for j := range f {
		f[j] = negInf
	}

	best := 0
	for i := 1; i <= len(read); i++ {
		e := negInf
		curH[0] = 0
		for j := 1; j <= n; j++ {
			e = maxInt(curH[j-1]-m.GapOpen, e-m.GapExtend)
			f[j] = maxInt(prevH[j]-m.GapOpen, f[j]-m.GapExtend)

			h := prevH[j-1] + m.Score(read[i-1], ref[j-1])
			if e > h {
				h = e
			}
			if f[j] > h {
				h = f[j]
			}
			if h < 0 {
				h = 0
			}
			curH[j] = h
			if h > best {
				best = h
			}
		}
		prevH, curH = curH, prevH
	}
	return best
}

// Align computes the optimal local alignment with full traceback, reporting
// the aligned region bounds and the gapped alignment strings. It uses
// O(len(read)*len(ref)) space; use Score when only the score matters.
func Align(read, ref []byte, m scoring.Model) Result {
	if len(read) == 0 || len(ref) == 0 {
		return Result{}
	}

	rows, cols := len(read)+1, len(ref)+1
	H := make([][]int, rows)
	E := make([][]int, rows)
	F := make([][]int, rows)
	for i := 0; i < rows; i++ {
		H[i] = make([]int, cols)
		E[i] = make([]int, cols)
		F[i] = make([]int, cols)
		E[i][0] = negInf
		F[i][0] = negInf
	}
	for j := 0; j < cols; j++ {
		E[0][j] = negInf
		F[0][j] = negInf
	}

	best, bestI, bestJ := 0, 0, 0
	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			E[i][j] = maxInt(H[i][j-1]-m.GapOpen, E[i][j-1]-m.GapExtend)
			F[i][j] = maxInt(H[i-1][j]-m.GapOpen, F[i-1][j]-m.GapExtend)

			h := H[i-1][j-1] + m.Score(read[i-1], ref[j-1])
			if E[i][j] > h {
				h = E[i][j]
			}
			if F[i][j] > h {
				h = F[i][j]
			}
			if h < 0 {
				h = 0
			}
			H[i][j] = h
			if h > best {
				best, bestI, bestJ = h, i, j
			}
		}
	}

	if best == 0 {
		return Result{}
	}

	aRead, aRef, startI, startJ := traceback(read, ref, m, H, E, F, bestI, bestJ)
	return Result{
		Score:       best,
		ReadStart:   startI,
		ReadEnd:     bestI,
		RefStart:    startJ,
		RefEnd:      bestJ,
		AlignedRead: aRead,
		AlignedRef:  aRef,
	}
}

// traceback state: which matrix the current cell belongs to.
type tbState int

const (
	inH tbState = iota
	inE
	inF
)

func traceback(read, ref []byte, m scoring.Model, H, E, F [][]int, i, j int) (string, string, int, int) {
	var aRead, aRef strings.Builder
	state := inH

	for i > 0 && j > 0 {
		switch state {
		case inH:
			if H[i][j] == 0 {
				goto done
			}
			switch {
			case H[i][j] == H[i-1][j-1]+m.Score(read[i-1], ref[j-1]):
				aRead.WriteByte(read[i-1])
				aRef.WriteByte(ref[j-1])
				i--
				j--
			case H[i][j] == E[i][j]:
				state = inE
			default:
				state = inF
			}
		case inE:
			// Gap in the read, consuming a reference base.
			aRead.WriteByte('-')
			aRef.WriteByte(ref[j-1])
			if E[i][j] == H[i][j-1]-m.GapOpen {
				state = inH
			}
			j--
		case inF:
			// Gap in the reference, consuming a read base.
			aRead.WriteByte(read[i-1])
			aRef.WriteByte('-')
			if F[i][j] == H[i-1][j]-m.GapOpen {
				state = inH
			}
			i--
		}
	}
done:

	return reverse(aRead.String()), reverse(aRef.String()), i, j
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
