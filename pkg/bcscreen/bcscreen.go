// Package bcscreen provides a high-level API for screening sequencing reads
// against a barcode/adapter panel with affine-gap local alignment.
//
// Example usage:
//
//	p, err := bcscreen.LoadPanel("barcodes.fasta")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v := bcscreen.Classify("read-1", []byte("AAAACGTACGTACGTAAAA"), p, bcscreen.DefaultModel(), 25)
//	fmt.Println(v.Contaminated, v.BestScore, v.Barcode)
package bcscreen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seqtoolkit/bcscreen/internal/align"
	"github.com/seqtoolkit/bcscreen/internal/classify"
	"github.com/seqtoolkit/bcscreen/internal/config"
	"github.com/seqtoolkit/bcscreen/internal/panel"
	"github.com/seqtoolkit/bcscreen/internal/report"
	"github.com/seqtoolkit/bcscreen/internal/scoring"
	"github.com/seqtoolkit/bcscreen/internal/screen"
	"github.com/seqtoolkit/bcscreen/internal/seqio"
)

// Re-export types for convenience
type (
	Model           = scoring.Model
	AlignResult     = align.Result
	Panel           = panel.Panel
	PanelEntry      = panel.Entry
	Verdict         = classify.Verdict
	Screener        = screen.Screener
	ScreenOptions   = screen.Options
	Summary         = screen.Summary
	SummarySnapshot = screen.SummarySnapshot
	Record          = seqio.Record
	Options         = config.Options
)

// NewModel validates the four affine-gap scoring parameters.
func NewModel(match, mismatch, gapOpen, gapExtend int) (Model, error) {
	return scoring.New(match, mismatch, gapOpen, gapExtend)
}

// DefaultModel returns the default scoring model (match 2, mismatch -1,
// gap open 5, gap extend 1).
func DefaultModel() Model {
	return scoring.Default()
}

// Score computes the optimal local alignment score between read and ref.
func Score(read, ref []byte, m Model) int {
	return align.Score(read, ref, m)
}

// Align computes the optimal local alignment with extent and traceback.
func Align(read, ref []byte, m Model) AlignResult {
	return align.Align(read, ref, m)
}

// LoadPanel builds a panel from a FASTA file, appending reverse complements.
func LoadPanel(path string, opts ...panel.Option) (*Panel, error) {
	return panel.Load(path, opts...)
}

// BuildPanel builds a panel from in-memory entries, exactly as given.
func BuildPanel(entries []PanelEntry) (*Panel, error) {
	return panel.Build(entries)
}

// Classify scores one read against every panel entry and gates on threshold.
func Classify(readID string, seq []byte, p *Panel, m Model, threshold int) Verdict {
	return classify.Classify(readID, seq, p, m, threshold)
}

// NewScreener builds a batch orchestrator over one panel and model.
func NewScreener(p *Panel, m Model, opts ScreenOptions) (*Screener, error) {
	return screen.New(p, m, opts)
}

// RunResult describes a finished file-to-file screening run.
type RunResult struct {
	Summary       SummarySnapshot
	KeptPath      string
	DiscardedPath string
	LogPath       string
}

// RunFiles performs a complete screening run: loads the panel, streams the
// reads file, writes kept/discarded partitions and the run log into
// opts.OutDir, and returns the summary. progress may be nil.
func RunFiles(ctx context.Context, opts Options, progress func(uint64)) (*RunResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	model, err := opts.Model()
	if err != nil {
		return nil, err
	}

	var panelOpts []panel.Option
	if opts.NoRevComp {
		panelOpts = append(panelOpts, panel.WithoutReverseComplements())
	}
	p, err := panel.Load(opts.Barcodes, panelOpts...)
	if err != nil {
		return nil, err
	}

	scr, err := screen.New(p, model, screen.Options{
		Threshold: opts.MinScore,
		Threads:   opts.Threads,
		Progress:  progress,
	})
	if err != nil {
		return nil, err
	}

	src, err := seqio.Open(opts.Reads)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	format := seqio.DetectFormat(opts.Reads)
	keptPath := filepath.Join(opts.OutDir, "filtered_reads."+format.Ext())
	discardedPath := filepath.Join(opts.OutDir, "discarded_reads."+format.Ext())

	kept, err := seqio.NewWriter(keptPath, format)
	if err != nil {
		return nil, err
	}
	discarded, err := seqio.NewWriter(discardedPath, format)
	if err != nil {
		kept.Close()
		return nil, err
	}

	started := time.Now()
	summary, runErr := scr.Run(ctx, src, kept, discarded)

	if err := kept.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("write %s: %w", keptPath, err)
	}
	if err := discarded.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("write %s: %w", discardedPath, err)
	}
	if runErr != nil {
		return nil, runErr
	}

	logPath := filepath.Join(opts.OutDir, "filtering_log.txt")
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", logPath, err)
	}
	defer logFile.Close()

	info := report.RunInfo{
		Input:     opts.Reads,
		Format:    format.String(),
		Started:   started,
		Finished:  time.Now(),
		Model:     model,
		Threshold: opts.MinScore,
		PanelSize: p.Len(),
		Summary:   summary.Snapshot(),
	}
	if err := report.WriteLog(logFile, info); err != nil {
		return nil, err
	}

	return &RunResult{
		Summary:       info.Summary,
		KeptPath:      keptPath,
		DiscardedPath: discardedPath,
		LogPath:       logPath,
	}, nil
}

// Version returns the bcscreen version.
func Version() string {
	return "1.0.0"
}

// Info returns information about bcscreen.
func Info() string {
	return fmt.Sprintf(`bcscreen v%s - Mid-Read Barcode Screening

Screens sequencing reads for embedded barcode/adapter contamination using
exhaustive Smith-Waterman local alignment with affine gap penalties, and
partitions reads into clean and discarded sets.

Features:
  - FASTQ/FASTA input and output, plain or gzipped
  - Affine-gap (Gotoh) local alignment, exact score semantics
  - Reverse-complement panel expansion
  - Parallel classification with streaming memory use
  - Run log and ZIP result bundles
`, Version())
}
