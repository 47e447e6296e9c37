// Package report renders the human-readable run log and packages results
// into a downloadable ZIP bundle.
package report

import (
	"archive/zip"
	"fmt"
	"io"
	"sort"
	"text/template"
	"time"

	"github.com/seqtoolkit/bcscreen/internal/scoring"
	"github.com/seqtoolkit/bcscreen/internal/screen"
)

// RunInfo is everything the log template needs about a finished run.
type RunInfo struct {
	Input     string
	Format    string
	Started   time.Time
	Finished  time.Time
	Model     scoring.Model
	Threshold int
	PanelSize int
	Summary   screen.SummarySnapshot
}

const logTemplate = `Mid-Read Barcode Screening Log
Started: {{ .Started.Format "2006-01-02T15:04:05Z07:00" }}
Tool: bcscreen affine Smith-Waterman filter

Parameters:
  match_score:        {{ .Model.Match }}
  mismatch_penalty:   -{{ .Model.Mismatch }}
  gap_open_penalty:   {{ .Model.GapOpen }}
  gap_extend_penalty: {{ .Model.GapExtend }}
  min_score:          {{ .Threshold }}

Input File: {{ .Input }}
Format: {{ .Format }}
Total reads: {{ .Summary.Total }}
Panel entries: {{ .PanelSize }}

Results:
Reads kept: {{ .Summary.Clean }}
Reads discarded: {{ .Summary.Contaminated }}
{{- if .Hits }}

Hits per barcode:
{{- range .Hits }}
  {{ .Name }}: {{ .Count }}
{{- end }}
{{- end }}
Completed: {{ .Finished.Format "2006-01-02T15:04:05Z07:00" }}
`

var logTmpl = template.Must(template.New("runlog").Parse(logTemplate))

type barcodeHit struct {
	Name  string
	Count uint64
}

// WriteLog renders the run log to w.
func WriteLog(w io.Writer, info RunInfo) error {
	hits := make([]barcodeHit, 0, len(info.Summary.BarcodeHits))
	for name, count := range info.Summary.BarcodeHits {
		hits = append(hits, barcodeHit{Name: name, Count: count})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Count != hits[j].Count {
			return hits[i].Count > hits[j].Count
		}
		return hits[i].Name < hits[j].Name
	})

	data := struct {
		RunInfo
		Hits []barcodeHit
	}{RunInfo: info, Hits: hits}

	if err := logTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render run log: %w", err)
	}
	return nil
}

// BundleFile is one entry of a result bundle.
type BundleFile struct {
	Name string
	Data []byte
}

// WriteBundle writes files into a single ZIP archive on w, in order.
func WriteBundle(w io.Writer, files []BundleFile) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		entry, err := zw.Create(f.Name)
		if err != nil {
			return fmt.Errorf("bundle %s: %w", f.Name, err)
		}
		if _, err := entry.Write(f.Data); err != nil {
			return fmt.Errorf("bundle %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize bundle: %w", err)
	}
	return nil
}
