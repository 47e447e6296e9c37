// Package handlers implements the HTTP surface over the screening core:
// a multipart screen endpoint mirroring the original upload -> filter ->
// download flow, and a JSON endpoint for single-pair alignment scores.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/seqtoolkit/bcscreen/internal/panel"
	"github.com/seqtoolkit/bcscreen/internal/report"
	"github.com/seqtoolkit/bcscreen/internal/screen"
	"github.com/seqtoolkit/bcscreen/internal/seqio"
	"github.com/seqtoolkit/bcscreen/pkg/bcscreen"
)

// uploads larger than this are rejected outright.
const maxUploadBytes = 512 << 20

// ScreenSummaryResponse is the JSON body returned when output=json.
type ScreenSummaryResponse struct {
	Summary   screen.SummarySnapshot `json:"summary"`
	Format    string                 `json:"format"`
	PanelSize int                    `json:"panel_size"`
	Threshold int                    `json:"min_score"`
	Elapsed   string                 `json:"elapsed"`
}

// ScreenHandler runs a full screening pass over an uploaded reads file and
// barcode FASTA. Form fields: "reads" and "barcodes" (files); optional
// "match", "mismatch", "gap_open", "gap_extend", "min_score", "no_revcomp".
// By default it responds with a ZIP bundle (filtered reads, discarded reads,
// run log); with ?output=json it responds with the summary only.
func ScreenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	readsPath, readsName, err := saveUpload(r, "reads")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(readsPath)

	barcodesPath, _, err := saveUpload(r, "barcodes")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(barcodesPath)

	match, err1 := formInt(r, "match", bcscreen.DefaultModel().Match)
	mismatch, err2 := formInt(r, "mismatch", -bcscreen.DefaultModel().Mismatch)
	gapOpen, err3 := formInt(r, "gap_open", bcscreen.DefaultModel().GapOpen)
	gapExtend, err4 := formInt(r, "gap_extend", bcscreen.DefaultModel().GapExtend)
	minScore, err5 := formInt(r, "min_score", 30)
	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	model, err := bcscreen.NewModel(match, mismatch, gapOpen, gapExtend)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var panelOpts []panel.Option
	if r.FormValue("no_revcomp") == "true" {
		panelOpts = append(panelOpts, panel.WithoutReverseComplements())
	}
	p, err := panel.Load(barcodesPath, panelOpts...)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	scr, err := screen.New(p, model, screen.Options{Threshold: minScore})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := seqio.Open(readsPath)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer src.Close()

	format := seqio.DetectFormat(readsName)
	var keptBuf, discardedBuf bytes.Buffer
	kept := seqio.NewWriterTo(&keptBuf, format)
	discarded := seqio.NewWriterTo(&discardedBuf, format)

	started := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	summary, runErr := scr.Run(ctx, src, kept, discarded)
	if err := kept.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if err := discarded.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		respondError(w, http.StatusInternalServerError, runErr.Error())
		return
	}
	finished := time.Now()

	if r.URL.Query().Get("output") == "json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ScreenSummaryResponse{
			Summary:   summary.Snapshot(),
			Format:    format.String(),
			PanelSize: p.Len(),
			Threshold: minScore,
			Elapsed:   finished.Sub(started).String(),
		})
		return
	}

	var logBuf bytes.Buffer
	info := report.RunInfo{
		Input:     readsName,
		Format:    format.String(),
		Started:   started,
		Finished:  finished,
		Model:     model,
		Threshold: minScore,
		PanelSize: p.Len(),
		Summary:   summary.Snapshot(),
	}
	if err := report.WriteLog(&logBuf, info); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="bcscreen_results.zip"`)
	report.WriteBundle(w, []report.BundleFile{
		{Name: "filtered_reads." + format.Ext(), Data: keptBuf.Bytes()},
		{Name: "discarded_reads." + format.Ext(), Data: discardedBuf.Bytes()},
		{Name: "filtering_log.txt", Data: logBuf.Bytes()},
	})
}

// PanelRequest represents a panel validation request.
type PanelRequest struct {
	Entries []struct {
		Name     string `json:"name"`
		Sequence string `json:"sequence"`
	} `json:"entries"`
}

// PanelResponse lists the entries of a successfully built panel.
type PanelResponse struct {
	Size  int      `json:"size"`
	Names []string `json:"names"`
}

// PanelHandler validates a set of barcode entries without running a screen.
func PanelHandler(w http.ResponseWriter, r *http.Request) {
	var req PanelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entries := make([]panel.Entry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = panel.Entry{Name: e.Name, Seq: []byte(e.Sequence)}
	}
	p, err := panel.Build(entries)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(PanelResponse{Size: p.Len(), Names: p.Names()})
}

// saveUpload copies one uploaded file to a temp path, preserving the upload's
// extension so format detection keeps working.
func saveUpload(r *http.Request, field string) (path, name string, err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", fmt.Errorf("missing %s file", field)
	}
	defer file.Close()
	return writeTemp(file, header)
}

func writeTemp(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	tmp, err := os.CreateTemp("", "bcscreen-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", "", fmt.Errorf("stage upload: %w", err)
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("stage upload: %w", err)
	}
	return tmp.Name(), header.Filename, nil
}

// respondError writes a JSON error body. Messages pass through the encoder so
// quotes in wrapped errors (barcode names, file paths) stay escaped.
func respondError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func formInt(r *http.Request, field string, def int) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", field)
	}
	return n, nil
}
