package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/seqtoolkit/bcscreen/pkg/bcscreen"
)

// ScoreRequest represents a single read/barcode scoring request.
type ScoreRequest struct {
	Read      string `json:"read"`
	Barcode   string `json:"barcode"`
	Match     *int   `json:"match,omitempty"`
	Mismatch  *int   `json:"mismatch,omitempty"`
	GapOpen   *int   `json:"gap_open,omitempty"`
	GapExtend *int   `json:"gap_extend,omitempty"`
}

// ScoreResponse represents the response for a scoring request.
type ScoreResponse struct {
	Score          int    `json:"score"`
	ReadStart      int    `json:"read_start"`
	ReadEnd        int    `json:"read_end"`
	BarcodeStart   int    `json:"barcode_start"`
	BarcodeEnd     int    `json:"barcode_end"`
	AlignedRead    string `json:"aligned_read"`
	AlignedBarcode string `json:"aligned_barcode"`
}

// ScoreHandler computes the local alignment score (and extent) between one
// read and one barcode sequence.
func ScoreHandler(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Read == "" || req.Barcode == "" {
		respondError(w, http.StatusBadRequest, "read and barcode are required")
		return
	}

	model, err := modelFromRequest(req.Match, req.Mismatch, req.GapOpen, req.GapExtend)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := bcscreen.Align([]byte(req.Read), []byte(req.Barcode), model)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ScoreResponse{
		Score:          result.Score,
		ReadStart:      result.ReadStart,
		ReadEnd:        result.ReadEnd,
		BarcodeStart:   result.RefStart,
		BarcodeEnd:     result.RefEnd,
		AlignedRead:    result.AlignedRead,
		AlignedBarcode: result.AlignedRef,
	})
}

// modelFromRequest builds a scoring model from optional overrides, falling
// back to the defaults for any parameter left unset.
func modelFromRequest(match, mismatch, gapOpen, gapExtend *int) (bcscreen.Model, error) {
	def := bcscreen.DefaultModel()
	m, mm, gO, gE := def.Match, -def.Mismatch, def.GapOpen, def.GapExtend
	if match != nil {
		m = *match
	}
	if mismatch != nil {
		mm = *mismatch
	}
	if gapOpen != nil {
		gO = *gapOpen
	}
	if gapExtend != nil {
		gE = *gapExtend
	}
	return bcscreen.NewModel(m, mm, gO, gE)
}
