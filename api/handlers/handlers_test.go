package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreHandler(t *testing.T) {
	t.Run("scores a pair", func(t *testing.T) {
		body := `{"read": "AAAACGTACGTACGTAAAA", "barcode": "ACGTACGTACGT"}`
		req := httptest.NewRequest(http.MethodPost, "/api/align/score", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ScoreHandler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ScoreResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 24, resp.Score)
		assert.Equal(t, 3, resp.ReadStart)
		assert.Equal(t, 15, resp.ReadEnd)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/align/score", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		ScoreHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assertJSONError(t, rec)
	})

	t.Run("rejects invalid scoring overrides", func(t *testing.T) {
		body := `{"read": "ACGT", "barcode": "ACGT", "match": 0}`
		req := httptest.NewRequest(http.MethodPost, "/api/align/score", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ScoreHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assertJSONError(t, rec)
	})
}

func TestPanelHandler(t *testing.T) {
	t.Run("valid panel", func(t *testing.T) {
		body := `{"entries": [{"name": "bc01", "sequence": "ACGTACGT"}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/panel/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		PanelHandler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp PanelResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Size)
		assert.Equal(t, []string{"bc01"}, resp.Names)
	})

	// Panel errors quote the offending entry name; the body must survive as
	// JSON even when the name itself contains quotes.
	t.Run("error body stays well-formed", func(t *testing.T) {
		body := `{"entries": [{"name": "bc\"01", "sequence": ""}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/panel/validate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		PanelHandler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		// %q renders the name as bc\"01 inside the message.
		msg := assertJSONError(t, rec)
		assert.Contains(t, msg, `bc\"01`)
	})
}

// assertJSONError decodes the body as a {"error": ...} object and returns the
// message.
func assertJSONError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "error body is not valid JSON: %s", rec.Body.String())
	require.NotEmpty(t, resp["error"])
	return resp["error"]
}
