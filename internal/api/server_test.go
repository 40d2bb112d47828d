package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/personadoc/internal/config"
	"github.com/dgallion1/personadoc/internal/parser"
	"github.com/dgallion1/personadoc/internal/pipeline"
	"github.com/dgallion1/personadoc/internal/stats"
)

const (
	nightlife = "Nightlife Guide\nThe coastal towns offer bars and clubs for groups of friends. Plan a night out in Nice with college friends."
	cuisine   = "Cuisine\nTry the local markets and a cooking class. A group trip should include a long lunch."
	history   = "History\nRoman ruins dot the region. Medieval villages are worth a day trip."
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           8090,
			CORSOrigins:    []string{"*"},
			MaxUploadBytes: 1 << 20,
		},
		Analysis: config.AnalysisConfig{MinDocuments: 3},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *stats.RunStats) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := pipeline.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2025, 7, 10, 15, 31, 22, 0, time.UTC) }
	runStats := stats.New(time.Hour)
	srv := NewServer(pipeline.NewAnalyzer(opts, log), parser.NewCache(0, 0), runStats, log, cfg)
	return srv, runStats
}

func batchBody(role, task string, contents ...string) string {
	docs := make([]map[string]any, len(contents))
	for i, c := range contents {
		docs[i] = map[string]any{"filename": []string{"nightlife.pdf", "cuisine.pdf", "history.pdf", "extra.pdf"}[i], "content": c}
	}
	b, _ := json.Marshal(map[string]any{
		"documents":      docs,
		"persona":        map[string]string{"role": role},
		"job_to_be_done": map[string]string{"task": task},
	})
	return string(b)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAnalyze_Success(t *testing.T) {
	srv, runStats := newTestServer(t, testConfig())
	body := batchBody("Travel Planner", "Plan a trip for a group of college friends", nightlife, cuisine, history)

	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Run-Id"))

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"nightlife.pdf", "cuisine.pdf", "history.pdf"}, res.Metadata.InputDocuments)
	require.NotEmpty(t, res.ExtractedSections)
	assert.Equal(t, 1, res.ExtractedSections[0].ImportanceRank)
	assert.Equal(t, "nightlife.pdf", res.ExtractedSections[0].Document)
	assert.Equal(t, "2025-07-10T15:31:22Z", res.Metadata.ProcessingTimestamp)

	snap := runStats.Snapshot()
	assert.Equal(t, 1, snap.Runs)
	assert.Equal(t, 3, snap.Documents)
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty query", batchBody("", "", nightlife, cuisine, history), http.StatusUnprocessableEntity},
		{"stopwords only", batchBody("the", "and of", nightlife, cuisine, history), http.StatusUnprocessableEntity},
		{"too few documents", batchBody("Travel Planner", "Plan a trip", nightlife, cuisine), http.StatusBadRequest},
		{"malformed", `{"documents": [`, http.StatusBadRequest},
		{"no persona", `{"documents": [{"filename": "a.pdf"}], "job_to_be_done": {"task": "x"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, testConfig())
			w := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(tt.body)))
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxUploadBytes = 64
	srv, _ := newTestServer(t, cfg)

	body := batchBody("Travel Planner", "Plan a trip", nightlife, cuisine, history)
	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAnalyze_SkippedDocumentWarning(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	body := batchBody("Travel Planner", "Plan a trip for college friends", nightlife, cuisine, "  \n\t ")

	w := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res.Metadata.Warnings, 1)
	assert.Contains(t, res.Metadata.Warnings[0], "history.pdf")
	for _, s := range res.ExtractedSections {
		assert.NotEqual(t, "history.pdf", s.Document)
	}
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKey = "secret"
	srv, _ := newTestServer(t, cfg)

	// Health stays public.
	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = do(t, srv, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = do(t, srv, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := do(t, srv, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

type upload struct {
	name string
	data string
}

func multipartRequest(t *testing.T, persona, task string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("persona", persona))
	require.NoError(t, mw.WriteField("job_to_be_done", task))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload_Success(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	req := multipartRequest(t, "Travel Planner", "Plan a trip for a group of college friends",
		upload{"nightlife.txt", nightlife},
		upload{"cuisine.md", "# Cuisine\n\nTry the local markets. A group trip should include a long lunch."},
		upload{"../../history.txt", history},
	)

	w := do(t, srv, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"nightlife.txt", "cuisine.md", "history.txt"}, res.Metadata.InputDocuments)
	assert.NotEmpty(t, res.ExtractedSections)
	assert.NotEmpty(t, res.SubsectionAnalysis)
}

func TestUpload_Errors(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())

	w := do(t, srv, multipartRequest(t, "Planner", "Plan", upload{"a.txt", nightlife}, upload{"b.txt", cuisine}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, multipartRequest(t, "Planner", "Plan",
		upload{"a.txt", nightlife}, upload{"b.txt", cuisine}, upload{"c.exe", "MZ"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported file type")

	w = do(t, srv, multipartRequest(t, "", "",
		upload{"a.txt", nightlife}, upload{"b.txt", cuisine}, upload{"c.txt", history}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestStats_RecordsRuns(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	body := batchBody("Travel Planner", "Plan a trip", nightlife, cuisine, history)
	for range 2 {
		w := do(t, srv, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Stats stats.Snapshot `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Stats.Runs)
	assert.Equal(t, 6, out.Stats.Documents)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd.md": "passwd.md",
		`C:\docs\plan.docx`:   "plan.docx",
		"..":                  "_",
		"":                    "unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "nope", http.StatusTeapot)
	}))

	do(t, h, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Contains(t, buf.String(), "status=418")
	assert.Contains(t, buf.String(), "path=/x")

	buf.Reset()
	h = RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	do(t, h, httptest.NewRequest(http.MethodGet, "/y", nil))
	assert.Contains(t, buf.String(), "status=200")
}
