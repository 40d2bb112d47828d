package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/personadoc/internal/doctree"
	"github.com/dgallion1/personadoc/internal/input"
	"github.com/dgallion1/personadoc/internal/parser"
	"github.com/dgallion1/personadoc/internal/query"
	"github.com/dgallion1/personadoc/internal/stats"
)

// handleAnalyze runs an analysis over a JSON batch whose documents carry
// their text inline.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	batch, err := input.Decode(bytes.NewReader(data), "json")
	if err != nil {
		writeInputError(w, err)
		return
	}

	resolver := &input.Resolver{Log: s.requestLog(r)}
	docs := resolver.Resolve(batch)
	if err := input.EnforceMinimum(docs, s.minDocs); err != nil {
		writeInputError(w, err)
		return
	}

	s.analyze(w, r, docs, batch.Role(), batch.Task())
}

// handleUpload runs an analysis over uploaded files. Form fields: files
// (repeated), persona, job_to_be_done.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("upload exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if s.minDocs > 0 && len(files) < s.minDocs {
		writeInputError(w, &input.InsufficientDocumentsError{Got: len(files), Min: s.minDocs})
		return
	}

	log := s.requestLog(r)
	docs := make([]doctree.Document, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}

		f, err := fh.Open()
		if err != nil {
			jsonError(w, "failed to open file", http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}

		doc, err := s.cache.Extract(data, filename)
		if err != nil {
			// Kept without text; the analysis reports it as skipped.
			log.Warn("text extraction failed", "filename", filename, "error", err)
			doc = &doctree.Document{ID: filename, Title: strings.TrimSuffix(filename, filepath.Ext(filename))}
		}
		docs = append(docs, *doc)
	}

	s.analyze(w, r, docs, r.FormValue("persona"), r.FormValue("job_to_be_done"))
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, docs []doctree.Document, persona, task string) {
	res, err := s.analyzer.Analyze(r.Context(), docs, persona, task)
	if err != nil {
		var emptyQuery *query.EmptyQueryError
		switch {
		case errors.As(err, &emptyQuery):
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			s.recordFailure()
			jsonError(w, "analysis cancelled", http.StatusServiceUnavailable)
		default:
			s.recordFailure()
			s.requestLog(r).Error("analysis failed", "error", err)
			jsonError(w, "analysis failed", http.StatusInternalServerError)
		}
		return
	}

	if s.stats != nil {
		s.stats.Record(stats.Run{
			Duration:  res.Duration,
			Documents: len(docs),
			Sections:  len(res.ExtractedSections),
			Skipped:   len(res.Skipped),
		})
	}
	w.Header().Set("X-Run-Id", res.RunID)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) recordFailure() {
	if s.stats != nil {
		s.stats.RecordFailure()
	}
}

func (s *Server) requestLog(r *http.Request) *slog.Logger {
	return s.log.With("request_id", middleware.GetReqID(r.Context()))
}

func writeInputError(w http.ResponseWriter, err error) {
	var ve *input.ValidationError
	var insufficient *input.InsufficientDocumentsError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid input", "problems": ve.Problems})
	case errors.As(err, &insufficient):
		jsonError(w, insufficient.Error(), http.StatusBadRequest)
	default:
		jsonError(w, err.Error(), http.StatusBadRequest)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
