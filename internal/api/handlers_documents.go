package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gnkm/mdstruct/internal/chunker"
	"github.com/gnkm/mdstruct/internal/convert"
	"github.com/gnkm/mdstruct/internal/document"
	"github.com/gnkm/mdstruct/internal/ingest"
)

// handleValidate runs raw model output through fence stripping, parsing, and
// schema validation, and reports either the canonical document or every
// violation found.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		jsonError(w, "empty body", http.StatusBadRequest)
		return
	}

	doc, err := s.orchestrator.Validate(string(body))
	if err != nil {
		writeValidationFailure(w, err)
		return
	}

	canonical, err := document.Marshal(doc)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"valid":    true,
		"document": json.RawMessage(canonical),
		"stats":    document.Summarize(doc),
	})
}

// writeValidationFailure reports a rejected payload with its kind, every
// violation path, and the offending text so callers can diagnose it.
func writeValidationFailure(w http.ResponseWriter, err error) {
	kind, _ := ingest.Classify(err)
	resp := map[string]any{
		"valid": false,
		"kind":  kind,
		"error": err.Error(),
	}

	var malformed *ingest.MalformedError
	if errors.As(err, &malformed) {
		resp["raw_text"] = malformed.Text
	}
	var violation *document.ValidationError
	if errors.As(err, &violation) {
		resp["violations"] = violation.Violations
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(resp)
}

// handleStructure converts an uploaded file into the document schema.
// ?format=markdown renders the result back to markdown, ?chunks=true attaches
// retrieval chunks.
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	conv, err := convert.ForFile(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	doc, err := conv.Convert(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "conversion failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, convert.ToMarkdown(doc))
		return
	}

	canonical, err := document.Marshal(doc)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"filename": filename,
		"document": json.RawMessage(canonical),
		"stats":    document.Summarize(doc),
	}

	if r.URL.Query().Get("chunks") == "true" {
		cfg := chunker.DefaultConfig()
		if v := r.URL.Query().Get("chunk_size"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				cfg.ChunkSize = n
			}
		}
		if v := r.URL.Query().Get("overlap"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				cfg.ChunkOverlap = n
			}
		}
		resp["chunks"] = chunker.Split(doc, cfg)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
