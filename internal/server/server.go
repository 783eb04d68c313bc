// Package server implements the cdhidef HTTP surface.
//
// Serve mode exposes the conversion engine to callers that already have a
// HiDeF output pair, mirroring how community-detection services invoke
// converters over REST. Every successful conversion is archived and can
// be fetched again by id.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/idekerlab/cdhidef-go/pkg/archive"
	"github.com/idekerlab/cdhidef-go/pkg/buildinfo"
	"github.com/idekerlab/cdhidef-go/pkg/errors"
	"github.com/idekerlab/cdhidef-go/pkg/hidef"
	"github.com/idekerlab/cdhidef-go/pkg/pipeline"
)

// maxUploadBytes bounds one multipart upload (nodes + edges files).
const maxUploadBytes = 256 << 20

// Server handles conversion requests.
type Server struct {
	runner  *pipeline.Runner
	store   archive.Store
	logger  *log.Logger
	started time.Time
}

// New creates a server around a pipeline runner and an archive store.
func New(runner *pipeline.Runner, store archive.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:  runner,
		store:   store,
		logger:  logger,
		started: time.Now(),
	}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/status", s.handleStatus)
	r.Route("/v1/conversions", func(r chi.Router) {
		r.Post("/", s.handleConvert)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Delete("/{id}", s.handleDelete)
	})
	return r
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// statusResponse is the /status payload.
type statusResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Name:    "cdhidef",
		Version: buildinfo.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// conversionResponse is the POST /v1/conversions payload.
type conversionResponse struct {
	ID     string          `json:"id"`
	Empty  bool            `json:"empty,omitempty"`
	Stats  pipeline.Stats  `json:"stats"`
	Result json.RawMessage `json:"result"`
}

// handleConvert accepts a multipart upload with "nodes" and "edges" file
// parts, converts the pair and archives the document.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "parse multipart form: %v", err))
		return
	}

	dir, err := os.MkdirTemp("", "cdhidef_upload_")
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "create upload dir"))
		return
	}
	defer os.RemoveAll(dir)

	nodesPath, err := saveUpload(r, "nodes", dir)
	if err != nil {
		writeError(w, err)
		return
	}
	edgesPath, err := saveUpload(r, "edges", dir)
	if err != nil {
		writeError(w, err)
		return
	}

	docOpts := hidef.DocumentOptions{
		NoAttributes: r.URL.Query().Get("attributes") == "false",
	}
	res, err := s.runner.ConvertOnly(r.Context(), nodesPath, edgesPath, docOpts)
	if err != nil {
		writeError(w, err)
		return
	}

	rec := archive.NewRecord(res.Document)
	rec.Clusters = res.Stats.Clusters
	rec.Memberships = res.Stats.Memberships
	rec.Containments = res.Stats.Containments
	rec.Empty = res.Empty
	if err := s.store.Save(r.Context(), rec); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "archive conversion"))
		return
	}

	status := http.StatusCreated
	if res.Empty {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, conversionResponse{
		ID:     rec.ID,
		Empty:  res.Empty,
		Stats:  res.Stats,
		Result: json.RawMessage(res.Document),
	})
}

// handleList returns all archived conversions, newest first, without
// their document payloads.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	for _, rec := range records {
		rec.Document = nil
	}
	if records == nil {
		records = []*archive.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// saveUpload writes the named multipart file part to dir and returns its
// path.
func saveUpload(r *http.Request, field, dir string) (string, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return "", errors.New(errors.ErrCodeMissingInput, "missing %q file part", field)
	}
	defer file.Close()

	path := filepath.Join(dir, field)
	out, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "create upload file")
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "store upload")
	}
	return path, nil
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// writeError maps error codes to HTTP statuses and writes the envelope.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeMissingInput, errors.ErrCodeMalformedRow,
		errors.ErrCodeDanglingReference, errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeEmptyInput:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		status = http.StatusNotFound
	case "":
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
