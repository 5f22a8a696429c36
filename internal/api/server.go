// Package api exposes the protocol-generation pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/munkhbat-dev/protokol/internal/actions"
	"github.com/munkhbat-dev/protokol/internal/archive"
	"github.com/munkhbat-dev/protokol/internal/entity"
	"github.com/munkhbat-dev/protokol/internal/formalize"
	"github.com/munkhbat-dev/protokol/internal/health"
	"github.com/munkhbat-dev/protokol/internal/observe"
	"github.com/munkhbat-dev/protokol/internal/protocol"
	"github.com/munkhbat-dev/protokol/pkg/provider/llm"
)

// Archiver is the subset of the archive store the server needs. Nil disables
// archiving.
type Archiver interface {
	Save(ctx context.Context, rec archive.Record) (int64, error)
	Recent(ctx context.Context, limit int) ([]archive.Record, error)
}

// Server handles protocol-generation requests. Construct with [NewServer].
type Server struct {
	formalizer *formalize.Formalizer
	extractor  *actions.Extractor
	archiver   Archiver
	health     *health.Handler
	metrics    *observe.Metrics

	// outputDir receives DOCX exports; empty disables export.
	outputDir string
}

// NewServer wires the pipeline components into a Server. archiver may be a
// typed nil-free interface or nil; outputDir may be empty to skip DOCX
// export; metrics may be nil for the package default.
func NewServer(f *formalize.Formalizer, e *actions.Extractor, archiver Archiver, h *health.Handler, outputDir string, metrics *observe.Metrics) *Server {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Server{
		formalizer: f,
		extractor:  e,
		archiver:   archiver,
		health:     h,
		metrics:    metrics,
		outputDir:  outputDir,
	}
}

// Handler returns the routed HTTP handler with the observability middleware
// applied to the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate_protocol", s.handleGenerate)
	mux.HandleFunc("GET /protocols", s.handleRecent)
	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	return observe.Middleware(s.metrics)(mux)
}

// GenerateRequest is the POST /generate_protocol body.
type GenerateRequest struct {
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Participants []string `json:"participants"`
	Body         string   `json:"body"`
}

// GenerateResponse is the success payload of POST /generate_protocol.
type GenerateResponse struct {
	Message     string          `json:"message"`
	File        string          `json:"file,omitempty"`
	ArchiveID   int64           `json:"archive_id,omitempty"`
	Protocol    ProtocolPayload `json:"protocol"`
	ActionItems []actions.Item  `json:"action_items"`
	Summary     actions.Summary `json:"summary"`
}

// ProtocolPayload mirrors the document metadata in the JSON response.
type ProtocolPayload struct {
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Participants []string `json:"participants"`
	Body         string   `json:"body"`
	Entities     []string `json:"entities,omitempty"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observe.Logger(ctx)

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "body is required"})
		return
	}

	cleaned := formalize.Normalize(req.Body)

	body, err := s.formalizer.Formalize(ctx, cleaned)
	if err != nil {
		s.writeError(w, log, "formalize", err)
		return
	}

	// Extraction reads the cleaned transcript, not the rewritten protocol:
	// provenance checks need the names and dates as originally spoken.
	items, err := s.extractor.Extract(ctx, cleaned)
	if err != nil {
		s.writeError(w, log, "extract actions", err)
		return
	}

	entities := entity.Extract(req.Body)
	doc := protocol.Build(req.Title, req.Date, req.Participants, body, items, entities)

	resp := GenerateResponse{
		Message: "Протокол амжилттай үүсгэлээ",
		Protocol: ProtocolPayload{
			Title:        doc.Title,
			Date:         doc.Date,
			Participants: doc.Participants,
			Body:         doc.Body,
			Entities:     doc.Entities,
		},
		ActionItems: items,
		Summary:     doc.Summary,
	}

	if s.outputDir != "" {
		path, err := protocol.SaveDOCX(s.outputDir, doc)
		if err != nil {
			// Export failure degrades to a JSON-only response.
			log.Error("docx export failed", slog.String("error", err.Error()))
		} else {
			resp.File = path
		}
	}

	if s.archiver != nil {
		id, err := s.archiver.Save(ctx, archive.Record{
			Transcript: req.Body,
			Protocol:   body,
			Items:      items,
			Summary:    doc.Summary,
			Entities:   entities,
		})
		if err != nil {
			// Archiving is best-effort.
			log.Error("archive save failed", slog.String("error", err.Error()))
		} else {
			resp.ArchiveID = id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if s.archiver == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "archive is not configured"})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be an integer in [1, 100]"})
			return
		}
		limit = n
	}

	recs, err := s.archiver.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// writeError maps pipeline errors onto HTTP statuses: quality failures are
// 422 (the input, not the service, is the problem), setup errors 503,
// other transport errors 502.
func (s *Server) writeError(w http.ResponseWriter, log *slog.Logger, stage string, err error) {
	log.Error(stage+" failed", slog.String("error", err.Error()))

	var qe *formalize.QualityError
	if errors.As(err, &qe) {
		body := errorResponse{Error: err.Error()}
		for _, v := range qe.Violations {
			body.Violations = append(body.Violations, v.String())
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}

	var se *actions.SchemaError
	var ne *actions.NoValidItemsError
	if errors.As(err, &se) || errors.As(err, &ne) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	if llm.IsSetupError(err) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
	}
}
