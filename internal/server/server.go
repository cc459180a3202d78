// Package server exposes the digitizer over HTTP/JSON. Records that fail
// validation checks are stored with warnings, never rejected; only duplicates
// and empty uploads are turned away.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"

	"receipt-digitizer/internal/common"
	"receipt-digitizer/internal/entity"
	"receipt-digitizer/internal/export"
	"receipt-digitizer/internal/pipeline"
	"receipt-digitizer/internal/repository"
	"receipt-digitizer/internal/validate"
)

type Server struct {
	proc   *pipeline.Processor
	store  repository.Store
	export *export.Service
	logger *slog.Logger
}

func New(proc *pipeline.Processor, store repository.Store, exp *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{proc: proc, store: store, export: exp, logger: logger}
}

func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/receipts", s.handleIngest).Methods(http.MethodPost)
	r.HandleFunc("/receipts", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/receipts/export.xlsx", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/receipts/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/receipts/{id}/validation", s.handleValidation).Methods(http.MethodGet)
	return r
}

type ingestRequest struct {
	Text string `json:"text"`
}

type receiptResponse struct {
	Receipt    *entity.Receipt  `json:"receipt"`
	Validation *validate.Report `json:"validation"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "body must be JSON with a text field")
		return
	}

	rec, err := s.proc.Process(r.Context(), req.Text)
	if err != nil {
		code := common.CodeOf(err)
		switch code {
		case codes.InvalidArgument:
			writeError(w, httpStatus(code), "document text is empty")
		case codes.AlreadyExists:
			writeError(w, httpStatus(code), "this receipt or invoice has already been uploaded")
		case codes.Unavailable:
			s.logger.Error("server.ingest_upstream_failed", "error", err)
			writeError(w, httpStatus(code), "extraction failed")
		default:
			s.logger.Error("server.ingest_failed", "error", err)
			writeError(w, httpStatus(code), "processing failed")
		}
		return
	}

	rep := validate.Check(rec)
	writeJSON(w, http.StatusCreated, receiptResponse{Receipt: rec, Validation: &rep})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("server.list_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": recs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadReceipt(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleValidation recomputes the report on demand; it is never stored.
func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadReceipt(w, r)
	if !ok {
		return
	}
	rep := validate.Check(rec)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	b, err := s.export.ExportXLSX(r.Context())
	if err != nil {
		s.logger.Error("server.export_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="receipts.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) loadReceipt(w http.ResponseWriter, r *http.Request) (*entity.Receipt, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid receipt id")
		return nil, false
	}
	rec, err := s.store.GetByID(r.Context(), id)
	if code := common.CodeOf(err); code == codes.NotFound {
		writeError(w, httpStatus(code), "receipt not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("server.get_failed", "error", err, "receipt_id", id)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return nil, false
	}
	return rec, true
}

// httpStatus translates the canonical code taxonomy into HTTP statuses.
func httpStatus(c codes.Code) int {
	switch c {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
