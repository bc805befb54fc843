// Package server exposes a dataset through the same routes as the names
// statistics API, for local development and offline demos.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/verte-zerg/nomes/internal/api"
	"github.com/verte-zerg/nomes/internal/model"
)

const localidadeBrasil = "BR"

// Handler serves GET /ranking and GET /{nome} from a Source.
type Handler struct {
	source api.Source
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewHandler builds the HTTP handler for src.
func NewHandler(src api.Source, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{source: src, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /ranking", h.handleRanking)
	h.mux.HandleFunc("GET /{nome}", h.handleName)
	return h
}

// New returns an http.Server listening on addr.
func New(addr string, src api.Source, logger *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(src, logger),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	h.logger.Info("served",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", time.Since(started)))
}

func (h *Handler) handleRanking(w http.ResponseWriter, r *http.Request) {
	records, err := h.source.Ranking(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if records == nil {
		records = []model.NameRecord{}
	}
	writeJSON(w, []model.ResultSet{{Localidade: localidadeBrasil, Res: records}})
}

func (h *Handler) handleName(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSpace(r.PathValue("nome")))
	records, err := h.source.NameHistory(r.Context(), name)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		h.fail(w, err)
		return
	}
	if len(records) == 0 {
		writeJSON(w, []model.ResultSet{})
		return
	}
	writeJSON(w, []model.ResultSet{{
		Nome:       strings.ToUpper(name),
		Localidade: localidadeBrasil,
		Res:        records,
	}})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("source failed", zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent.
		_ = err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
