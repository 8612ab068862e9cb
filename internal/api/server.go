package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"arxtract/internal/config"
	"arxtract/internal/models"
	"arxtract/internal/paper"
	"arxtract/internal/util"
)

type Server struct {
	cfg config.Config
	svc *paper.Service
}

func NewServer(cfg config.Config, svc *paper.Service) *Server {
	return &Server{cfg: cfg, svc: svc}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/paper/from-arxiv", s.handleExtract)
	mux.HandleFunc("/paper/similarity", s.handleSimilarity)
	mux.HandleFunc("/paper/related", s.handleRelated)
	mux.HandleFunc("/paper/chat", s.handleChat)
	mux.HandleFunc("/paper/analyze", s.handleAnalyze)
	return withCORS(withRequestID(mux))
}

type paperRequest struct {
	ArxivID string            `json:"arxiv_id"`
	Query   string            `json:"query"`
	Turns   []models.ChatTurn `json:"messages"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*paperRequest, context.Context, context.CancelFunc, bool) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return nil, nil, nil, false
	}
	var req paperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return nil, nil, nil, false
	}
	req.ArxivID = strings.TrimSpace(req.ArxivID)
	if req.ArxivID == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("arxiv_id is required"))
		return nil, nil, nil, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout())
	return &req, ctx, cancel, true
}

func (s *Server) requireQuery(w http.ResponseWriter, req *paperRequest) bool {
	if strings.TrimSpace(req.Query) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("query is required"))
		return false
	}
	return true
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	req, ctx, cancel, ok := s.decode(w, r)
	if !ok {
		return
	}
	defer cancel()
	result, err := s.svc.Extract(ctx, req.ArxivID)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	req, ctx, cancel, ok := s.decode(w, r)
	if !ok {
		return
	}
	defer cancel()
	if !s.requireQuery(w, req) {
		return
	}
	result, err := s.svc.Score(ctx, req.ArxivID, req.Query)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	req, ctx, cancel, ok := s.decode(w, r)
	if !ok {
		return
	}
	defer cancel()
	if !s.requireQuery(w, req) {
		return
	}
	related, err := s.svc.Related(ctx, req.ArxivID, req.Query)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"related": related})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ctx, cancel, ok := s.decode(w, r)
	if !ok {
		return
	}
	defer cancel()
	if len(req.Turns) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("messages are required"))
		return
	}
	answer, err := s.svc.Chat(ctx, req.ArxivID, req.Turns)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ctx, cancel, ok := s.decode(w, r)
	if !ok {
		return
	}
	defer cancel()
	if !s.requireQuery(w, req) {
		return
	}
	result, err := s.svc.Analyze(ctx, req.ArxivID, req.Query)
	if err != nil {
		writeErr(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// statusFor maps pipeline sentinels to HTTP statuses. Upstream failures are
// 502 rather than 500 so callers can distinguish arXiv or provider outages
// from bugs.
func statusFor(err error) int {
	switch {
	case errors.Is(err, util.ErrInvalidIdentifier), errors.Is(err, util.ErrNoUserTurn):
		return http.StatusBadRequest
	case errors.Is(err, util.ErrPaperNotFound), errors.Is(err, util.ErrUnknownDocument):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, util.ErrFetchFailed),
		errors.Is(err, util.ErrParseFailed),
		errors.Is(err, util.ErrNoExtractableText),
		errors.Is(err, util.ErrEmbeddingUnavailable),
		errors.Is(err, util.ErrExtractionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"status":  code,
			"message": msg,
		},
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		log.Printf("req %s %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
