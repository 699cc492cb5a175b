package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/manabu/internal/storage"
	"github.com/hyperjump/manabu/pkg/utils"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	s.logger.Debug("chat request", zap.String("message", utils.Truncate(req.Message, 200)))
	answer, err := s.responder.Respond(r.Context(), req.Message)
	if err != nil {
		// Store failures stay out of the response body.
		s.logger.Error("respond failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondJSON(w, http.StatusOK, answer)
}

type ingestRequest struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if (req.Path == "") == (req.URL == "") {
		s.respondError(w, http.StatusBadRequest, "exactly one of path or url is required")
		return
	}
	var (
		result interface{}
		err    error
	)
	if req.Path != "" {
		s.logger.Debug("ingest file request", zap.String("path", req.Path))
		result, err = s.ingester.IngestFile(r.Context(), req.Path)
	} else {
		s.logger.Debug("ingest url request", zap.String("url", req.URL))
		result, err = s.ingester.IngestURL(r.Context(), req.URL)
	}
	if err != nil {
		s.logger.Error("ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetFact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	fact, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "fact not found")
			return
		}
		s.logger.Error("get fact failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondJSON(w, http.StatusOK, fact)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("status: count facts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	resp := map[string]interface{}{
		"facts": count,
		"config": map[string]interface{}{
			"storage_driver": s.config.Storage.Driver,
			"database_path":  s.config.Storage.DatabasePath,
		},
	}
	if s.config.Storage.Driver == "sqlite" {
		if diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
