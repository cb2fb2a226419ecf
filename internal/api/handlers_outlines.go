package api

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
)

var reContentHash = regexp.MustCompile(`^[0-9a-f]{64}$`)

func (s *Server) handleListOutlines(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		jsonError(w, "outline storage is not configured", http.StatusServiceUnavailable)
		return
	}
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, 1000)
	}

	list, err := s.catalog.ListOutlines(r.Context(), limit)
	if err != nil {
		s.log.Error("list outlines failed", "error", err)
		jsonError(w, "failed to list outlines: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outlines": list})
}

func (s *Server) handleGetOutline(w http.ResponseWriter, r *http.Request) {
	hash, ok := s.outlineHash(w, r)
	if !ok {
		return
	}
	rec, err := s.catalog.GetOutline(r.Context(), hash)
	if err != nil {
		s.log.Error("get outline failed", "content_hash", hash, "error", err)
		jsonError(w, "failed to load outline: "+err.Error(), http.StatusBadGateway)
		return
	}
	if rec == nil {
		jsonError(w, "outline not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteOutline(w http.ResponseWriter, r *http.Request) {
	hash, ok := s.outlineHash(w, r)
	if !ok {
		return
	}
	deleted, err := s.catalog.DeleteOutline(r.Context(), hash)
	if err != nil {
		s.log.Error("delete outline failed", "content_hash", hash, "error", err)
		jsonError(w, "failed to delete outline: "+err.Error(), http.StatusBadGateway)
		return
	}
	if !deleted {
		jsonError(w, "outline not found", http.StatusNotFound)
		return
	}
	s.log.Info("outline deleted", "content_hash", hash)
	writeJSON(w, http.StatusOK, map[string]any{"content_hash": hash, "deleted": true})
}

// outlineHash checks that storage is configured and the path carries a
// sha256 hex digest.
func (s *Server) outlineHash(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.catalog == nil {
		jsonError(w, "outline storage is not configured", http.StatusServiceUnavailable)
		return "", false
	}
	hash := chi.URLParam(r, "hash")
	if !reContentHash.MatchString(hash) {
		jsonError(w, "invalid content hash", http.StatusBadRequest)
		return "", false
	}
	return hash, true
}
