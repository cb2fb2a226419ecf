package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docoutline/internal/outline"
)

const maxBatchDocuments = 20

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req outline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateRequest(req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := s.engine.Segment(r.Context(), req)
	if err := res.Err(); err != nil {
		s.log.Info("outline needs clean text", "reason", res.Reason, "quality", res.Quality.Score)
	}
	writeJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Documents []outline.Request `json:"documents"`
}

type batchItem struct {
	Index  int             `json:"index"`
	Result *outline.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// handleBatchOutline segments independent documents concurrently, bounded
// by MaxConcurrentSegment. Results keep the request order.
func (s *Server) handleBatchOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*4)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Documents) == 0 {
		jsonError(w, "at least one document is required", http.StatusBadRequest)
		return
	}
	if len(req.Documents) > maxBatchDocuments {
		jsonError(w, fmt.Sprintf("at most %d documents per batch", maxBatchDocuments), http.StatusBadRequest)
		return
	}

	items := make([]batchItem, len(req.Documents))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(max(1, s.cfg.MaxConcurrentSegment))
	for i, doc := range req.Documents {
		items[i].Index = i
		if err := validateRequest(doc); err != nil {
			items[i].Error = err.Error()
			continue
		}
		g.Go(func() error {
			items[i].Result = s.engine.Segment(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

func validateRequest(req outline.Request) error {
	switch req.HeadingLevel {
	case "", "chapter":
	default:
		return fmt.Errorf("heading_level must be empty or \"chapter\", got %q", req.HeadingLevel)
	}
	if req.MaxTopics < 0 {
		return errors.New("max_topics must not be negative")
	}
	if req.MinQuality < 0 || req.MinQuality > 1 {
		return errors.New("min_quality must be within [0,1]")
	}
	if len(req.ChunkPages) > 0 && len(req.ChunkPages) != len(req.Chunks) {
		return fmt.Errorf("chunk_pages has %d entries for %d chunks", len(req.ChunkPages), len(req.Chunks))
	}
	return nil
}
