package server

import (
	"errors"
	"net/http"

	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/storage"
)

const (
	backfillPageSize     = 100
	defaultBackfillLimit = 1000
)

type backfillRequest struct {
	Prefix string `json:"prefix,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	DryRun bool   `json:"dryRun,omitempty"`
}

type backfillEntry struct {
	Path       string `json:"path"`
	SourceID   string `json:"sourceId,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type backfillResponse struct {
	Scanned   int             `json:"scanned"`
	Ingested  int             `json:"ingested"`
	Duplicate int             `json:"duplicate"`
	Failed    int             `json:"failed"`
	DryRun    bool            `json:"dryRun"`
	Results   []backfillEntry `json:"results"`
}

// handleBackfill walks the object store under a prefix and ingests every
// blob not already known. Failures are reported per path; the scan always
// answers 200.
func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	var req backfillRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Limit <= 0 {
		req.Limit = defaultBackfillLimit
	}

	ctx := r.Context()
	resp := backfillResponse{DryRun: req.DryRun, Results: []backfillEntry{}}
	startAfter := ""

	for resp.Scanned < req.Limit {
		pageSize := min(backfillPageSize, req.Limit-resp.Scanned)
		paths, err := s.objects.List(ctx, req.Prefix, pageSize, startAfter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(paths) == 0 {
			break
		}
		startAfter = paths[len(paths)-1]

		for _, path := range paths {
			resp.Scanned++
			entry := backfillEntry{Path: path}

			if req.DryRun {
				entry.Status = "skipped"
				resp.Results = append(resp.Results, entry)
				continue
			}

			data, err := s.objects.Get(ctx, path)
			if err != nil {
				entry.Status = "error"
				entry.Error = err.Error()
				resp.Failed++
				resp.Results = append(resp.Results, entry)
				continue
			}

			result, err := s.pipeline.IngestFile(ctx, path, string(data))
			if err != nil {
				entry.Status = "error"
				entry.Error = err.Error()
				resp.Failed++
				s.logger.Warn("backfill ingest failed", "path", path, "err", err)
			} else {
				entry.SourceID = result.SourceID
				entry.DocumentID = result.DocumentID
				if result.Duplicate {
					entry.Status = "duplicate"
					resp.Duplicate++
				} else {
					entry.Status = "ingested"
					resp.Ingested++
				}
			}
			resp.Results = append(resp.Results, entry)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBackfillStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.ledger.CountByStage(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	byStage := make(map[string]int, len(counts))
	for stage, n := range counts {
		byStage[string(stage)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"stages": byStage})
}

type resetErrorsRequest struct {
	Stage string `json:"stage,omitempty"`
}

func (s *Server) handleResetErrors(w http.ResponseWriter, r *http.Request) {
	var req resetErrorsRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	target := core.StageRawIngested
	if req.Stage != "" {
		target = core.Stage(req.Stage)
		if err := core.ValidateStage(target); err != nil || target == core.StageError {
			writeError(w, http.StatusBadRequest, "invalid target stage")
			return
		}
	}

	moved, err := s.pipeline.ResetErrors(r.Context(), target)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reset": moved,
		"stage": string(target),
	})
}
