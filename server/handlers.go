package server

import (
	"context"
	"net/http"

	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/pipeline"
)

// pendingStages maps each batch endpoint to the park points it services.
// The embed endpoint covers both segmented and chunked: a job at chunked
// crashed mid-embed and resumes through the same handler.
var pendingStages = map[string][]core.Stage{
	"segment": {core.StageRawIngested},
	"embed":   {core.StageSegmented, core.StageChunked},
	"extract": {core.StageEmbedded},
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type jobStatusResponse struct {
	SourceID     string `json:"sourceId"`
	DocumentID   string `json:"documentId,omitempty"`
	Stage        string `json:"stage"`
	AttemptCount int    `json:"attemptCount"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sourceID := r.PathValue("sourceId")

	job, err := s.ledger.Get(r.Context(), sourceID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, jobStatusResponse{
		SourceID:     job.SourceID,
		DocumentID:   job.DocumentID,
		Stage:        string(job.Stage),
		AttemptCount: job.AttemptCount,
		ErrorMessage: job.ErrorMessage,
	})
}

type ingestRequest struct {
	Markdown string `json:"markdown"`
	Filename string `json:"filename,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Markdown == "" {
		writeError(w, http.StatusBadRequest, "markdown is required")
		return
	}

	var result *pipeline.IngestResult
	var err error
	if req.Filename != "" {
		result, err = s.pipeline.IngestFile(r.Context(), req.Filename, req.Markdown)
	} else {
		result, err = s.pipeline.IngestMarkdown(r.Context(), req.Markdown)
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type firefliesWebhookRequest struct {
	MeetingID    string `json:"meetingId"`
	TranscriptID string `json:"transcriptId"`
	EventType    string `json:"eventType,omitempty"`
}

func (s *Server) handleFirefliesWebhook(w http.ResponseWriter, r *http.Request) {
	var req firefliesWebhookRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	transcriptID := req.TranscriptID
	if transcriptID == "" {
		transcriptID = req.MeetingID
	}
	if transcriptID == "" {
		writeError(w, http.StatusBadRequest, "meetingId or transcriptId is required")
		return
	}

	result, err := s.pipeline.IngestFromProvider(r.Context(), transcriptID)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type storageWebhookRequest struct {
	Bucket string `json:"bucket,omitempty"`
	Path   string `json:"path"`
}

// handleStorageWebhook ingests a markdown blob that was dropped into the
// object store out of band. The path joins the identifier cascade as the
// filename.
func (s *Server) handleStorageWebhook(w http.ResponseWriter, r *http.Request) {
	var req storageWebhookRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	data, err := s.objects.Get(r.Context(), req.Path)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	result, err := s.pipeline.IngestFile(r.Context(), req.Path, string(data))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type stageRequest struct {
	DocumentID string `json:"documentId"`
	SourceID   string `json:"sourceId"`
}

// handleStage adapts one manual stage trigger. The document may be named
// directly or via its source id through the ledger.
func (s *Server) handleStage(run func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stageRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		documentID := req.DocumentID
		if documentID == "" {
			if req.SourceID == "" {
				writeError(w, http.StatusBadRequest, "documentId or sourceId is required")
				return
			}
			job, err := s.ledger.Get(r.Context(), req.SourceID)
			if err != nil {
				writeError(w, statusFor(err), err.Error())
				return
			}
			if job.DocumentID == "" {
				writeError(w, http.StatusConflict, "job has no document yet")
				return
			}
			documentID = job.DocumentID
		}

		if err := run(r.Context(), documentID); err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"documentId": documentID})
	}
}

type pendingRequest struct {
	Limit int `json:"limit,omitempty"`
}

type pendingResponse struct {
	Processed int                  `json:"processed"`
	Results   []pipeline.JobResult `json:"results"`
}

func (s *Server) handlePending(stages []core.Stage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pendingRequest
		if r.ContentLength > 0 {
			if err := readJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		resp := pendingResponse{Results: []pipeline.JobResult{}}
		for _, stage := range stages {
			batch, err := s.pipeline.ProcessPending(r.Context(), stage, req.Limit)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			resp.Processed += batch.Processed
			resp.Results = append(resp.Results, batch.Results...)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type ingestPendingRequest struct {
	Limit int `json:"limit,omitempty"`
}

func (s *Server) handleIngestPending(w http.ResponseWriter, r *http.Request) {
	var req ingestPendingRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	results, err := s.pipeline.PollProvider(r.Context(), req.Limit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if results == nil {
		results = []*pipeline.IngestResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ingested": len(results),
		"results":  results,
	})
}
