// Package server exposes the podcast generation pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/book-expert/logger"
	"github.com/book-expert/podcast-service/internal/core"
	"github.com/book-expert/podcast-service/internal/document"
	"github.com/book-expert/podcast-service/internal/pipeline"
)

// maxUploadBytes caps document uploads at 10 MB.
const maxUploadBytes = 10 << 20

// recentPodcastsLimit caps the recent listing endpoint.
const recentPodcastsLimit = 10

// Server wires the HTTP API to the job store and the generation pipeline.
type Server struct {
	store        core.JobStore
	orchestrator *pipeline.Orchestrator
	scripts      core.ScriptGenerator
	artifacts    core.ArtifactStore
	log          *logger.Logger
}

// New creates the HTTP API server.
func New(
	store core.JobStore,
	orchestrator *pipeline.Orchestrator,
	scripts core.ScriptGenerator,
	artifacts core.ArtifactStore,
	log *logger.Logger,
) *Server {
	return &Server{
		store:        store,
		orchestrator: orchestrator,
		scripts:      scripts,
		artifacts:    artifacts,
		log:          log,
	}
}

// Handler returns the route table for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/generate-podcast", s.handleGeneratePodcast)
	mux.HandleFunc("GET /api/podcast/{id}/status", s.handlePodcastStatus)
	mux.HandleFunc("GET /api/podcasts/recent", s.handleRecentPodcasts)
	mux.HandleFunc("GET /api/audio/{fileName}", s.handleAudio)
	mux.HandleFunc("POST /api/upload-document", s.handleUploadDocument)
	mux.HandleFunc("POST /api/analyze-content", s.handleAnalyzeContent)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

// generateResponse acknowledges an accepted submission.
type generateResponse struct {
	PodcastID string `json:"podcastId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// statusResponse is the polling view of a job.
type statusResponse struct {
	ID              string         `json:"id"`
	Status          core.JobStatus `json:"status"`
	Title           string         `json:"title"`
	GeneratedScript *core.Script   `json:"generatedScript,omitempty"`
	AudioURL        *string        `json:"audioUrl"`
	Duration        *int           `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGeneratePodcast(w http.ResponseWriter, r *http.Request) {
	var settings core.GenerationSettings

	decodeErr := json.NewDecoder(r.Body).Decode(&settings)
	if decodeErr != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	job, submitErr := s.orchestrator.Submit(r.Context(), settings)
	if submitErr != nil {
		if isValidationError(submitErr) {
			s.writeError(w, http.StatusBadRequest, submitErr.Error())

			return
		}

		s.log.Error("Failed to submit generation job: %v", submitErr)
		s.writeError(w, http.StatusInternalServerError, "failed to create podcast job")

		return
	}

	s.writeJSON(w, http.StatusOK, generateResponse{
		PodcastID: job.ID,
		Status:    string(job.Status),
		Message:   "Podcast generation started",
	})
}

func (s *Server) handlePodcastStatus(w http.ResponseWriter, r *http.Request) {
	job, getErr := s.store.Get(r.Context(), r.PathValue("id"))
	if getErr != nil {
		if errors.Is(getErr, core.ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, "podcast not found")

			return
		}

		s.log.Error("Failed to load job %s: %v", r.PathValue("id"), getErr)
		s.writeError(w, http.StatusInternalServerError, "failed to load podcast")

		return
	}

	response := statusResponse{
		ID:              job.ID,
		Status:          job.Status,
		Title:           job.Title,
		GeneratedScript: nil,
		AudioURL:        job.AudioURL,
		Duration:        job.Duration,
	}

	if len(job.GeneratedScript.Segments) > 0 {
		script := job.GeneratedScript
		response.GeneratedScript = &script
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleRecentPodcasts(w http.ResponseWriter, r *http.Request) {
	jobs, listErr := s.store.ListRecent(r.Context(), recentPodcastsLimit)
	if listErr != nil {
		s.log.Error("Failed to list recent podcasts: %v", listErr)
		s.writeError(w, http.StatusInternalServerError, "failed to list podcasts")

		return
	}

	s.writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("fileName")

	data, openErr := s.artifacts.Open(r.Context(), fileName)
	if openErr != nil {
		if errors.Is(openErr, core.ErrArtifactNotFound) {
			s.writeError(w, http.StatusNotFound, "audio file not found")

			return
		}

		s.log.Error("Failed to open audio artifact %s: %v", fileName, openErr)
		s.writeError(w, http.StatusInternalServerError, "failed to read audio file")

		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)

	_, writeErr := w.Write(data)
	if writeErr != nil {
		s.log.Warn("Failed to stream audio artifact %s: %v", fileName, writeErr)
	}
}

// uploadResponse carries the extracted text of an uploaded document back to
// the client so it can be submitted for generation.
type uploadResponse struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	parseErr := r.ParseMultipartForm(maxUploadBytes)
	if parseErr != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart upload")

		return
	}

	file, header, formErr := r.FormFile("document")
	if formErr != nil {
		s.writeError(w, http.StatusBadRequest, "no document uploaded")

		return
	}
	defer func() { _ = file.Close() }()

	data, readErr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if readErr != nil {
		s.log.Error("Failed to read uploaded document %s: %v", header.Filename, readErr)
		s.writeError(w, http.StatusInternalServerError, "failed to read uploaded document")

		return
	}

	text, extractErr := document.ExtractText(header.Filename, data)
	if extractErr != nil {
		if errors.Is(extractErr, document.ErrUnsupportedFileType) {
			s.writeError(w, http.StatusBadRequest, extractErr.Error())

			return
		}

		s.log.Error("Failed to extract text from %s: %v", header.Filename, extractErr)
		s.writeError(w, http.StatusUnprocessableEntity, "failed to extract text from document")

		return
	}

	if len(text) < core.MinContentLength {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"document text is too short: got %d characters, need at least %d",
			len(text), core.MinContentLength))

		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		FileName: header.Filename,
		Content:  text,
	})
}

type analyzeRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleAnalyzeContent(w http.ResponseWriter, r *http.Request) {
	var request analyzeRequest

	decodeErr := json.NewDecoder(r.Body).Decode(&request)
	if decodeErr != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	if len(request.Content) < core.MinContentLength {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"content is too short: got %d characters, need at least %d",
			len(request.Content), core.MinContentLength))

		return
	}

	analysis, analyzeErr := s.scripts.AnalyzeContent(r.Context(), request.Content)
	if analyzeErr != nil {
		s.log.Error("Content analysis failed: %v", analyzeErr)
		s.writeError(w, http.StatusBadGateway, "content analysis failed")

		return
	}

	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encodeErr := json.NewEncoder(w).Encode(payload)
	if encodeErr != nil {
		s.log.Warn("Failed to encode response: %v", encodeErr)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// isValidationError reports whether a submission failure was caused by the
// caller's input rather than the service.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrContentTooShort) ||
		errors.Is(err, core.ErrSpeedOutOfRange) ||
		errors.Is(err, core.ErrInvalidTargetLength) ||
		errors.Is(err, core.ErrInvalidTone)
}
