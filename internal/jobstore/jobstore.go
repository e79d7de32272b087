// Package jobstore provides persistence backends for podcast generation jobs.
package jobstore

import (
	"time"

	"github.com/book-expert/podcast-service/internal/core"
	"github.com/google/uuid"
)

// DefaultRecentLimit caps ListRecent when the caller does not supply a limit.
const DefaultRecentLimit = 10

// newJobFromDraft materializes a draft into a full record: identity and
// creation time are assigned here, result fields start null.
func newJobFromDraft(draft core.JobDraft) core.Job {
	status := draft.Status
	if status == "" {
		status = core.StatusQueued
	}

	return core.Job{
		ID:              uuid.NewString(),
		Title:           draft.Title,
		OriginalContent: draft.OriginalContent,
		GeneratedScript: core.Script{Segments: []core.ScriptSegment{}, EstimatedDuration: 0},
		AudioURL:        nil,
		Duration:        nil,
		Settings:        draft.Settings,
		Status:          status,
		CreatedAt:       time.Now().UTC(),
	}
}

// applyUpdate performs the shallow merge: nil update fields leave the
// existing value untouched.
func applyUpdate(job *core.Job, update core.JobUpdate) {
	if update.Title != nil {
		job.Title = *update.Title
	}

	if update.GeneratedScript != nil {
		job.GeneratedScript = *update.GeneratedScript
	}

	if update.AudioURL != nil {
		job.AudioURL = update.AudioURL
	}

	if update.Duration != nil {
		job.Duration = update.Duration
	}

	if update.Status != nil {
		job.Status = *update.Status
	}
}

// cloneJob returns a deep enough copy that callers cannot mutate stored
// segment slices or nullable fields behind the store's back.
func cloneJob(job core.Job) core.Job {
	copied := job

	segments := make([]core.ScriptSegment, len(job.GeneratedScript.Segments))
	copy(segments, job.GeneratedScript.Segments)
	copied.GeneratedScript.Segments = segments

	if job.AudioURL != nil {
		audioURL := *job.AudioURL
		copied.AudioURL = &audioURL
	}

	if job.Duration != nil {
		duration := *job.Duration
		copied.Duration = &duration
	}

	return copied
}
