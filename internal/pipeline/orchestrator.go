// Package pipeline drives podcast generation jobs through their state
// machine: queued, script generation, audio synthesis, then a terminal state.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/podcast-service/internal/core"
	"github.com/google/uuid"
)

// Stage names used in logs and failure notifications.
const (
	StageScript = "script"
	StageAudio  = "audio"
)

// DefaultTitle is used until content analysis produces a better one.
const DefaultTitle = "Generated Podcast"

// Orchestrator owns the asynchronous generation pipeline. Submitting returns
// immediately; a goroutine per job advances it through the stages, persisting
// every transition, and always parks the job in a terminal state.
type Orchestrator struct {
	store         core.JobStore
	scripts       core.ScriptGenerator
	speech        core.SpeechSynthesizer
	artifacts     core.ArtifactStore
	notifier      core.LifecycleNotifier
	scriptTimeout time.Duration
	audioTimeout  time.Duration
	log           *logger.Logger
}

// New creates a pipeline orchestrator. The notifier may be nil, which
// disables lifecycle notifications.
func New(
	store core.JobStore,
	scripts core.ScriptGenerator,
	speech core.SpeechSynthesizer,
	artifacts core.ArtifactStore,
	notifier core.LifecycleNotifier,
	scriptTimeout, audioTimeout time.Duration,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:         store,
		scripts:       scripts,
		speech:        speech,
		artifacts:     artifacts,
		notifier:      notifier,
		scriptTimeout: scriptTimeout,
		audioTimeout:  audioTimeout,
		log:           log,
	}
}

// Submit validates the settings, creates the job record, and launches the
// asynchronous pipeline. The returned job is still queued; callers poll the
// job store for progress. Validation failures create no job.
func (o *Orchestrator) Submit(ctx context.Context, settings core.GenerationSettings) (core.Job, error) {
	settings.ApplyDefaults()

	validateErr := settings.Validate()
	if validateErr != nil {
		return core.Job{}, validateErr
	}

	job, createErr := o.store.Create(ctx, core.JobDraft{
		Title:           DefaultTitle,
		OriginalContent: settings.Content,
		Settings:        settings,
		Status:          core.StatusQueued,
	})
	if createErr != nil {
		return core.Job{}, fmt.Errorf("failed to create job record: %w", createErr)
	}

	go o.run(job.ID, settings)

	return job, nil
}

// run drives one job to a terminal state. Stages execute strictly in order
// and every intermediate result is persisted before the next stage begins.
// Errors never escape: any stage-fatal failure parks the job as failed.
func (o *Orchestrator) run(jobID string, settings core.GenerationSettings) {
	o.log.Info("Job %s: starting generation pipeline", jobID)

	statusErr := o.store.SetStatus(context.Background(), jobID, core.StatusGeneratingScript)
	if statusErr != nil {
		o.fail(jobID, StageScript, statusErr)

		return
	}

	generated, scriptErr := o.generateScript(jobID, settings)
	if scriptErr != nil {
		o.fail(jobID, StageScript, scriptErr)

		return
	}

	audioStatus := core.StatusGeneratingAudio

	_, persistErr := o.store.Update(context.Background(), jobID, core.JobUpdate{
		Title:           nil,
		GeneratedScript: &generated,
		AudioURL:        nil,
		Duration:        nil,
		Status:          &audioStatus,
	})
	if persistErr != nil {
		o.fail(jobID, StageScript, persistErr)

		return
	}

	audioURL, duration, audioErr := o.synthesizeAudio(jobID, generated, settings)
	if audioErr != nil {
		o.fail(jobID, StageAudio, audioErr)

		return
	}

	completed := core.StatusCompleted

	job, completeErr := o.store.Update(context.Background(), jobID, core.JobUpdate{
		Title:           nil,
		GeneratedScript: nil,
		AudioURL:        &audioURL,
		Duration:        &duration,
		Status:          &completed,
	})
	if completeErr != nil {
		o.fail(jobID, StageAudio, completeErr)

		return
	}

	o.log.Info("Job %s: completed, %d seconds of audio at %s", jobID, duration, audioURL)

	if o.notifier != nil {
		o.notifier.PodcastCompleted(context.Background(), job)
	}
}

// generateScript runs the script stage under its timeout. It also derives the
// job title from content analysis; analysis failures are logged and ignored
// because a title is cosmetic.
func (o *Orchestrator) generateScript(
	jobID string,
	settings core.GenerationSettings,
) (core.Script, error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.scriptTimeout)
	defer cancel()

	analysis, analyzeErr := o.scripts.AnalyzeContent(ctx, settings.Content)
	if analyzeErr != nil {
		o.log.Warn("Job %s: content analysis failed, keeping default title: %v", jobID, analyzeErr)
	} else if analysis.Title != "" {
		_, titleErr := o.store.Update(ctx, jobID, core.JobUpdate{
			Title:           &analysis.Title,
			GeneratedScript: nil,
			AudioURL:        nil,
			Duration:        nil,
			Status:          nil,
		})
		if titleErr != nil {
			o.log.Warn("Job %s: failed to persist derived title: %v", jobID, titleErr)
		}
	}

	generated, generateErr := o.scripts.GenerateScript(ctx, settings.Content, settings)
	if generateErr != nil {
		return core.Script{}, generateErr
	}

	return generated, nil
}

// synthesizeAudio runs the audio stage under its timeout and persists the
// combined artifact, returning its reference and rounded total duration.
func (o *Orchestrator) synthesizeAudio(
	jobID string,
	generated core.Script,
	settings core.GenerationSettings,
) (string, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.audioTimeout)
	defer cancel()

	result, synthErr := o.speech.SynthesizePodcast(ctx, generated, settings)
	if synthErr != nil {
		return "", 0, synthErr
	}

	artifactName := "podcast_" + uuid.NewString() + ".mp3"

	saveErr := o.artifacts.Save(ctx, artifactName, result.Audio)
	if saveErr != nil {
		return "", 0, fmt.Errorf("failed to store audio artifact for job %s: %w", jobID, saveErr)
	}

	return "/api/audio/" + artifactName, int(math.Round(result.DurationSeconds)), nil
}

// fail parks the job in the terminal failed state. Partial results from the
// failing stage are left non-authoritative behind the failed status.
func (o *Orchestrator) fail(jobID, stage string, cause error) {
	o.log.Error("Job %s: %s stage failed: %v", jobID, stage, cause)

	statusErr := o.store.SetStatus(context.Background(), jobID, core.StatusFailed)
	if statusErr != nil {
		o.log.Error("Job %s: failed to persist failed status: %v", jobID, statusErr)
	}

	if o.notifier != nil {
		o.notifier.PodcastFailed(context.Background(), jobID, stage, cause)
	}
}
