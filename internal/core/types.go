// Package core defines the domain model and interfaces for the podcast service.
package core

import (
	"fmt"
	"time"
)

// JobStatus tracks a generation job through its lifecycle.
type JobStatus string

// Job lifecycle states. A job moves strictly forward through the first four
// states; Failed is reachable from any non-terminal state.
const (
	StatusQueued           JobStatus = "queued"
	StatusGeneratingScript JobStatus = "generating_script"
	StatusGeneratingAudio  JobStatus = "generating_audio"
	StatusCompleted        JobStatus = "completed"
	StatusFailed           JobStatus = "failed"
)

// IsTerminal reports whether a job in this status will never change again.
func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Speaker identifies one of the two fixed conversational parties.
type Speaker string

// The two-party speaker set. Scripts never contain any other speaker tag.
const (
	SpeakerMale   Speaker = "male"
	SpeakerFemale Speaker = "female"
)

// ScriptSegment is one line of dialogue attributed to one host.
type ScriptSegment struct {
	Speaker Speaker `json:"speaker"`
	Name    string  `json:"name"`
	Content string  `json:"content"`
}

// Script is the structured dialogue produced by the script generation stage.
type Script struct {
	Segments          []ScriptSegment `json:"segments"`
	EstimatedDuration int             `json:"estimatedDuration"`
}

// Target length buckets accepted at submission time.
const (
	LengthBrief    = "brief"
	LengthStandard = "standard"
	LengthDetailed = "detailed"
	LengthInDepth  = "indepth"
)

// Tone buckets accepted at submission time.
const (
	ToneProfessional   = "professional"
	ToneConversational = "conversational"
	ToneCasual         = "casual"
	ToneAcademic       = "academic"
)

// Speed multiplier bounds for both hosts. Values outside this range are
// rejected at submission, never clamped.
const (
	MinSpeed = 0.7
	MaxSpeed = 1.3
)

// MinContentLength is the smallest content size accepted for generation.
const MinContentLength = 100

// GenerationSettings captures the parameters of one submission. They are
// immutable once the job is created.
type GenerationSettings struct {
	Content      string  `json:"content"`
	MaleVoice    string  `json:"maleVoice"`
	FemaleVoice  string  `json:"femaleVoice"`
	MaleSpeed    float64 `json:"maleSpeed"`
	FemaleSpeed  float64 `json:"femaleSpeed"`
	TargetLength string  `json:"targetLength"`
	Tone         string  `json:"tone"`
	IncludeIntro bool    `json:"includeIntro"`
	AddMusic     bool    `json:"addMusic"`
}

// ApplyDefaults fills unset optional fields with the documented defaults.
func (s *GenerationSettings) ApplyDefaults() {
	if s.MaleVoice == "" {
		s.MaleVoice = "David"
	}

	if s.FemaleVoice == "" {
		s.FemaleVoice = "Sarah"
	}

	if s.MaleSpeed == 0 {
		s.MaleSpeed = 1.0
	}

	if s.FemaleSpeed == 0 {
		s.FemaleSpeed = 1.0
	}

	if s.TargetLength == "" {
		s.TargetLength = LengthStandard
	}

	if s.Tone == "" {
		s.Tone = ToneConversational
	}
}

// Validate checks the submission parameters before any job is created.
func (s *GenerationSettings) Validate() error {
	if len(s.Content) < MinContentLength {
		return fmt.Errorf("%w: got %d characters, need at least %d",
			ErrContentTooShort, len(s.Content), MinContentLength)
	}

	speedErr := validateSpeed("maleSpeed", s.MaleSpeed)
	if speedErr != nil {
		return speedErr
	}

	speedErr = validateSpeed("femaleSpeed", s.FemaleSpeed)
	if speedErr != nil {
		return speedErr
	}

	switch s.TargetLength {
	case LengthBrief, LengthStandard, LengthDetailed, LengthInDepth:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTargetLength, s.TargetLength)
	}

	switch s.Tone {
	case ToneProfessional, ToneConversational, ToneCasual, ToneAcademic:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTone, s.Tone)
	}

	return nil
}

func validateSpeed(field string, speed float64) error {
	if speed < MinSpeed || speed > MaxSpeed {
		return fmt.Errorf("%w: %s must be between %.1f and %.1f, got %.2f",
			ErrSpeedOutOfRange, field, MinSpeed, MaxSpeed, speed)
	}

	return nil
}

// Job is the aggregate root persisted by the job store. AudioURL and Duration
// stay nil until the audio stage completes.
type Job struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	OriginalContent string             `json:"originalContent"`
	GeneratedScript Script             `json:"generatedScript"`
	AudioURL        *string            `json:"audioUrl"`
	Duration        *int               `json:"duration"`
	Settings        GenerationSettings `json:"settings"`
	Status          JobStatus          `json:"status"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// JobDraft carries the fields a caller supplies when creating a job. Identity,
// timestamps, and nullable result fields are assigned by the store.
type JobDraft struct {
	Title           string
	OriginalContent string
	Settings        GenerationSettings
	Status          JobStatus
}

// JobUpdate is a shallow merge against an existing job: nil fields are left
// untouched.
type JobUpdate struct {
	Title           *string
	GeneratedScript *Script
	AudioURL        *string
	Duration        *int
	Status          *JobStatus
}

// ContentAnalysis summarizes submitted content for display and titling.
type ContentAnalysis struct {
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// SynthesisResult is the output of the audio stage: one combined artifact and
// its total duration in seconds.
type SynthesisResult struct {
	Audio           []byte
	DurationSeconds float64
}
