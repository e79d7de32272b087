package core

import "errors"

// Validation errors. These are surfaced synchronously to the submitting
// caller; no job is created when one of them fires.
var (
	// ErrContentTooShort indicates the submitted content is below the minimum length.
	ErrContentTooShort = errors.New("content too short")
	// ErrSpeedOutOfRange indicates a voice speed multiplier outside the accepted bounds.
	ErrSpeedOutOfRange = errors.New("speed out of range")
	// ErrInvalidTargetLength indicates an unknown target-length bucket.
	ErrInvalidTargetLength = errors.New("invalid target length")
	// ErrInvalidTone indicates an unknown tone bucket.
	ErrInvalidTone = errors.New("invalid tone")
)

// Pipeline errors. Each one is stage-fatal: the orchestrator converts it into
// a terminal failed status for the job.
var (
	// ErrScriptGeneration indicates the script provider call itself failed.
	ErrScriptGeneration = errors.New("script generation failed")
	// ErrScriptFormat indicates the provider returned a structurally invalid script.
	ErrScriptFormat = errors.New("invalid script format")
	// ErrSpeechProvider indicates a whole-stage speech provider outage (auth or quota).
	ErrSpeechProvider = errors.New("speech provider unavailable")
)

// Lookup errors.
var (
	// ErrJobNotFound indicates an unknown job id.
	ErrJobNotFound = errors.New("job not found")
	// ErrArtifactNotFound indicates a missing audio artifact.
	ErrArtifactNotFound = errors.New("artifact not found")
)
