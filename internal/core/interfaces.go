package core

import "context"

// JobStore provides concurrency-safe persistence for generation jobs. Every
// mutation is durable before the call returns: job status is the only signal
// the polling client has.
type JobStore interface {
	Create(ctx context.Context, draft JobDraft) (Job, error)
	Get(ctx context.Context, id string) (Job, error)
	ListRecent(ctx context.Context, limit int) ([]Job, error)
	Update(ctx context.Context, id string, update JobUpdate) (Job, error)
	SetStatus(ctx context.Context, id string, status JobStatus) error
}

// ScriptGenerator wraps the text-generation provider that turns source
// content into a two-host dialogue script.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, content string, settings GenerationSettings) (Script, error)
	AnalyzeContent(ctx context.Context, content string) (ContentAnalysis, error)
}

// SpeechSynthesizer wraps the speech provider that renders a script into one
// combined audio artifact.
type SpeechSynthesizer interface {
	SynthesizePodcast(ctx context.Context, script Script, settings GenerationSettings) (SynthesisResult, error)
}

// ArtifactStore persists generated audio blobs by name.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Open(ctx context.Context, name string) ([]byte, error)
}

// LifecycleNotifier receives terminal pipeline outcomes. Implementations must
// not block the pipeline on delivery failures.
type LifecycleNotifier interface {
	PodcastCompleted(ctx context.Context, job Job)
	PodcastFailed(ctx context.Context, jobID, stage string, cause error)
}
