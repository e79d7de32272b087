// Package notify publishes podcast lifecycle events over NATS so downstream
// consumers can react to finished jobs without polling the HTTP API.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/book-expert/podcast-service/internal/core"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// PodcastCompletedEvent announces a job that reached the completed state.
type PodcastCompletedEvent struct {
	Header          events.EventHeader `json:"header"`
	JobID           string             `json:"job_id"`
	Title           string             `json:"title"`
	AudioURL        string             `json:"audio_url"`
	DurationSeconds int                `json:"duration_seconds"`
}

// PodcastFailedEvent announces a job that reached the failed state.
type PodcastFailedEvent struct {
	Header events.EventHeader `json:"header"`
	JobID  string             `json:"job_id"`
	Stage  string             `json:"stage"`
	Reason string             `json:"reason"`
}

// NATSNotifier implements core.LifecycleNotifier on a NATS connection.
// Publish failures are logged and swallowed: notifications are best-effort
// and must never affect the pipeline outcome.
type NATSNotifier struct {
	conn             *nats.Conn
	completedSubject string
	failedSubject    string
	log              *logger.Logger
}

// NewNATSNotifier creates a notifier publishing on the given subjects.
func NewNATSNotifier(
	conn *nats.Conn,
	completedSubject, failedSubject string,
	log *logger.Logger,
) *NATSNotifier {
	return &NATSNotifier{
		conn:             conn,
		completedSubject: completedSubject,
		failedSubject:    failedSubject,
		log:              log,
	}
}

// PodcastCompleted publishes a completion event for the job.
func (n *NATSNotifier) PodcastCompleted(_ context.Context, job core.Job) {
	event := PodcastCompletedEvent{
		Header:          newHeader(job.ID),
		JobID:           job.ID,
		Title:           job.Title,
		AudioURL:        "",
		DurationSeconds: 0,
	}

	if job.AudioURL != nil {
		event.AudioURL = *job.AudioURL
	}

	if job.Duration != nil {
		event.DurationSeconds = *job.Duration
	}

	n.publish(n.completedSubject, job.ID, event)
}

// PodcastFailed publishes a failure event for the job.
func (n *NATSNotifier) PodcastFailed(_ context.Context, jobID, stage string, cause error) {
	event := PodcastFailedEvent{
		Header: newHeader(jobID),
		JobID:  jobID,
		Stage:  stage,
		Reason: cause.Error(),
	}

	n.publish(n.failedSubject, jobID, event)
}

func (n *NATSNotifier) publish(subject, jobID string, event any) {
	data, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		n.log.Error("Failed to marshal lifecycle event for job %s: %v", jobID, marshalErr)

		return
	}

	publishErr := n.conn.Publish(subject, data)
	if publishErr != nil {
		n.log.Error("Failed to publish lifecycle event for job %s on %s: %v",
			jobID, subject, publishErr)
	}
}

func newHeader(jobID string) events.EventHeader {
	return events.EventHeader{
		Timestamp:  time.Now().UTC(),
		WorkflowID: jobID,
		EventID:    uuid.NewString(),
		UserID:     "",
		TenantID:   "",
	}
}
