package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/book-expert/podcast-service/internal/core"
	"github.com/redis/go-redis/v9"
)

const recentSetKey = "podcasts"

// RedisStore persists jobs in Redis: one JSON value per job under
// podcast:<id>, plus a sorted set scored by creation time for ListRecent.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed job store around an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(id string) string {
	return "podcast:" + id
}

// Create assigns identity and creation time to the draft and stores it.
func (s *RedisStore) Create(ctx context.Context, draft core.JobDraft) (core.Job, error) {
	job := newJobFromDraft(draft)

	data, marshalErr := json.Marshal(job)
	if marshalErr != nil {
		return core.Job{}, fmt.Errorf("failed to marshal job %s: %w", job.ID, marshalErr)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, jobKey(job.ID), data, 0)
	pipe.ZAdd(ctx, recentSetKey, redis.Z{
		Score:  float64(job.CreatedAt.UnixNano()),
		Member: job.ID,
	})

	_, execErr := pipe.Exec(ctx)
	if execErr != nil {
		return core.Job{}, fmt.Errorf("failed to store job %s: %w", job.ID, execErr)
	}

	return job, nil
}

// Get returns the job with the given id.
func (s *RedisStore) Get(ctx context.Context, id string) (core.Job, error) {
	data, getErr := s.client.Get(ctx, jobKey(id)).Bytes()
	if getErr != nil {
		if errors.Is(getErr, redis.Nil) {
			return core.Job{}, fmt.Errorf("%w: %s", core.ErrJobNotFound, id)
		}

		return core.Job{}, fmt.Errorf("failed to fetch job %s: %w", id, getErr)
	}

	var job core.Job

	unmarshalErr := json.Unmarshal(data, &job)
	if unmarshalErr != nil {
		return core.Job{}, fmt.Errorf("failed to parse job %s: %w", id, unmarshalErr)
	}

	return job, nil
}

// ListRecent returns at most limit jobs ordered by creation time descending.
func (s *RedisStore) ListRecent(ctx context.Context, limit int) ([]core.Job, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	ids, rangeErr := s.client.ZRevRange(ctx, recentSetKey, 0, int64(limit)-1).Result()
	if rangeErr != nil {
		return nil, fmt.Errorf("failed to list recent jobs: %w", rangeErr)
	}

	jobs := make([]core.Job, 0, len(ids))

	for _, id := range ids {
		job, getErr := s.Get(ctx, id)
		if getErr != nil {
			// A job evicted between the range read and the fetch is
			// skipped rather than failing the listing.
			if errors.Is(getErr, core.ErrJobNotFound) {
				continue
			}

			return nil, getErr
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// Update merges the non-nil fields of update into the stored record.
func (s *RedisStore) Update(ctx context.Context, id string, update core.JobUpdate) (core.Job, error) {
	job, getErr := s.Get(ctx, id)
	if getErr != nil {
		return core.Job{}, getErr
	}

	applyUpdate(&job, update)

	data, marshalErr := json.Marshal(job)
	if marshalErr != nil {
		return core.Job{}, fmt.Errorf("failed to marshal job %s: %w", id, marshalErr)
	}

	setErr := s.client.Set(ctx, jobKey(id), data, 0).Err()
	if setErr != nil {
		return core.Job{}, fmt.Errorf("failed to store job %s: %w", id, setErr)
	}

	return job, nil
}

// SetStatus updates only the status of the job.
func (s *RedisStore) SetStatus(ctx context.Context, id string, status core.JobStatus) error {
	_, err := s.Update(ctx, id, core.JobUpdate{
		Title:           nil,
		GeneratedScript: nil,
		AudioURL:        nil,
		Duration:        nil,
		Status:          &status,
	})

	return err
}
