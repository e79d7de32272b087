package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/book-expert/podcast-service/internal/core"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// FileStore persists jobs as a single JSON document keyed by id. Every
// mutation is flushed and atomically renamed into place before the call
// returns, so a polling client never observes a state the disk does not hold.
type FileStore struct {
	path string
	mu   sync.RWMutex
	jobs map[string]core.Job
}

// NewFileStore opens (or creates) a file-backed job store at the given path.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{
		path: path,
		mu:   sync.RWMutex{},
		jobs: make(map[string]core.Job),
	}

	loadErr := store.load()
	if loadErr != nil {
		return nil, loadErr
	}

	return store, nil
}

// Create assigns identity and creation time to the draft, persists it, and
// returns the stored record.
func (s *FileStore) Create(_ context.Context, draft core.JobDraft) (core.Job, error) {
	job := newJobFromDraft(draft)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = job

	persistErr := s.persistLocked()
	if persistErr != nil {
		delete(s.jobs, job.ID)

		return core.Job{}, persistErr
	}

	return cloneJob(job), nil
}

// Get returns the job with the given id.
func (s *FileStore) Get(_ context.Context, id string) (core.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.Job{}, fmt.Errorf("%w: %s", core.ErrJobNotFound, id)
	}

	return cloneJob(job), nil
}

// ListRecent returns at most limit jobs ordered by creation time descending.
func (s *FileStore) ListRecent(_ context.Context, limit int) ([]core.Job, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]core.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, cloneJob(job))
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if len(jobs) > limit {
		jobs = jobs[:limit]
	}

	return jobs, nil
}

// Update merges the non-nil fields of update into the stored record and
// persists the result. Identity never changes.
func (s *FileStore) Update(_ context.Context, id string, update core.JobUpdate) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return core.Job{}, fmt.Errorf("%w: %s", core.ErrJobNotFound, id)
	}

	applyUpdate(&job, update)
	s.jobs[id] = job

	persistErr := s.persistLocked()
	if persistErr != nil {
		return core.Job{}, persistErr
	}

	return cloneJob(job), nil
}

// SetStatus updates only the status of the job.
func (s *FileStore) SetStatus(ctx context.Context, id string, status core.JobStatus) error {
	_, err := s.Update(ctx, id, core.JobUpdate{
		Title:           nil,
		GeneratedScript: nil,
		AudioURL:        nil,
		Duration:        nil,
		Status:          &status,
	})

	return err
}

func (s *FileStore) load() error {
	data, readErr := os.ReadFile(s.path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil
		}

		return fmt.Errorf("failed to read job store file %q: %w", s.path, readErr)
	}

	unmarshalErr := json.Unmarshal(data, &s.jobs)
	if unmarshalErr != nil {
		return fmt.Errorf("failed to parse job store file %q: %w", s.path, unmarshalErr)
	}

	return nil
}

// persistLocked writes the whole collection to a temp file, syncs it, and
// renames it over the store path. Callers must hold the write lock.
func (s *FileStore) persistLocked() error {
	data, marshalErr := json.MarshalIndent(s.jobs, "", "  ")
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal job records: %w", marshalErr)
	}

	dir := filepath.Dir(s.path)

	mkdirErr := os.MkdirAll(dir, dirPermissions)
	if mkdirErr != nil {
		return fmt.Errorf("failed to create job store directory %q: %w", dir, mkdirErr)
	}

	tmpFile, tmpErr := os.CreateTemp(dir, "podcasts-*.json")
	if tmpErr != nil {
		return fmt.Errorf("failed to create temp job store file: %w", tmpErr)
	}

	writeErr := writeAndSync(tmpFile, data)
	if writeErr != nil {
		_ = os.Remove(tmpFile.Name())

		return writeErr
	}

	renameErr := os.Rename(tmpFile.Name(), s.path)
	if renameErr != nil {
		_ = os.Remove(tmpFile.Name())

		return fmt.Errorf("failed to replace job store file %q: %w", s.path, renameErr)
	}

	chmodErr := os.Chmod(s.path, filePermissions)
	if chmodErr != nil {
		return fmt.Errorf("failed to set job store permissions: %w", chmodErr)
	}

	return nil
}

func writeAndSync(file *os.File, data []byte) error {
	_, writeErr := file.Write(data)
	if writeErr != nil {
		_ = file.Close()

		return fmt.Errorf("failed to write job store data: %w", writeErr)
	}

	syncErr := file.Sync()
	if syncErr != nil {
		_ = file.Close()

		return fmt.Errorf("failed to sync job store data: %w", syncErr)
	}

	closeErr := file.Close()
	if closeErr != nil {
		return fmt.Errorf("failed to close job store file: %w", closeErr)
	}

	return nil
}
