// Package artifact provides storage backends for generated audio artifacts.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/podcast-service/internal/core"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// FSStore keeps artifacts as flat files under a single directory, the layout
// the audio-serving endpoint streams from.
type FSStore struct {
	dir string
}

// NewFSStore creates a filesystem artifact store rooted at dir, creating the
// directory if needed.
func NewFSStore(dir string) (*FSStore, error) {
	mkdirErr := os.MkdirAll(dir, dirPermissions)
	if mkdirErr != nil {
		return nil, fmt.Errorf("failed to create artifact directory %q: %w", dir, mkdirErr)
	}

	return &FSStore{dir: dir}, nil
}

// Save writes the artifact bytes under the sanitized name.
func (s *FSStore) Save(_ context.Context, name string, data []byte) error {
	path := filepath.Join(s.dir, sanitizeName(name))

	writeErr := os.WriteFile(path, data, filePermissions)
	if writeErr != nil {
		return fmt.Errorf("failed to write artifact %q: %w", name, writeErr)
	}

	return nil
}

// Open returns the artifact bytes stored under the sanitized name.
func (s *FSStore) Open(_ context.Context, name string) ([]byte, error) {
	path := filepath.Join(s.dir, sanitizeName(name))

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, name)
		}

		return nil, fmt.Errorf("failed to read artifact %q: %w", name, readErr)
	}

	return data, nil
}

// sanitizeName strips path components and replaces characters that are
// invalid in most filesystems, so a stored reference can never escape the
// artifact directory.
func sanitizeName(name string) string {
	base := filepath.Base(name)

	replacer := strings.NewReplacer(
		"<", "_",
		">", "_",
		":", "_",
		"\"", "_",
		"\\", "_",
		"|", "_",
		"?", "_",
		"*", "_",
	)

	return replacer.Replace(base)
}
