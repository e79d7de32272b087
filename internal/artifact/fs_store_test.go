// Package artifact_test tests the artifact storage backends.
package artifact_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/podcast-service/internal/artifact"
	"github.com/book-expert/podcast-service/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_SaveOpen(t *testing.T) {
	t.Parallel()

	store, err := artifact.NewFSStore(filepath.Join(t.TempDir(), "generated_audio"))
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("mp3 bytes")

	err = store.Save(ctx, "podcast_abc.mp3", data)
	require.NoError(t, err)

	loaded, err := store.Open(ctx, "podcast_abc.mp3")
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestFSStore_OpenMissing(t *testing.T) {
	t.Parallel()

	store, err := artifact.NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "absent.mp3")
	require.ErrorIs(t, err, core.ErrArtifactNotFound)
}

func TestFSStore_NameCannotEscapeDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioDir := filepath.Join(dir, "generated_audio")

	store, err := artifact.NewFSStore(audioDir)
	require.NoError(t, err)

	ctx := context.Background()

	err = store.Save(ctx, "../escape.mp3", []byte("data"))
	require.NoError(t, err)

	// The artifact lands inside the store directory under its base name.
	_, statErr := os.Stat(filepath.Join(dir, "escape.mp3"))
	require.True(t, os.IsNotExist(statErr))

	loaded, err := store.Open(ctx, "../escape.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), loaded)
}
