// Package artifact_test tests the NATS-backed artifact store against an
// embedded server.
package artifact_test

import (
	"context"
	"testing"

	"github.com/book-expert/podcast-service/internal/artifact"
	"github.com/book-expert/podcast-service/internal/core"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

// startTestServer starts an in-memory NATS server for testing purposes.
func startTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	return natsServer, natsConnection
}

func TestNATSStore_SaveOpen(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := artifact.NewNATSStore(jetstreamContext, "test-podcast-audio")
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("combined podcast audio")

	err = store.Save(ctx, "podcast_xyz.mp3", data)
	require.NoError(t, err)

	loaded, err := store.Open(ctx, "podcast_xyz.mp3")
	require.NoError(t, err)
	require.Equal(t, data, loaded)
}

func TestNATSStore_OpenMissing(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := startTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := artifact.NewNATSStore(jetstreamContext, "test-podcast-audio-missing")
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "absent.mp3")
	require.ErrorIs(t, err, core.ErrArtifactNotFound)
}
