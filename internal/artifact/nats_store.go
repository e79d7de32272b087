package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/book-expert/podcast-service/internal/core"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSStore keeps artifacts in a NATS JetStream object-store bucket, for
// deployments where generated audio must outlive the local filesystem.
type NATSStore struct {
	bucket string
	store  nats.ObjectStore
}

// NewNATSStore creates (or binds to) the named object-store bucket.
func NewNATSStore(jetstreamContext nats.JetStreamContext, bucketName string) (*NATSStore, error) {
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Generated podcast audio for the %s bucket.", bucketName),
		TTL:         0,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("failed to create artifact bucket '%s': %w", bucketName, err)
		}

		store, err = jetstreamContext.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to bind to existing artifact bucket '%s': %w", bucketName, err)
		}
	}

	return &NATSStore{
		bucket: bucketName,
		store:  store,
	}, nil
}

// Save uploads the artifact bytes under the given name.
func (n *NATSStore) Save(_ context.Context, name string, data []byte) error {
	reader := bytes.NewReader(data)

	_, err := n.store.Put(&nats.ObjectMeta{
		Name:        name,
		Description: "",
		Headers:     nil,
		Metadata:    nil,
		Opts:        nil,
	}, reader)
	if err != nil {
		return fmt.Errorf("failed to put artifact '%s' to bucket '%s': %w", name, n.bucket, err)
	}

	return nil
}

// Open downloads the artifact bytes stored under the given name.
func (n *NATSStore) Open(_ context.Context, name string) ([]byte, error) {
	obj, err := n.store.Get(name)
	if err != nil {
		if errors.Is(err, nats.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, name)
		}

		return nil, fmt.Errorf("failed to get artifact '%s' from bucket '%s': %w", name, n.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read artifact '%s': %w", name, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close artifact '%s': %w", name, closeErr)
	}

	return data, nil
}
