package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"launchpad/internal/blob"
	"launchpad/internal/config"
	"launchpad/internal/infra/persistence/postgres"
	"launchpad/internal/infra/persistence/sqlite"
)

// BlobBackend stores each document as <prefix>/<name>.json in a blob store.
type BlobBackend struct {
	store  blob.Store
	prefix string
}

// NewBlobBackend wraps store; prefix may be empty.
func NewBlobBackend(store blob.Store, prefix string) *BlobBackend {
	return &BlobBackend{store: store, prefix: prefix}
}

func (b *BlobBackend) key(name string) string {
	return path.Join(b.prefix, name+".json")
}

func (b *BlobBackend) LoadDocument(ctx context.Context, name string) ([]byte, bool, error) {
	_, rc, err := b.store.Get(ctx, b.key(name))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = rc.Close() }()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (b *BlobBackend) SaveDocument(ctx context.Context, name string, payload []byte) error {
	_, err := b.store.Put(ctx, b.key(name), bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"document": name},
	})
	return err
}

// Close is a no-op; blob stores hold no connections.
func (b *BlobBackend) Close() error { return nil }

// Open builds the Backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewBlobBackend(blob.NewMemory(), cfg.Prefix), nil
	case config.DriverSQLite, "":
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverFilesystem:
		store, err := blob.Open(ctx, blob.Options{Driver: blob.DriverFilesystem, FSRoot: cfg.FSRoot})
		if err != nil {
			return nil, err
		}
		return NewBlobBackend(store, cfg.Prefix), nil
	case config.DriverS3:
		store, err := blob.Open(ctx, blob.Options{Driver: blob.DriverS3, S3: blob.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		}})
		if err != nil {
			return nil, err
		}
		return NewBlobBackend(store, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
