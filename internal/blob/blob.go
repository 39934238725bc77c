// Package blob re-exports the object store abstraction and selects a backend.
package blob

import (
	"context"
	"fmt"

	"launchpad/internal/blob/core"
	fsstore "launchpad/internal/infra/blob/fs"
	memorystore "launchpad/internal/infra/blob/memory"
	s3store "launchpad/internal/infra/blob/s3"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
	// S3Config configures the S3 driver.
	S3Config = s3store.Config
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrNotFound reports a missing object.
var ErrNotFound = core.ErrNotFound

// Options selects and configures a backend for Open.
type Options struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the Store named by opts.Driver. The zero value opens the
// filesystem driver under its default root.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(opts.FSRoot)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", opts.Driver)
	}
}

// NewMemory returns an in-memory Store.
func NewMemory() Store { return memorystore.New() }

// NewFilesystem returns a Store rooted at root.
func NewFilesystem(root string) (Store, error) { return fsstore.New(root) }

// NewS3 returns a Store backed by an S3-compatible bucket.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) { return s3store.New(ctx, cfg) }

// NewMockS3 returns an S3 Store talking to an in-process fake bucket.
func NewMockS3() Store { return s3store.NewMock() }
