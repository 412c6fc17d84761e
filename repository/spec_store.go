package repository

import (
	"context"

	"github.com/crmarques/snapdiff/queryspec"
)

// SpecStore persists key-config records.
type SpecStore interface {
	Path() string
	// Load returns the stored records in file order. A missing store is a
	// NotFound error.
	Load(ctx context.Context) ([]queryspec.Record, error)
	Save(ctx context.Context, records []queryspec.Record) error
	// Append adds record to the end of the store, creating it when missing.
	Append(ctx context.Context, record queryspec.Record) error
}

// SpecStoreOpener returns the store kept at path.
type SpecStoreOpener func(path string) SpecStore
