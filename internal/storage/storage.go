package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mkonrad/wikiharvest/internal/types"
)

// Store is the interface for all record sinks.
type Store interface {
	// Persist writes a single article record.
	Persist(ctx context.Context, rec *types.ArticleRecord) error

	// Finalize writes the run-level summary for the given records. Called
	// once at end of run; implementations must do nothing for zero records.
	Finalize(ctx context.Context, records []*types.ArticleRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// MultiStore fans records out to multiple backends.
type MultiStore struct {
	backends []Store
	logger   *slog.Logger
}

// NewMultiStore creates a fan-out store over the given backends.
func NewMultiStore(logger *slog.Logger, backends ...Store) *MultiStore {
	return &MultiStore{
		backends: backends,
		logger:   logger.With("component", "multi_store"),
	}
}

func (s *MultiStore) Name() string { return "multi" }

func (s *MultiStore) Persist(ctx context.Context, rec *types.ArticleRecord) error {
	var errs []error
	for _, b := range s.backends {
		if err := b.Persist(ctx, rec); err != nil {
			s.logger.Error("backend persist failed", "backend", b.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *MultiStore) Finalize(ctx context.Context, records []*types.ArticleRecord) error {
	var errs []error
	for _, b := range s.backends {
		if err := b.Finalize(ctx, records); err != nil {
			s.logger.Error("backend finalize failed", "backend", b.Name(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *MultiStore) Close() error {
	var errs []error
	for _, b := range s.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
