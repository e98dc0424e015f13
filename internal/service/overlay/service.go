package overlay

import (
	"context"
	"fmt"

	"github.com/emberos/emberctl/internal/logger"
	"github.com/emberos/emberctl/internal/repository/overlay"
)

// Service reconciles the persisted custom package list. The downstream
// overlay manager consumes the list file; this service only maintains it.
type Service struct {
	// repo persists the package list.
	repo overlay.Repository
}

// NewService creates a reconciler backed by the provided repository.
func NewService(repo overlay.Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// Add merges the requested names into the persisted list. Adding is
// idempotent: names already present are kept once, in their original
// position.
func (s *Service) Add(ctx context.Context, requested []string) ([]string, error) {
	existing, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load package list: %w", err)
	}

	merged := AddPackages(existing, requested)

	if err = s.repo.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("save package list: %w", err)
	}

	logger.InfoKV(ctx, "Package list updated", "total", len(merged))

	return merged, nil
}

// Remove deletes the requested names from the persisted list and returns the
// names that were not installed. When the resulting list is empty, the file
// is dropped entirely so no empty-overlay artifact remains.
func (s *Service) Remove(ctx context.Context, requested []string) (remaining, notInstalled []string, err error) {
	existing, err := s.repo.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load package list: %w", err)
	}

	remaining, notInstalled = RemovePackages(existing, requested)

	for _, name := range notInstalled {
		logger.WarnKV(ctx, "Package is not installed", "package", name)
	}

	if len(remaining) == 0 {
		if err = s.repo.Drop(ctx); err != nil {
			return nil, nil, fmt.Errorf("drop package list: %w", err)
		}

		logger.Info(ctx, "Package list is empty, overlay dropped")

		return nil, notInstalled, nil
	}

	if err = s.repo.Save(ctx, remaining); err != nil {
		return nil, nil, fmt.Errorf("save package list: %w", err)
	}

	logger.InfoKV(ctx, "Package list updated", "total", len(remaining))

	return remaining, notInstalled, nil
}
