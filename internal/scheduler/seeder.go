package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/formats"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/service"
	"github.com/MrSnakeDoc/favorg/internal/sources/homepage"
	"github.com/MrSnakeDoc/favorg/internal/urlnorm"
)

// EntryImporter merges parsed entries into the collection.
type EntryImporter interface {
	List(ctx context.Context, f service.ListFilter) ([]*domain.Bookmark, error)
	ImportEntries(ctx context.Context, source string, entries []formats.Entry, warnings []formats.Warning) (*service.ImportResult, error)
}

// Seeder imports a Homepage yaml file at startup. Entries whose URL is
// already in the collection are left out, so restarting does not pile up
// duplicates.
type Seeder struct {
	loader *homepage.Loader
	svc    EntryImporter
	logger logger.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(seedFile string, svc EntryImporter, log logger.Logger) *Seeder {
	return &Seeder{
		loader: homepage.NewLoader(seedFile),
		svc:    svc,
		logger: log.With(logger.Component("seeder")),
	}
}

// Seed loads the file and imports the new entries.
func (s *Seeder) Seed(ctx context.Context) (*service.ImportSummary, error) {
	s.logger.Info("seeding bookmarks from homepage", logger.String("file", s.loader.Path()))

	config, err := s.loader.Load()
	if err != nil {
		return nil, err
	}
	entries, warnings, err := homepage.MapEntries(config)
	if err != nil {
		return nil, fmt.Errorf("failed to map homepage entries: %w", err)
	}

	existing, err := s.svc.List(ctx, service.ListFilter{})
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(existing))
	for _, b := range existing {
		if n, err := b.NormalizedURL(); err == nil {
			known[n] = true
		}
	}

	fresh := entries[:0]
	for _, e := range entries {
		if n, err := urlnorm.Normalize(e.URL); err == nil && known[n] {
			continue
		}
		fresh = append(fresh, e)
	}

	if len(fresh) == 0 {
		s.logger.Info("homepage seed already applied", logger.Int("entries", len(entries)))
		return &service.ImportSummary{BrowserSource: homepage.Source, Warnings: warnings}, nil
	}

	res, err := s.svc.ImportEntries(ctx, homepage.Source, fresh, warnings)
	if err != nil {
		return nil, fmt.Errorf("failed to import homepage entries: %w", err)
	}
	res.Summary.Format = "yaml"

	s.logger.Info("homepage seed imported",
		logger.Int("imported", res.Summary.ImportedCount),
		logger.Int("already_present", len(entries)-len(fresh)),
		logger.Int("warnings", len(res.Summary.Warnings)))

	return &res.Summary, nil
}
