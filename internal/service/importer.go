package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/favorg/internal/dedup"
	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/formats"
	"github.com/MrSnakeDoc/favorg/internal/logger"
)

// ImportSummary is reported back to the caller of an import.
type ImportSummary struct {
	Format        string `json:"format"`
	BrowserSource string `json:"browser_source"`

	ImportedCount        int `json:"imported_count"`
	DuplicatesFoundCount int `json:"duplicates_found_count"`
	DeadLinksFoundCount  int `json:"dead_links_found_count"`
	SkippedCount         int `json:"skipped_count"`

	Warnings []formats.Warning `json:"warnings"`
}

// ImportResult carries the summary and the records that were persisted.
type ImportResult struct {
	Summary ImportSummary      `json:"summary"`
	Created []*domain.Bookmark `json:"created"`
}

// Import detects the format of an uploaded file, parses it and merges the
// entries into the collection. A file no parser accepts fails with
// domain.ErrUnsupportedFormat and nothing is persisted.
func (s *Service) Import(ctx context.Context, filename string, data []byte) (*ImportResult, error) {
	parsed, err := formats.Parse(filename, data)
	if err != nil {
		s.log.Warn("import rejected",
			logger.String("file", filename),
			logger.Int("bytes", len(data)),
			logger.Error(err))
		return nil, err
	}

	res, err := s.ImportEntries(ctx, parsed.Source, parsed.Entries, parsed.Warnings)
	if err != nil {
		return nil, err
	}
	res.Summary.Format = string(parsed.Format)
	return res, nil
}

// ImportEntries merges already parsed entries into the collection.
//
// Entries whose URL does not normalize are skipped with a warning. New
// records start unchecked: import never touches the network. Their
// date_added values follow file order one nanosecond apart. Duplicate
// detection runs over existing and new records together, existing first,
// so an imported copy never displaces the record already stored.
func (s *Service) ImportEntries(ctx context.Context, source string, entries []formats.Entry, warnings []formats.Warning) (*ImportResult, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	now := s.now()
	summary := ImportSummary{
		BrowserSource: source,
		Warnings:      append([]formats.Warning{}, warnings...),
	}

	created := make([]*domain.Bookmark, 0, len(entries))
	for i, e := range entries {
		b, err := domain.NewBookmark(domain.BookmarkInput{
			Title:         e.Title,
			URL:           e.URL,
			Category:      e.Category,
			Subcategory:   e.Subcategory,
			Description:   e.Description,
			Tags:          e.Tags,
			BrowserSource: source,
		}, now.Add(time.Duration(i)))
		if err != nil {
			reason := "invalid entry"
			if errors.Is(err, domain.ErrInvalidURL) {
				reason = "invalid url"
			}
			summary.Warnings = append(summary.Warnings, formats.Warning{
				Position: fmt.Sprintf("entry %d", i+1),
				Reason:   reason,
				Value:    e.URL,
			})
			summary.SkippedCount++
			continue
		}
		created = append(created, b)
	}

	all := make([]*domain.Bookmark, 0, len(existing)+len(created))
	all = append(all, existing...)
	all = append(all, created...)
	found := dedup.Find(all)

	isNew := make(map[string]bool, len(created))
	for _, b := range created {
		isNew[b.ID] = true
		if b.Status == domain.StatusDuplicate {
			summary.DuplicatesFoundCount++
		}
	}

	if len(created) > 0 {
		if err := s.store.SaveMany(ctx, created); err != nil {
			return nil, fmt.Errorf("save imported bookmarks: %w", err)
		}
	}
	// Existing records only get their duplicate mark, and only while unlocked.
	var remarked []*domain.Bookmark
	for _, b := range found.Changed {
		if !isNew[b.ID] {
			remarked = append(remarked, b)
		}
	}
	if _, err := s.store.SetStatuses(ctx, statusesOf(remarked)); err != nil {
		return nil, fmt.Errorf("save duplicate marks: %w", err)
	}

	if err := s.ensureCategories(ctx, created); err != nil {
		return nil, err
	}

	for _, b := range all {
		if b.Status == domain.StatusDead {
			summary.DeadLinksFoundCount++
		}
	}
	summary.ImportedCount = len(created)

	if found.MarkedCount > 0 {
		s.markDuplicates(all)
	}

	s.log.Info("import finished",
		logger.String("source", source),
		logger.Int("imported", summary.ImportedCount),
		logger.Int("duplicates", summary.DuplicatesFoundCount),
		logger.Int("skipped", summary.SkippedCount),
		logger.Int("warnings", len(summary.Warnings)))

	return &ImportResult{Summary: summary, Created: created}, nil
}

// ensureCategories stores the categories implied by records that are not
// stored yet.
func (s *Service) ensureCategories(ctx context.Context, records []*domain.Bookmark) error {
	if len(records) == 0 {
		return nil
	}
	stored, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	known := make(map[string]bool, len(stored))
	for _, c := range stored {
		known[c.Key()] = true
	}
	for _, c := range domain.DeriveCategories(records) {
		if known[c.Key()] {
			continue
		}
		if err := s.store.SaveCategory(ctx, c); err != nil {
			return fmt.Errorf("save category %q: %w", c.Name, err)
		}
		known[c.Key()] = true
	}
	return nil
}
