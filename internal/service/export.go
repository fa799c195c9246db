package service

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/favorg/internal/formats"
)

// ExportResult is a serialized export ready to be served as a download.
type ExportResult struct {
	Data        []byte
	FileName    string
	ContentType string
	Count       int
}

// Export serializes the filtered collection. It makes no network calls and
// does not take the bulk slot.
func (s *Service) Export(ctx context.Context, f formats.Format, opts formats.ExportOptions) (*ExportResult, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	now := s.now()
	data, err := formats.Serialize(f, records, opts, now)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		Data:        data,
		FileName:    formats.FileName(f, now),
		ContentType: f.ContentType(),
		Count:       len(formats.Filter(records, opts)),
	}, nil
}
