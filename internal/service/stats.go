package service

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

// Stats summarizes the collection.
type Stats struct {
	Total      int                   `json:"total"`
	Locked     int                   `json:"locked"`
	ByStatus   map[domain.Status]int `json:"by_status"`
	ByCategory map[string]int        `json:"by_category"`
	ByBrowser  map[string]int        `json:"by_browser_source"`
	Categories int                   `json:"categories"`
	Bulk       []*domain.BulkState   `json:"bulk"`
	BulkBusy   bool                  `json:"bulk_busy"`
}

// Stats computes collection counters.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	stored, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	st := &Stats{
		Total:      len(records),
		ByStatus:   make(map[domain.Status]int, len(domain.AllStatuses)),
		ByCategory: make(map[string]int),
		ByBrowser:  make(map[string]int),
		Categories: len(domain.MergeCategories(stored, domain.DeriveCategories(records))),
		Bulk:       s.BulkStates(),
		BulkBusy:   s.Busy(),
	}
	for _, status := range domain.AllStatuses {
		st.ByStatus[status] = 0
	}
	for _, b := range records {
		st.ByStatus[b.Status]++
		st.ByCategory[domain.CategoryOrDefault(b.Category)]++
		if b.BrowserSource != "" {
			st.ByBrowser[b.BrowserSource]++
		}
		if b.Locked() {
			st.Locked++
		}
	}
	return st, nil
}
