package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

const bookmarksTable = "bookmarks"

var bookmarkColumns = []string{
	"id", "title", "url", "category", "subcategory", "description",
	"tags", "status_type", "is_locked", "date_added", "browser_source",
}

// bookmarkRow is the table shape: tags as JSON text, date_added in unix nanoseconds.
type bookmarkRow struct {
	ID            string `db:"id"`
	Title         string `db:"title"`
	URL           string `db:"url"`
	Category      string `db:"category"`
	Subcategory   string `db:"subcategory"`
	Description   string `db:"description"`
	Tags          string `db:"tags"`
	Status        string `db:"status_type"`
	IsLocked      bool   `db:"is_locked"`
	DateAdded     int64  `db:"date_added"`
	BrowserSource string `db:"browser_source"`
}

func toRow(b *domain.Bookmark) (bookmarkRow, error) {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return bookmarkRow{}, fmt.Errorf("failed to marshal tags of %s: %w", b.ID, err)
	}
	return bookmarkRow{
		ID:            b.ID,
		Title:         b.Title,
		URL:           b.URL,
		Category:      b.Category,
		Subcategory:   b.Subcategory,
		Description:   b.Description,
		Tags:          string(raw),
		Status:        string(b.Status),
		IsLocked:      b.IsLocked,
		DateAdded:     b.DateAdded.UnixNano(),
		BrowserSource: b.BrowserSource,
	}, nil
}

func (r bookmarkRow) toBookmark() (*domain.Bookmark, error) {
	tags := []string{}
	if r.Tags != "" {
		if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags of %s: %w", r.ID, err)
		}
	}
	return &domain.Bookmark{
		ID:            r.ID,
		DateAdded:     time.Unix(0, r.DateAdded).UTC(),
		Title:         r.Title,
		URL:           r.URL,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		Description:   r.Description,
		Tags:          tags,
		Status:        domain.Status(r.Status),
		IsLocked:      r.IsLocked,
		BrowserSource: r.BrowserSource,
	}, nil
}

func (r bookmarkRow) values() []any {
	return []any{
		r.ID, r.Title, r.URL, r.Category, r.Subcategory, r.Description,
		r.Tags, r.Status, r.IsLocked, r.DateAdded, r.BrowserSource,
	}
}

// upsertSuffix works on SQLite >= 3.24 and PostgreSQL.
const upsertSuffix = `ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	url = excluded.url,
	category = excluded.category,
	subcategory = excluded.subcategory,
	description = excluded.description,
	tags = excluded.tags,
	status_type = excluded.status_type,
	is_locked = excluded.is_locked,
	browser_source = excluded.browser_source`

// List returns every bookmark, oldest first.
func (s *Store) List(ctx context.Context) ([]*domain.Bookmark, error) {
	query, args, err := s.sb.Select(bookmarkColumns...).
		From(bookmarksTable).
		OrderBy("date_added", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []bookmarkRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	out := make([]*domain.Bookmark, 0, len(rows))
	for _, r := range rows {
		b, err := r.toBookmark()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Get returns one bookmark.
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	query, args, err := s.sb.Select(bookmarkColumns...).
		From(bookmarksTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var r bookmarkRow
	if err := s.db.GetContext(ctx, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: bookmark %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return r.toBookmark()
}

// Save inserts or replaces a bookmark. date_added is never overwritten.
func (s *Store) Save(ctx context.Context, b *domain.Bookmark) error {
	return s.SaveMany(ctx, []*domain.Bookmark{b})
}

// SaveMany upserts bookmarks in one transaction.
func (s *Store) SaveMany(ctx context.Context, bookmarks []*domain.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, b := range bookmarks {
			r, err := toRow(b)
			if err != nil {
				return err
			}
			query, args, err := s.sb.Insert(bookmarksTable).
				Columns(bookmarkColumns...).
				Values(r.values()...).
				Suffix(upsertSuffix).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to save bookmark %s: %w", b.ID, err)
			}
		}
		return nil
	})
}

// Delete removes one bookmark.
func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.DeleteMany(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: bookmark %s", domain.ErrNotFound, id)
	}
	return nil
}

// DeleteMany removes bookmarks and returns how many existed.
func (s *Store) DeleteMany(ctx context.Context, ids []string) (int, error) {
	return s.deleteWhere(ctx, ids)
}

// unlocked matches rows neither flagged nor marked locked.
var unlocked = squirrel.And{
	squirrel.Eq{"is_locked": false},
	squirrel.NotEq{"status_type": string(domain.StatusLocked)},
}

// DeleteUnlocked removes the given bookmarks unless they are locked when the
// statement runs and returns how many were removed.
func (s *Store) DeleteUnlocked(ctx context.Context, ids []string) (int, error) {
	return s.deleteWhere(ctx, ids, unlocked)
}

func (s *Store) deleteWhere(ctx context.Context, ids []string, preds ...squirrel.Sqlizer) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := s.sb.Delete(bookmarksTable).Where(squirrel.Eq{"id": ids})
	for _, p := range preds {
		q = q.Where(p)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmarks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted bookmarks: %w", err)
	}
	return int(n), nil
}

// SetStatuses writes link-health statuses to the unlocked bookmarks among
// the keys, in one transaction, and returns how many rows matched.
func (s *Store) SetStatuses(ctx context.Context, statuses map[string]domain.Status) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	total := 0
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range ids {
			query, args, err := s.sb.Update(bookmarksTable).
				Set("status_type", string(statuses[id])).
				Where(squirrel.Eq{"id": id}).
				Where(unlocked).
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build update: %w", err)
			}
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("failed to set status of %s: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to count updated bookmarks: %w", err)
			}
			total += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
