package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/favorg/internal/domain"
)

func encodeBookmark(b *domain.Bookmark) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bookmark %s: %w", b.ID, err)
	}
	return data, nil
}

func decodeBookmark(data []byte) (*domain.Bookmark, error) {
	var b domain.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return &b, nil
}

// Save stores a bookmark
func (s *Store) Save(ctx context.Context, b *domain.Bookmark) error {
	return s.SaveMany(ctx, []*domain.Bookmark{b})
}

// SaveMany stores multiple bookmarks in one transaction
func (s *Store) SaveMany(ctx context.Context, bookmarks []*domain.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()

	for _, b := range bookmarks {
		data, err := encodeBookmark(b)
		if err != nil {
			return err
		}
		pipe.Set(ctx, BookmarkKey(b.ID), data, 0)
		pipe.SAdd(ctx, AllBookmarksKey(), b.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	return nil
}

// Get retrieves a bookmark by ID
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: bookmark %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return decodeBookmark(data)
}

// List retrieves all bookmarks, oldest first.
// IDs whose value vanished are dropped from the set.
func (s *Store) List(ctx context.Context) ([]*domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, AllBookmarksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		b, err := decodeBookmark([]byte(raw))
		if err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, AllBookmarksKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune bookmark set: %w", err)
		}
	}

	domain.SortByDateAdded(bookmarks)
	return bookmarks, nil
}

// Delete removes a bookmark
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
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, keys...)
	pipe.SRem(ctx, AllBookmarksKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to delete bookmarks: %w", err)
	}
	return int(del.Val()), nil
}

// maxTxRetries bounds the optimistic transactions below.
const maxTxRetries = 8

// watch runs fn in a WATCH/MULTI transaction over keys, retrying when a
// watched key changed before EXEC.
func (s *Store) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for range maxTxRetries {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redis transaction kept conflicting: %w", redis.TxFailedErr)
}

// loadWatched reads the watched bookmarks; missing ones are nil.
func loadWatched(ctx context.Context, tx *redis.Tx, keys []string) ([]*domain.Bookmark, error) {
	values, err := tx.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Bookmark, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if out[i], err = decodeBookmark([]byte(raw)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeleteUnlocked removes the given bookmarks unless they are locked when the
// transaction commits and returns how many were removed.
func (s *Store) DeleteUnlocked(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	removed := 0
	err := s.watch(ctx, func(tx *redis.Tx) error {
		current, err := loadWatched(ctx, tx, keys)
		if err != nil {
			return err
		}
		var del []string
		var members []any
		for i, b := range current {
			if b == nil || b.Locked() {
				continue
			}
			del = append(del, keys[i])
			members = append(members, ids[i])
		}
		removed = len(del)
		if removed == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, del...)
			pipe.SRem(ctx, AllBookmarksKey(), members...)
			return nil
		})
		return err
	}, keys...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete bookmarks: %w", err)
	}
	return removed, nil
}

// SetStatuses writes link-health statuses to the unlocked bookmarks among
// the keys and returns how many matched.
func (s *Store) SetStatuses(ctx context.Context, statuses map[string]domain.Status) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(statuses))
	keys := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
		keys = append(keys, BookmarkKey(id))
	}

	matched := 0
	err := s.watch(ctx, func(tx *redis.Tx) error {
		current, err := loadWatched(ctx, tx, keys)
		if err != nil {
			return err
		}
		matched = 0
		var changed []*domain.Bookmark
		for i, b := range current {
			if b == nil || b.Locked() {
				continue
			}
			matched++
			if st := statuses[ids[i]]; b.Status != st {
				b.Status = st
				changed = append(changed, b)
			}
		}
		if len(changed) == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, b := range changed {
				data, err := encodeBookmark(b)
				if err != nil {
					return err
				}
				pipe.Set(ctx, BookmarkKey(b.ID), data, 0)
			}
			return nil
		})
		return err
	}, keys...)
	if err != nil {
		return 0, fmt.Errorf("failed to set statuses: %w", err)
	}
	return matched, nil
}
