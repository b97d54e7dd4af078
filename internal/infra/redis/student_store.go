package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"school-merit-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// StudentLoader fetches a student's persisted badge collection from a
// backing store on cache miss.
type StudentLoader interface {
	LoadBadges(ctx context.Context, studentID string) ([]domain.Badge, error)
}

// StudentStore is a Redis-backed implementation of app.StudentStore.
// Each student's collection lives in a list at student:{studentID}:badges,
// one JSON badge per element, preserving grant order. Grants are plain
// RPUSH appends: duplicates are allowed, so no conditional write is needed
// on this side. A student:{studentID}:filled marker records that the
// collection has been written through this store, letting an empty list
// mean "no badges" rather than "never cached".
type StudentStore struct {
	client *redis.Client
	loader StudentLoader
}

func NewStudentStore(client *redis.Client, loader StudentLoader) *StudentStore {
	return &StudentStore{client: client, loader: loader}
}

func (s *StudentStore) GetBadges(ctx context.Context, studentID string) ([]domain.Badge, error) {
	items, err := s.client.LRange(ctx, s.key(studentID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read badges: %w", err)
	}
	if len(items) == 0 && s.loader != nil {
		// An empty list is either "no badges" or "never cached". The fill
		// marker set by PutBadges tells them apart; only the latter may
		// consult the loader, otherwise a revoked-to-empty collection would
		// be resurrected from the backing document.
		filled, err := s.client.Exists(ctx, s.filledKey(studentID)).Result()
		if err != nil {
			return nil, fmt.Errorf("read fill marker: %w", err)
		}
		if filled == 0 {
			return s.fillFromLoader(ctx, studentID)
		}
	}

	badges := make([]domain.Badge, 0, len(items))
	for _, raw := range items {
		var badge domain.Badge
		if err := json.Unmarshal([]byte(raw), &badge); err != nil {
			return nil, fmt.Errorf("unmarshal badge: %w", err)
		}
		badges = append(badges, badge)
	}
	return badges, nil
}

func (s *StudentStore) AppendBadge(ctx context.Context, studentID string, badge domain.Badge) error {
	raw, err := json.Marshal(badge)
	if err != nil {
		return fmt.Errorf("marshal badge: %w", err)
	}
	return s.client.RPush(ctx, s.key(studentID), raw).Err()
}

// PutBadges rewrites the whole collection, used by revoke and the cleanup
// pass. Delete, re-push and the fill marker run in one pipeline round trip;
// the marker makes an emptied collection stick instead of reading as a
// cache miss.
func (s *StudentStore) PutBadges(ctx context.Context, studentID string, badges []domain.Badge) error {
	encoded := make([]interface{}, 0, len(badges))
	for _, badge := range badges {
		raw, err := json.Marshal(badge)
		if err != nil {
			return fmt.Errorf("marshal badge: %w", err)
		}
		encoded = append(encoded, raw)
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(studentID))
	if len(encoded) > 0 {
		pipe.RPush(ctx, s.key(studentID), encoded...)
	}
	pipe.Set(ctx, s.filledKey(studentID), "1", 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rewrite badges: %w", err)
	}
	return nil
}

// ListStudents scans for badge keys; used only by the cleanup pass.
func (s *StudentStore) ListStudents(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, "student:*:badges", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan students: %w", err)
		}
		for _, key := range keys {
			id := strings.TrimSuffix(strings.TrimPrefix(key, "student:"), ":badges")
			ids = append(ids, id)
		}
		cursor = next
		if cursor == 0 {
			return ids, nil
		}
	}
}

func (s *StudentStore) fillFromLoader(ctx context.Context, studentID string) ([]domain.Badge, error) {
	badges, err := s.loader.LoadBadges(ctx, studentID)
	if err != nil {
		if errors.Is(err, domain.ErrStudentNotFound) {
			return []domain.Badge{}, nil
		}
		return nil, err
	}
	if err := s.PutBadges(ctx, studentID, badges); err != nil {
		return nil, err
	}
	return badges, nil
}

func (s *StudentStore) key(studentID string) string {
	return "student:" + studentID + ":badges"
}

func (s *StudentStore) filledKey(studentID string) string {
	return "student:" + studentID + ":filled"
}
