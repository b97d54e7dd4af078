package memory

import (
	"context"
	"sort"
	"sync"

	"school-merit-service/internal/domain"
)

// StudentStore is an in-memory implementation of app.StudentStore.
type StudentStore struct {
	mu     sync.RWMutex
	badges map[string][]domain.Badge
}

func NewStudentStore() *StudentStore {
	return &StudentStore{badges: make(map[string][]domain.Badge)}
}

// GetBadges returns a copy of the student's collection. A student with no
// recorded badges is an empty collection, not an error.
func (s *StudentStore) GetBadges(_ context.Context, studentID string) ([]domain.Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	badges := s.badges[studentID]
	out := make([]domain.Badge, len(badges))
	copy(out, badges)
	return out, nil
}

func (s *StudentStore) AppendBadge(_ context.Context, studentID string, badge domain.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badges[studentID] = append(s.badges[studentID], badge)
	return nil
}

func (s *StudentStore) PutBadges(_ context.Context, studentID string, badges []domain.Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]domain.Badge, len(badges))
	copy(stored, badges)
	s.badges[studentID] = stored
	return nil
}

func (s *StudentStore) ListStudents(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.badges))
	for id := range s.badges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
