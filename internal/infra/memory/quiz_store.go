package memory

import (
	"context"
	"sync"

	"school-merit-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore. The response
// append is conditional under the store lock, so the single-submission
// invariant holds even for concurrent duplicate submissions.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]domain.Quiz)}
}

// NewQuizStoreWithQuizzes seeds the store, for demos and tests.
func NewQuizStoreWithQuizzes(quizzes map[string]domain.Quiz) *QuizStore {
	store := NewQuizStore()
	for id, quiz := range quizzes {
		store.quizzes[id] = quiz
	}
	return store
}

func (s *QuizStore) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	responses := make([]domain.Response, len(quiz.Responses))
	copy(responses, quiz.Responses)
	quiz.Responses = responses
	return quiz, nil
}

func (s *QuizStore) PutQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

// AppendResponse is the compare-and-append: it re-checks for an existing
// response under the write lock and rejects the loser of a race with
// domain.ErrSubmissionConflict.
func (s *QuizStore) AppendResponse(_ context.Context, quizID string, response domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	for _, r := range quiz.Responses {
		if r.StudentID == response.StudentID {
			return domain.ErrSubmissionConflict
		}
	}
	quiz.Responses = append(quiz.Responses, response)
	s.quizzes[quizID] = quiz
	return nil
}
