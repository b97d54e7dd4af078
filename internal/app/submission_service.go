package app

import (
	"context"
	"errors"
	"log"
	"time"

	"school-merit-service/internal/domain"
)

// QuizStore abstracts the document collaborator holding quiz documents.
// AppendResponse must be an atomic compare-and-append: it fails with
// domain.ErrSubmissionConflict when a response for the same student already
// exists, so concurrent duplicate submissions can never both land.
type QuizStore interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	PutQuiz(ctx context.Context, quiz domain.Quiz) error
	AppendResponse(ctx context.Context, quizID string, response domain.Response) error
}

// SubmissionService runs the quiz submission workflow: load the quiz,
// validate and score through the domain engine, append the response
// atomically, then execute the completion-badge choreography.
type SubmissionService struct {
	quizzes  QuizStore
	merits   *MeritService
	validity time.Duration
	now      func() time.Time
}

func NewSubmissionService(quizzes QuizStore, merits *MeritService, validity time.Duration) *SubmissionService {
	return NewSubmissionServiceWithClock(quizzes, merits, validity, time.Now)
}

// NewSubmissionServiceWithClock allows deterministic timestamps in tests.
func NewSubmissionServiceWithClock(quizzes QuizStore, merits *MeritService, validity time.Duration, now func() time.Time) *SubmissionService {
	if validity <= 0 {
		validity = domain.DefaultQuizValidity
	}
	return &SubmissionService{quizzes: quizzes, merits: merits, validity: validity, now: now}
}

// CreateQuiz validates and stores a new quiz with the configured validity
// window. Questions are immutable after this point.
func (s *SubmissionService) CreateQuiz(ctx context.Context, id, title, description, authorID, authorName string, questions []domain.Question) (domain.Quiz, error) {
	quiz, err := domain.NewQuiz(id, title, description, authorID, authorName, questions, s.validity, s.now())
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.quizzes.PutQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Quiz loads a quiz document.
func (s *SubmissionService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// Submit records a student's attempt. A store-level append conflict means a
// concurrent submission for the same student won the race between our read
// and write; it is surfaced as ErrAlreadySubmitted, the same outcome the
// student would have seen on a re-read.
func (s *SubmissionService) Submit(ctx context.Context, quizID, studentID, studentName string, answers map[int]int) (domain.Response, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Response{}, err
	}

	result, err := quiz.Submit(studentID, studentName, answers, s.now())
	if err != nil {
		return domain.Response{}, err
	}

	if err := s.quizzes.AppendResponse(ctx, quizID, result.Response); err != nil {
		if errors.Is(err, domain.ErrSubmissionConflict) {
			return domain.Response{}, domain.ErrAlreadySubmitted
		}
		return domain.Response{}, err
	}

	// The response is durably recorded at this point. A failed badge grant
	// must not unwind it, so the grant is logged and dropped on error.
	grant := result.BadgeGrant
	if _, err := s.merits.Grant(ctx, grant.StudentID, grant.BadgeType, grant.GrantedBy); err != nil {
		log.Printf("warn: completion badge grant failed for student %s on quiz %s: %v", studentID, quizID, err)
	}

	return result.Response, nil
}
