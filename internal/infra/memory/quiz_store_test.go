package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"school-merit-service/internal/domain"
)

func storedQuiz(t *testing.T) domain.Quiz {
	t.Helper()
	quiz, err := domain.NewQuiz("quiz-1", "Term Quiz", "", "t1", "Ms Okello", []domain.Question{
		{Prompt: "p", Options: []string{"a", "b"}, CorrectOption: 0},
	}, 0, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new quiz: %v", err)
	}
	return quiz
}

func TestQuizStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	if _, err := store.GetQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := store.PutQuiz(ctx, storedQuiz(t)); err != nil {
		t.Fatalf("put: %v", err)
	}
	quiz, err := store.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if quiz.Title != "Term Quiz" || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}

func TestQuizStoreConditionalAppend(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	if err := store.PutQuiz(ctx, storedQuiz(t)); err != nil {
		t.Fatalf("put: %v", err)
	}

	response := domain.Response{StudentID: "S1", StudentName: "Asha", Score: 100}
	if err := store.AppendResponse(ctx, "quiz-1", response); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := store.AppendResponse(ctx, "quiz-1", response); !errors.Is(err, domain.ErrSubmissionConflict) {
		t.Fatalf("expected conflict on duplicate append, got %v", err)
	}
	if err := store.AppendResponse(ctx, "quiz-1", domain.Response{StudentID: "S2"}); err != nil {
		t.Fatalf("independent append: %v", err)
	}

	quiz, _ := store.GetQuiz(ctx, "quiz-1")
	if len(quiz.Responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(quiz.Responses))
	}
}

func TestQuizStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	if err := store.PutQuiz(ctx, storedQuiz(t)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.AppendResponse(ctx, "quiz-1", domain.Response{StudentID: "S1"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	quiz, _ := store.GetQuiz(ctx, "quiz-1")
	quiz.Responses[0].StudentID = "tampered"

	fresh, _ := store.GetQuiz(ctx, "quiz-1")
	if fresh.Responses[0].StudentID != "S1" {
		t.Fatalf("stored state leaked through returned copy")
	}
}
