package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultQuizValidity is the submission window applied when a quiz is created
// without an explicit one.
const DefaultQuizValidity = 12 * time.Hour

// CompletionBadgeType is granted to a student after any accepted submission.
const CompletionBadgeType = "quiz-completion"

// Question is a single-choice question. CorrectOption indexes into Options.
type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// Response is one student's completed, scored attempt. Answers maps question
// index to the selected option index and covers every question.
type Response struct {
	StudentID   string      `json:"studentId"`
	StudentName string      `json:"studentName"`
	Answers     map[int]int `json:"answers"`
	Score       int         `json:"score"`
	SubmittedAt time.Time   `json:"submittedAt"`
}

// Quiz is one assessment instance. Questions and the validity window are
// fixed at creation; the only mutation afterwards is appending a Response,
// at most one per student.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	AuthorID    string     `json:"authorId"`
	AuthorName  string     `json:"authorName"`
	Responses   []Response `json:"responses"`
}

// NewQuiz validates a quiz definition and stamps its validity window.
// Validation failures here are authoring defects, not runtime conditions:
// a quiz that passes construction can always be scored.
func NewQuiz(id, title, description, authorID, authorName string, questions []Question, validity time.Duration, now time.Time) (Quiz, error) {
	if len(questions) == 0 {
		return Quiz{}, fmt.Errorf("%w: quiz %q has no questions", ErrInvalidQuiz, id)
	}
	for i, q := range questions {
		if len(q.Options) < 2 {
			return Quiz{}, fmt.Errorf("%w: question %d has %d options, need at least 2", ErrInvalidQuiz, i, len(q.Options))
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return Quiz{}, fmt.Errorf("%w: question %d correct option %d out of range", ErrInvalidQuiz, i, q.CorrectOption)
		}
	}
	if validity <= 0 {
		validity = DefaultQuizValidity
	}
	return Quiz{
		ID:          id,
		Title:       title,
		Description: description,
		Questions:   questions,
		CreatedAt:   now,
		ExpiresAt:   now.Add(validity),
		AuthorID:    authorID,
		AuthorName:  authorName,
	}, nil
}

// Expired reports whether the submission window has closed. The window is
// half-open: a submission at exactly ExpiresAt is rejected.
func (q Quiz) Expired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// ResponseFor returns the recorded response for a student, if any.
func (q Quiz) ResponseFor(studentID string) (Response, bool) {
	for _, r := range q.Responses {
		if r.StudentID == studentID {
			return r, true
		}
	}
	return Response{}, false
}

// CanSubmit checks whether the quiz is still open for this student. Expiry
// takes precedence over a prior submission: an expired quiz is terminal
// regardless of history.
func (q Quiz) CanSubmit(studentID string, now time.Time) error {
	if q.Expired(now) {
		return ErrQuizExpired
	}
	if _, ok := q.ResponseFor(studentID); ok {
		return ErrAlreadySubmitted
	}
	return nil
}

// ScoreAnswers grades a complete answer map against the quiz and returns the
// number of correct answers and the rounded percentage score. Partial answer
// maps are rejected whole, never scored partially.
func (q Quiz) ScoreAnswers(answers map[int]int) (correct, percent int, err error) {
	for i := range q.Questions {
		if _, ok := answers[i]; !ok {
			return 0, 0, fmt.Errorf("%w: question %d unanswered", ErrIncompleteSubmission, i)
		}
	}
	for i, question := range q.Questions {
		if answers[i] == question.CorrectOption {
			correct++
		}
	}
	percent = int(math.Round(float64(correct) / float64(len(q.Questions)) * 100))
	return correct, percent, nil
}

// GrantRequest is the declarative badge-grant instruction a submission emits.
// The quiz engine does not touch student storage itself; the orchestrating
// caller executes the grant against the badge ledger.
type GrantRequest struct {
	StudentID string `json:"studentId"`
	BadgeType string `json:"badgeType"`
	GrantedBy string `json:"grantedBy"`
}

// SubmissionResult pairs the accepted response with the completion-badge
// grant the caller owes the student.
type SubmissionResult struct {
	Response   Response     `json:"response"`
	BadgeGrant GrantRequest `json:"badgeGrant"`
}

// Submit validates eligibility, scores the answers, and appends the response
// to the quiz's in-memory document. The caller is responsible for persisting
// the append atomically; a store-level conflict means another submission for
// the same student landed first.
func (q *Quiz) Submit(studentID, studentName string, answers map[int]int, now time.Time) (SubmissionResult, error) {
	if err := q.CanSubmit(studentID, now); err != nil {
		return SubmissionResult{}, err
	}
	_, percent, err := q.ScoreAnswers(answers)
	if err != nil {
		return SubmissionResult{}, err
	}

	response := Response{
		StudentID:   studentID,
		StudentName: studentName,
		Answers:     answers,
		Score:       percent,
		SubmittedAt: now,
	}
	q.Responses = append(q.Responses, response)

	return SubmissionResult{
		Response: response,
		BadgeGrant: GrantRequest{
			StudentID: studentID,
			BadgeType: CompletionBadgeType,
			GrantedBy: q.AuthorName,
		},
	}, nil
}
