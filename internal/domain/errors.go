package domain

import "errors"

var (
	// ErrUnknownBadgeType is returned when a grant names a type absent from the catalog.
	ErrUnknownBadgeType = errors.New("badge type not in catalog")
	// ErrQuizExpired is returned when a submission arrives after the validity window closed.
	ErrQuizExpired = errors.New("quiz submission window has closed")
	// ErrAlreadySubmitted is returned when the student already has a recorded response.
	ErrAlreadySubmitted = errors.New("student has already submitted this quiz")
	// ErrIncompleteSubmission is returned when answers do not cover every question.
	ErrIncompleteSubmission = errors.New("submission does not answer every question")
	// ErrSubmissionConflict indicates a concurrent submission won the append race.
	ErrSubmissionConflict = errors.New("another submission for this student was recorded first")
	// ErrQuizNotFound indicates the quiz document could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrStudentNotFound indicates the student document could not be loaded.
	ErrStudentNotFound = errors.New("student not found")
	// ErrInvalidQuiz flags a malformed quiz definition at construction time.
	ErrInvalidQuiz = errors.New("invalid quiz definition")
)
