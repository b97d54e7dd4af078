package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"school-merit-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// DocumentStore loads quiz and student documents from Postgres JSONB tables.
// It backs the Redis stores on cache miss; writes flow through Redis, which
// is the system of record for responses and badge appends.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

// studentDocument mirrors the persisted student shape; only the badge
// collection concerns this service.
type studentDocument struct {
	ID     string         `json:"id"`
	Badges []domain.Badge `json:"badges"`
}

func (s *DocumentStore) LoadBadges(ctx context.Context, studentID string) ([]domain.Badge, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM students WHERE id=$1`, studentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	var doc studentDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal student: %w", err)
	}
	return doc.Badges, nil
}
