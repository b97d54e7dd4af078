package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"school-merit-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches authored quiz content from a backing store (e.g., the
// Postgres document tables).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizStore is a Redis-backed implementation of app.QuizStore.
// Layout:
//
//	SET  quiz:{quizID}:doc       JSON quiz document, responses excluded
//	HSET quiz:{quizID}:responses {studentID} {JSON response}
//
// The responses hash is the system of record for submissions. Appends go
// through HSETNX, which is the atomic compare-and-append enforcing
// at-most-one response per student: the second writer for the same field
// loses and gets domain.ErrSubmissionConflict.
//
// Quiz documents missing from Redis are filled from the loader with a
// jittered TTL, coalesced through singleflight so a cold cache does not
// stampede the backing store.
type QuizStore struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuizStore(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizStore {
	return &QuizStore{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (s *QuizStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.loadDoc(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}

	responses, err := s.loadResponses(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.Responses = responses
	return quiz, nil
}

// PutQuiz stores an authored quiz document without a TTL: documents written
// here are the system of record, unlike loader-filled cache entries.
func (s *QuizStore) PutQuiz(ctx context.Context, quiz domain.Quiz) error {
	doc := quiz
	doc.Responses = nil
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	return s.client.Set(ctx, s.docKey(quiz.ID), raw, 0).Err()
}

func (s *QuizStore) AppendResponse(ctx context.Context, quizID string, response domain.Response) error {
	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	set, err := s.client.HSetNX(ctx, s.responsesKey(quizID), response.StudentID, raw).Result()
	if err != nil {
		return fmt.Errorf("append response: %w", err)
	}
	if !set {
		return domain.ErrSubmissionConflict
	}
	return nil
}

func (s *QuizStore) loadDoc(ctx context.Context, quizID string) (domain.Quiz, error) {
	raw, err := s.client.Get(ctx, s.docKey(quizID)).Result()
	if err == nil {
		return unmarshalQuiz([]byte(raw))
	}
	if err != redis.Nil {
		return domain.Quiz{}, fmt.Errorf("get quiz doc: %w", err)
	}
	if s.loader == nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}

	result, err, _ := s.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the doc.
		raw, err := s.client.Get(ctx, s.docKey(quizID)).Result()
		if err == nil {
			return unmarshalQuiz([]byte(raw))
		}

		quiz, err := s.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		doc := quiz
		doc.Responses = nil
		encoded, err := json.Marshal(doc)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		_ = s.client.Set(ctx, s.docKey(quizID), encoded, s.ttlWithJitter()).Err()
		return doc, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (s *QuizStore) loadResponses(ctx context.Context, quizID string) ([]domain.Response, error) {
	fields, err := s.client.HGetAll(ctx, s.responsesKey(quizID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get responses: %w", err)
	}
	responses := make([]domain.Response, 0, len(fields))
	for _, raw := range fields {
		var response domain.Response
		if err := json.Unmarshal([]byte(raw), &response); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		responses = append(responses, response)
	}
	// Hash iteration order is arbitrary; restore submission order.
	sort.Slice(responses, func(i, j int) bool {
		if !responses[i].SubmittedAt.Equal(responses[j].SubmittedAt) {
			return responses[i].SubmittedAt.Before(responses[j].SubmittedAt)
		}
		return responses[i].StudentID < responses[j].StudentID
	})
	return responses, nil
}

func (s *QuizStore) docKey(quizID string) string {
	return "quiz:" + quizID + ":doc"
}

func (s *QuizStore) responsesKey(quizID string) string {
	return "quiz:" + quizID + ":responses"
}

func (s *QuizStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// Package-level rand is safe for concurrent singleflight callers.
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

func unmarshalQuiz(raw []byte) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}
