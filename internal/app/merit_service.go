package app

import (
	"context"
	"log"
	"time"

	"school-merit-service/internal/domain"
)

// StudentStore abstracts the document collaborator holding per-student badge
// collections (in-memory, Redis, etc). Badge grants are unconditional
// appends: duplicates are legitimate, so no exclusivity is required here.
type StudentStore interface {
	GetBadges(ctx context.Context, studentID string) ([]domain.Badge, error)
	AppendBadge(ctx context.Context, studentID string, badge domain.Badge) error
	PutBadges(ctx context.Context, studentID string, badges []domain.Badge) error
	ListStudents(ctx context.Context) ([]string, error)
}

// MeritService owns the badge lifecycle use cases: granting, revoking,
// querying active badges, and the optional cleanup pass that rewrites
// storage without expired entries.
type MeritService struct {
	students StudentStore
	catalog  domain.Catalog
	feed     *AwardFeed
	now      func() time.Time
}

func NewMeritService(students StudentStore, catalog domain.Catalog, feed *AwardFeed) *MeritService {
	return NewMeritServiceWithClock(students, catalog, feed, time.Now)
}

// NewMeritServiceWithClock allows deterministic timestamps in tests.
func NewMeritServiceWithClock(students StudentStore, catalog domain.Catalog, feed *AwardFeed, now func() time.Time) *MeritService {
	return &MeritService{students: students, catalog: catalog, feed: feed, now: now}
}

// Grant awards a badge to a student and publishes the award event. An
// unknown badge type is a logged no-op against storage: the typed error is
// returned for the caller to surface, but nothing is written and nothing
// breaks.
func (s *MeritService) Grant(ctx context.Context, studentID, badgeType, grantedBy string) (domain.Badge, error) {
	now := s.now()

	badges, err := s.students.GetBadges(ctx, studentID)
	if err != nil {
		return domain.Badge{}, err
	}

	next, err := domain.Grant(s.catalog, badges, badgeType, grantedBy, now)
	if err != nil {
		log.Printf("warn: badge grant skipped for student %s: type %q: %v", studentID, badgeType, err)
		return domain.Badge{}, err
	}
	granted := next[len(next)-1]

	if err := s.students.AppendBadge(ctx, studentID, granted); err != nil {
		return domain.Badge{}, err
	}

	if s.feed != nil {
		s.feed.Publish(AwardEvent{StudentID: studentID, Badge: granted, OccurredAt: now})
	}
	return granted, nil
}

// Revoke strips every badge of the given type from the student's collection.
func (s *MeritService) Revoke(ctx context.Context, studentID, badgeType string) error {
	badges, err := s.students.GetBadges(ctx, studentID)
	if err != nil {
		return err
	}
	return s.students.PutBadges(ctx, studentID, domain.Revoke(badges, badgeType))
}

// Badges returns the raw stored collection, expired entries included.
func (s *MeritService) Badges(ctx context.Context, studentID string) ([]domain.Badge, error) {
	return s.students.GetBadges(ctx, studentID)
}

// ActiveBadges returns only the badges valid right now, in stored order.
// Display metadata is refreshed from the catalog: records cache it, but the
// catalog stays authoritative.
func (s *MeritService) ActiveBadges(ctx context.Context, studentID string) ([]domain.Badge, error) {
	badges, err := s.students.GetBadges(ctx, studentID)
	if err != nil {
		return nil, err
	}
	active := domain.ActiveBadges(badges, s.now())
	for i := range active {
		entry := s.catalog.Display(active[i].Type)
		active[i].DisplayName = entry.DisplayName
		active[i].Icon = entry.Icon
	}
	return active, nil
}

// HasActive reports whether the student currently holds a valid badge of the
// given type, for eligibility checks.
func (s *MeritService) HasActive(ctx context.Context, studentID, badgeType string) (bool, error) {
	badges, err := s.students.GetBadges(ctx, studentID)
	if err != nil {
		return false, err
	}
	return domain.HasActive(badges, badgeType, s.now()), nil
}

// Cleanup rewrites each student's collection without expired badges and
// returns how many entries were removed. The pass is idempotent and purely
// an optimization: reads already filter through ActiveBadges, so skipping
// cleanup never affects correctness.
func (s *MeritService) Cleanup(ctx context.Context) (int, error) {
	now := s.now()

	students, err := s.students.ListStudents(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, studentID := range students {
		badges, err := s.students.GetBadges(ctx, studentID)
		if err != nil {
			return removed, err
		}
		active := domain.ActiveBadges(badges, now)
		if len(active) == len(badges) {
			continue
		}
		if err := s.students.PutBadges(ctx, studentID, active); err != nil {
			return removed, err
		}
		removed += len(badges) - len(active)
	}
	return removed, nil
}
