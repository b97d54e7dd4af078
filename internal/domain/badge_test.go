package domain

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestBadgeExpiryBoundary(t *testing.T) {
	expires := testNow.Add(24 * time.Hour)
	badge := Badge{Type: "good-student", ExpiresAt: &expires}

	if !badge.IsActive(testNow) {
		t.Fatalf("badge should be active before expiry")
	}
	if !badge.IsActive(expires.Add(-time.Second)) {
		t.Fatalf("badge should be active just before expiry")
	}
	if badge.IsActive(expires) {
		t.Fatalf("badge must be inactive at exactly its expiry time")
	}
	if badge.IsActive(expires.Add(time.Hour)) {
		t.Fatalf("badge must stay inactive after expiry")
	}
}

func TestPermanentBadgeNeverExpires(t *testing.T) {
	badge := Badge{Type: "founder"}
	if !badge.IsActive(testNow.AddDate(100, 0, 0)) {
		t.Fatalf("badge without expiry must be permanently valid")
	}
}

func TestGrantAppendsWithCatalogValidity(t *testing.T) {
	catalog := DefaultCatalog()

	badges, err := Grant(catalog, nil, "good-student", "principal", testNow)
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("expected 1 badge, got %d", len(badges))
	}
	b := badges[0]
	if b.Type != "good-student" || b.AwardedBy != "principal" {
		t.Fatalf("unexpected badge %+v", b)
	}
	if b.ExpiresAt == nil || !b.ExpiresAt.Equal(testNow.AddDate(0, 0, 90)) {
		t.Fatalf("expected 90-day expiry, got %v", b.ExpiresAt)
	}
	if b.DisplayName != "Good Student" || b.Icon != "star" {
		t.Fatalf("expected catalog metadata cached on badge, got %+v", b)
	}
}

func TestGrantDuplicatesAccumulate(t *testing.T) {
	catalog := DefaultCatalog()

	badges, err := Grant(catalog, nil, "1st-place", "teacher-a", testNow)
	if err != nil {
		t.Fatalf("first grant: %v", err)
	}
	badges, err = Grant(catalog, badges, "1st-place", "teacher-b", testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if len(badges) != 2 {
		t.Fatalf("duplicate grants must accumulate, got %d badges", len(badges))
	}
}

func TestGrantDoesNotMutateInput(t *testing.T) {
	catalog := DefaultCatalog()
	original, _ := Grant(catalog, nil, "prefect", "p", testNow)

	if _, err := Grant(catalog, original, "best-child", "p", testNow); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if len(original) != 1 {
		t.Fatalf("input collection mutated, len=%d", len(original))
	}
}

func TestGrantUnknownTypeIsNoOp(t *testing.T) {
	catalog := DefaultCatalog()
	existing, _ := Grant(catalog, nil, "prefect", "p", testNow)

	next, err := Grant(catalog, existing, "not-a-real-type", "x", testNow)
	if err != ErrUnknownBadgeType {
		t.Fatalf("expected ErrUnknownBadgeType, got %v", err)
	}
	if len(next) != len(existing) {
		t.Fatalf("unknown grant must leave collection unchanged, got %d badges", len(next))
	}
	if next[0].Type != existing[0].Type {
		t.Fatalf("unknown grant altered collection content")
	}
}

func TestGrantNormalizesType(t *testing.T) {
	catalog := DefaultCatalog()

	badges, err := Grant(catalog, nil, "GOOD_STUDENT", "p", testNow)
	if err != nil {
		t.Fatalf("normalized grant failed: %v", err)
	}
	if badges[0].Type != "good-student" {
		t.Fatalf("expected wire type good-student, got %q", badges[0].Type)
	}
}

func TestRevokeRemovesAllInstances(t *testing.T) {
	catalog := DefaultCatalog()
	badges, _ := Grant(catalog, nil, "prefect", "a", testNow)
	badges, _ = Grant(catalog, badges, "prefect", "b", testNow)
	badges, _ = Grant(catalog, badges, "media-unit", "c", testNow)

	remaining := Revoke(badges, "prefect")
	if len(remaining) != 1 {
		t.Fatalf("expected exactly 1 badge after revoke, got %d", len(remaining))
	}
	if remaining[0].Type != "media-unit" {
		t.Fatalf("expected media-unit to survive, got %q", remaining[0].Type)
	}
}

func TestRevokeOnEmptyCollection(t *testing.T) {
	if got := Revoke(nil, "prefect"); len(got) != 0 {
		t.Fatalf("revoke on empty must stay empty, got %d", len(got))
	}
}

func TestActiveBadgesFiltersExpired(t *testing.T) {
	expired := testNow.Add(-time.Hour)
	live := testNow.Add(time.Hour)
	badges := []Badge{
		{Type: "good-student", ExpiresAt: &expired},
		{Type: "prefect", ExpiresAt: &live},
		{Type: "best-child"},
	}

	active := ActiveBadges(badges, testNow)
	if len(active) != 2 {
		t.Fatalf("expected 2 active badges, got %d", len(active))
	}
	if active[0].Type != "prefect" || active[1].Type != "best-child" {
		t.Fatalf("active filter must preserve order, got %+v", active)
	}
	if CountActive(badges, testNow) != 2 {
		t.Fatalf("count mismatch")
	}
}

func TestHasActive(t *testing.T) {
	expired := testNow.Add(-time.Minute)
	badges := []Badge{
		{Type: "good-student", ExpiresAt: &expired},
		{Type: "prefect"},
	}

	if HasActive(badges, "good-student", testNow) {
		t.Fatalf("expired badge must not count as active")
	}
	if !HasActive(badges, "PREFECT", testNow) {
		t.Fatalf("lookup should be case-insensitive")
	}
	if HasActive(badges, "media-unit", testNow) {
		t.Fatalf("absent type reported active")
	}
}

func TestCatalogDisplayFallback(t *testing.T) {
	catalog := DefaultCatalog()

	entry := catalog.Display("legacy_house-captain")
	if entry.DisplayName != "legacy house captain" || entry.Icon != "badge" {
		t.Fatalf("expected fallback display, got %+v", entry)
	}

	known := catalog.Display("QUIZ_COMPLETION")
	if known.DisplayName != "Quiz Completed" {
		t.Fatalf("expected catalog display for known type, got %+v", known)
	}
}
