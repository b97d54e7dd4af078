package domain

import "time"

// Badge is one awarded honor in a student's collection. DisplayName and Icon
// are cached from the catalog at grant time for rendering; the catalog remains
// the source of truth for both.
type Badge struct {
	Type        string     `json:"type"`
	DisplayName string     `json:"displayName"`
	Icon        string     `json:"icon"`
	AwardedBy   string     `json:"awardedBy"`
	AwardedAt   time.Time  `json:"awardedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// IsActive reports whether the badge is still valid at the given instant.
// A badge with no expiry is permanently valid; otherwise validity is strict,
// so a badge is already inactive at exactly its expiry time.
func (b Badge) IsActive(now time.Time) bool {
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

// Grant appends a new badge of the given type to the collection and returns
// the result. The input slice is never mutated. An unknown type returns the
// collection unchanged together with ErrUnknownBadgeType; callers log the
// miss and carry on, so a bad grant never breaks a larger transaction.
// Duplicate grants of the same type are allowed and accumulate.
func Grant(catalog Catalog, badges []Badge, badgeType, grantedBy string, now time.Time) ([]Badge, error) {
	entry, ok := catalog.Lookup(badgeType)
	if !ok {
		return badges, ErrUnknownBadgeType
	}

	badge := Badge{
		Type:        NormalizeBadgeType(badgeType),
		DisplayName: entry.DisplayName,
		Icon:        entry.Icon,
		AwardedBy:   grantedBy,
		AwardedAt:   now,
	}
	if entry.ValidityDays > 0 {
		expires := now.AddDate(0, 0, entry.ValidityDays)
		badge.ExpiresAt = &expires
	}

	next := make([]Badge, len(badges), len(badges)+1)
	copy(next, badges)
	return append(next, badge), nil
}

// Revoke removes every badge of the given type, preserving the order of the
// rest. Removal is total: if a student holds two instances of the type, both
// go.
func Revoke(badges []Badge, badgeType string) []Badge {
	target := NormalizeBadgeType(badgeType)
	next := make([]Badge, 0, len(badges))
	for _, b := range badges {
		if NormalizeBadgeType(b.Type) != target {
			next = append(next, b)
		}
	}
	return next
}

// ActiveBadges filters the collection down to badges valid at now, keeping
// the original order. Expired entries may linger in storage until a cleanup
// pass; they must never be treated as active.
func ActiveBadges(badges []Badge, now time.Time) []Badge {
	active := make([]Badge, 0, len(badges))
	for _, b := range badges {
		if b.IsActive(now) {
			active = append(active, b)
		}
	}
	return active
}

// CountActive counts badges valid at now.
func CountActive(badges []Badge, now time.Time) int {
	count := 0
	for _, b := range badges {
		if b.IsActive(now) {
			count++
		}
	}
	return count
}

// HasActive reports whether the collection holds at least one valid badge of
// the given type.
func HasActive(badges []Badge, badgeType string, now time.Time) bool {
	target := NormalizeBadgeType(badgeType)
	for _, b := range badges {
		if NormalizeBadgeType(b.Type) == target && b.IsActive(now) {
			return true
		}
	}
	return false
}
