package domain

import "strings"

// CatalogEntry holds the display metadata and validity period for one badge type.
type CatalogEntry struct {
	DisplayName  string
	Icon         string
	ValidityDays int // 0 means the badge never expires
	Color        string
}

// Catalog maps a badge-type identifier to its metadata. The type string is the
// wire-compatible identifier shared with persisted badge records and must not
// be renamed. Keys are stored in normalized form (see NormalizeBadgeType).
type Catalog map[string]CatalogEntry

// NormalizeBadgeType canonicalizes a badge-type identifier: lookups are
// case-insensitive and treat hyphens and underscores as interchangeable.
func NormalizeBadgeType(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(s, "_", "-")
}

// Lookup finds the entry for a badge type after normalization.
func (c Catalog) Lookup(badgeType string) (CatalogEntry, bool) {
	entry, ok := c[NormalizeBadgeType(badgeType)]
	return entry, ok
}

// Display resolves metadata for rendering a persisted badge. A catalog miss
// falls back to a generic entry rather than failing: old records may carry
// types that were since removed from the catalog.
func (c Catalog) Display(badgeType string) CatalogEntry {
	if entry, ok := c.Lookup(badgeType); ok {
		return entry
	}
	return CatalogEntry{
		DisplayName: strings.ReplaceAll(NormalizeBadgeType(badgeType), "-", " "),
		Icon:        "badge",
		Color:       "#9e9e9e",
	}
}

// DefaultCatalog returns the standard school badge catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		"1st-place":       {DisplayName: "1st Place", Icon: "trophy-gold", ValidityDays: 365, Color: "#ffd700"},
		"2nd-place":       {DisplayName: "2nd Place", Icon: "trophy-silver", ValidityDays: 365, Color: "#c0c0c0"},
		"3rd-place":       {DisplayName: "3rd Place", Icon: "trophy-bronze", ValidityDays: 365, Color: "#cd7f32"},
		"prefect":         {DisplayName: "Prefect", Icon: "shield", ValidityDays: 365, Color: "#3f51b5"},
		"media-unit":      {DisplayName: "Media Unit", Icon: "camera", ValidityDays: 365, Color: "#9c27b0"},
		"good-student":    {DisplayName: "Good Student", Icon: "star", ValidityDays: 90, Color: "#4caf50"},
		"quiz-completion": {DisplayName: "Quiz Completed", Icon: "check-circle", ValidityDays: 1, Color: "#03a9f4"},
		"best-child":      {DisplayName: "Best Child", Icon: "heart", ValidityDays: 365, Color: "#e91e63"},
	}
}
