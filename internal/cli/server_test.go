package cli

import (
	"testing"

	"school-merit-service/internal/config"
)

func TestBuildCatalogAppliesOverrides(t *testing.T) {
	var cfg config.Config
	// Keys are normalized before lookup; unknown types are skipped.
	cfg.Badges.ValidityDays = map[string]int{
		"Good_Student": 30,
		"prefect":      0,
		"unheard-of":   7,
	}

	catalog := buildCatalog(cfg)

	entry, ok := catalog.Lookup("good-student")
	if !ok || entry.ValidityDays != 30 {
		t.Fatalf("expected good-student validity 30, got %+v (present=%v)", entry, ok)
	}
	entry, ok = catalog.Lookup("prefect")
	if !ok || entry.ValidityDays != 0 {
		t.Fatalf("expected prefect to become permanent, got %+v", entry)
	}
	if _, ok := catalog.Lookup("unheard-of"); ok {
		t.Fatal("override must not invent catalog entries")
	}

	// Untouched entries keep their defaults.
	entry, _ = catalog.Lookup("quiz-completion")
	if entry.ValidityDays != 1 {
		t.Fatalf("expected quiz-completion validity 1, got %d", entry.ValidityDays)
	}
}
