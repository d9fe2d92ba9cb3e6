package cache

import (
	"testing"
	"time"

	"github.com/hyperjump/omoide/internal/models"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"lowercase and underscores", "Senso-ji Temple", "senso-ji_temple"},
		{"trailing whitespace", "Senso-ji Temple  ", "senso-ji_temple"},
		{"collapsed whitespace", "Eiffel   Tower", "eiffel_tower"},
		{"punctuation stripped", "St. Peter's Basilica!", "st_peters_basilica"},
		{"already normalized", "machu_picchu", "machu_picchu"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.query); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestNormalizeKeyCollision(t *testing.T) {
	// Variants of the same venue name must share one cache entry.
	a := NormalizeKey("Senso-ji Temple ")
	b := NormalizeKey("senso-ji temple")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
}

func TestPutGet(t *testing.T) {
	s := NewMemoryStore()
	v := &models.VenueEnrichment{Name: "Senso-ji", Category: models.CategoryLandmark}

	if _, ok := s.Get("senso-ji"); ok {
		t.Error("empty store should miss")
	}
	s.Put("senso-ji", v, time.Hour)
	got, ok := s.Get("senso-ji")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Name != "Senso-ji" {
		t.Errorf("got %q, want Senso-ji", got.Name)
	}
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore(WithClock(func() time.Time { return now }))
	s.Put("venue", &models.VenueEnrichment{Name: "Venue"}, time.Hour)

	if _, ok := s.Get("venue"); !ok {
		t.Fatal("entry should be visible before expiry")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := s.Get("venue"); ok {
		t.Error("expired entry should miss")
	}
	// Lazy expiry reclaims the slot on read
	if s.Len() != 0 {
		t.Errorf("expired entry not reclaimed, len = %d", s.Len())
	}
}

func TestSweep(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore(WithClock(func() time.Time { return now }))
	s.Put("short", &models.VenueEnrichment{}, time.Minute)
	s.Put("long", &models.VenueEnrichment{}, time.Hour)

	now = now.Add(10 * time.Minute)
	if removed := s.Sweep(); removed != 1 {
		t.Errorf("sweep removed %d, want 1", removed)
	}
	if _, ok := s.Get("long"); !ok {
		t.Error("unexpired entry should survive sweep")
	}
}

func TestDelete(t *testing.T) {
	s := NewMemoryStore()
	s.Put("venue", &models.VenueEnrichment{}, time.Hour)
	s.Delete("venue")
	if _, ok := s.Get("venue"); ok {
		t.Error("deleted entry should miss")
	}
	// Deleting an absent key is a no-op
	s.Delete("missing")
}
