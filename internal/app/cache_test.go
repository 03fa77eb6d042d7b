package app

import (
	"testing"
	"time"

	"wisatakota/internal/places"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newClockedCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	c := NewCache(ttl)
	c.now = clock.Now
	return c, clock
}

func samplePlaces(n int) []places.Place {
	out := make([]places.Place, n)
	for i := range out {
		out[i] = places.Place{ID: i, Name: string(rune('A' + i)), Rating: float64(i)}
	}
	return out
}

func TestCacheTTLBoundary(t *testing.T) {
	const eps = time.Second

	tests := []struct {
		name    string
		advance time.Duration
		wantHit bool
	}{
		{"fresh", 0, true},
		{"just before ttl", DefaultCacheTTL - eps, true},
		{"exactly ttl", DefaultCacheTTL, true},
		{"just after ttl", DefaultCacheTTL + eps, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, clock := newClockedCache(DefaultCacheTTL)
			id := c.Insert("Jakarta", samplePlaces(2))

			clock.Advance(tt.advance)
			_, ok := c.Lookup(id)
			if ok != tt.wantHit {
				t.Errorf("Lookup after %v: hit = %v, want %v", tt.advance, ok, tt.wantHit)
			}
			_, ok = c.FindByCity("Jakarta")
			if ok != tt.wantHit {
				t.Errorf("FindByCity after %v: hit = %v, want %v", tt.advance, ok, tt.wantHit)
			}
		})
	}
}

func TestCacheInsertSweepsExpired(t *testing.T) {
	c, clock := newClockedCache(DefaultCacheTTL)
	c.Insert("Bandung", samplePlaces(1))
	c.Insert("Surabaya", samplePlaces(1))

	clock.Advance(DefaultCacheTTL + time.Minute)
	if c.Size() != 2 {
		t.Fatalf("Size = %d before insert, want 2 (expiry is lazy)", c.Size())
	}

	id := c.Insert("Malang", samplePlaces(1))
	if c.Size() != 1 {
		t.Errorf("Size = %d after insert, want 1", c.Size())
	}
	if _, ok := c.Lookup(id); !ok {
		t.Error("newly inserted entry missing")
	}
}

func TestCacheSweep(t *testing.T) {
	c, clock := newClockedCache(10 * time.Minute)
	c.Insert("Medan", samplePlaces(1))
	clock.Advance(5 * time.Minute)
	c.Insert("Padang", samplePlaces(1))
	clock.Advance(6 * time.Minute)

	if n := c.Sweep(); n != 1 {
		t.Errorf("Sweep removed %d, want 1", n)
	}
	if _, ok := c.FindByCity("Padang"); !ok {
		t.Error("Padang should still be live")
	}
}

func TestCacheLookupMiss(t *testing.T) {
	c := NewCache(time.Minute)
	for _, id := range []string{"", "does-not-exist"} {
		if _, ok := c.Lookup(id); ok {
			t.Errorf("Lookup(%q) hit on empty cache", id)
		}
	}
}

func TestCacheFindByCityCaseInsensitive(t *testing.T) {
	c := NewCache(time.Minute)
	id := c.Insert("Jakarta", samplePlaces(3))

	for _, q := range []string{"Jakarta", "jakarta", "JAKARTA", "jAkArTa"} {
		got, ok := c.FindByCity(q)
		if !ok || got != id {
			t.Errorf("FindByCity(%q) = %q, %v; want %q, true", q, got, ok, id)
		}
	}
	if _, ok := c.FindByCity("Jakarta Selatan"); ok {
		t.Error("FindByCity must be an exact match")
	}
}

func TestCacheFindByCityPrefersNewest(t *testing.T) {
	c, clock := newClockedCache(DefaultCacheTTL)
	c.Insert("Bali", samplePlaces(1))
	clock.Advance(time.Minute)
	newer := c.Insert("bali", samplePlaces(2))

	got, ok := c.FindByCity("BALI")
	if !ok || got != newer {
		t.Errorf("FindByCity = %q, want newest entry %q", got, newer)
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2 (no dedup on insert)", c.Size())
	}
}

func TestCacheEntryPreservesOrderAndCity(t *testing.T) {
	c := NewCache(time.Minute)
	results := samplePlaces(4)
	id := c.Insert("Yogyakarta", results)

	e, ok := c.Lookup(id)
	if !ok {
		t.Fatal("entry missing")
	}
	if e.City != "Yogyakarta" {
		t.Errorf("City = %q", e.City)
	}
	for i, p := range e.Results {
		if p.ID != i {
			t.Errorf("Results[%d].ID = %d", i, p.ID)
		}
	}
}

func TestCacheIDsUnique(t *testing.T) {
	c := NewCache(time.Minute)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := c.Insert("Solo", nil)
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
