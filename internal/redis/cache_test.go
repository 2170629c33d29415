package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheStore_SingleEntryRoundTrip(t *testing.T) {
	mr, client := setupMiniredis(t)
	store := NewCacheStore(client)
	ctx := context.Background()

	lat, lng := 28.62, 77.22
	p := &CachedPassenger{
		ID: "p1", Name: "Asha", Email: "asha@example.com", Role: "student",
		HomeLat: &lat, HomeLng: &lng,
	}
	if err := store.SetPassenger(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetPassenger(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Name != "Asha" || got.HomeLat == nil || *got.HomeLat != lat {
		t.Errorf("expected the cached profile back, got %+v", got)
	}

	if ttl := mr.TTL(passengerCachePrefix + "p1"); ttl != PassengerCacheTTL {
		t.Errorf("expected TTL %v on the entry, got %v", PassengerCacheTTL, ttl)
	}
}

func TestCacheStore_MissIsNilNotError(t *testing.T) {
	_, client := setupMiniredis(t)
	store := NewCacheStore(client)

	got, err := store.GetPassenger(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("a miss is not an error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil on miss, got %+v", got)
	}
}

func TestCacheStore_EntriesExpire(t *testing.T) {
	mr, client := setupMiniredis(t)
	store := NewCacheStore(client)
	ctx := context.Background()

	if err := store.SetPassenger(ctx, &CachedPassenger{ID: "p1", Name: "Asha"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(PassengerCacheTTL + time.Second)

	got, err := store.GetPassenger(ctx, "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected the entry to expire, got %+v", got)
	}
}

func TestCacheStore_BatchSplitsHitsAndMisses(t *testing.T) {
	_, client := setupMiniredis(t)
	store := NewCacheStore(client)
	ctx := context.Background()

	if err := store.SetPassenger(ctx, &CachedPassenger{ID: "p1", Name: "Asha"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, missing, err := store.GetPassengersBatch(ctx, []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 || hits["p1"] == nil {
		t.Errorf("expected p1 as the only hit, got %+v", hits)
	}
	if len(missing) != 1 || missing[0] != "p2" {
		t.Errorf("expected p2 as the only miss, got %v", missing)
	}
}
