package knowledge

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, []Document{
		{Content: "Solar panels convert sunlight.", Source: "solar"},
		{Content: "Wind turbines convert wind.", Source: "wind"},
	}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestSearch_RanksByOverlap(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, []Document{
		{Content: "Hydroelectric power generates electricity from flowing water.", Source: "hydro"},
		{Content: "Solar energy harnesses sunlight through photovoltaic panels.", Source: "solar"},
		{Content: "Wind turbines convert wind motion into electricity.", Source: "wind"},
	}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	docs, err := s.Search(ctx, "how do solar panels use sunlight", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Search() returned %d docs, want 2", len(docs))
	}
	if docs[0].Metadata["source"] != "solar" {
		t.Errorf("top result source = %q, want solar", docs[0].Metadata["source"])
	}
	if docs[0].Distance >= docs[1].Distance {
		t.Errorf("results not ordered by distance: %f >= %f", docs[0].Distance, docs[1].Distance)
	}
}

func TestSearch_TopKBounds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SeedSample(ctx); err != nil {
		t.Fatalf("SeedSample() error = %v", err)
	}

	docs, err := s.Search(ctx, "renewable energy", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("Search() returned %d docs, want 3", len(docs))
	}
}

func TestSeedSample_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SeedSample(ctx)
	if err != nil {
		t.Fatalf("SeedSample() error = %v", err)
	}
	if first == 0 {
		t.Fatal("first SeedSample() added nothing")
	}

	second, err := s.SeedSample(ctx)
	if err != nil {
		t.Fatalf("second SeedSample() error = %v", err)
	}
	if second != 0 {
		t.Errorf("second SeedSample() added %d docs, want 0", second)
	}

	n, _ := s.Count(ctx)
	if n != first {
		t.Errorf("Count() = %d, want %d", n, first)
	}
}
