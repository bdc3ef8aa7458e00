package db_test

import (
	"context"
	"testing"

	"github.com/onnwee/moviebot/db"
	"github.com/onnwee/moviebot/omdb"
	"github.com/onnwee/moviebot/testutil"
)

func TestMigrateIdempotent(t *testing.T) {
	database := testutil.SetupTestDB(t)
	// SetupTestDB already migrated once; a second run must be a no-op.
	if err := db.Migrate(context.Background(), database); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestRecordSearchAndHistory(t *testing.T) {
	database := testutil.SetupTestDB(t)
	s := &db.Store{DB: database}
	ctx := context.Background()
	const user = int64(700001)
	t.Cleanup(func() { _ = s.ClearHistory(ctx, user) })

	for _, q := range []string{"Inception", "Heat", "Alien"} {
		if err := s.RecordSearch(ctx, user, q); err != nil {
			t.Fatalf("RecordSearch(%q): %v", q, err)
		}
	}

	hist, err := s.SearchHistory(ctx, user, 10)
	if err != nil {
		t.Fatalf("SearchHistory: %v", err)
	}
	if len(hist) != 3 || hist[0] != "Alien" {
		t.Errorf("history = %v, want newest first with Alien on top", hist)
	}

	n, err := s.SearchCount(ctx, user)
	if err != nil {
		t.Fatalf("SearchCount: %v", err)
	}
	if n != 3 {
		t.Errorf("search count = %d, want 3", n)
	}
}

func TestSearchCountUnknownUser(t *testing.T) {
	database := testutil.SetupTestDB(t)
	s := &db.Store{DB: database}
	n, err := s.SearchCount(context.Background(), 999999999)
	if err != nil {
		t.Fatalf("SearchCount: %v", err)
	}
	if n != 0 {
		t.Errorf("count for never-seen user = %d, want 0", n)
	}
}

func TestClearHistoryKeepsStats(t *testing.T) {
	database := testutil.SetupTestDB(t)
	s := &db.Store{DB: database}
	ctx := context.Background()
	const user = int64(700002)

	if err := s.RecordSearch(ctx, user, "Heat"); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}
	if err := s.ClearHistory(ctx, user); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	hist, err := s.SearchHistory(ctx, user, 10)
	if err != nil {
		t.Fatalf("SearchHistory: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("history after clear = %v, want empty", hist)
	}
	// Lifetime counter survives a history wipe.
	n, _ := s.SearchCount(ctx, user)
	if n < 1 {
		t.Errorf("search count after clear = %d, want >= 1", n)
	}
}

func TestMetadataCacheLastWriteWins(t *testing.T) {
	database := testutil.SetupTestDB(t)
	s := &db.Store{DB: database}
	ctx := context.Background()

	if err := s.UpsertCachedMetadata(ctx, "Dune", omdb.Record{Title: "Dune", Year: "1984"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.UpsertCachedMetadata(ctx, "Dune", omdb.Record{Title: "Dune", Year: "2021"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	rec, ok, err := s.CachedMetadata(ctx, "Dune")
	if err != nil {
		t.Fatalf("CachedMetadata: %v", err)
	}
	if !ok {
		t.Fatalf("expected cached payload")
	}
	if rec.Year != "2021" {
		t.Errorf("year = %s, want last write 2021", rec.Year)
	}

	_, ok, err = s.CachedMetadata(ctx, "never-stored")
	if err != nil {
		t.Fatalf("CachedMetadata miss: %v", err)
	}
	if ok {
		t.Errorf("expected miss for never-stored query")
	}
}

func TestTopSearches(t *testing.T) {
	database := testutil.SetupTestDB(t)
	s := &db.Store{DB: database}
	ctx := context.Background()
	const user = int64(700003)
	t.Cleanup(func() { _ = s.ClearHistory(ctx, user) })

	for _, q := range []string{"Heat", "Heat", "Alien"} {
		if err := s.RecordSearch(ctx, user, q); err != nil {
			t.Fatalf("RecordSearch: %v", err)
		}
	}
	top, err := s.TopSearches(ctx, 5)
	if err != nil {
		t.Fatalf("TopSearches: %v", err)
	}
	if len(top) == 0 {
		t.Fatalf("expected at least one row")
	}
	for i := 1; i < len(top); i++ {
		if top[i].Count > top[i-1].Count {
			t.Errorf("rows not descending by frequency: %v", top)
		}
	}
}

func TestKVRoundTrip(t *testing.T) {
	database := testutil.SetupTestDB(t)
	s := &db.Store{DB: database}
	ctx := context.Background()

	if v, err := s.GetKV(ctx, "moviebot-test-missing"); err != nil || v != "" {
		t.Errorf("GetKV missing = (%q, %v), want empty", v, err)
	}
	if err := s.SetKV(ctx, "moviebot-test-offset", "42"); err != nil {
		t.Fatalf("SetKV: %v", err)
	}
	if err := s.SetKV(ctx, "moviebot-test-offset", "43"); err != nil {
		t.Fatalf("SetKV overwrite: %v", err)
	}
	if v, _ := s.GetKV(ctx, "moviebot-test-offset"); v != "43" {
		t.Errorf("GetKV = %q, want 43", v)
	}
}
