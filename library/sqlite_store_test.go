package library

import (
	"path/filepath"
	"testing"
)

func tempDB(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	db, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStoreEmpty(t *testing.T) {
	db := tempDB(t)
	snap, err := db.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Members) != 0 || len(snap.Items) != 0 || len(snap.Records) != 0 {
		t.Fatalf("want empty snapshot, got %+v", snap)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	db := tempDB(t)
	want := sampleSnapshot()

	if err := db.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(got.Members) != len(want.Members) {
		t.Fatalf("want %d members, got %d", len(want.Members), len(got.Members))
	}
	for i := range want.Members {
		if got.Members[i] != want.Members[i] {
			t.Fatalf("member %d: want %+v, got %+v", i, want.Members[i], got.Members[i])
		}
	}
	if len(got.Items) != len(want.Items) {
		t.Fatalf("want %d items, got %d", len(want.Items), len(got.Items))
	}
	for i := range want.Items {
		if got.Items[i] != want.Items[i] {
			t.Fatalf("item %d: want %+v, got %+v", i, want.Items[i], got.Items[i])
		}
	}

	// Order and timestamps must survive; time zones may be normalised.
	if len(got.Records) != len(want.Records) {
		t.Fatalf("want %d records, got %d", len(want.Records), len(got.Records))
	}
	for i, w := range want.Records {
		g := got.Records[i]
		if g.Title != w.Title || g.MemberID != w.MemberID || g.Fine != w.Fine {
			t.Fatalf("record %d: want %+v, got %+v", i, w, g)
		}
		if !g.IssuedAt.Equal(w.IssuedAt) {
			t.Fatalf("record %d: issued %v, want %v", i, g.IssuedAt, w.IssuedAt)
		}
		if (g.ReturnedAt == nil) != (w.ReturnedAt == nil) {
			t.Fatalf("record %d: open state differs", i)
		}
		if w.ReturnedAt != nil && !g.ReturnedAt.Equal(*w.ReturnedAt) {
			t.Fatalf("record %d: returned %v, want %v", i, g.ReturnedAt, w.ReturnedAt)
		}
	}
}

func TestSQLiteStoreSaveReplacesRows(t *testing.T) {
	db := tempDB(t)
	if err := db.Save(sampleSnapshot()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	smaller := &Snapshot{Members: []Member{{ID: 1, Name: "Solo", Stream: "Maths"}}}
	if err := db.Save(smaller); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := db.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].Name != "Solo" {
		t.Fatalf("members not replaced: %+v", got.Members)
	}
	if len(got.Items) != 0 || len(got.Records) != 0 {
		t.Fatalf("stale rows left behind: %+v", got)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lib.db")
	db, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	db.Close()

	// Migrations must be idempotent on an existing file.
	db, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	snap, err := db.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Records) != 3 {
		t.Fatalf("want 3 records, got %d", len(snap.Records))
	}
}
