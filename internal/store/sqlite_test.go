package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteJournal_RecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e := Entry{
			ID:         string(rune('a' + i)),
			Source:     "file.csv",
			Rows:       10 + i,
			Cols:       3,
			AlertCount: i,
			Generation: uint64(i + 1),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	entries, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent() returned %d entries, want 2", len(entries))
	}
	if entries[0].ID != "c" || entries[1].ID != "b" {
		t.Errorf("order = %s,%s, want newest first", entries[0].ID, entries[1].ID)
	}
	if entries[0].Rows != 12 || entries[0].AlertCount != 2 {
		t.Errorf("entry fields not round-tripped: %+v", entries[0])
	}
}

func TestSQLiteJournal_RecentEmpty(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() on empty journal = %v, want none", entries)
	}
}

func TestSQLiteJournal_DuplicateID(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	e := Entry{ID: "dup", Source: "a.csv", CreatedAt: time.Now()}
	if err := j.Record(ctx, e); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := j.Record(ctx, e); err == nil {
		t.Error("Record() with duplicate id expected error")
	}
}

func TestNopJournal(t *testing.T) {
	var j Journal = NopJournal{}
	ctx := context.Background()

	if err := j.Record(ctx, Entry{ID: "x"}); err != nil {
		t.Errorf("Record() error = %v", err)
	}
	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Errorf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() = %v, want none", entries)
	}
	if err := j.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
