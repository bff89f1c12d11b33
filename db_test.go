package main

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "mailtriage-test.db")
	db, err := InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestKVRoundTrip(t *testing.T) {
	db := newTestDB(t)

	if _, ok, err := KVGet(db, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := KVSet(db, "k1", "v1"); err != nil {
		t.Fatalf("KVSet failed: %v", err)
	}
	if err := KVSet(db, "k1", "v2"); err != nil {
		t.Fatalf("KVSet overwrite failed: %v", err)
	}
	value, ok, err := KVGet(db, "k1")
	if err != nil || !ok || value != "v2" {
		t.Fatalf("KVGet = %q ok=%v err=%v", value, ok, err)
	}
	if err := KVDelete(db, "k1"); err != nil {
		t.Fatalf("KVDelete failed: %v", err)
	}
	if _, ok, _ := KVGet(db, "k1"); ok {
		t.Fatal("key survived delete")
	}
}

func TestKVListKeysPrefix(t *testing.T) {
	db := newTestDB(t)

	for _, k := range []string{"alerted:t1", "alerted:t2", "setting:model"} {
		if err := KVSet(db, k, "x"); err != nil {
			t.Fatalf("KVSet %s failed: %v", k, err)
		}
	}
	keys, err := KVListKeys(db, "alerted:")
	if err != nil {
		t.Fatalf("KVListKeys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "alerted:t1" || keys[1] != "alerted:t2" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestAlertStoreMarkAndCheck(t *testing.T) {
	store := NewAlertStore(newTestDB(t))

	alerted, err := store.IsAlerted("thread-1")
	if err != nil {
		t.Fatalf("IsAlerted failed: %v", err)
	}
	if alerted {
		t.Fatal("thread with no entry must not be alerted")
	}

	if err := store.MarkAlerted("thread-1", time.Now()); err != nil {
		t.Fatalf("MarkAlerted failed: %v", err)
	}
	alerted, err = store.IsAlerted("thread-1")
	if err != nil || !alerted {
		t.Fatalf("expected alerted after mark: alerted=%v err=%v", alerted, err)
	}
}

func TestEvictionBoundary(t *testing.T) {
	store := NewAlertStore(newTestDB(t))
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	retention := 30 * 24 * time.Hour
	boundary := now.Add(-retention)

	// One millisecond inside the window: retained. One past: evicted.
	if err := store.MarkAlerted("keep", boundary.Add(time.Millisecond)); err != nil {
		t.Fatalf("MarkAlerted failed: %v", err)
	}
	if err := store.MarkAlerted("drop", boundary.Add(-time.Millisecond)); err != nil {
		t.Fatalf("MarkAlerted failed: %v", err)
	}

	evicted, err := store.EvictOlderThan(retention, now)
	if err != nil {
		t.Fatalf("EvictOlderThan failed: %v", err)
	}
	if evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}

	if alerted, _ := store.IsAlerted("keep"); !alerted {
		t.Fatal("entry inside retention window was evicted")
	}
	if alerted, _ := store.IsAlerted("drop"); alerted {
		t.Fatal("entry past retention window survived")
	}
}

func TestEvictionSkipsCorruptedTimestamps(t *testing.T) {
	db := newTestDB(t)
	store := NewAlertStore(db)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	if err := KVSet(db, alertKeyPrefix+"corrupt", "not-a-timestamp"); err != nil {
		t.Fatalf("KVSet failed: %v", err)
	}

	evicted, err := store.EvictOlderThan(30*24*time.Hour, now)
	if err != nil {
		t.Fatalf("EvictOlderThan failed: %v", err)
	}
	if evicted != 0 {
		t.Fatalf("expected 0 evictions, got %d", evicted)
	}
	if alerted, _ := store.IsAlerted("corrupt"); !alerted {
		t.Fatal("corrupted entry must be left untouched")
	}
}
