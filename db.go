package main

import (
	"database/sql"
	"log"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func KVGet(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func KVSet(db *sql.DB, key, value string) error {
	_, err := db.Exec(
		`INSERT INTO kv_store (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func KVDelete(db *sql.DB, key string) error {
	_, err := db.Exec("DELETE FROM kv_store WHERE key = ?", key)
	return err
}

func KVListKeys(db *sql.DB, prefix string) ([]string, error) {
	rows, err := db.Query(
		"SELECT key FROM kv_store WHERE key LIKE ? || '%' ORDER BY key",
		prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

const alertKeyPrefix = "alerted:"

// AlertStore is the persistent dedupe repository: one entry per mailbox
// thread that has already been alerted, keyed under alertKeyPrefix in the
// flat KV space. Values are unix-millisecond timestamps of the last alert.
type AlertStore struct {
	db *sql.DB
}

func NewAlertStore(db *sql.DB) *AlertStore {
	return &AlertStore{db: db}
}

// IsAlerted reports whether threadID has an alert entry. A thread with no
// entry is, by definition, not alerted.
func (s *AlertStore) IsAlerted(threadID string) (bool, error) {
	_, ok, err := KVGet(s.db, alertKeyPrefix+threadID)
	return ok, err
}

func (s *AlertStore) MarkAlerted(threadID string, at time.Time) error {
	return KVSet(s.db, alertKeyPrefix+threadID, strconv.FormatInt(at.UnixMilli(), 10))
}

// EvictOlderThan removes alert entries strictly older than the retention
// window. Entries whose stored timestamp doesn't parse are skipped, not
// deleted. Returns the number of evicted entries.
func (s *AlertStore) EvictOlderThan(retention time.Duration, now time.Time) (int, error) {
	keys, err := KVListKeys(s.db, alertKeyPrefix)
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-retention).UnixMilli()
	evicted := 0
	for _, key := range keys {
		value, ok, err := KVGet(s.db, key)
		if err != nil {
			return evicted, err
		}
		if !ok {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			log.Printf("dedupe evict skipping key=%s: unparsable timestamp %q", key, value)
			continue
		}
		if ts < cutoff {
			if err := KVDelete(s.db, key); err != nil {
				return evicted, err
			}
			evicted++
		}
	}
	return evicted, nil
}
