package database

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	ctx := context.Background()

	tables := []string{"kv_store", "users", "practice_sessions", "word_progress", "feedback", "bad_words"}
	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRowContext(ctx, query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running again is a no-op
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Second RunMigrations() error = %v", err)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := newTestDB(t)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	id, err := tx.ExecReturningID(ctx, "INSERT INTO feedback (user_id, message) VALUES (?, ?)", "u1", "hello")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if id <= 0 {
		t.Errorf("ExecReturningID() = %d, want positive id", id)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	tx2, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}
	if _, err := tx2.ExecContext(ctx, "INSERT INTO feedback (user_id, message) VALUES (?, ?)", "u2", "bye"); err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedback").Scan(&count); err != nil {
		t.Fatalf("Failed to count feedback: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 feedback row after rollback, got %d", count)
	}
}

func TestUpsertKV(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, v := range []string{"first", "second"} {
		if _, err := db.ExecContext(ctx, db.Dialect.UpsertKVQuery(), "k", v); err != nil {
			t.Fatalf("upsert %q: %v", v, err)
		}
	}

	var value string
	if err := db.QueryRowContext(ctx, "SELECT store_value FROM kv_store WHERE store_key = ?", "k").Scan(&value); err != nil {
		t.Fatalf("select: %v", err)
	}
	if value != "second" {
		t.Errorf("store_value = %q, want second", value)
	}
}

func TestBadWords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Badword\nworse\n\nbadword\n")
	}))
	defer srv.Close()

	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SeedBadWords(ctx, srv.URL); err != nil {
		t.Fatalf("SeedBadWords() error = %v", err)
	}
	// Already populated, so the server is not needed again
	if err := db.SeedBadWords(ctx, "http://127.0.0.1:0/unreachable"); err != nil {
		t.Fatalf("second SeedBadWords() error = %v", err)
	}

	allowed, blocked, err := db.FilterWords(ctx, []string{"cell", "BADWORD", "atom", "worse"})
	if err != nil {
		t.Fatalf("FilterWords() error = %v", err)
	}
	if fmt.Sprint(allowed) != "[cell atom]" {
		t.Errorf("allowed = %v", allowed)
	}
	if fmt.Sprint(blocked) != "[BADWORD worse]" {
		t.Errorf("blocked = %v", blocked)
	}
}
