package repository

import (
	"context"
	"path/filepath"
	"testing"

	"vocabtrainer/internal/database"
	"vocabtrainer/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKVRepository(t *testing.T) {
	repo := NewKVRepository(newTestDB(t))
	ctx := context.Background()

	if _, found, err := repo.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v", found, err)
	}

	if err := repo.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := repo.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}

	value, found, err := repo.Get(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Get(k) = found %v, err %v", found, err)
	}
	if string(value) != `{"a":2}` {
		t.Errorf("Get(k) = %s, want latest value", value)
	}
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first, err := repo.CreateUser(ctx, "teacher@example.com", "Teacher")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if first.Role != models.RoleTeacher {
		t.Errorf("first user role = %q, want teacher", first.Role)
	}

	second, err := repo.CreateUser(ctx, "student@example.com", "Student")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if second.Role != models.RoleStudent {
		t.Errorf("second user role = %q, want student", second.Role)
	}
	if first.ID == second.ID {
		t.Error("expected distinct ids")
	}

	got, err := repo.GetUserByEmail(ctx, "student@example.com")
	if err != nil || got == nil || got.ID != second.ID {
		t.Fatalf("GetUserByEmail() = %+v, %v", got, err)
	}

	missing, err := repo.GetUserByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetUserByID(nope) = %+v, %v; want nil, nil", missing, err)
	}

	if err := repo.LinkOAuthProvider(ctx, second.ID, "google", "sub-1"); err != nil {
		t.Fatalf("LinkOAuthProvider() error = %v", err)
	}
	if err := repo.LinkOAuthProvider(ctx, second.ID, "google", "sub-2"); err == nil {
		t.Error("expected error linking twice")
	}
	linked, err := repo.GetUserByOAuth(ctx, "google", "sub-1")
	if err != nil || linked == nil || linked.ID != second.ID {
		t.Fatalf("GetUserByOAuth() = %+v, %v", linked, err)
	}

	if err := repo.UpdateRole(ctx, second.ID, models.RoleTeacher); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}
	updated, _ := repo.GetUserByID(ctx, second.ID)
	if !updated.IsTeacher() {
		t.Error("expected promoted user to be a teacher")
	}

	if err := repo.DeleteUser(ctx, first.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	users, err := repo.GetAllUsers(ctx)
	if err != nil {
		t.Fatalf("GetAllUsers() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("GetAllUsers() returned %d users, want 1", len(users))
	}
}

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	for i, fileName := range []string{"", "notes.pdf"} {
		row := models.PracticeSessionRow{
			UserID:          "u1",
			Context:         "english",
			FileName:        fileName,
			Score:           i + 3,
			QuestionCount:   5,
			DurationSeconds: 60,
		}
		if id, err := repo.CreateSession(ctx, row); err != nil || id <= 0 {
			t.Fatalf("CreateSession() = %d, %v", id, err)
		}
	}

	sessions, err := repo.GetUserSessions(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("GetUserSessions() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].FileName != "notes.pdf" || sessions[0].Score != 4 {
		t.Errorf("newest session = %+v", sessions[0])
	}
	if sessions[1].FileName != "" {
		t.Errorf("FileName = %q, want empty", sessions[1].FileName)
	}

	other, err := repo.GetUserSessions(ctx, "u2", 10)
	if err != nil || len(other) != 0 {
		t.Errorf("GetUserSessions(u2) = %v, %v", other, err)
	}
}

func TestWordProgressRepository(t *testing.T) {
	repo := NewWordProgressRepository(newTestDB(t))
	ctx := context.Background()

	row, err := repo.GetWordProgress(ctx, "u1", "cell")
	if err != nil || row != nil {
		t.Fatalf("GetWordProgress() = %+v, %v; want nil, nil", row, err)
	}

	if err := repo.InsertWordProgress(ctx, "u1", "cell", 1); err != nil {
		t.Fatalf("InsertWordProgress() error = %v", err)
	}
	row, err = repo.GetWordProgress(ctx, "u1", "cell")
	if err != nil || row == nil {
		t.Fatalf("GetWordProgress() = %+v, %v", row, err)
	}
	if err := repo.UpdatePracticeCount(ctx, row.ID, row.PracticeCount+1); err != nil {
		t.Fatalf("UpdatePracticeCount() error = %v", err)
	}
	if err := repo.InsertWordProgress(ctx, "u1", "atom", 1); err != nil {
		t.Fatalf("InsertWordProgress() error = %v", err)
	}

	all, err := repo.GetUserWordProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserWordProgress() error = %v", err)
	}
	if len(all) != 2 || all[0].Word != "cell" || all[0].PracticeCount != 2 {
		t.Errorf("GetUserWordProgress() = %+v", all)
	}
}

func TestFeedbackRepository(t *testing.T) {
	repo := NewFeedbackRepository(newTestDB(t))
	ctx := context.Background()

	for _, msg := range []string{"first", "second"} {
		if _, err := repo.CreateFeedback(ctx, models.FeedbackRow{UserID: "u1", Message: msg}); err != nil {
			t.Fatalf("CreateFeedback() error = %v", err)
		}
	}

	rows, err := repo.GetRecentFeedback(ctx, 1)
	if err != nil {
		t.Fatalf("GetRecentFeedback() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Message != "second" {
		t.Errorf("GetRecentFeedback() = %+v", rows)
	}
}

func TestRepositoriesInTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := NewWordProgressRepository(tx).InsertWordProgress(ctx, "u1", "cell", 1); err != nil {
		t.Fatalf("InsertWordProgress() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	row, err := NewWordProgressRepository(db).GetWordProgress(ctx, "u1", "cell")
	if err != nil || row != nil {
		t.Errorf("expected no row after rollback, got %+v, %v", row, err)
	}
}
