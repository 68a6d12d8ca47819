package sqlite

import (
	"database/sql"
	"log/slog"
	"testing"

	"github.com/chaitanyashetty47/strengthos/internal/testhelpers"
)

func TestDatabase_ExportUserData(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(testhelpers.NewWriter(t), nil))

	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("new database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close database: %v", closeErr)
		}
	})

	seed := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO users (id, display_name, role) VALUES (?, ?, ?)`, []any{"trainer-1", "Petra", "trainer"}},
		{`INSERT INTO users (id, display_name, role) VALUES (?, ?, ?)`, []any{"client-1", "Cliff", "client"}},
		{`INSERT INTO users (id, display_name, role) VALUES (?, ?, ?)`, []any{"client-2", "Casey", "client"}},
		{`INSERT INTO plans (id, trainer_id, client_id, title, start_date, category, duration_weeks, intensity_mode, status)
		  VALUES ('plan-1', 'trainer-1', 'client-1', 'Block A', '2026-03-02', 'strength', 1, 'ABSOLUTE', 'PUBLISHED')`, nil},
		{`INSERT INTO plans (id, trainer_id, client_id, title, start_date, category, duration_weeks, intensity_mode, status)
		  VALUES ('plan-2', 'trainer-1', 'client-2', 'Block B', '2026-03-02', 'strength', 1, 'ABSOLUTE', 'PUBLISHED')`, nil},
		{`INSERT INTO plan_days (plan_id, week_number, day_number, title) VALUES ('plan-1', 1, 1, 'Day 1')`, nil},
		{`INSERT INTO plan_days (plan_id, week_number, day_number, title) VALUES ('plan-2', 1, 1, 'Day 1')`, nil},
		{`INSERT INTO workout_logs (user_id, plan_id, exercise_id, logged_at, weight_used, completed_sets, completed_reps)
		  VALUES ('client-1', 'plan-1', 1, '2026-03-02T10:00:00.000Z', 100, 3, 15)`, nil},
		{`INSERT INTO workout_logs (user_id, plan_id, exercise_id, logged_at, weight_used, completed_sets, completed_reps)
		  VALUES ('client-2', 'plan-2', 1, '2026-03-02T10:00:00.000Z', 80, 3, 15)`, nil},
		{`INSERT INTO workout_day_completions (user_id, plan_id, week_number, day_number, completed_at)
		  VALUES ('client-1', 'plan-1', 1, 1, '2026-03-02T11:00:00.000Z')`, nil},
	}
	for _, stmt := range seed {
		if _, err = db.ReadWrite.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			t.Fatalf("seed %q: %v", stmt.query, err)
		}
	}

	exportPath, err := db.ExportUserData(ctx, "client-1", t.TempDir())
	if err != nil {
		t.Fatalf("export user data: %v", err)
	}

	exported, err := sql.Open("sqlite3", "file:"+exportPath+"?mode=ro")
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := exported.Close(); closeErr != nil {
			t.Errorf("close export: %v", closeErr)
		}
	})

	counts := []struct {
		query string
		want  int
	}{
		// Only the exported user's identity comes along.
		{`SELECT COUNT(*) FROM users`, 1},
		{`SELECT COUNT(*) FROM users WHERE id = 'client-1'`, 1},
		// Plans where the user is the client, not the trainer's other plans.
		{`SELECT COUNT(*) FROM plans`, 1},
		{`SELECT COUNT(*) FROM plans WHERE id = 'plan-1'`, 1},
		{`SELECT COUNT(*) FROM plan_days`, 1},
		// Logs and completions filter on the logging user directly.
		{`SELECT COUNT(*) FROM workout_logs`, 1},
		{`SELECT COUNT(*) FROM workout_logs WHERE user_id = 'client-1'`, 1},
		{`SELECT COUNT(*) FROM workout_day_completions`, 1},
		// The exercise catalog is copied whole to keep foreign keys valid.
		{`SELECT COUNT(*) FROM exercises WHERE name = 'Back Squat'`, 1},
	}
	for _, tc := range counts {
		var got int
		if err = exported.QueryRowContext(ctx, tc.query).Scan(&got); err != nil {
			t.Fatalf("%s: %v", tc.query, err)
		}
		if got != tc.want {
			t.Errorf("%s = %d, want %d", tc.query, got, tc.want)
		}
	}

	// Session blobs never leave the main database.
	var sessionsTables int
	err = exported.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_schema WHERE type = 'table' AND name = 'sessions'`).Scan(&sessionsTables)
	if err != nil {
		t.Fatalf("check sessions table: %v", err)
	}
	if sessionsTables != 0 {
		t.Errorf("sessions table exported, want it left behind")
	}
}

func TestDatabase_ExportUserDataRejectsUnsafeID(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(testhelpers.NewWriter(t), nil))

	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("new database: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close database: %v", closeErr)
		}
	})

	for _, id := range []string{"", "../escape", "a/b", "x;y"} {
		if _, err = db.ExportUserData(ctx, id, t.TempDir()); err == nil {
			t.Errorf("ExportUserData(%q) succeeded, want error", id)
		}
	}
}
