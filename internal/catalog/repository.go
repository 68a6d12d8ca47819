package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chaitanyashetty47/strengthos/internal/sqlite"
)

// sqliteRepository handles database operations for the exercise library.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{db: db, logger: logger}
}

// list returns the whole library ordered by name.
func (r *sqliteRepository) list(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, body_part, description_markdown, is_reps_based
		FROM exercises
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var exercises []Exercise
	for rows.Next() {
		var exercise Exercise
		if err = rows.Scan(&exercise.ID, &exercise.Name, &exercise.BodyPart,
			&exercise.DescriptionMarkdown, &exercise.IsRepsBased); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}

func (r *sqliteRepository) get(ctx context.Context, id int) (Exercise, error) {
	var exercise Exercise
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, body_part, description_markdown, is_reps_based
		FROM exercises
		WHERE id = ?`, id).Scan(&exercise.ID, &exercise.Name, &exercise.BodyPart,
		&exercise.DescriptionMarkdown, &exercise.IsRepsBased)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, fmt.Errorf("exercise %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	return exercise, nil
}

// create inserts a new exercise and returns it with the assigned ID. Names
// are unique; inserting a duplicate surfaces the constraint error.
func (r *sqliteRepository) create(ctx context.Context, exercise Exercise) (Exercise, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO exercises (name, body_part, description_markdown, is_reps_based)
		VALUES (?, ?, ?, ?)`,
		exercise.Name, exercise.BodyPart, exercise.DescriptionMarkdown, exercise.IsRepsBased)
	if err != nil {
		return Exercise{}, fmt.Errorf("insert exercise: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Exercise{}, fmt.Errorf("last insert id: %w", err)
	}
	exercise.ID = int(id)
	return exercise, nil
}
