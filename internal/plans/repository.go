package plans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaitanyashetty47/strengthos/internal/editor"
	"github.com/chaitanyashetty47/strengthos/internal/sqlite"
)

const dateFormat = time.DateOnly
const timestampFormat = "2006-01-02T15:04:05.000Z"

// sqliteRepository persists editor documents. The document tree maps onto
// four tables; writes replace the whole tree inside one transaction rather
// than diffing it.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{db: db, logger: logger}
}

func (r *sqliteRepository) create(ctx context.Context, id, trainerID string, state editor.State) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO plans (id, trainer_id, client_id, title, description, start_date, category, duration_weeks, intensity_mode, status, weight_unit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, trainerID, state.Meta.ClientID, state.Meta.Title, state.Meta.Description,
		state.Meta.StartDate.Format(dateFormat), string(state.Meta.Category),
		state.Meta.DurationWeeks, string(state.Meta.IntensityMode),
		string(state.Meta.Status), string(state.Meta.WeightUnit)); err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	if err = insertWeeks(ctx, tx, id, state.Weeks); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// save replaces the stored document. Plan days, exercises and sets cascade
// from plan_days, so one delete clears the old tree.
func (r *sqliteRepository) save(ctx context.Context, id string, state editor.State) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE plans
		SET client_id = ?, title = ?, description = ?, start_date = ?, category = ?,
		    duration_weeks = ?, intensity_mode = ?, status = ?, weight_unit = ?
		WHERE id = ?`,
		state.Meta.ClientID, state.Meta.Title, state.Meta.Description,
		state.Meta.StartDate.Format(dateFormat), string(state.Meta.Category),
		state.Meta.DurationWeeks, string(state.Meta.IntensityMode),
		string(state.Meta.Status), string(state.Meta.WeightUnit), id)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM plan_days WHERE plan_id = ?", id); err != nil {
		return fmt.Errorf("delete plan days: %w", err)
	}
	if err = insertWeeks(ctx, tx, id, state.Weeks); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertWeeks(ctx context.Context, tx *sql.Tx, planID string, weeks []editor.Week) error {
	for _, week := range weeks {
		for _, day := range week.Days {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO plan_days (plan_id, week_number, day_number, title, estimated_minutes)
				VALUES (?, ?, ?, ?, ?)`,
				planID, week.WeekNumber, day.DayNumber, day.Title, day.EstimatedTimeMinutes); err != nil {
				return fmt.Errorf("insert plan day %d/%d: %w", week.WeekNumber, day.DayNumber, err)
			}
			for _, exercise := range day.Exercises {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO plan_exercises (uid, plan_id, week_number, day_number, catalog_id, name, body_part, display_order, instructions, notes, is_reps_based)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
					exercise.UID, planID, week.WeekNumber, day.DayNumber, exercise.CatalogID,
					exercise.Name, exercise.BodyPart, exercise.Order, exercise.Instructions,
					exercise.Notes, exercise.IsRepsBased); err != nil {
					return fmt.Errorf("insert exercise %s: %w", exercise.UID, err)
				}
				for _, set := range exercise.Sets {
					if _, err := tx.ExecContext(ctx, `
						INSERT INTO plan_sets (exercise_uid, set_number, weight, reps, rest_seconds, notes)
						VALUES (?, ?, ?, ?, ?, ?)`,
						exercise.UID, set.SetNumber, set.Weight, set.Reps, set.Rest, set.Notes); err != nil {
						return fmt.Errorf("insert set %s/%d: %w", exercise.UID, set.SetNumber, err)
					}
				}
			}
		}
	}
	return nil
}

// get hydrates a stored plan back into an editor document. The cursor is not
// persisted; hydration points it at the first day of the first week.
func (r *sqliteRepository) get(ctx context.Context, id string) (editor.State, error) {
	var (
		state        editor.State
		startDateStr string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT client_id, title, description, start_date, category, duration_weeks, intensity_mode, status, weight_unit
		FROM plans
		WHERE id = ?`, id).Scan(
		&state.Meta.ClientID,
		&state.Meta.Title,
		&state.Meta.Description,
		&startDateStr,
		&state.Meta.Category,
		&state.Meta.DurationWeeks,
		&state.Meta.IntensityMode,
		&state.Meta.Status,
		&state.Meta.WeightUnit,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return editor.State{}, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return editor.State{}, fmt.Errorf("query plan: %w", err)
	}
	state.Meta.StartDate, err = time.Parse(dateFormat, startDateStr)
	if err != nil {
		return editor.State{}, fmt.Errorf("parse start_date %q: %w", startDateStr, err)
	}

	if state.Weeks, err = r.loadWeeks(ctx, id); err != nil {
		return editor.State{}, err
	}

	state.SelectedWeek = 1
	state.SelectedDay = 1
	if len(state.Weeks) > 0 && len(state.Weeks[0].Days) > 0 {
		state.SelectedDay = state.Weeks[0].Days[0].DayNumber
	}
	return state, nil
}

func (r *sqliteRepository) loadWeeks(ctx context.Context, planID string) (_ []editor.Week, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT week_number, day_number, title, estimated_minutes
		FROM plan_days
		WHERE plan_id = ?
		ORDER BY week_number, day_number`, planID)
	if err != nil {
		return nil, fmt.Errorf("query plan days: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var weeks []editor.Week
	for rows.Next() {
		var (
			weekNumber int
			day        editor.Day
		)
		if err = rows.Scan(&weekNumber, &day.DayNumber, &day.Title, &day.EstimatedTimeMinutes); err != nil {
			return nil, fmt.Errorf("scan plan day: %w", err)
		}
		day.Exercises = []editor.Exercise{}
		for len(weeks) < weekNumber {
			weeks = append(weeks, editor.Week{WeekNumber: len(weeks) + 1})
		}
		weeks[weekNumber-1].Days = append(weeks[weekNumber-1].Days, day)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if err = r.loadExercises(ctx, planID, weeks); err != nil {
		return nil, err
	}
	return weeks, nil
}

func (r *sqliteRepository) loadExercises(ctx context.Context, planID string, weeks []editor.Week) (err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT e.week_number, e.day_number, e.uid, e.catalog_id, e.name, e.body_part, e.display_order, e.instructions, e.notes, e.is_reps_based,
		       s.set_number, s.weight, s.reps, s.rest_seconds, s.notes
		FROM plan_exercises e
		JOIN plan_sets s ON s.exercise_uid = e.uid
		WHERE e.plan_id = ?
		ORDER BY e.week_number, e.day_number, e.display_order, s.set_number`, planID)
	if err != nil {
		return fmt.Errorf("query plan exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	for rows.Next() {
		var (
			weekNumber int
			dayNumber  int
			exercise   editor.Exercise
			set        editor.Set
		)
		if err = rows.Scan(&weekNumber, &dayNumber, &exercise.UID, &exercise.CatalogID,
			&exercise.Name, &exercise.BodyPart, &exercise.Order, &exercise.Instructions,
			&exercise.Notes, &exercise.IsRepsBased,
			&set.SetNumber, &set.Weight, &set.Reps, &set.Rest, &set.Notes); err != nil {
			return fmt.Errorf("scan plan exercise: %w", err)
		}
		if weekNumber < 1 || weekNumber > len(weeks) {
			return fmt.Errorf("exercise %s references missing week %d", exercise.UID, weekNumber)
		}

		week := &weeks[weekNumber-1]
		dayIndex := -1
		for i := range week.Days {
			if week.Days[i].DayNumber == dayNumber {
				dayIndex = i
				break
			}
		}
		if dayIndex < 0 {
			return fmt.Errorf("exercise %s references missing day %d/%d", exercise.UID, weekNumber, dayNumber)
		}

		day := &week.Days[dayIndex]
		if n := len(day.Exercises); n > 0 && day.Exercises[n-1].UID == exercise.UID {
			day.Exercises[n-1].Sets = append(day.Exercises[n-1].Sets, set)
		} else {
			exercise.Sets = []editor.Set{set}
			day.Exercises = append(day.Exercises, exercise)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	return nil
}

// list returns plan summaries for a client, newest first.
func (r *sqliteRepository) list(ctx context.Context, clientID string) (_ []Summary, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, client_id, title, category, status, start_date, duration_weeks
		FROM plans
		WHERE client_id = ?
		ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var summaries []Summary
	for rows.Next() {
		var (
			summary      Summary
			startDateStr string
		)
		if err = rows.Scan(&summary.ID, &summary.ClientID, &summary.Title,
			&summary.Category, &summary.Status, &startDateStr, &summary.DurationWeeks); err != nil {
			return nil, fmt.Errorf("scan plan summary: %w", err)
		}
		summary.StartDate, err = time.Parse(dateFormat, startDateStr)
		if err != nil {
			return nil, fmt.Errorf("parse start_date %q: %w", startDateStr, err)
		}
		summaries = append(summaries, summary)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return summaries, nil
}

// recordCompletion marks one workout day complete. Marking the same day
// twice is not an error.
func (r *sqliteRepository) recordCompletion(ctx context.Context, userID, planID string, week, day int, completedAt time.Time) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT OR IGNORE INTO workout_day_completions (user_id, plan_id, week_number, day_number, completed_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, planID, week, day, completedAt.UTC().Format(timestampFormat)); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}
