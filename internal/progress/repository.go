package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/chaitanyashetty47/strengthos/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// sqliteRepository fetches the raw inputs for the analytics engine.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{db: db, logger: logger}
}

// completionCount counts the workout days a client has marked complete for a
// plan.
func (r *sqliteRepository) completionCount(ctx context.Context, userID, planID string) (int, error) {
	var count int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM workout_day_completions
		WHERE user_id = ? AND plan_id = ?`, userID, planID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count day completions: %w", err)
	}
	return count, nil
}

// planShape reads the scheduling footprint of a plan. Days per week is taken
// from the first week; the editor keeps all weeks between three and seven
// days so the first week is representative.
func (r *sqliteRepository) planShape(ctx context.Context, planID string) (PlanShape, error) {
	var shape PlanShape
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT p.duration_weeks,
		       (SELECT COUNT(*) FROM plan_days d WHERE d.plan_id = p.id AND d.week_number = 1)
		FROM plans p
		WHERE p.id = ?`, planID).Scan(&shape.DurationWeeks, &shape.DaysPerWeek)
	if errors.Is(err, sql.ErrNoRows) {
		return PlanShape{}, fmt.Errorf("plan %s: %w", planID, ErrNotFound)
	}
	if err != nil {
		return PlanShape{}, fmt.Errorf("query plan shape: %w", err)
	}
	return shape, nil
}

// logsBetween fetches a client's workout logs in [from, to). Entries without
// aggregate columns get their per-set rows loaded so the engine can sum them.
func (r *sqliteRepository) logsBetween(ctx context.Context, userID string, from, to time.Time) (_ []LogEntry, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, exercise_id, logged_at, weight_used, completed_sets, completed_reps
		FROM workout_logs
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
		ORDER BY logged_at`,
		userID, from.UTC().Format(timestampFormat), to.UTC().Format(timestampFormat))
	if err != nil {
		return nil, fmt.Errorf("query workout logs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var entries []LogEntry
	var logIDs []int64
	for rows.Next() {
		var (
			id            int64
			loggedAtStr   string
			weightUsed    sql.NullFloat64
			completedSets sql.NullInt64
			completedReps sql.NullInt64
			entry         LogEntry
		)
		if err = rows.Scan(&id, &entry.ExerciseID, &loggedAtStr, &weightUsed, &completedSets, &completedReps); err != nil {
			return nil, fmt.Errorf("scan workout log: %w", err)
		}
		entry.LoggedAt, err = time.Parse(timestampFormat, loggedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parse logged_at %q: %w", loggedAtStr, err)
		}
		if weightUsed.Valid {
			entry.WeightUsed = &weightUsed.Float64
		}
		if completedSets.Valid {
			sets := int(completedSets.Int64)
			entry.CompletedSets = &sets
		}
		if completedReps.Valid {
			reps := int(completedReps.Int64)
			entry.CompletedReps = &reps
		}
		entries = append(entries, entry)
		logIDs = append(logIDs, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i, entry := range entries {
		if entry.hasAggregates() {
			continue
		}
		entries[i].Sets, err = r.logSets(ctx, logIDs[i])
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *sqliteRepository) logSets(ctx context.Context, logID int64) (_ []LogSet, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT weight, reps
		FROM workout_log_sets
		WHERE log_id = ?
		ORDER BY set_number`, logID)
	if err != nil {
		return nil, fmt.Errorf("query log sets: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var sets []LogSet
	for rows.Next() {
		var set LogSet
		if err = rows.Scan(&set.Weight, &set.Reps); err != nil {
			return nil, fmt.Errorf("scan log set: %w", err)
		}
		sets = append(sets, set)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return sets, nil
}

// personalRecords returns the best logged effort per exercise, ranked by
// estimated one-rep max. The estimate happens in Go so both log shapes share
// one formula.
func (r *sqliteRepository) personalRecords(ctx context.Context, userID string) (_ []PersonalRecord, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT l.exercise_id, e.name, l.logged_at, l.weight_used, l.completed_sets, l.completed_reps, s.weight, s.reps
		FROM workout_logs l
		JOIN exercises e ON e.id = l.exercise_id
		LEFT JOIN workout_log_sets s ON s.log_id = l.id
		WHERE l.user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query personal records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	best := map[int]PersonalRecord{}
	for rows.Next() {
		var (
			exerciseID    int
			name          string
			loggedAtStr   string
			weightUsed    sql.NullFloat64
			completedSets sql.NullInt64
			completedReps sql.NullInt64
			setWeight     sql.NullFloat64
			setReps       sql.NullInt64
		)
		if err = rows.Scan(&exerciseID, &name, &loggedAtStr, &weightUsed, &completedSets, &completedReps, &setWeight, &setReps); err != nil {
			return nil, fmt.Errorf("scan personal record row: %w", err)
		}
		loggedAt, parseErr := time.Parse(timestampFormat, loggedAtStr)
		if parseErr != nil {
			return nil, fmt.Errorf("parse logged_at %q: %w", loggedAtStr, parseErr)
		}

		weight, reps := setWeight.Float64, int(setReps.Int64)
		if weightUsed.Valid && completedSets.Valid && completedReps.Valid && completedSets.Int64 > 0 {
			// Aggregate reps cover the whole session; estimate from the
			// average reps per set.
			weight, reps = weightUsed.Float64, int(completedReps.Int64/completedSets.Int64)
		}
		estimate := EstimateOneRepMax(weight, reps)
		if estimate == 0 {
			continue
		}
		if current, ok := best[exerciseID]; !ok || estimate > current.EstimatedOneRepMax {
			best[exerciseID] = PersonalRecord{
				ExerciseID:         exerciseID,
				ExerciseName:       name,
				Weight:             weight,
				Reps:               reps,
				EstimatedOneRepMax: estimate,
				LoggedAt:           loggedAt,
			}
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	records := make([]PersonalRecord, 0, len(best))
	for _, record := range best {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].EstimatedOneRepMax > records[j].EstimatedOneRepMax
	})
	return records, nil
}
