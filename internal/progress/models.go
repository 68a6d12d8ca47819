// Package progress computes client progress analytics for a plan: completion
// rate, a coarse status, cosmetic milestones and a category-weighted
// improvement percentage comparing the last fourteen days against the
// fourteen days before that.
package progress

import "time"

// windowDays is the length of each comparison window.
const windowDays = 14

// LogSet is one performed set inside a workout log entry.
type LogSet struct {
	Weight float64
	Reps   int
}

// LogEntry is one logged exercise session. Older logs carry only the nested
// Sets; newer ones also carry the aggregate fields, which take precedence
// when present.
type LogEntry struct {
	ExerciseID    int
	LoggedAt      time.Time
	WeightUsed    *float64
	CompletedSets *int
	CompletedReps *int
	Sets          []LogSet
}

// hasAggregates reports whether the entry carries the pre-summed fields.
func (e LogEntry) hasAggregates() bool {
	return e.WeightUsed != nil && e.CompletedSets != nil && e.CompletedReps != nil
}

// PlanShape is the scheduling footprint of a plan, enough to know how many
// workouts were scheduled in total.
type PlanShape struct {
	DaysPerWeek   int
	DurationWeeks int
}

// totalWorkouts is the number of scheduled workout days over the whole plan.
func (p PlanShape) totalWorkouts() int {
	return p.DaysPerWeek * p.DurationWeeks
}

// Report is what the trainer's progress view renders.
type Report struct {
	CompletionRate   int      `json:"completionRate"`
	Status           string   `json:"status"`
	Milestones       []string `json:"milestones"`
	ImprovementLabel string   `json:"improvement"`
}

// PersonalRecord is a client's best estimated single-rep effort for one
// exercise.
type PersonalRecord struct {
	ExerciseID         int       `json:"exerciseId"`
	ExerciseName       string    `json:"exerciseName"`
	Weight             float64   `json:"weight"`
	Reps               int       `json:"reps"`
	EstimatedOneRepMax float64   `json:"estimatedOneRepMax"`
	LoggedAt           time.Time `json:"loggedAt"`
}
