// Package editor implements the in-memory workout plan document that trainers
// edit before publishing a plan to a client. The document is a normalized tree
// of weeks, days, exercises and sets. All mutation goes through [Apply] with a
// closed set of actions; validation and summaries are derived views that never
// mutate the document.
package editor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category represents the training focus of a plan.
type Category string

const (
	CategoryHypertrophy Category = "hypertrophy"
	CategoryStrength    Category = "strength"
	CategoryDeload      Category = "deload"
	CategoryEndurance   Category = "endurance"
)

// IntensityMode determines whether set targets are absolute loads or
// percentages of a tracked one-rep max.
type IntensityMode string

const (
	IntensityAbsolute IntensityMode = "ABSOLUTE"
	IntensityPercent  IntensityMode = "PERCENT"
)

// Status is the lifecycle status of a plan.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

// WeightUnit is the display unit for loads in the plan.
type WeightUnit string

const (
	WeightUnitKg WeightUnit = "KG"
	WeightUnitLb WeightUnit = "LB"
)

// Meta holds the plan-level attributes.
type Meta struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	// StartDate is always normalized to the Monday of its week.
	StartDate     time.Time     `json:"startDate"`
	Category      Category      `json:"category"`
	ClientID      string        `json:"clientId"`
	// DurationWeeks mirrors len(State.Weeks) and is kept in sync by the reducer.
	DurationWeeks int           `json:"durationWeeks"`
	IntensityMode IntensityMode `json:"intensityMode"`
	Status        Status        `json:"status"`
	WeightUnit    WeightUnit    `json:"weightUnit"`
}

// Set is a single prescribed unit of an exercise. Weight and Reps are raw
// input buffers so the document can represent a blank field mid-edit; numeric
// parsing happens in the validation layer.
type Set struct {
	SetNumber int    `json:"setNumber"`
	Weight    string `json:"weight"`
	Reps      string `json:"reps"`
	Rest      int    `json:"rest"`
	Notes     string `json:"notes"`
}

// Exercise is an exercise scheduled on a day. UID is a stable opaque
// identifier used for list identity and all set/field targeting; it is never
// reused after deletion.
type Exercise struct {
	UID          string `json:"uid"`
	CatalogID    int    `json:"listExerciseId"`
	Name         string `json:"name"`
	BodyPart     string `json:"bodyPart"`
	Order        int    `json:"order"`
	Instructions string `json:"instructions"`
	Notes        string `json:"notes"`
	IsRepsBased  bool   `json:"isRepsBased"`
	Sets         []Set  `json:"sets"`
}

// Day groups the exercises scheduled for one training day. Day numbers are
// unique within a week but not necessarily contiguous after deletions.
type Day struct {
	DayNumber            int        `json:"dayNumber"`
	Title                string     `json:"title"`
	Exercises            []Exercise `json:"exercises"`
	EstimatedTimeMinutes int        `json:"estimatedTimeMinutes"`
}

// Week is one week of a plan. WeekNumber always equals its position + 1.
type Week struct {
	WeekNumber int   `json:"weekNumber"`
	Days       []Day `json:"days"`
}

// State is the root of the plan editor document.
type State struct {
	Meta  Meta   `json:"meta"`
	Weeks []Week `json:"weeks"`
	// SelectedWeek and SelectedDay form the UI cursor. They always reference
	// an existing week and day number after any structural mutation.
	SelectedWeek int `json:"selectedWeek"`
	SelectedDay  int `json:"selectedDay"`
}

const (
	minDaysPerWeek  = 3
	maxDaysPerWeek  = 7
	defaultRestSecs = 60
)

// NewState builds a fresh draft document with one week of three empty training
// days, matching what the plan creation screen starts from.
func NewState(clientID string, startDate time.Time) State {
	return State{
		Meta: Meta{
			Title:         "",
			Description:   "",
			StartDate:     MondayOf(startDate),
			Category:      CategoryHypertrophy,
			ClientID:      clientID,
			DurationWeeks: 1,
			IntensityMode: IntensityAbsolute,
			Status:        StatusDraft,
			WeightUnit:    WeightUnitKg,
		},
		Weeks:        []Week{newWeek(1)},
		SelectedWeek: 1,
		SelectedDay:  1,
	}
}

// MondayOf returns the Monday of the week containing date, truncated to midnight.
func MondayOf(date time.Time) time.Time {
	offset := int(time.Monday - date.Weekday())
	if offset > 0 {
		offset = -6 // Sunday belongs to the preceding Monday's week.
	}
	monday := date.AddDate(0, 0, offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

// NewUID returns a fresh opaque exercise identifier.
func NewUID() string {
	return uuid.NewString()
}

func newWeek(weekNumber int) Week {
	days := make([]Day, 0, minDaysPerWeek)
	for i := 1; i <= minDaysPerWeek; i++ {
		days = append(days, newDay(i))
	}
	return Week{WeekNumber: weekNumber, Days: days}
}

func newDay(dayNumber int) Day {
	return Day{
		DayNumber:            dayNumber,
		Title:                defaultDayTitle(dayNumber),
		Exercises:            []Exercise{},
		EstimatedTimeMinutes: 0,
	}
}

func defaultDayTitle(dayNumber int) string {
	return fmt.Sprintf("Training Day %d", dayNumber)
}

// Clone returns a deep copy of the state. Apply clones before mutating so that
// callers can hold on to old snapshots.
func (s State) Clone() State {
	clone := s
	clone.Weeks = make([]Week, len(s.Weeks))
	for i, week := range s.Weeks {
		clone.Weeks[i] = week.clone()
	}
	return clone
}

func (w Week) clone() Week {
	clone := w
	clone.Days = make([]Day, len(w.Days))
	for i, day := range w.Days {
		clone.Days[i] = day.clone()
	}
	return clone
}

func (d Day) clone() Day {
	clone := d
	clone.Exercises = make([]Exercise, len(d.Exercises))
	for i, ex := range d.Exercises {
		clone.Exercises[i] = ex.clone()
	}
	return clone
}

func (e Exercise) clone() Exercise {
	clone := e
	clone.Sets = make([]Set, len(e.Sets))
	copy(clone.Sets, e.Sets)
	return clone
}
