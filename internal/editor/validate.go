package editor

import "fmt"

// SetError marks one incomplete set within an exercise.
type SetError struct {
	SetNumber int      `json:"setNumber"`
	Errors    []string `json:"errors"`
}

// ExerciseErrors collects everything wrong with one exercise, addressed so the
// UI can jump straight to it.
type ExerciseErrors struct {
	WeekNumber   int        `json:"weekNumber"`
	DayNumber    int        `json:"dayNumber"`
	ExerciseUID  string     `json:"exerciseUid"`
	ExerciseName string     `json:"exerciseName"`
	Errors       []string   `json:"errors"`
	SetErrors    []SetError `json:"setErrors"`
}

// Summary is the plan-wide validation result. IsValid holds exactly when no
// exercise produced an error record.
type Summary struct {
	IsValid     bool             `json:"isValid"`
	TotalErrors int              `json:"totalErrors"`
	Exercises   []ExerciseErrors `json:"exercises"`
}

// validateSet lists what is missing from a set. Reps-based exercises are
// exempt from the weight requirement; that exemption is the only conditional
// in the validator and must match the set entry form exactly.
func validateSet(set Set, isRepsBased bool) []string {
	var errs []string
	if !isRepsBased && set.Weight == "" {
		errs = append(errs, fmt.Sprintf("set %d: weight is required", set.SetNumber))
	}
	if set.Reps == "" {
		errs = append(errs, fmt.Sprintf("set %d: reps are required", set.SetNumber))
	}
	if set.Rest < 0 {
		errs = append(errs, fmt.Sprintf("set %d: rest cannot be negative", set.SetNumber))
	}
	return errs
}

// validateExercise aggregates set validation for one exercise. An exercise
// with no sets is reported invalid even though the reducer never produces
// one; hydrated documents may.
func validateExercise(exercise Exercise) (exerciseErrs []string, setErrs []SetError) {
	if len(exercise.Sets) == 0 {
		return []string{"exercise has no sets"}, nil
	}
	for _, set := range exercise.Sets {
		if errs := validateSet(set, exercise.IsRepsBased); len(errs) > 0 {
			setErrs = append(setErrs, SetError{SetNumber: set.SetNumber, Errors: errs})
		}
	}
	return nil, setErrs
}

// Validate walks the whole document and reports every incomplete exercise.
// It never mutates the state and is cheap enough to re-derive per render.
func Validate(s State) Summary {
	summary := Summary{IsValid: true}
	for _, week := range s.Weeks {
		for _, day := range week.Days {
			for _, exercise := range day.Exercises {
				exerciseErrs, setErrs := validateExercise(exercise)
				if len(exerciseErrs) == 0 && len(setErrs) == 0 {
					continue
				}
				summary.Exercises = append(summary.Exercises, ExerciseErrors{
					WeekNumber:   week.WeekNumber,
					DayNumber:    day.DayNumber,
					ExerciseUID:  exercise.UID,
					ExerciseName: exercise.Name,
					Errors:       exerciseErrs,
					SetErrors:    setErrs,
				})
				summary.TotalErrors += len(exerciseErrs)
				for _, setErr := range setErrs {
					summary.TotalErrors += len(setErr.Errors)
				}
			}
		}
	}
	summary.IsValid = len(summary.Exercises) == 0
	return summary
}

// SetValidationErrors indexes invalid sets by exercise UID so a single
// exercise's rows can be decorated without re-walking the document.
func SetValidationErrors(s State) map[string][]SetError {
	index := make(map[string][]SetError)
	for _, week := range s.Weeks {
		for _, day := range week.Days {
			for _, exercise := range day.Exercises {
				_, setErrs := validateExercise(exercise)
				if len(setErrs) > 0 {
					index[exercise.UID] = setErrs
				}
			}
		}
	}
	return index
}
