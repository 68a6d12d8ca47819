package editor_test

import (
	"testing"

	"github.com/chaitanyashetty47/strengthos/internal/editor"
	"github.com/google/go-cmp/cmp"
)

func TestValidateRepsBasedWeightExemption(t *testing.T) {
	tests := []struct {
		name      string
		repsBased bool
		wantValid bool
	}{
		{name: "reps based without weight is valid", repsBased: true, wantValid: true},
		{name: "weighted without weight is invalid", repsBased: false, wantValid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustApply(t, newTestState(t), editor.AddExercise{
				Week: 1,
				Day:  1,
				Exercise: testExercise("ex-1", tt.repsBased,
					editor.Set{SetNumber: 1, Weight: "", Reps: "10", Rest: 30},
				),
			})

			summary := editor.Validate(s)
			if summary.IsValid != tt.wantValid {
				t.Errorf("IsValid = %t, want %t (summary %+v)", summary.IsValid, tt.wantValid, summary)
			}
		})
	}
}

func TestValidateSummary(t *testing.T) {
	s := newTestState(t)
	// Complete exercise on day 1.
	s = mustApply(t, s, editor.AddExercise{
		Week: 1,
		Day:  1,
		Exercise: testExercise("ex-ok", false,
			editor.Set{SetNumber: 1, Weight: "100", Reps: "5", Rest: 180},
		),
	})
	// Missing weight and reps on day 2, plus a negative rest.
	s = mustApply(t, s, editor.AddExercise{
		Week: 1,
		Day:  2,
		Exercise: testExercise("ex-bad", false,
			editor.Set{SetNumber: 1, Weight: "", Reps: "", Rest: 60},
			editor.Set{SetNumber: 2, Weight: "80", Reps: "8", Rest: -10},
		),
	})

	summary := editor.Validate(s)
	if summary.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	if summary.TotalErrors != 3 {
		t.Errorf("TotalErrors = %d, want 3", summary.TotalErrors)
	}
	if len(summary.Exercises) != 1 {
		t.Fatalf("error records = %d, want 1", len(summary.Exercises))
	}

	record := summary.Exercises[0]
	if record.WeekNumber != 1 || record.DayNumber != 2 || record.ExerciseUID != "ex-bad" {
		t.Errorf("record addressed %d/%d/%s, want 1/2/ex-bad",
			record.WeekNumber, record.DayNumber, record.ExerciseUID)
	}
	wantSetErrors := []editor.SetError{
		{SetNumber: 1, Errors: []string{"set 1: weight is required", "set 1: reps are required"}},
		{SetNumber: 2, Errors: []string{"set 2: rest cannot be negative"}},
	}
	if diff := cmp.Diff(wantSetErrors, record.SetErrors); diff != "" {
		t.Errorf("set errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateExerciseWithoutSets(t *testing.T) {
	// The reducer never produces a zero-set exercise, but hydrated documents
	// may carry one; the validator has to flag it rather than panic.
	s := newTestState(t)
	s.Weeks[0].Days[0].Exercises = []editor.Exercise{{
		UID:   "ex-empty",
		Name:  "Deadlift",
		Order: 1,
	}}

	summary := editor.Validate(s)
	if summary.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	if summary.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", summary.TotalErrors)
	}
	want := []string{"exercise has no sets"}
	if diff := cmp.Diff(want, summary.Exercises[0].Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestSetValidationErrorsIndex(t *testing.T) {
	s := newTestState(t)
	s = mustApply(t, s, editor.AddExercise{
		Week: 1,
		Day:  1,
		Exercise: testExercise("ex-ok", false,
			editor.Set{SetNumber: 1, Weight: "100", Reps: "5", Rest: 120},
		),
	})
	s = mustApply(t, s, editor.AddExercise{
		Week: 1,
		Day:  1,
		Exercise: testExercise("ex-bad", false,
			editor.Set{SetNumber: 1, Weight: "", Reps: "8", Rest: 60},
		),
	})

	index := editor.SetValidationErrors(s)
	if _, ok := index["ex-ok"]; ok {
		t.Error("complete exercise appears in error index")
	}
	got, ok := index["ex-bad"]
	if !ok {
		t.Fatal("incomplete exercise missing from error index")
	}
	want := []editor.SetError{{SetNumber: 1, Errors: []string{"set 1: weight is required"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateFreshPlanIsValid(t *testing.T) {
	summary := editor.Validate(newTestState(t))
	if !summary.IsValid || summary.TotalErrors != 0 {
		t.Errorf("fresh plan summary = %+v, want valid with zero errors", summary)
	}
}
