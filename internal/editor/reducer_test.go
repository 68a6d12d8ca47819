package editor_test

import (
	"testing"
	"time"

	"github.com/chaitanyashetty47/strengthos/internal/editor"
	"github.com/chaitanyashetty47/strengthos/internal/ptr"
	"github.com/google/go-cmp/cmp"
)

func newTestState(t *testing.T) editor.State {
	t.Helper()
	return editor.NewState("client-1", time.Date(2026, time.March, 4, 15, 30, 0, 0, time.UTC))
}

func mustApply(t *testing.T, s editor.State, action editor.Action) editor.State {
	t.Helper()
	next, result := editor.Apply(s, action)
	if result.Rejected {
		t.Fatalf("action %s rejected: %s", editor.ActionType(action), result.Reason)
	}
	return next
}

func testExercise(uid string, repsBased bool, sets ...editor.Set) editor.Exercise {
	return editor.Exercise{
		UID:         uid,
		CatalogID:   1,
		Name:        "Back Squat",
		BodyPart:    "Legs",
		IsRepsBased: repsBased,
		Sets:        sets,
	}
}

// checkInvariants asserts the structural rules that must hold after any
// transition: contiguous week numbers, day count bounds, contiguous exercise
// order and set numbers, at least one set per exercise, durationWeeks in sync
// and a cursor pointing at an existing day.
func checkInvariants(t *testing.T, s editor.State) {
	t.Helper()
	if s.Meta.DurationWeeks != len(s.Weeks) {
		t.Errorf("durationWeeks = %d, want %d", s.Meta.DurationWeeks, len(s.Weeks))
	}
	for i, week := range s.Weeks {
		if week.WeekNumber != i+1 {
			t.Errorf("weeks[%d].WeekNumber = %d, want %d", i, week.WeekNumber, i+1)
		}
		if len(week.Days) < 3 || len(week.Days) > 7 {
			t.Errorf("week %d has %d days, want 3..7", week.WeekNumber, len(week.Days))
		}
		seen := map[int]bool{}
		for _, day := range week.Days {
			if seen[day.DayNumber] {
				t.Errorf("week %d reuses day number %d", week.WeekNumber, day.DayNumber)
			}
			seen[day.DayNumber] = true
			for j, exercise := range day.Exercises {
				if exercise.Order != j+1 {
					t.Errorf("exercise %s order = %d, want %d", exercise.UID, exercise.Order, j+1)
				}
				if len(exercise.Sets) == 0 {
					t.Errorf("exercise %s has no sets", exercise.UID)
				}
				for k, set := range exercise.Sets {
					if set.SetNumber != k+1 {
						t.Errorf("exercise %s set %d numbered %d", exercise.UID, k+1, set.SetNumber)
					}
				}
			}
		}
	}
	if len(s.Weeks) > 0 {
		if s.SelectedWeek < 1 || s.SelectedWeek > len(s.Weeks) {
			t.Errorf("selectedWeek %d out of range", s.SelectedWeek)
		} else {
			week := s.Weeks[s.SelectedWeek-1]
			found := false
			for _, day := range week.Days {
				if day.DayNumber == s.SelectedDay {
					found = true
				}
			}
			if !found {
				t.Errorf("selectedDay %d missing from week %d", s.SelectedDay, s.SelectedWeek)
			}
		}
	}
}

func TestNewState(t *testing.T) {
	s := newTestState(t)

	if len(s.Weeks) != 1 {
		t.Fatalf("weeks = %d, want 1", len(s.Weeks))
	}
	if got := len(s.Weeks[0].Days); got != 3 {
		t.Fatalf("days = %d, want 3", got)
	}
	for i, day := range s.Weeks[0].Days {
		if len(day.Exercises) != 0 {
			t.Errorf("day %d has exercises on a fresh plan", i+1)
		}
	}
	// Start date lands on the Monday of its week.
	wantStart := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !s.Meta.StartDate.Equal(wantStart) {
		t.Errorf("startDate = %v, want %v", s.Meta.StartDate, wantStart)
	}
	if s.Meta.Status != editor.StatusDraft {
		t.Errorf("status = %s, want %s", s.Meta.Status, editor.StatusDraft)
	}
	checkInvariants(t, s)
}

func TestAddWeek(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddWeek{})

	if len(s.Weeks) != 2 {
		t.Fatalf("weeks = %d, want 2", len(s.Weeks))
	}
	if s.Meta.DurationWeeks != 2 {
		t.Errorf("durationWeeks = %d, want 2", s.Meta.DurationWeeks)
	}
	wantTitles := []string{"Training Day 1", "Training Day 2", "Training Day 3"}
	for i, day := range s.Weeks[1].Days {
		if day.Title != wantTitles[i] {
			t.Errorf("day title = %q, want %q", day.Title, wantTitles[i])
		}
	}
	checkInvariants(t, s)
}

func TestAddExerciseSeedsOneSet(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddExercise{
		Week:     1,
		Day:      1,
		Exercise: testExercise("ex-1", false),
	})

	got := s.Weeks[0].Days[0].Exercises[0].Sets
	want := []editor.Set{{SetNumber: 1, Weight: "", Reps: "", Rest: 60, Notes: ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("seeded sets mismatch (-want +got):\n%s", diff)
	}
	checkInvariants(t, s)
}

func TestAddSetCopiesPreviousTargets(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddExercise{
		Week: 1,
		Day:  1,
		Exercise: testExercise("ex-1", false,
			editor.Set{SetNumber: 1, Weight: "80", Reps: "8", Rest: 90, Notes: "belt on"},
		),
	})
	s = mustApply(t, s, editor.AddSet{UID: "ex-1"})

	got := s.Weeks[0].Days[0].Exercises[0].Sets[1]
	want := editor.Set{SetNumber: 2, Weight: "80", Reps: "8", Rest: 90, Notes: ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("added set mismatch (-want +got):\n%s", diff)
	}
}

func TestDayCountBounds(t *testing.T) {
	s := newTestState(t)

	// Fill the first week up to seven days.
	for i := 0; i < 4; i++ {
		s = mustApply(t, s, editor.AddDay{Week: 1})
	}
	if got := len(s.Weeks[0].Days); got != 7 {
		t.Fatalf("days = %d, want 7", got)
	}

	_, result := editor.Apply(s, editor.AddDay{Week: 1})
	if !result.Rejected || result.Reason != editor.ReasonDayCountBound {
		t.Errorf("AddDay at 7 days: result = %+v, want day count rejection", result)
	}

	for i := 0; i < 4; i++ {
		day := s.Weeks[0].Days[len(s.Weeks[0].Days)-1].DayNumber
		s = mustApply(t, s, editor.DeleteDay{Week: 1, Day: day})
	}
	_, result = editor.Apply(s, editor.DeleteDay{Week: 1, Day: 1})
	if !result.Rejected || result.Reason != editor.ReasonDayCountBound {
		t.Errorf("DeleteDay at 3 days: result = %+v, want day count rejection", result)
	}
	checkInvariants(t, s)
}

func TestDayNumbersNeverReused(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddDay{Week: 1})
	s = mustApply(t, s, editor.DeleteDay{Week: 1, Day: 2})
	s = mustApply(t, s, editor.AddDay{Week: 1})

	var numbers []int
	for _, day := range s.Weeks[0].Days {
		numbers = append(numbers, day.DayNumber)
	}
	want := []int{1, 3, 4, 5}
	if diff := cmp.Diff(want, numbers); diff != "" {
		t.Errorf("day numbers mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteSetRefusesLastSet(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddExercise{
		Week:     1,
		Day:      1,
		Exercise: testExercise("ex-1", false),
	})

	next, result := editor.Apply(s, editor.DeleteSet{UID: "ex-1", SetNumber: 1})
	if !result.Rejected || result.Reason != editor.ReasonLastSet {
		t.Fatalf("result = %+v, want last set rejection", result)
	}
	if diff := cmp.Diff(s, next); diff != "" {
		t.Errorf("rejected action changed state (-want +got):\n%s", diff)
	}
}

func TestDeleteSetRenumbers(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddExercise{
		Week: 1,
		Day:  1,
		Exercise: testExercise("ex-1", false,
			editor.Set{SetNumber: 1, Weight: "60", Reps: "10", Rest: 60},
			editor.Set{SetNumber: 2, Weight: "70", Reps: "8", Rest: 90},
			editor.Set{SetNumber: 3, Weight: "80", Reps: "6", Rest: 120},
		),
	})
	s = mustApply(t, s, editor.DeleteSet{UID: "ex-1", SetNumber: 2})

	got := s.Weeks[0].Days[0].Exercises[0].Sets
	want := []editor.Set{
		{SetNumber: 1, Weight: "60", Reps: "10", Rest: 60},
		{SetNumber: 2, Weight: "80", Reps: "6", Rest: 120},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sets mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateWeekAssignsFreshUIDs(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddExercise{
		Week:     1,
		Day:      1,
		Exercise: testExercise("ex-1", false),
	})
	s = mustApply(t, s, editor.DuplicateWeek{Week: 1})

	if len(s.Weeks) != 2 || s.Meta.DurationWeeks != 2 {
		t.Fatalf("weeks = %d durationWeeks = %d, want 2/2", len(s.Weeks), s.Meta.DurationWeeks)
	}
	original := s.Weeks[0].Days[0].Exercises[0]
	duplicate := s.Weeks[1].Days[0].Exercises[0]
	if duplicate.UID == original.UID {
		t.Errorf("duplicate kept UID %s", original.UID)
	}
	if diff := cmp.Diff(original.Sets, duplicate.Sets); diff != "" {
		t.Errorf("duplicate sets mismatch (-original +duplicate):\n%s", diff)
	}
	checkInvariants(t, s)
}

func TestDuplicateThenDeleteRoundTrip(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddExercise{
		Week: 1,
		Day:  2,
		Exercise: testExercise("ex-1", false,
			editor.Set{SetNumber: 1, Weight: "100", Reps: "5", Rest: 180},
		),
	})

	duplicated := mustApply(t, s, editor.DuplicateWeek{Week: 1})
	restored := mustApply(t, duplicated, editor.DeleteWeek{Week: 2})

	if diff := cmp.Diff(s, restored); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectWeekDayIdempotent(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddWeek{})

	once := mustApply(t, s, editor.SelectWeekDay{Week: 2, Day: 2})
	twice := mustApply(t, once, editor.SelectWeekDay{Week: 2, Day: 2})

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second select changed state (-want +got):\n%s", diff)
	}
	if once.SelectedWeek != 2 || once.SelectedDay != 2 {
		t.Errorf("cursor = %d/%d, want 2/2", once.SelectedWeek, once.SelectedDay)
	}
}

func TestSelectWeekDayMissingTarget(t *testing.T) {
	s := newTestState(t)
	_, result := editor.Apply(s, editor.SelectWeekDay{Week: 4, Day: 1})
	if !result.Rejected || result.Reason != editor.ReasonTargetNotFound {
		t.Errorf("result = %+v, want target not found", result)
	}
}

func TestDeleteWeekMovesCursor(t *testing.T) {
	s := newTestState(t)
	s = mustApply(t, s, editor.AddWeek{})
	s = mustApply(t, s, editor.AddWeek{})

	t.Run("selected week deleted", func(t *testing.T) {
		state := mustApply(t, s, editor.SelectWeekDay{Week: 3, Day: 2})
		state = mustApply(t, state, editor.DeleteWeek{Week: 3})
		if state.SelectedWeek != 2 || state.SelectedDay != 1 {
			t.Errorf("cursor = %d/%d, want 2/1", state.SelectedWeek, state.SelectedDay)
		}
		checkInvariants(t, state)
	})

	t.Run("later week selected shifts down", func(t *testing.T) {
		state := mustApply(t, s, editor.SelectWeekDay{Week: 3, Day: 3})
		state = mustApply(t, state, editor.DeleteWeek{Week: 1})
		if state.SelectedWeek != 2 || state.SelectedDay != 3 {
			t.Errorf("cursor = %d/%d, want 2/3", state.SelectedWeek, state.SelectedDay)
		}
		checkInvariants(t, state)
	})
}

func TestDeleteSelectedDayFallsBack(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddDay{Week: 1})
	s = mustApply(t, s, editor.SelectWeekDay{Week: 1, Day: 2})
	s = mustApply(t, s, editor.DeleteDay{Week: 1, Day: 2})

	if s.SelectedDay != 1 {
		t.Errorf("selectedDay = %d, want 1", s.SelectedDay)
	}
	checkInvariants(t, s)
}

func TestReorderExercise(t *testing.T) {
	s := newTestState(t)
	for _, uid := range []string{"a", "b", "c"} {
		exercise := testExercise(uid, false, editor.Set{SetNumber: 1, Weight: "60", Reps: "10", Rest: 60})
		s = mustApply(t, s, editor.AddExercise{Week: 1, Day: 1, Exercise: exercise})
	}

	s = mustApply(t, s, editor.ReorderExercise{Week: 1, Day: 1, ActiveUID: "a", OverUID: "c"})

	var got []string
	for _, exercise := range s.Weeks[0].Days[0].Exercises {
		got = append(got, exercise.UID)
	}
	want := []string{"b", "c", "a"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	checkInvariants(t, s)
}

func TestUpdateSetFields(t *testing.T) {
	base := mustApply(t, newTestState(t), editor.AddExercise{
		Week:     1,
		Day:      1,
		Exercise: testExercise("ex-1", false),
	})

	tests := []struct {
		name   string
		action editor.Action
		want   editor.Set
	}{
		{
			name:   "weight",
			action: editor.UpdateSetWeight{UID: "ex-1", SetNumber: 1, Weight: "72.5"},
			want:   editor.Set{SetNumber: 1, Weight: "72.5", Rest: 60},
		},
		{
			name:   "reps",
			action: editor.UpdateSetReps{UID: "ex-1", SetNumber: 1, Reps: "12"},
			want:   editor.Set{SetNumber: 1, Reps: "12", Rest: 60},
		},
		{
			name:   "rest",
			action: editor.UpdateSetRest{UID: "ex-1", SetNumber: 1, Rest: 120},
			want:   editor.Set{SetNumber: 1, Rest: 120},
		},
		{
			name:   "notes",
			action: editor.UpdateSetNotes{UID: "ex-1", SetNumber: 1, Notes: "pause reps"},
			want:   editor.Set{SetNumber: 1, Rest: 60, Notes: "pause reps"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustApply(t, base, tt.action)
			got := s.Weeks[0].Days[0].Exercises[0].Sets[0]
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("set mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateMeta(t *testing.T) {
	s := newTestState(t)

	s = mustApply(t, s, editor.UpdateMeta{
		Title:    ptr.Ref("Spring block"),
		Category: ptr.Ref(editor.CategoryStrength),
		// Thursday; must normalize to Monday the 6th.
		StartDate: ptr.Ref(time.Date(2026, time.April, 9, 12, 0, 0, 0, time.UTC)),
	})

	if s.Meta.Title != "Spring block" {
		t.Errorf("title = %q", s.Meta.Title)
	}
	if s.Meta.Category != editor.CategoryStrength {
		t.Errorf("category = %s", s.Meta.Category)
	}
	wantStart := time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC)
	if !s.Meta.StartDate.Equal(wantStart) {
		t.Errorf("startDate = %v, want %v", s.Meta.StartDate, wantStart)
	}
	// Untouched fields keep their values.
	if s.Meta.ClientID != "client-1" {
		t.Errorf("clientId = %q, want client-1", s.Meta.ClientID)
	}
}

func TestToggleIntensityMode(t *testing.T) {
	s := newTestState(t)
	s = mustApply(t, s, editor.ToggleIntensityMode{})
	if s.Meta.IntensityMode != editor.IntensityPercent {
		t.Fatalf("mode = %s, want PERCENT", s.Meta.IntensityMode)
	}
	s = mustApply(t, s, editor.ToggleIntensityMode{})
	if s.Meta.IntensityMode != editor.IntensityAbsolute {
		t.Fatalf("mode = %s, want ABSOLUTE", s.Meta.IntensityMode)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := mustApply(t, newTestState(t), editor.AddExercise{
		Week:     1,
		Day:      1,
		Exercise: testExercise("ex-1", false),
	})
	snapshot := s.Clone()

	mustApply(t, s, editor.UpdateSetWeight{UID: "ex-1", SetNumber: 1, Weight: "999"})
	mustApply(t, s, editor.DeleteWeek{Week: 1})

	if diff := cmp.Diff(snapshot, s); diff != "" {
		t.Errorf("input state mutated (-want +got):\n%s", diff)
	}
}

func TestInvariantsAcrossActionSequence(t *testing.T) {
	s := newTestState(t)
	actions := []editor.Action{
		editor.AddWeek{},
		editor.AddDay{Week: 2},
		editor.AddExercise{Week: 2, Day: 4, Exercise: testExercise("ex-1", false)},
		editor.AddSet{UID: "ex-1"},
		editor.AddExercise{Week: 2, Day: 4, Exercise: testExercise("ex-2", true)},
		editor.ReorderExercise{Week: 2, Day: 4, ActiveUID: "ex-2", OverUID: "ex-1"},
		editor.DuplicateWeek{Week: 2},
		editor.DeleteDay{Week: 2, Day: 1},
		editor.SelectWeekDay{Week: 3, Day: 2},
		editor.DeleteWeek{Week: 1},
		editor.DeleteSet{UID: "ex-1", SetNumber: 2},
		editor.SetStatus{Status: editor.StatusPublished},
	}
	for _, action := range actions {
		var result editor.Result
		s, result = editor.Apply(s, action)
		if result.Rejected {
			t.Fatalf("action %s rejected: %s", editor.ActionType(action), result.Reason)
		}
		checkInvariants(t, s)
	}
}
