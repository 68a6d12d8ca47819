package editor

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is one structural edit applied to the document via [Apply]. The set
// of implementations is closed; each corresponds to one editor operation.
type Action interface {
	actionType() string
}

// AddWeek appends a new week pre-populated with three empty training days.
type AddWeek struct{}

// DeleteWeek removes the week and renumbers the following weeks downward.
type DeleteWeek struct {
	Week int `json:"week"`
}

// DuplicateWeek deep-clones the week and inserts the copy right after it.
// Every cloned exercise receives a fresh UID so list identity never collides
// with the original.
type DuplicateWeek struct {
	Week int `json:"week"`
}

// AddDay appends a day to the week, refused when the week already has seven
// days. The new day number is max(existing)+1; numbers are never reused.
type AddDay struct {
	Week int `json:"week"`
}

// DeleteDay removes a day, refused when the week would drop below three days.
type DeleteDay struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

// SelectWeekDay moves the cursor.
type SelectWeekDay struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

// RenameDay sets the day title.
type RenameDay struct {
	Week  int    `json:"week"`
	Day   int    `json:"day"`
	Title string `json:"title"`
}

// AddExercise appends an exercise to a day. When the exercise carries no sets
// it is seeded with a single blank set resting 60 seconds.
type AddExercise struct {
	Week     int      `json:"week"`
	Day      int      `json:"day"`
	Exercise Exercise `json:"exercise"`
}

// DeleteExercise removes an exercise by UID and renumbers the remaining order.
type DeleteExercise struct {
	Week int    `json:"week"`
	Day  int    `json:"day"`
	UID  string `json:"uid"`
}

// ReorderExercise moves the exercise at ActiveUID's position to OverUID's
// position with remove-then-insert semantics, then renumbers 1..N.
type ReorderExercise struct {
	Week      int    `json:"week"`
	Day       int    `json:"day"`
	ActiveUID string `json:"activeUid"`
	OverUID   string `json:"overUid"`
}

// AddSet appends a set to the exercise, copying weight, reps and rest from
// the preceding set. Notes always start blank.
type AddSet struct {
	UID string `json:"uid"`
}

// DeleteSet removes a set and renumbers, refused for the exercise's only set.
type DeleteSet struct {
	UID       string `json:"uid"`
	SetNumber int    `json:"setNumber"`
}

// The set field updates are separate action variants so that each carries a
// payload of the right type and the reducer dispatches with a type switch
// instead of dynamic field indexing. On the wire they share the
// UPDATE_SET_FIELD tag with a "field" discriminator.

// UpdateSetWeight replaces the raw weight input of one set.
type UpdateSetWeight struct {
	UID       string `json:"uid"`
	SetNumber int    `json:"setNumber"`
	Weight    string `json:"value"`
}

// UpdateSetReps replaces the raw reps input of one set.
type UpdateSetReps struct {
	UID       string `json:"uid"`
	SetNumber int    `json:"setNumber"`
	Reps      string `json:"value"`
}

// UpdateSetRest replaces the rest seconds of one set.
type UpdateSetRest struct {
	UID       string `json:"uid"`
	SetNumber int    `json:"setNumber"`
	Rest      int    `json:"value"`
}

// UpdateSetNotes replaces the notes of one set.
type UpdateSetNotes struct {
	UID       string `json:"uid"`
	SetNumber int    `json:"setNumber"`
	Notes     string `json:"value"`
}

// UpdateExerciseInstructions replaces the instructions of one exercise.
// Shares the UPDATE_EXERCISE_FIELD wire tag with [UpdateExerciseNotes].
type UpdateExerciseInstructions struct {
	UID          string `json:"uid"`
	Instructions string `json:"value"`
}

// UpdateExerciseNotes replaces the notes of one exercise.
type UpdateExerciseNotes struct {
	UID   string `json:"uid"`
	Notes string `json:"value"`
}

// UpdateMeta shallow-merges the non-nil fields into the plan meta. A start
// date is normalized to the Monday of its week. DurationWeeks and Status are
// deliberately absent: the former is derived, the latter has [SetStatus].
type UpdateMeta struct {
	Title         *string        `json:"title"`
	Description   *string        `json:"description"`
	StartDate     *time.Time     `json:"startDate"`
	Category      *Category      `json:"category"`
	ClientID      *string        `json:"clientId"`
	WeightUnit    *WeightUnit    `json:"weightUnit"`
	IntensityMode *IntensityMode `json:"intensityMode"`
}

// ToggleIntensityMode flips ABSOLUTE and PERCENT.
type ToggleIntensityMode struct{}

// SetStatus sets the lifecycle status. The reducer does not enforce an
// ordering between the statuses; archival policy lives with the caller.
type SetStatus struct {
	Status Status `json:"status"`
}

func (AddWeek) actionType() string                    { return "ADD_WEEK" }
func (DeleteWeek) actionType() string                 { return "DELETE_WEEK" }
func (DuplicateWeek) actionType() string              { return "DUPLICATE_WEEK" }
func (AddDay) actionType() string                     { return "ADD_DAY" }
func (DeleteDay) actionType() string                  { return "DELETE_DAY" }
func (SelectWeekDay) actionType() string              { return "SELECT_WEEK_DAY" }
func (RenameDay) actionType() string                  { return "RENAME_DAY" }
func (AddExercise) actionType() string                { return "ADD_EXERCISE" }
func (DeleteExercise) actionType() string             { return "DELETE_EXERCISE" }
func (ReorderExercise) actionType() string            { return "REORDER_EXERCISE" }
func (AddSet) actionType() string                     { return "ADD_SET" }
func (DeleteSet) actionType() string                  { return "DELETE_SET" }
func (UpdateSetWeight) actionType() string            { return "UPDATE_SET_FIELD" }
func (UpdateSetReps) actionType() string              { return "UPDATE_SET_FIELD" }
func (UpdateSetRest) actionType() string              { return "UPDATE_SET_FIELD" }
func (UpdateSetNotes) actionType() string             { return "UPDATE_SET_FIELD" }
func (UpdateExerciseInstructions) actionType() string { return "UPDATE_EXERCISE_FIELD" }
func (UpdateExerciseNotes) actionType() string        { return "UPDATE_EXERCISE_FIELD" }
func (UpdateMeta) actionType() string                 { return "UPDATE_META" }
func (ToggleIntensityMode) actionType() string        { return "TOGGLE_INTENSITY_MODE" }
func (SetStatus) actionType() string                  { return "SET_STATUS" }

// ActionType returns the wire tag of an action, e.g. "ADD_WEEK".
func ActionType(a Action) string {
	return a.actionType()
}

func decodeAs[T Action](data []byte, tag string) (Action, error) {
	var action T
	if err := json.Unmarshal(data, &action); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", tag, err)
	}
	return action, nil
}

// DecodeAction parses a JSON-encoded action envelope of the form
// {"type": "ADD_WEEK", ...payload fields...}.
func DecodeAction(data []byte) (Action, error) {
	var envelope struct {
		Type  string `json:"type"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode action envelope: %w", err)
	}

	switch envelope.Type {
	case "ADD_WEEK":
		return AddWeek{}, nil
	case "DELETE_WEEK":
		return decodeAs[DeleteWeek](data, envelope.Type)
	case "DUPLICATE_WEEK":
		return decodeAs[DuplicateWeek](data, envelope.Type)
	case "ADD_DAY":
		return decodeAs[AddDay](data, envelope.Type)
	case "DELETE_DAY":
		return decodeAs[DeleteDay](data, envelope.Type)
	case "SELECT_WEEK_DAY":
		return decodeAs[SelectWeekDay](data, envelope.Type)
	case "RENAME_DAY":
		return decodeAs[RenameDay](data, envelope.Type)
	case "ADD_EXERCISE":
		return decodeAs[AddExercise](data, envelope.Type)
	case "DELETE_EXERCISE":
		return decodeAs[DeleteExercise](data, envelope.Type)
	case "REORDER_EXERCISE":
		return decodeAs[ReorderExercise](data, envelope.Type)
	case "ADD_SET":
		return decodeAs[AddSet](data, envelope.Type)
	case "DELETE_SET":
		return decodeAs[DeleteSet](data, envelope.Type)
	case "UPDATE_SET_FIELD":
		return decodeSetFieldUpdate(data, envelope.Field)
	case "UPDATE_EXERCISE_FIELD":
		return decodeExerciseFieldUpdate(data, envelope.Field)
	case "UPDATE_META":
		return decodeAs[UpdateMeta](data, envelope.Type)
	case "TOGGLE_INTENSITY_MODE":
		return ToggleIntensityMode{}, nil
	case "SET_STATUS":
		return decodeAs[SetStatus](data, envelope.Type)
	default:
		return nil, fmt.Errorf("unknown action type %q", envelope.Type)
	}
}

func decodeSetFieldUpdate(data []byte, field string) (Action, error) {
	switch field {
	case "weight":
		return decodeAs[UpdateSetWeight](data, "UPDATE_SET_FIELD weight")
	case "reps":
		return decodeAs[UpdateSetReps](data, "UPDATE_SET_FIELD reps")
	case "rest":
		return decodeAs[UpdateSetRest](data, "UPDATE_SET_FIELD rest")
	case "notes":
		return decodeAs[UpdateSetNotes](data, "UPDATE_SET_FIELD notes")
	default:
		return nil, fmt.Errorf("unknown set field %q", field)
	}
}

func decodeExerciseFieldUpdate(data []byte, field string) (Action, error) {
	switch field {
	case "instructions":
		return decodeAs[UpdateExerciseInstructions](data, "UPDATE_EXERCISE_FIELD instructions")
	case "notes":
		return decodeAs[UpdateExerciseNotes](data, "UPDATE_EXERCISE_FIELD notes")
	default:
		return nil, fmt.Errorf("unknown exercise field %q", field)
	}
}
