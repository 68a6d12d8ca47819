package editor

// Reason explains why an action was rejected.
type Reason string

const (
	// ReasonTargetNotFound means the week, day, exercise or set the action
	// addresses does not exist in the document.
	ReasonTargetNotFound Reason = "target_not_found"
	// ReasonDayCountBound means the action would push a week outside the
	// allowed three to seven training days.
	ReasonDayCountBound Reason = "day_count_bound"
	// ReasonLastSet means the action would delete an exercise's only set.
	ReasonLastSet Reason = "last_set"
)

// Result reports whether an action applied. Rejections are ordinary outcomes,
// not errors: the document is simply returned unchanged.
type Result struct {
	Rejected bool   `json:"rejected"`
	Reason   Reason `json:"reason,omitempty"`
}

func applied() Result {
	return Result{}
}

func rejected(reason Reason) Result {
	return Result{Rejected: true, Reason: reason}
}

// Apply runs one action against a snapshot of the document and returns the
// next snapshot. It is pure: the input state is never mutated, and a rejected
// action returns it unchanged. Every invariant on week numbering, day counts,
// exercise order and set numbering holds on the returned state.
func Apply(s State, action Action) (State, Result) {
	next := s.Clone()

	var result Result
	switch a := action.(type) {
	case AddWeek:
		result = next.addWeek()
	case DeleteWeek:
		result = next.deleteWeek(a.Week)
	case DuplicateWeek:
		result = next.duplicateWeek(a.Week)
	case AddDay:
		result = next.addDay(a.Week)
	case DeleteDay:
		result = next.deleteDay(a.Week, a.Day)
	case SelectWeekDay:
		result = next.selectWeekDay(a.Week, a.Day)
	case RenameDay:
		result = next.renameDay(a.Week, a.Day, a.Title)
	case AddExercise:
		result = next.addExercise(a.Week, a.Day, a.Exercise)
	case DeleteExercise:
		result = next.deleteExercise(a.Week, a.Day, a.UID)
	case ReorderExercise:
		result = next.reorderExercise(a.Week, a.Day, a.ActiveUID, a.OverUID)
	case AddSet:
		result = next.addSet(a.UID)
	case DeleteSet:
		result = next.deleteSet(a.UID, a.SetNumber)
	case UpdateSetWeight:
		result = next.updateSet(a.UID, a.SetNumber, func(set *Set) { set.Weight = a.Weight })
	case UpdateSetReps:
		result = next.updateSet(a.UID, a.SetNumber, func(set *Set) { set.Reps = a.Reps })
	case UpdateSetRest:
		result = next.updateSet(a.UID, a.SetNumber, func(set *Set) { set.Rest = a.Rest })
	case UpdateSetNotes:
		result = next.updateSet(a.UID, a.SetNumber, func(set *Set) { set.Notes = a.Notes })
	case UpdateExerciseInstructions:
		result = next.updateExercise(a.UID, func(ex *Exercise) { ex.Instructions = a.Instructions })
	case UpdateExerciseNotes:
		result = next.updateExercise(a.UID, func(ex *Exercise) { ex.Notes = a.Notes })
	case UpdateMeta:
		result = next.updateMeta(a)
	case ToggleIntensityMode:
		result = next.toggleIntensityMode()
	case SetStatus:
		next.Meta.Status = a.Status
		result = applied()
	default:
		result = rejected(ReasonTargetNotFound)
	}

	if result.Rejected {
		return s, result
	}
	return next, result
}

func (s *State) addWeek() Result {
	s.Weeks = append(s.Weeks, newWeek(len(s.Weeks)+1))
	s.Meta.DurationWeeks = len(s.Weeks)
	return applied()
}

func (s *State) deleteWeek(weekNumber int) Result {
	if s.week(weekNumber) == nil {
		return rejected(ReasonTargetNotFound)
	}
	s.Weeks = append(s.Weeks[:weekNumber-1], s.Weeks[weekNumber:]...)
	s.renumberWeeks()
	s.Meta.DurationWeeks = len(s.Weeks)

	switch {
	case len(s.Weeks) == 0:
		s.SelectedWeek = 1
		s.SelectedDay = 1
	case s.SelectedWeek == weekNumber:
		s.SelectedWeek = min(weekNumber, len(s.Weeks))
		s.SelectedDay = s.Weeks[s.SelectedWeek-1].firstDayNumber()
	case s.SelectedWeek > weekNumber:
		s.SelectedWeek--
	}
	return applied()
}

func (s *State) duplicateWeek(weekNumber int) Result {
	source := s.week(weekNumber)
	if source == nil {
		return rejected(ReasonTargetNotFound)
	}

	duplicate := source.clone()
	duplicate.regenerateUIDs()

	s.Weeks = append(s.Weeks, Week{})
	copy(s.Weeks[weekNumber+1:], s.Weeks[weekNumber:])
	s.Weeks[weekNumber] = duplicate
	s.renumberWeeks()
	s.Meta.DurationWeeks = len(s.Weeks)
	return applied()
}

func (s *State) addDay(weekNumber int) Result {
	week := s.week(weekNumber)
	if week == nil {
		return rejected(ReasonTargetNotFound)
	}
	if len(week.Days) >= maxDaysPerWeek {
		return rejected(ReasonDayCountBound)
	}

	// Day numbers are never reused, so allocate past the highest.
	next := 0
	for _, day := range week.Days {
		next = max(next, day.DayNumber)
	}
	week.Days = append(week.Days, newDay(next+1))
	return applied()
}

func (s *State) deleteDay(weekNumber, dayNumber int) Result {
	week := s.week(weekNumber)
	if week == nil {
		return rejected(ReasonTargetNotFound)
	}
	index := week.dayIndex(dayNumber)
	if index < 0 {
		return rejected(ReasonTargetNotFound)
	}
	if len(week.Days) <= minDaysPerWeek {
		return rejected(ReasonDayCountBound)
	}

	week.Days = append(week.Days[:index], week.Days[index+1:]...)
	if s.SelectedWeek == weekNumber && s.SelectedDay == dayNumber {
		s.SelectedDay = week.firstDayNumber()
	}
	return applied()
}

func (s *State) selectWeekDay(weekNumber, dayNumber int) Result {
	week := s.week(weekNumber)
	if week == nil || week.dayIndex(dayNumber) < 0 {
		return rejected(ReasonTargetNotFound)
	}
	s.SelectedWeek = weekNumber
	s.SelectedDay = dayNumber
	return applied()
}

func (s *State) renameDay(weekNumber, dayNumber int, title string) Result {
	day := s.day(weekNumber, dayNumber)
	if day == nil {
		return rejected(ReasonTargetNotFound)
	}
	day.Title = title
	return applied()
}

func (s *State) addExercise(weekNumber, dayNumber int, exercise Exercise) Result {
	day := s.day(weekNumber, dayNumber)
	if day == nil {
		return rejected(ReasonTargetNotFound)
	}

	if exercise.UID == "" {
		exercise.UID = NewUID()
	}
	if len(exercise.Sets) == 0 {
		exercise.Sets = []Set{{SetNumber: 1, Weight: "", Reps: "", Rest: defaultRestSecs, Notes: ""}}
	}
	exercise.Order = len(day.Exercises) + 1
	day.Exercises = append(day.Exercises, exercise)
	day.Exercises[len(day.Exercises)-1].renumberSets()
	return applied()
}

func (s *State) deleteExercise(weekNumber, dayNumber int, uid string) Result {
	day := s.day(weekNumber, dayNumber)
	if day == nil {
		return rejected(ReasonTargetNotFound)
	}
	index := day.exerciseIndex(uid)
	if index < 0 {
		return rejected(ReasonTargetNotFound)
	}
	day.Exercises = append(day.Exercises[:index], day.Exercises[index+1:]...)
	day.renumberExercises()
	return applied()
}

func (s *State) reorderExercise(weekNumber, dayNumber int, activeUID, overUID string) Result {
	day := s.day(weekNumber, dayNumber)
	if day == nil {
		return rejected(ReasonTargetNotFound)
	}
	from := day.exerciseIndex(activeUID)
	to := day.exerciseIndex(overUID)
	if from < 0 || to < 0 {
		return rejected(ReasonTargetNotFound)
	}
	if from != to {
		moved := day.Exercises[from]
		day.Exercises = append(day.Exercises[:from], day.Exercises[from+1:]...)
		day.Exercises = append(day.Exercises[:to], append([]Exercise{moved}, day.Exercises[to:]...)...)
	}
	day.renumberExercises()
	return applied()
}

func (s *State) addSet(uid string) Result {
	exercise := s.exercise(uid)
	if exercise == nil {
		return rejected(ReasonTargetNotFound)
	}

	set := Set{SetNumber: len(exercise.Sets) + 1, Rest: defaultRestSecs}
	if len(exercise.Sets) > 0 {
		// Copy the previous set's targets; notes stay set-specific.
		previous := exercise.Sets[len(exercise.Sets)-1]
		set.Weight = previous.Weight
		set.Reps = previous.Reps
		set.Rest = previous.Rest
	}
	exercise.Sets = append(exercise.Sets, set)
	return applied()
}

func (s *State) deleteSet(uid string, setNumber int) Result {
	exercise := s.exercise(uid)
	if exercise == nil {
		return rejected(ReasonTargetNotFound)
	}
	index := exercise.setIndex(setNumber)
	if index < 0 {
		return rejected(ReasonTargetNotFound)
	}
	if len(exercise.Sets) == 1 {
		return rejected(ReasonLastSet)
	}
	exercise.Sets = append(exercise.Sets[:index], exercise.Sets[index+1:]...)
	exercise.renumberSets()
	return applied()
}

func (s *State) updateSet(uid string, setNumber int, mutate func(*Set)) Result {
	exercise := s.exercise(uid)
	if exercise == nil {
		return rejected(ReasonTargetNotFound)
	}
	index := exercise.setIndex(setNumber)
	if index < 0 {
		return rejected(ReasonTargetNotFound)
	}
	mutate(&exercise.Sets[index])
	return applied()
}

func (s *State) updateExercise(uid string, mutate func(*Exercise)) Result {
	exercise := s.exercise(uid)
	if exercise == nil {
		return rejected(ReasonTargetNotFound)
	}
	mutate(exercise)
	return applied()
}

func (s *State) updateMeta(a UpdateMeta) Result {
	if a.Title != nil {
		s.Meta.Title = *a.Title
	}
	if a.Description != nil {
		s.Meta.Description = *a.Description
	}
	if a.StartDate != nil {
		s.Meta.StartDate = MondayOf(*a.StartDate)
	}
	if a.Category != nil {
		s.Meta.Category = *a.Category
	}
	if a.ClientID != nil {
		s.Meta.ClientID = *a.ClientID
	}
	if a.WeightUnit != nil {
		s.Meta.WeightUnit = *a.WeightUnit
	}
	if a.IntensityMode != nil {
		s.Meta.IntensityMode = *a.IntensityMode
	}
	return applied()
}

func (s *State) toggleIntensityMode() Result {
	if s.Meta.IntensityMode == IntensityAbsolute {
		s.Meta.IntensityMode = IntensityPercent
	} else {
		s.Meta.IntensityMode = IntensityAbsolute
	}
	return applied()
}

// week resolves a week number to the week in place, nil when out of range.
// Week numbers are contiguous so the lookup is positional.
func (s *State) week(weekNumber int) *Week {
	if weekNumber < 1 || weekNumber > len(s.Weeks) {
		return nil
	}
	return &s.Weeks[weekNumber-1]
}

func (s *State) day(weekNumber, dayNumber int) *Day {
	week := s.week(weekNumber)
	if week == nil {
		return nil
	}
	index := week.dayIndex(dayNumber)
	if index < 0 {
		return nil
	}
	return &week.Days[index]
}

// exercise finds an exercise by UID anywhere in the document. UIDs are unique
// across the whole plan so the first match is the only match.
func (s *State) exercise(uid string) *Exercise {
	for w := range s.Weeks {
		for d := range s.Weeks[w].Days {
			day := &s.Weeks[w].Days[d]
			if index := day.exerciseIndex(uid); index >= 0 {
				return &day.Exercises[index]
			}
		}
	}
	return nil
}

func (s *State) renumberWeeks() {
	for i := range s.Weeks {
		s.Weeks[i].WeekNumber = i + 1
	}
}

func (w *Week) dayIndex(dayNumber int) int {
	for i, day := range w.Days {
		if day.DayNumber == dayNumber {
			return i
		}
	}
	return -1
}

func (w *Week) firstDayNumber() int {
	if len(w.Days) == 0 {
		return 1
	}
	return w.Days[0].DayNumber
}

func (w *Week) regenerateUIDs() {
	for d := range w.Days {
		for e := range w.Days[d].Exercises {
			w.Days[d].Exercises[e].UID = NewUID()
		}
	}
}

func (d *Day) exerciseIndex(uid string) int {
	for i, exercise := range d.Exercises {
		if exercise.UID == uid {
			return i
		}
	}
	return -1
}

func (d *Day) renumberExercises() {
	for i := range d.Exercises {
		d.Exercises[i].Order = i + 1
	}
}

func (e *Exercise) setIndex(setNumber int) int {
	for i, set := range e.Sets {
		if set.SetNumber == setNumber {
			return i
		}
	}
	return -1
}

func (e *Exercise) renumberSets() {
	for i := range e.Sets {
		e.Sets[i].SetNumber = i + 1
	}
}
