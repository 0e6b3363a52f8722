package workout

import (
	"sort"
	"time"
)

// New builds a workout from data. The caller assigns the ID.
func New(data Data, userID string, now time.Time) Workout {
	w := Workout{
		UserID:    userID,
		CreatedAt: now,
	}
	w.Replace(data, now)
	return w
}

// Replace overwrites every user-supplied field; an absent date becomes now.
func (w *Workout) Replace(data Data, now time.Time) {
	w.Name = data.Name
	w.Type = data.Type
	w.Duration = data.Duration
	w.Calories = data.Calories
	w.Exercises = CloneExercises(data.Exercises)
	w.Notes = data.Notes
	w.Date = now
	if data.Date != nil {
		w.Date = *data.Date
	}
	w.UpdatedAt = now
}

// Apply merges the fields present in p.
func (p Patch) Apply(w *Workout, now time.Time) {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Type != nil {
		w.Type = *p.Type
	}
	if p.Duration != nil {
		w.Duration = *p.Duration
	}
	if p.Calories != nil {
		c := *p.Calories
		w.Calories = &c
	}
	if p.Exercises != nil {
		w.Exercises = CloneExercises(p.Exercises)
	}
	if p.Date != nil {
		w.Date = *p.Date
	}
	if p.Notes != nil {
		n := *p.Notes
		w.Notes = &n
	}
	w.UpdatedAt = now
}

func CloneExercises(in []Exercise) []Exercise {
	if in == nil {
		return []Exercise{}
	}
	out := make([]Exercise, len(in))
	copy(out, in)
	return out
}

// Matches reports whether w satisfies every bound set on f.
func (f Filter) Matches(w Workout) bool {
	if f.Type != nil && w.Type != *f.Type {
		return false
	}
	if f.DateFrom != nil && w.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && w.Date.After(*f.DateTo) {
		return false
	}
	if f.MinDuration != nil && w.Duration < *f.MinDuration {
		return false
	}
	if f.MaxDuration != nil && w.Duration > *f.MaxDuration {
		return false
	}
	// a calorie bound excludes workouts without calories, as SQL comparisons with NULL do
	if f.MinCalories != nil && (w.Calories == nil || *w.Calories < *f.MinCalories) {
		return false
	}
	if f.MaxCalories != nil && (w.Calories == nil || *w.Calories > *f.MaxCalories) {
		return false
	}
	return true
}

// ComputeStats aggregates in process. Averages skip workouts without calories.
func ComputeStats(ws []Workout) Stats {
	s := Stats{WorkoutsByType: []TypeCount{}}
	if len(ws) == 0 {
		return s
	}

	counts := map[Type]int64{}
	var withCalories int64

	for _, w := range ws {
		s.TotalWorkouts++
		s.TotalDuration += float64(w.Duration)
		if w.Calories != nil {
			s.TotalCalories += float64(*w.Calories)
			withCalories++
		}
		counts[w.Type]++
	}

	s.AvgDuration = s.TotalDuration / float64(s.TotalWorkouts)
	if withCalories > 0 {
		s.AvgCalories = s.TotalCalories / float64(withCalories)
	}

	for t, n := range counts {
		s.WorkoutsByType = append(s.WorkoutsByType, TypeCount{Type: t, Count: n})
	}
	SortTypeCounts(s.WorkoutsByType)

	return s
}

func SortTypeCounts(tc []TypeCount) {
	sort.Slice(tc, func(i, j int) bool { return tc[i].Type < tc[j].Type })
}

// SortByDateDesc orders newest first, breaking ties by creation time.
func SortByDateDesc(ws []Workout) {
	sort.SliceStable(ws, func(i, j int) bool {
		if !ws[i].Date.Equal(ws[j].Date) {
			return ws[i].Date.After(ws[j].Date)
		}
		return ws[i].CreatedAt.After(ws[j].CreatedAt)
	})
}
