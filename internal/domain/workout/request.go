package workout

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var errBadDate = errors.New("invalid date format")

// ParseDate accepts RFC 3339 timestamps and plain calendar dates (read as UTC).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errBadDate
}

type ExerciseInput struct {
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Sets     *int     `json:"sets" validate:"omitnil,min=1,max=100"`
	Reps     *int     `json:"reps" validate:"omitnil,min=1,max=1000"`
	Weight   *float64 `json:"weight" validate:"omitnil,min=0,max=1000"`
	Distance *float64 `json:"distance" validate:"omitnil,min=0,max=1000"`
	Time     *float64 `json:"time" validate:"omitnil,min=0,max=1440"`
}

// CreateRequest is the body of POST /workouts and PUT /workouts/:id.
type CreateRequest struct {
	Name      string          `json:"name" validate:"required,min=3,max=100"`
	Type      string          `json:"type" validate:"required,workouttype"`
	Duration  *int            `json:"duration" validate:"required,min=1,max=1440"`
	Calories  *int            `json:"calories" validate:"omitnil,min=0,max=10000"`
	Exercises []ExerciseInput `json:"exercises" validate:"required,min=1,dive"`
	Date      *string         `json:"date" validate:"omitnil,isodate"`
	Notes     *string         `json:"notes" validate:"omitnil,max=1000"`
}

func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.TrimSpace(r.Type)
	r.Notes = trimPtr(r.Notes)
	normalizeExercises(r.Exercises)
}

// Data converts a validated request.
func (r CreateRequest) Data() Data {
	d := Data{
		Name:      r.Name,
		Type:      Type(r.Type),
		Exercises: toExercises(r.Exercises),
		Calories:  r.Calories,
		Notes:     r.Notes,
	}
	if r.Duration != nil {
		d.Duration = *r.Duration
	}
	d.Date = parseDatePtr(r.Date)
	return d
}

// PatchRequest is the body of PATCH /workouts/:id; at least one field is required.
type PatchRequest struct {
	Name      *string         `json:"name" validate:"omitnil,min=3,max=100"`
	Type      *string         `json:"type" validate:"omitnil,workouttype"`
	Duration  *int            `json:"duration" validate:"omitnil,min=1,max=1440"`
	Calories  *int            `json:"calories" validate:"omitnil,min=0,max=10000"`
	Exercises []ExerciseInput `json:"exercises" validate:"omitnil,min=1,dive"`
	Date      *string         `json:"date" validate:"omitnil,isodate"`
	Notes     *string         `json:"notes" validate:"omitnil,max=1000"`
}

func (r *PatchRequest) Normalize() {
	r.Name = trimPtr(r.Name)
	r.Type = trimPtr(r.Type)
	r.Notes = trimPtr(r.Notes)
	normalizeExercises(r.Exercises)
}

func (r PatchRequest) IsEmpty() bool {
	return r.Patch().IsEmpty()
}

func (r PatchRequest) Patch() Patch {
	p := Patch{
		Name:     r.Name,
		Duration: r.Duration,
		Calories: r.Calories,
		Notes:    r.Notes,
		Date:     parseDatePtr(r.Date),
	}
	if r.Type != nil {
		t := Type(*r.Type)
		p.Type = &t
	}
	if r.Exercises != nil {
		p.Exercises = toExercises(r.Exercises)
	}
	return p
}

// ListQuery is the query string of GET /workouts.
type ListQuery struct {
	Type        *string `form:"type" validate:"omitempty,workouttype"`
	DateFrom    *string `form:"dateFrom" validate:"omitempty,isodate"`
	DateTo      *string `form:"dateTo" validate:"omitempty,isodate"`
	MinDuration *string `form:"minDuration" validate:"omitempty,intstr"`
	MaxDuration *string `form:"maxDuration" validate:"omitempty,intstr"`
	MinCalories *string `form:"minCalories" validate:"omitempty,intstr"`
	MaxCalories *string `form:"maxCalories" validate:"omitempty,intstr"`
}

// Normalize drops empty parameters so that "?type=" means no constraint.
func (q *ListQuery) Normalize() {
	for _, p := range []**string{&q.Type, &q.DateFrom, &q.DateTo, &q.MinDuration, &q.MaxDuration, &q.MinCalories, &q.MaxCalories} {
		*p = trimPtr(*p)
		if *p != nil && **p == "" {
			*p = nil
		}
	}
}

func (q ListQuery) Filter() Filter {
	f := Filter{
		DateFrom:    parseDatePtr(q.DateFrom),
		DateTo:      parseDatePtr(q.DateTo),
		MinDuration: atoiPtr(q.MinDuration),
		MaxDuration: atoiPtr(q.MaxDuration),
		MinCalories: atoiPtr(q.MinCalories),
		MaxCalories: atoiPtr(q.MaxCalories),
	}
	if q.Type != nil {
		t := Type(*q.Type)
		f.Type = &t
	}
	return f
}

func toExercises(in []ExerciseInput) []Exercise {
	out := make([]Exercise, 0, len(in))
	for _, e := range in {
		out = append(out, Exercise(e))
	}
	return out
}

func normalizeExercises(in []ExerciseInput) {
	for i := range in {
		in[i].Name = strings.TrimSpace(in[i].Name)
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil
	}
	return &t
}

func atoiPtr(s *string) *int {
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil
	}
	return &n
}
