package workout

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound covers both a missing workout and one owned by someone else.
	ErrNotFound = errors.New("workout not found")
	// ErrInvalidOwner: the acting user id is not an id the store can hold.
	ErrInvalidOwner = errors.New("invalid owner id")
)

type Type string

const (
	TypeCardio      Type = "cardio"
	TypeStrength    Type = "strength"
	TypeFlexibility Type = "flexibility"
	TypeSports      Type = "sports"
	TypeOther       Type = "other"
)

var Types = []Type{TypeCardio, TypeStrength, TypeFlexibility, TypeSports, TypeOther}

func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

type Exercise struct {
	Name     string   `json:"name"`
	Sets     *int     `json:"sets,omitempty"`
	Reps     *int     `json:"reps,omitempty"`
	Weight   *float64 `json:"weight,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	Time     *float64 `json:"time,omitempty"`
}

type Workout struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	Type      Type       `json:"type"`
	Duration  int        `json:"duration"`
	Calories  *int       `json:"calories,omitempty"`
	Exercises []Exercise `json:"exercises"`
	Date      time.Time  `json:"date"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Data is a complete set of user-supplied fields, used by create and replace.
type Data struct {
	Name      string
	Type      Type
	Duration  int
	Calories  *int
	Exercises []Exercise
	Date      *time.Time
	Notes     *string
}

// Patch holds only the fields a client sent; nil means untouched.
type Patch struct {
	Name      *string
	Type      *Type
	Duration  *int
	Calories  *int
	Exercises []Exercise
	Date      *time.Time
	Notes     *string
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Duration == nil && p.Calories == nil &&
		p.Exercises == nil && p.Date == nil && p.Notes == nil
}

// Filter narrows a listing. Nil bounds are open.
type Filter struct {
	Type        *Type
	DateFrom    *time.Time
	DateTo      *time.Time
	MinDuration *int
	MaxDuration *int
	MinCalories *int
	MaxCalories *int
}

type TypeCount struct {
	Type  Type  `json:"type"`
	Count int64 `json:"count"`
}

type Stats struct {
	TotalWorkouts  int64       `json:"totalWorkouts"`
	TotalDuration  float64     `json:"totalDuration"`
	TotalCalories  float64     `json:"totalCalories"`
	AvgDuration    float64     `json:"avgDuration"`
	AvgCalories    float64     `json:"avgCalories"`
	WorkoutsByType []TypeCount `json:"workoutsByType"`
}

// Store is implemented by every persistence backend. Every method is scoped
// to userID; a workout owned by another user behaves as if it did not exist.
type Store interface {
	Create(ctx context.Context, data Data, userID string) (Workout, error)
	List(ctx context.Context, userID string, f Filter) ([]Workout, error)
	GetByID(ctx context.Context, id, userID string) (Workout, error)
	Replace(ctx context.Context, id, userID string, data Data) (Workout, error)
	Merge(ctx context.Context, id, userID string, p Patch) (Workout, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
	Stats(ctx context.Context, userID string) (Stats, error)
}
