package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/domain/workout"
)

type userRow struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	Name         string    `gorm:"type:varchar(50);not null"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password;type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

func (r userRow) toDomain() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type workoutRow struct {
	ID        string       `gorm:"primaryKey;type:uuid"`
	UserID    string       `gorm:"type:uuid;not null;index:idx_workouts_user_date,priority:1;index:idx_workouts_user_type,priority:1"`
	Name      string       `gorm:"type:varchar(100);not null"`
	Type      string       `gorm:"type:varchar(20);not null;index:idx_workouts_user_type,priority:2"`
	Duration  int          `gorm:"not null"`
	Calories  *int         `gorm:"type:integer"`
	Exercises exerciseList `gorm:"type:jsonb;not null"`
	Date      time.Time    `gorm:"not null;index:idx_workouts_user_date,priority:2,sort:desc"`
	Notes     *string      `gorm:"type:text"`
	CreatedAt time.Time    `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"not null"`
}

func (workoutRow) TableName() string { return "workouts" }

func newWorkoutRow(w workout.Workout) workoutRow {
	return workoutRow{
		ID:        w.ID,
		UserID:    w.UserID,
		Name:      w.Name,
		Type:      string(w.Type),
		Duration:  w.Duration,
		Calories:  w.Calories,
		Exercises: exerciseList(w.Exercises),
		Date:      w.Date,
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (r workoutRow) toDomain() workout.Workout {
	return workout.Workout{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Type:      workout.Type(r.Type),
		Duration:  r.Duration,
		Calories:  r.Calories,
		Exercises: workout.CloneExercises(r.Exercises),
		Date:      r.Date.UTC(),
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

// exerciseList is stored as a jsonb array, keeping order and optional fields.
type exerciseList []workout.Exercise

func (e exerciseList) Value() (driver.Value, error) {
	if e == nil {
		e = exerciseList{}
	}
	b, err := json.Marshal([]workout.Exercise(e))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (e *exerciseList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*e = exerciseList{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("exercises: unsupported column type")
	}
	return json.Unmarshal(b, (*[]workout.Exercise)(e))
}
