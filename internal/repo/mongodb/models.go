package mongodb

import (
	"time"

	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/domain/workout"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDoc) toDomain() user.User {
	return user.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type exerciseDoc struct {
	Name     string   `bson:"name"`
	Sets     *int     `bson:"sets,omitempty"`
	Reps     *int     `bson:"reps,omitempty"`
	Weight   *float64 `bson:"weight,omitempty"`
	Distance *float64 `bson:"distance,omitempty"`
	Time     *float64 `bson:"time,omitempty"`
}

type workoutDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Name      string             `bson:"name"`
	Type      string             `bson:"type"`
	Duration  int                `bson:"duration"`
	Calories  *int               `bson:"calories,omitempty"`
	Exercises []exerciseDoc      `bson:"exercises"`
	Date      time.Time          `bson:"date"`
	Notes     *string            `bson:"notes,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func newWorkoutDoc(w workout.Workout, userID primitive.ObjectID) workoutDoc {
	return workoutDoc{
		UserID:    userID,
		Name:      w.Name,
		Type:      string(w.Type),
		Duration:  w.Duration,
		Calories:  w.Calories,
		Exercises: toExerciseDocs(w.Exercises),
		Date:      w.Date,
		Notes:     w.Notes,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (d workoutDoc) toDomain() workout.Workout {
	exercises := make([]workout.Exercise, 0, len(d.Exercises))
	for _, e := range d.Exercises {
		exercises = append(exercises, workout.Exercise(e))
	}

	return workout.Workout{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Name:      d.Name,
		Type:      workout.Type(d.Type),
		Duration:  d.Duration,
		Calories:  d.Calories,
		Exercises: exercises,
		Date:      d.Date.UTC(),
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func toExerciseDocs(in []workout.Exercise) []exerciseDoc {
	out := make([]exerciseDoc, 0, len(in))
	for _, e := range in {
		out = append(out, exerciseDoc(e))
	}
	return out
}
