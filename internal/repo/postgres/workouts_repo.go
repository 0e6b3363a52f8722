package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/workout"
	"github.com/geocoder89/fitlog/internal/observability"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WorkoutsRepo struct {
	db   *gorm.DB
	prom *observability.Prom
}

func NewWorkoutsRepo(db *gorm.DB, prom *observability.Prom) *WorkoutsRepo {
	return &WorkoutsRepo{db: db, prom: prom}
}

func (r *WorkoutsRepo) Create(ctx context.Context, data workout.Data, userID string) (workout.Workout, error) {
	if !validID(userID) {
		return workout.Workout{}, fmt.Errorf("%w: %q", workout.ErrInvalidOwner, userID)
	}

	w := workout.New(data, userID, time.Now().UTC())
	w.ID = uuid.NewString()

	row := newWorkoutRow(w)
	err := r.prom.ObserveDB("workouts.create", func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
	if err != nil {
		return workout.Workout{}, err
	}

	return w, nil
}

func (r *WorkoutsRepo) List(ctx context.Context, userID string, f workout.Filter) ([]workout.Workout, error) {
	var rows []workoutRow

	err := r.prom.ObserveDB("workouts.list", func() error {
		return listQuery(r.db.WithContext(ctx), userID, f).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	out := make([]workout.Workout, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func listQuery(tx *gorm.DB, userID string, f workout.Filter) *gorm.DB {
	return applyFilter(tx.Where("user_id = ?", userID), f).
		Order("date DESC, created_at DESC")
}

// applyFilter ANDs one clause per bound present on f.
func applyFilter(q *gorm.DB, f workout.Filter) *gorm.DB {
	if f.Type != nil {
		q = q.Where("type = ?", string(*f.Type))
	}
	if f.DateFrom != nil {
		q = q.Where("date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("date <= ?", *f.DateTo)
	}
	if f.MinDuration != nil {
		q = q.Where("duration >= ?", *f.MinDuration)
	}
	if f.MaxDuration != nil {
		q = q.Where("duration <= ?", *f.MaxDuration)
	}
	if f.MinCalories != nil {
		q = q.Where("calories >= ?", *f.MinCalories)
	}
	if f.MaxCalories != nil {
		q = q.Where("calories <= ?", *f.MaxCalories)
	}
	return q
}

func (r *WorkoutsRepo) GetByID(ctx context.Context, id, userID string) (workout.Workout, error) {
	if !validID(id) {
		return workout.Workout{}, workout.ErrNotFound
	}

	var row workoutRow
	err := r.prom.ObserveDB("workouts.get_by_id", func() error {
		return r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return workout.Workout{}, workout.ErrNotFound
		}
		return workout.Workout{}, err
	}

	return row.toDomain(), nil
}

func (r *WorkoutsRepo) Replace(ctx context.Context, id, userID string, data workout.Data) (workout.Workout, error) {
	now := time.Now().UTC()

	var w workout.Workout
	w.Replace(data, now)

	return r.update(ctx, "workouts.replace", id, userID, map[string]any{
		"name":       w.Name,
		"type":       string(w.Type),
		"duration":   w.Duration,
		"calories":   w.Calories,
		"exercises":  exerciseList(w.Exercises),
		"date":       w.Date,
		"notes":      w.Notes,
		"updated_at": now,
	})
}

func (r *WorkoutsRepo) Merge(ctx context.Context, id, userID string, p workout.Patch) (workout.Workout, error) {
	set := map[string]any{"updated_at": time.Now().UTC()}

	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Type != nil {
		set["type"] = string(*p.Type)
	}
	if p.Duration != nil {
		set["duration"] = *p.Duration
	}
	if p.Calories != nil {
		set["calories"] = *p.Calories
	}
	if p.Exercises != nil {
		set["exercises"] = exerciseList(p.Exercises)
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}

	return r.update(ctx, "workouts.merge", id, userID, set)
}

// update applies set to the caller's workout in one statement and returns the
// stored row.
func (r *WorkoutsRepo) update(ctx context.Context, op, id, userID string, set map[string]any) (workout.Workout, error) {
	if !validID(id) {
		return workout.Workout{}, workout.ErrNotFound
	}

	var row workoutRow
	var affected int64

	err := r.prom.ObserveDB(op, func() error {
		res := r.db.WithContext(ctx).
			Model(&row).
			Clauses(clause.Returning{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(set)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return workout.Workout{}, err
	}
	if affected == 0 {
		return workout.Workout{}, workout.ErrNotFound
	}

	return row.toDomain(), nil
}

func (r *WorkoutsRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	var affected int64
	err := r.prom.ObserveDB("workouts.delete", func() error {
		res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&workoutRow{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

type statsTotals struct {
	TotalWorkouts int64
	TotalDuration float64
	TotalCalories float64
	AvgDuration   float64
	AvgCalories   float64
}

type typeCountRow struct {
	Type  string
	Count int64
}

func (r *WorkoutsRepo) Stats(ctx context.Context, userID string) (workout.Stats, error) {
	var totals statsTotals
	var counts []typeCountRow

	err := r.prom.ObserveDB("workouts.stats", func() error {
		if err := totalsQuery(r.db.WithContext(ctx), userID).Scan(&totals).Error; err != nil {
			return err
		}
		return typeCountsQuery(r.db.WithContext(ctx), userID).Scan(&counts).Error
	})
	if err != nil {
		return workout.Stats{}, err
	}

	s := workout.Stats{
		TotalWorkouts:  totals.TotalWorkouts,
		TotalDuration:  totals.TotalDuration,
		TotalCalories:  totals.TotalCalories,
		AvgDuration:    totals.AvgDuration,
		AvgCalories:    totals.AvgCalories,
		WorkoutsByType: make([]workout.TypeCount, 0, len(counts)),
	}
	for _, c := range counts {
		s.WorkoutsByType = append(s.WorkoutsByType, workout.TypeCount{Type: workout.Type(c.Type), Count: c.Count})
	}
	return s, nil
}

// totalsQuery: AVG(calories) skips NULLs, so the average covers only workouts
// that recorded calories. Every aggregate reads 0 for a user with no rows.
func totalsQuery(tx *gorm.DB, userID string) *gorm.DB {
	return tx.Model(&workoutRow{}).
		Select(`COUNT(*) AS total_workouts,
			COALESCE(SUM(duration), 0)::float8 AS total_duration,
			COALESCE(SUM(calories), 0)::float8 AS total_calories,
			COALESCE(AVG(duration), 0)::float8 AS avg_duration,
			COALESCE(AVG(calories), 0)::float8 AS avg_calories`).
		Where("user_id = ?", userID)
}

func typeCountsQuery(tx *gorm.DB, userID string) *gorm.DB {
	return tx.Model(&workoutRow{}).
		Select("type, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("type").
		Order("type")
}

// validID: malformed ids cannot match any row; checking here keeps postgres
// from rejecting the uuid cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
