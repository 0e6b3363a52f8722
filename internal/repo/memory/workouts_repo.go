package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/workout"
	"github.com/google/uuid"
)

type WorkoutsRepo struct {
	mu    sync.RWMutex
	items map[string]workout.Workout
	now   func() time.Time
}

func NewWorkoutsRepo() *WorkoutsRepo {
	return &WorkoutsRepo{
		items: make(map[string]workout.Workout),
		now:   time.Now,
	}
}

func (r *WorkoutsRepo) Create(ctx context.Context, data workout.Data, userID string) (workout.Workout, error) {
	if err := ctx.Err(); err != nil {
		return workout.Workout{}, err
	}

	w := workout.New(data, userID, r.now().UTC())
	w.ID = uuid.NewString()

	r.mu.Lock()
	r.items[w.ID] = w
	r.mu.Unlock()

	return clone(w), nil
}

func (r *WorkoutsRepo) List(ctx context.Context, userID string, f workout.Filter) ([]workout.Workout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]workout.Workout, 0)
	for _, w := range r.items {
		if w.UserID == userID && f.Matches(w) {
			out = append(out, clone(w))
		}
	}
	r.mu.RUnlock()

	workout.SortByDateDesc(out)
	return out, nil
}

func (r *WorkoutsRepo) GetByID(ctx context.Context, id, userID string) (workout.Workout, error) {
	if err := ctx.Err(); err != nil {
		return workout.Workout{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.owned(id, userID)
	if !ok {
		return workout.Workout{}, workout.ErrNotFound
	}
	return clone(w), nil
}

func (r *WorkoutsRepo) Replace(ctx context.Context, id, userID string, data workout.Data) (workout.Workout, error) {
	if err := ctx.Err(); err != nil {
		return workout.Workout{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.owned(id, userID)
	if !ok {
		return workout.Workout{}, workout.ErrNotFound
	}

	w.Replace(data, r.now().UTC())
	r.items[id] = w

	return clone(w), nil
}

func (r *WorkoutsRepo) Merge(ctx context.Context, id, userID string, p workout.Patch) (workout.Workout, error) {
	if err := ctx.Err(); err != nil {
		return workout.Workout{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.owned(id, userID)
	if !ok {
		return workout.Workout{}, workout.ErrNotFound
	}

	p.Apply(&w, r.now().UTC())
	r.items[id] = w

	return clone(w), nil
}

func (r *WorkoutsRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.owned(id, userID); !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *WorkoutsRepo) Stats(ctx context.Context, userID string) (workout.Stats, error) {
	if err := ctx.Err(); err != nil {
		return workout.Stats{}, err
	}

	r.mu.RLock()
	var mine []workout.Workout
	for _, w := range r.items {
		if w.UserID == userID {
			mine = append(mine, w)
		}
	}
	r.mu.RUnlock()

	return workout.ComputeStats(mine), nil
}

// owned must be called with r.mu held.
func (r *WorkoutsRepo) owned(id, userID string) (workout.Workout, bool) {
	w, ok := r.items[id]
	if !ok || w.UserID != userID {
		return workout.Workout{}, false
	}
	return w, true
}

// clone detaches everything a caller could mutate through.
func clone(w workout.Workout) workout.Workout {
	w.Exercises = workout.CloneExercises(w.Exercises)
	if w.Calories != nil {
		c := *w.Calories
		w.Calories = &c
	}
	if w.Notes != nil {
		n := *w.Notes
		w.Notes = &n
	}
	return w
}
