package memory

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/workout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func data(name string, typ workout.Type, duration int) workout.Data {
	return workout.Data{
		Name:      name,
		Type:      typ,
		Duration:  duration,
		Exercises: []workout.Exercise{{Name: "Warmup"}},
	}
}

func TestWorkoutsRepo_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewWorkoutsRepo()

	a, err := r.Create(ctx, data("Leg day", workout.TypeStrength, 60), "user-a")
	require.NoError(t, err)

	_, err = r.GetByID(ctx, a.ID, "user-b")
	assert.ErrorIs(t, err, workout.ErrNotFound)

	_, err = r.Replace(ctx, a.ID, "user-b", data("Hijack", workout.TypeOther, 1))
	assert.ErrorIs(t, err, workout.ErrNotFound)

	_, err = r.Merge(ctx, a.ID, "user-b", workout.Patch{Notes: strPtr("x")})
	assert.ErrorIs(t, err, workout.ErrNotFound)

	deleted, err := r.Delete(ctx, a.ID, "user-b")
	require.NoError(t, err)
	assert.False(t, deleted)

	list, err := r.List(ctx, "user-b", workout.Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := r.GetByID(ctx, a.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestWorkoutsRepo_DurationAndTypeFilters(t *testing.T) {
	ctx := context.Background()
	r := NewWorkoutsRepo()

	for _, d := range []struct {
		typ      workout.Type
		duration int
	}{
		{workout.TypeCardio, 20},
		{workout.TypeCardio, 30},
		{workout.TypeStrength, 45},
		{workout.TypeCardio, 60},
		{workout.TypeCardio, 61},
	} {
		_, err := r.Create(ctx, data("Session", d.typ, d.duration), "u")
		require.NoError(t, err)
	}

	inRange, err := r.List(ctx, "u", workout.Filter{MinDuration: intPtr(30), MaxDuration: intPtr(60)})
	require.NoError(t, err)
	require.Len(t, inRange, 3)
	for _, w := range inRange {
		assert.GreaterOrEqual(t, w.Duration, 30)
		assert.LessOrEqual(t, w.Duration, 60)
	}

	cardio := workout.TypeCardio
	both, err := r.List(ctx, "u", workout.Filter{Type: &cardio, MinDuration: intPtr(30), MaxDuration: intPtr(60)})
	require.NoError(t, err)
	require.Len(t, both, 2)
	for _, w := range both {
		assert.Equal(t, workout.TypeCardio, w.Type)
	}
}

func TestWorkoutsRepo_ListOrderedByDateDesc(t *testing.T) {
	ctx := context.Background()
	r := NewWorkoutsRepo()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, offset := range []int{2, 0, 1} {
		d := data("Session", workout.TypeOther, 10)
		day := base.AddDate(0, 0, offset)
		d.Date = &day
		_, err := r.Create(ctx, d, "u")
		require.NoError(t, err)
	}

	list, err := r.List(ctx, "u", workout.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].Date.After(list[1].Date))
	assert.True(t, list[1].Date.After(list[2].Date))
}

func TestWorkoutsRepo_StatsEmpty(t *testing.T) {
	s, err := NewWorkoutsRepo().Stats(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Zero(t, s.TotalWorkouts)
	assert.Zero(t, s.TotalDuration)
	assert.Zero(t, s.TotalCalories)
	assert.Zero(t, s.AvgDuration)
	assert.Zero(t, s.AvgCalories)
	assert.NotNil(t, s.WorkoutsByType)
	assert.Empty(t, s.WorkoutsByType)
}

func TestWorkoutsRepo_StatsScopedToUser(t *testing.T) {
	ctx := context.Background()
	r := NewWorkoutsRepo()

	d := data("Run", workout.TypeCardio, 30)
	d.Calories = intPtr(300)
	_, err := r.Create(ctx, d, "u")
	require.NoError(t, err)
	_, err = r.Create(ctx, data("Lift", workout.TypeStrength, 60), "u")
	require.NoError(t, err)
	_, err = r.Create(ctx, data("Other", workout.TypeCardio, 500), "someone-else")
	require.NoError(t, err)

	s, err := r.Stats(ctx, "u")
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.TotalWorkouts)
	assert.EqualValues(t, 90, s.TotalDuration)
	assert.EqualValues(t, 300, s.TotalCalories)
	assert.EqualValues(t, 45, s.AvgDuration)
	assert.Equal(t, []workout.TypeCount{{Type: workout.TypeCardio, Count: 1}, {Type: workout.TypeStrength, Count: 1}}, s.WorkoutsByType)
}

func TestWorkoutsRepo_MergeChangesOnlyPresentFields(t *testing.T) {
	ctx := context.Background()
	r := NewWorkoutsRepo()

	d := data("Leg day", workout.TypeStrength, 60)
	d.Calories = intPtr(400)
	created, err := r.Create(ctx, d, "u")
	require.NoError(t, err)

	merged, err := r.Merge(ctx, created.ID, "u", workout.Patch{Notes: strPtr("x")})
	require.NoError(t, err)

	require.NotNil(t, merged.Notes)
	assert.Equal(t, "x", *merged.Notes)

	merged.Notes = nil
	merged.UpdatedAt = created.UpdatedAt
	assert.Equal(t, created, merged)
}

func TestWorkoutsRepo_ReplaceClearsOptionalFields(t *testing.T) {
	ctx := context.Background()
	r := NewWorkoutsRepo()

	d := data("Leg day", workout.TypeStrength, 60)
	d.Calories = intPtr(400)
	d.Notes = strPtr("heavy")
	created, err := r.Create(ctx, d, "u")
	require.NoError(t, err)

	replaced, err := r.Replace(ctx, created.ID, "u", data("Swim", workout.TypeCardio, 40))
	require.NoError(t, err)

	assert.Equal(t, "Swim", replaced.Name)
	assert.Nil(t, replaced.Calories)
	assert.Nil(t, replaced.Notes)
	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)
}

func TestWorkoutsRepo_ExercisesRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewWorkoutsRepo()

	exercises := []workout.Exercise{
		{Name: "Squat", Sets: intPtr(5), Reps: intPtr(5), Weight: floatPtr(100)},
		{Name: "Row", Distance: floatPtr(2), Time: floatPtr(8.5)},
		{Name: "Plank", Time: floatPtr(1)},
	}
	d := data("Mixed", workout.TypeOther, 50)
	d.Exercises = exercises

	created, err := r.Create(ctx, d, "u")
	require.NoError(t, err)

	got, err := r.GetByID(ctx, created.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, exercises, got.Exercises)

	got.Exercises[0].Name = "mutated"
	again, err := r.GetByID(ctx, created.ID, "u")
	require.NoError(t, err)
	assert.Equal(t, "Squat", again.Exercises[0].Name)
}

func TestWorkoutsRepo_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewWorkoutsRepo()

	created, err := r.Create(ctx, data("Run", workout.TypeCardio, 30), "u")
	require.NoError(t, err)

	deleted, err := r.Delete(ctx, created.ID, "u")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = r.Delete(ctx, created.ID, "u")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = r.GetByID(ctx, "not-an-id", "u")
	assert.ErrorIs(t, err, workout.ErrNotFound)
}
