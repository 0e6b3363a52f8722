package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/workout"
	"github.com/geocoder89/fitlog/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WorkoutsRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewWorkoutsRepo(db *mongo.Database, prom *observability.Prom) *WorkoutsRepo {
	return &WorkoutsRepo{
		coll: db.Collection(workoutsCollection),
		prom: prom,
	}
}

// scope resolves (id, userID) to a filter. ok is false when either id is
// malformed, which callers treat as not found.
func scope(id, userID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "userId": uid}, true
}

func (r *WorkoutsRepo) Create(ctx context.Context, data workout.Data, userID string) (workout.Workout, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return workout.Workout{}, fmt.Errorf("%w: %q", workout.ErrInvalidOwner, userID)
	}

	w := workout.New(data, userID, time.Now().UTC())
	doc := newWorkoutDoc(w, uid)
	doc.ID = primitive.NewObjectID()

	err = r.prom.ObserveDB("workouts.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		return workout.Workout{}, err
	}

	w.ID = doc.ID.Hex()
	return w, nil
}

func (r *WorkoutsRepo) List(ctx context.Context, userID string, f workout.Filter) ([]workout.Workout, error) {
	out := make([]workout.Workout, 0)

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return out, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})

	var docs []workoutDoc
	err = r.prom.ObserveDB("workouts.list", func() error {
		cur, err := r.coll.Find(ctx, listFilter(uid, f), opts)
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})
	if err != nil {
		return nil, err
	}

	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// listFilter ANDs one condition per bound present on f; range bounds on the
// same field share one sub-document.
func listFilter(uid primitive.ObjectID, f workout.Filter) bson.M {
	filter := bson.M{"userId": uid}

	if f.Type != nil {
		filter["type"] = string(*f.Type)
	}
	if r := rangeCond(f.DateFrom, f.DateTo); r != nil {
		filter["date"] = r
	}
	if r := rangeCond(f.MinDuration, f.MaxDuration); r != nil {
		filter["duration"] = r
	}
	if r := rangeCond(f.MinCalories, f.MaxCalories); r != nil {
		filter["calories"] = r
	}

	return filter
}

func rangeCond[T any](lo, hi *T) bson.M {
	if lo == nil && hi == nil {
		return nil
	}
	cond := bson.M{}
	if lo != nil {
		cond["$gte"] = *lo
	}
	if hi != nil {
		cond["$lte"] = *hi
	}
	return cond
}

func (r *WorkoutsRepo) GetByID(ctx context.Context, id, userID string) (workout.Workout, error) {
	filter, ok := scope(id, userID)
	if !ok {
		return workout.Workout{}, workout.ErrNotFound
	}

	var doc workoutDoc
	found := true

	err := r.prom.ObserveDB("workouts.get_by_id", func() error {
		err := r.coll.FindOne(ctx, filter).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return workout.Workout{}, err
	}
	if !found {
		return workout.Workout{}, workout.ErrNotFound
	}

	return doc.toDomain(), nil
}

func (r *WorkoutsRepo) Replace(ctx context.Context, id, userID string, data workout.Data) (workout.Workout, error) {
	now := time.Now().UTC()

	var w workout.Workout
	w.Replace(data, now)

	set := bson.M{
		"name":      w.Name,
		"type":      string(w.Type),
		"duration":  w.Duration,
		"exercises": toExerciseDocs(w.Exercises),
		"date":      w.Date,
		"updatedAt": now,
	}
	unset := bson.M{}

	if w.Calories != nil {
		set["calories"] = *w.Calories
	} else {
		unset["calories"] = ""
	}
	if w.Notes != nil {
		set["notes"] = *w.Notes
	} else {
		unset["notes"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	return r.update(ctx, "workouts.replace", id, userID, update)
}

func (r *WorkoutsRepo) Merge(ctx context.Context, id, userID string, p workout.Patch) (workout.Workout, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

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
		set["exercises"] = toExerciseDocs(p.Exercises)
	}
	if p.Date != nil {
		set["date"] = *p.Date
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}

	return r.update(ctx, "workouts.merge", id, userID, bson.M{"$set": set})
}

func (r *WorkoutsRepo) update(ctx context.Context, op, id, userID string, update bson.M) (workout.Workout, error) {
	filter, ok := scope(id, userID)
	if !ok {
		return workout.Workout{}, workout.ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc workoutDoc
	found := true

	err := r.prom.ObserveDB(op, func() error {
		err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return workout.Workout{}, err
	}
	if !found {
		return workout.Workout{}, workout.ErrNotFound
	}

	return doc.toDomain(), nil
}

func (r *WorkoutsRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	filter, ok := scope(id, userID)
	if !ok {
		return false, nil
	}

	var deleted int64
	err := r.prom.ObserveDB("workouts.delete", func() error {
		res, err := r.coll.DeleteOne(ctx, filter)
		if err != nil {
			return err
		}
		deleted = res.DeletedCount
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted > 0, nil
}

type statsDoc struct {
	TotalWorkouts int64    `bson:"totalWorkouts"`
	TotalDuration float64  `bson:"totalDuration"`
	TotalCalories float64  `bson:"totalCalories"`
	AvgDuration   *float64 `bson:"avgDuration"`
	AvgCalories   *float64 `bson:"avgCalories"` // null when no workout has calories
}

type typeCountDoc struct {
	Type  string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r *WorkoutsRepo) Stats(ctx context.Context, userID string) (workout.Stats, error) {
	s := workout.Stats{WorkoutsByType: []workout.TypeCount{}}

	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return s, nil
	}

	match := bson.D{{Key: "$match", Value: bson.M{"userId": uid}}}

	totalsPipeline := mongo.Pipeline{
		match,
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalWorkouts": bson.M{"$sum": 1},
			"totalDuration": bson.M{"$sum": bson.M{"$toDouble": "$duration"}},
			"totalCalories": bson.M{"$sum": bson.M{"$toDouble": bson.M{"$ifNull": bson.A{"$calories", 0}}}},
			"avgDuration":   bson.M{"$avg": "$duration"},
			"avgCalories":   bson.M{"$avg": "$calories"},
		}}},
	}

	byTypePipeline := mongo.Pipeline{
		match,
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	var totals []statsDoc
	var counts []typeCountDoc

	err = r.prom.ObserveDB("workouts.stats", func() error {
		cur, err := r.coll.Aggregate(ctx, totalsPipeline)
		if err != nil {
			return err
		}
		if err := cur.All(ctx, &totals); err != nil {
			return err
		}

		cur, err = r.coll.Aggregate(ctx, byTypePipeline)
		if err != nil {
			return err
		}
		return cur.All(ctx, &counts)
	})
	if err != nil {
		return workout.Stats{}, err
	}

	// no documents means no group at all
	if len(totals) == 1 {
		t := totals[0]
		s.TotalWorkouts = t.TotalWorkouts
		s.TotalDuration = t.TotalDuration
		s.TotalCalories = t.TotalCalories
		if t.AvgDuration != nil {
			s.AvgDuration = *t.AvgDuration
		}
		if t.AvgCalories != nil {
			s.AvgCalories = *t.AvgCalories
		}
	}

	for _, c := range counts {
		s.WorkoutsByType = append(s.WorkoutsByType, workout.TypeCount{Type: workout.Type(c.Type), Count: c.Count})
	}
	return s, nil
}
