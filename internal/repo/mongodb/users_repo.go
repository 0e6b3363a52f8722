package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/observability"
	"github.com/geocoder89/fitlog/internal/security"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsersRepo struct {
	coll   *mongo.Collection
	hasher *security.Hasher
	prom   *observability.Prom
}

func NewUsersRepo(db *mongo.Database, hasher *security.Hasher, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		coll:   db.Collection(usersCollection),
		hasher: hasher,
		prom:   prom,
	}
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	if _, err := r.FindByEmail(ctx, nu.Email, false); err == nil {
		return user.User{}, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := r.hasher.HashIfNeeded(nu.Password)
	if err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      nu.Name,
		Email:     nu.Email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = r.prom.ObserveDB("users.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})
	if err != nil {
		// the unique index catches a concurrent insert that slipped past the check above
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrDuplicateEmail
		}
		return user.User{}, err
	}

	doc.Password = ""
	return doc.toDomain(), nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string, includePassword bool) (user.User, error) {
	opts := options.FindOne()
	if !includePassword {
		opts.SetProjection(bson.M{"password": 0})
	}
	return r.findOne(ctx, "users.find_by_email", bson.M{"email": email}, opts)
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}
	return r.findOne(ctx, "users.find_by_id", bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"password": 0}))
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.M, opts *options.FindOneOptions) (user.User, error) {
	var doc userDoc
	found := true

	err := r.prom.ObserveDB(op, func() error {
		err := r.coll.FindOne(ctx, filter, opts).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}

	return doc.toDomain(), nil
}
