package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/observability"
	"github.com/geocoder89/fitlog/internal/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsersRepo struct {
	db     *gorm.DB
	hasher *security.Hasher
	prom   *observability.Prom
}

func NewUsersRepo(db *gorm.DB, hasher *security.Hasher, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, hasher: hasher, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	// the unique index still catches a concurrent insert that slips past this check
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
	row := userRow{
		ID:           uuid.NewString(),
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = r.prom.ObserveDB("users.create", func() error {
		return r.db.WithContext(ctx).Create(&row).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrDuplicateEmail
		}
		return user.User{}, err
	}

	u := row.toDomain()
	u.PasswordHash = ""
	return u, nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string, includePassword bool) (user.User, error) {
	var row userRow

	err := r.prom.ObserveDB("users.find_by_email", func() error {
		q := r.db.WithContext(ctx)
		if !includePassword {
			q = q.Omit("password")
		}
		return q.Where("email = ?", email).Take(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return row.toDomain(), nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}

	var row userRow

	err := r.prom.ObserveDB("users.find_by_id", func() error {
		return r.db.WithContext(ctx).Omit("password").Where("id = ?", id).Take(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return row.toDomain(), nil
}
