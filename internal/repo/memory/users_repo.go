package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/security"
	"github.com/google/uuid"
)

type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // id -> user
	byEmail map[string]string    // email -> id
	hasher  *security.Hasher
	now     func() time.Time
}

func NewUsersRepo(hasher *security.Hasher) *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
		hasher:  hasher,
		now:     time.Now,
	}
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	hash, err := r.hasher.HashIfNeeded(nu.Password)
	if err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[nu.Email]; taken {
		return user.User{}, user.ErrDuplicateEmail
	}

	now := r.now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return withoutHash(u), nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string, includePassword bool) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u := r.items[id]
	if !includePassword {
		u = withoutHash(u)
	}
	return u, nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return withoutHash(u), nil
}

func withoutHash(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
