// Package service holds the auth use cases: register, login and user lookup.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/fitlog/internal/auth"
	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/observability"
	"github.com/geocoder89/fitlog/internal/security"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session is what register and login hand back to the client.
type Session struct {
	User  user.Public `json:"user"`
	Token string      `json:"token"`
}

type AuthService struct {
	users  user.Store
	hasher *security.Hasher
	tokens *auth.Manager
	prom   *observability.Prom

	// genericErrors collapses unknown-email and wrong-password into
	// ErrInvalidCredentials.
	genericErrors bool
}

type AuthOption func(*AuthService)

func WithGenericLoginErrors(on bool) AuthOption {
	return func(s *AuthService) { s.genericErrors = on }
}

func WithMetrics(p *observability.Prom) AuthOption {
	return func(s *AuthService) { s.prom = p }
}

func NewAuthService(users user.Store, hasher *security.Hasher, tokens *auth.Manager, opts ...AuthOption) *AuthService {
	s := &AuthService{users: users, hasher: hasher, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, req user.RegisterRequest) (Session, error) {
	u, err := s.users.Create(ctx, user.NewUser{
		Name:     req.Name,
		Email:    user.NormalizeEmail(req.Email),
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			s.prom.ObserveAuth("register", "duplicate_email")
			return Session{}, err
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	sess, err := s.session(u)
	if err != nil {
		return Session{}, err
	}

	s.prom.ObserveAuth("register", "ok")
	slog.InfoContext(ctx, "user registered", "user_id", u.ID)

	return sess, nil
}

func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (Session, error) {
	email := user.NormalizeEmail(req.Email)

	u, err := s.users.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, s.reject(ctx, "user_not_found", ErrUserNotFound)
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if u.PasswordHash == "" {
		return Session{}, s.reject(ctx, "missing_hash", ErrInvalidCredentials)
	}

	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		return Session{}, s.reject(ctx, "invalid_password", ErrInvalidPassword)
	}

	sess, err := s.session(u)
	if err != nil {
		return Session{}, err
	}

	s.prom.ObserveAuth("login", "ok")
	return sess, nil
}

func (s *AuthService) reject(ctx context.Context, reason string, err error) error {
	s.prom.ObserveAuth("login", reason)
	slog.WarnContext(ctx, "login rejected", "reason", reason)

	if s.genericErrors {
		return ErrInvalidCredentials
	}
	return err
}

// GetUserByID returns user.ErrNotFound for unknown ids.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (user.Public, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return user.Public{}, err
	}
	return u.Public(), nil
}

// VerifyToken exposes the token check to the auth middleware.
func (s *AuthService) VerifyToken(token string) (auth.Payload, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) session(u user.User) (Session, error) {
	token, err := s.tokens.Issue(auth.Payload{UserID: u.ID, Email: u.Email})
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: u.Public(), Token: token}, nil
}
