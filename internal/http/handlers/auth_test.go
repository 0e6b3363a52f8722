package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/http/handlers"
	"github.com/geocoder89/fitlog/internal/service"
)

type fakeAuth struct {
	registerFn func(ctx context.Context, req user.RegisterRequest) (service.Session, error)
	loginFn    func(ctx context.Context, req user.LoginRequest) (service.Session, error)
}

func (f *fakeAuth) Register(ctx context.Context, req user.RegisterRequest) (service.Session, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return service.Session{}, nil
}

func (f *fakeAuth) Login(ctx context.Context, req user.LoginRequest) (service.Session, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, req)
	}
	return service.Session{}, nil
}

func sessionFor(email string) service.Session {
	return service.Session{
		User:  user.Public{ID: "u-1", Name: "Ada", Email: email, CreatedAt: time.Now().UTC()},
		Token: "signed.jwt.token",
	}
}

func TestRegisterHandler(t *testing.T) {
	const validBody = `{"name":" Ada ","email":" Ada@Example.com ","password":"Secret1!"}`

	tests := []struct {
		name           string
		body           string
		setup          func(*fakeAuth)
		wantStatusCode int
		wantCode       string
	}{
		{
			name: "success",
			body: validBody,
			setup: func(f *fakeAuth) {
				f.registerFn = func(ctx context.Context, req user.RegisterRequest) (service.Session, error) {
					if req.Name != "Ada" || req.Email != "Ada@Example.com" {
						return service.Session{}, errors.New("request was not normalized")
					}
					return sessionFor("ada@example.com"), nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "weak_password",
			body:           `{"name":"Ada","email":"ada@example.com","password":"password"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantCode:       handlers.CodeValidation,
		},
		{
			name: "duplicate_email",
			body: validBody,
			setup: func(f *fakeAuth) {
				f.registerFn = func(ctx context.Context, req user.RegisterRequest) (service.Session, error) {
					return service.Session{}, user.ErrDuplicateEmail
				}
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantCode:       handlers.CodeDuplicateEmail,
		},
		{
			name: "store_error",
			body: validBody,
			setup: func(f *fakeAuth) {
				f.registerFn = func(ctx context.Context, req user.RegisterRequest) (service.Session, error) {
					return service.Session{}, errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantCode:       handlers.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAuth{}
			if tt.setup != nil {
				tt.setup(fake)
			}

			h := handlers.NewAuthHandler(fake)
			r := setupRouter(http.MethodPost, "/register", "", h.Register)

			w := doJSON(r, http.MethodPost, "/register", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
			if tt.wantCode != "" {
				if resp := decodeError(t, w); resp.Error.Code != tt.wantCode {
					t.Fatalf("got code %q, want %q", resp.Error.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestRegisterHandler_ResponseShape(t *testing.T) {
	fake := &fakeAuth{registerFn: func(ctx context.Context, req user.RegisterRequest) (service.Session, error) {
		return sessionFor("ada@example.com"), nil
	}}
	r := setupRouter(http.MethodPost, "/register", "", handlers.NewAuthHandler(fake).Register)

	w := doJSON(r, http.MethodPost, "/register", `{"name":"Ada","email":"ada@example.com","password":"Secret1!"}`)

	var resp struct {
		Success bool                       `json:"success"`
		Message string                     `json:"message"`
		Data    map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if !resp.Success || resp.Message != "User registered successfully" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if _, ok := resp.Data["token"]; !ok {
		t.Fatalf("token missing from data: %s", w.Body.String())
	}

	var u map[string]any
	if err := json.Unmarshal(resp.Data["user"], &u); err != nil {
		t.Fatalf("user missing from data: %v", err)
	}
	if _, leaked := u["password"]; leaked {
		t.Fatalf("password must never be returned")
	}
}

func TestLoginHandler(t *testing.T) {
	const body = `{"email":"ada@example.com","password":"Secret1!"}`

	tests := []struct {
		name           string
		body           string
		err            error
		wantStatusCode int
		wantCode       string
	}{
		{"success", body, nil, http.StatusOK, ""},
		{"missing_password", `{"email":"ada@example.com"}`, nil, http.StatusUnprocessableEntity, handlers.CodeValidation},
		{"unknown_email", body, service.ErrUserNotFound, http.StatusNotFound, handlers.CodeUserNotFound},
		{"wrong_password", body, service.ErrInvalidPassword, http.StatusUnauthorized, handlers.CodeInvalidPassword},
		{"generic_credentials", body, service.ErrInvalidCredentials, http.StatusUnauthorized, handlers.CodeInvalidCredentials},
		{"store_error", body, errors.New("db down"), http.StatusInternalServerError, handlers.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAuth{loginFn: func(ctx context.Context, req user.LoginRequest) (service.Session, error) {
				if tt.err != nil {
					return service.Session{}, tt.err
				}
				return sessionFor(req.Email), nil
			}}

			r := setupRouter(http.MethodPost, "/login", "", handlers.NewAuthHandler(fake).Login)
			w := doJSON(r, http.MethodPost, "/login", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
			if tt.wantCode != "" {
				if resp := decodeError(t, w); resp.Error.Code != tt.wantCode {
					t.Fatalf("got code %q, want %q", resp.Error.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestProtectedHandler(t *testing.T) {
	r := setupRouter(http.MethodGet, "/protected", "u-1", handlers.NewAuthHandler(&fakeAuth{}).Protected)

	w := doJSON(r, http.MethodGet, "/protected", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			User struct {
				UserID string `json:"userId"`
				Email  string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Data.User.UserID != "u-1" || resp.Data.User.Email != "u-1@example.com" {
		t.Fatalf("unexpected identity: %+v", resp.Data.User)
	}
}
