package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/fitlog/internal/domain/user"
	"github.com/geocoder89/fitlog/internal/http/middlewares"
	"github.com/geocoder89/fitlog/internal/service"
	"github.com/gin-gonic/gin"
)

const authTimeout = 3 * time.Second

type Authenticator interface {
	Register(ctx context.Context, req user.RegisterRequest) (service.Session, error)
	Login(ctx context.Context, req user.LoginRequest) (service.Session, error)
}

type AuthHandler struct {
	svc Authenticator
	now func() time.Time
}

func NewAuthHandler(svc Authenticator) *AuthHandler {
	return &AuthHandler{svc: svc, now: time.Now}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	sess, err := h.svc.Register(cctx, req)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			RespondError(ctx, http.StatusUnprocessableEntity, CodeDuplicateEmail, "User with this email already exists", nil)
			return
		}
		RespondInternal(ctx, "Internal server error during registration", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"data":    sess,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	sess, err := h.svc.Login(cctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			RespondError(ctx, http.StatusNotFound, CodeUserNotFound, "User not found", nil)
		case errors.Is(err, service.ErrInvalidPassword):
			RespondUnauthorized(ctx, CodeInvalidPassword, "Invalid password")
		case errors.Is(err, service.ErrInvalidCredentials):
			RespondUnauthorized(ctx, CodeInvalidCredentials, "Invalid email or password")
		default:
			RespondInternal(ctx, "Internal server error during login", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data":    sess,
	})
}

// Protected echoes the identity the auth middleware decoded from the token.
func (h *AuthHandler) Protected(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)
	email, _ := middlewares.EmailFromContext(ctx)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Access granted",
		"data": gin.H{
			"message": "You have reached a protected route",
			"user": gin.H{
				"userId": userID,
				"email":  email,
			},
			"timestamp": h.now().UTC().Format(time.RFC3339),
		},
	})
}
