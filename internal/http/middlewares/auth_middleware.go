package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/fitlog/internal/actorctx"
	"github.com/geocoder89/fitlog/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	CodeMissingToken       = "MISSING_TOKEN"
	CodeInvalidTokenFormat = "INVALID_TOKEN_FORMAT"
	CodeInvalidToken       = "INVALID_TOKEN"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyToken(token string) (auth.Payload, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth accepts "Bearer <token>" or a bare token in Authorization.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			abort(c, http.StatusUnauthorized, CodeMissingToken, "Access denied. No token provided.")
			return
		}

		raw := header
		if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			raw = strings.TrimSpace(rest)
		} else if strings.EqualFold(header, "Bearer") {
			raw = ""
		}

		if raw == "" {
			abort(c, http.StatusUnauthorized, CodeInvalidTokenFormat, "Access denied. Invalid token format.")
			return
		}

		payload, err := m.verifier.VerifyToken(raw)
		if err != nil {
			abort(c, http.StatusUnauthorized, CodeInvalidToken, "Access denied. Invalid token.")
			return
		}

		c.Set(CtxUserID, payload.UserID)
		c.Set(CtxEmail, payload.Email)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), payload.UserID))

		c.Next()
	}
}
