package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/fitlog/internal/http/middlewares"
	"github.com/geocoder89/fitlog/internal/validate"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type errorResponse struct {
	Error struct {
		Code    string                `json:"code"`
		Message string                `json:"message"`
		Errors  []validate.FieldError `json:"errors"`
	} `json:"error"`
}

// setupRouter mounts one handler; a non-empty userID simulates RequireAuth.
func setupRouter(method, path, userID string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxUserID, userID)
			c.Set(middlewares.CtxEmail, userID+"@example.com")
			c.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

func doJSON(r http.Handler, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}
	return resp
}

func fieldRules(resp errorResponse) map[string]string {
	out := map[string]string{}
	for _, fe := range resp.Error.Errors {
		out[fe.Field] = fe.Rule
	}
	return out
}
