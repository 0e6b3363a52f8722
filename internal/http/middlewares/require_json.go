package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

const CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"

func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			// allow "application/json; charset=utf-8"
			mt, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
			if err != nil || mt != "application/json" {
				abort(c, http.StatusUnsupportedMediaType, CodeUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}
		c.Next()
	}
}
