package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/geocoder89/fitlog/internal/validate"
	"github.com/gin-gonic/gin"
)

type normalizer interface {
	Normalize()
}

// BindJSON decodes the body into out, normalizes and validates it. On failure
// it writes the error response and returns false.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		respondBindError(ctx, err)
		return false
	}
	return check(ctx, out)
}

// BindQuery is BindJSON for query strings.
func BindQuery(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindQuery(out); err != nil {
		RespondBadRequest(ctx, CodeValidation, "Invalid query parameters", gin.H{"reason": err.Error()})
		return false
	}
	return check(ctx, out)
}

func check(ctx *gin.Context, out interface{}) bool {
	if n, ok := out.(normalizer); ok {
		n.Normalize()
	}

	err := validate.Struct(out)
	if err == nil {
		return true
	}

	var fields validate.Errors
	if errors.As(err, &fields) {
		RespondValidation(ctx, fields)
		return false
	}

	RespondInternal(ctx, "Could not validate request", err)
	return false
}

func respondBindError(ctx *gin.Context, err error) {
	// empty body
	if errors.Is(err, io.EOF) {
		RespondBadRequest(ctx, CodeInvalidJSON, "Request body is required", nil)
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), nil)
		return
	}

	// in the event of a type mismatch
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := strings.TrimSpace(typeErr.Field)
		if field == "" {
			field = "body"
		}
		RespondValidation(ctx, validate.Errors{{
			Field:   field,
			Rule:    "type",
			Message: fmt.Sprintf("must be of type %s", jsonTypeName(typeErr)),
		}})
		return
	}

	// syntax errors, truncated bodies and anything else the decoder rejects
	RespondBadRequest(ctx, CodeInvalidJSON, "Invalid JSON format", nil)
}

func jsonTypeName(err *json.UnmarshalTypeError) string {
	t := err.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}
