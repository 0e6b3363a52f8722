// Package validate runs the field-level checks applied to request bodies and
// query strings before anything reaches a store.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/geocoder89/fitlog/internal/domain/workout"
	"github.com/go-playground/validator/v10"
)

const passwordSymbols = "@$!%*?&#"

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Errors is the validation failure returned by Struct.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			for _, key := range []string{"json", "form"} {
				name, _, _ := strings.Cut(sf.Tag.Get(key), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return sf.Name
		})

		mustRegister(v, "password", isStrongPassword)
		mustRegister(v, "workouttype", func(fl validator.FieldLevel) bool {
			return workout.Type(fl.Field().String()).IsValid()
		})
		mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
			_, err := workout.ParseDate(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "intstr", isIntString)

		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %s: %v", tag, err))
	}
}

// isStrongPassword: only letters, digits and passwordSymbols, with at least one
// of each class.
func isStrongPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

// isIntString accepts unsigned decimal strings that fit in an int.
func isIntString(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// Struct validates v and returns Errors, or nil when v is valid.
func Struct(v any) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}

	out := make(Errors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, FieldError{
			Field:   fieldPath(fe),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "CreateRequest.exercises[0].name" -> "exercises[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "must contain at least 1 item"
		}
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return "must be at least " + param + " characters long"
		case reflect.Slice:
			return "must contain at least " + param + " item(s)"
		default:
			return "must be at least " + param
		}
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return "cannot exceed " + param + " characters"
		case reflect.Slice:
			return "cannot contain more than " + param + " items"
		default:
			return "cannot exceed " + param
		}
	case "password":
		return "must contain at least one uppercase letter, one lowercase letter, one number, and one special character (" + passwordSymbols + ")"
	case "workouttype":
		names := make([]string, 0, len(workout.Types))
		for _, t := range workout.Types {
			names = append(names, string(t))
		}
		return "must be one of: " + strings.Join(names, ", ")
	case "isodate":
		return "must be a valid date"
	case "intstr":
		return "must be a whole number"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", fe.Tag(), param)
		}
		return "failed " + fe.Tag() + " validation"
	}
}
