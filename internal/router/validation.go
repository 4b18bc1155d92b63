package router

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/shoplist/internal/models"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var namedListColors = map[string]bool{
	"green":  true,
	"yellow": true,
	"pink":   true,
	"blue":   true,
	"purple": true,
	"orange": true,
}

// shapeTags only judge the format of a value. An empty string sent for an
// optional field clears it, so these never reject "".
var shapeTags = map[string]bool{
	"datetime":  true,
	"oneof":     true,
	"listcolor": true,
	"url":       true,
}

// validationError carries per-field messages of a rejected payload.
type validationError struct {
	fields []models.FieldError
}

func (e *validationError) Error() string {
	messages := make([]string, 0, len(e.fields))
	for _, field := range e.fields {
		messages = append(messages, field.Field+": "+field.Message)
	}

	return "validation failed: " + strings.Join(messages, "; ")
}

func invalidField(field, message string) *validationError {
	return &validationError{fields: []models.FieldError{{Field: field, Message: message}}}
}

func validateListColor(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	return hexColorPattern.MatchString(value) || namedListColors[value]
}

func newValidator() *validator.Validate {
	validate := validator.New()

	// Report JSON names rather than Go field names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("listcolor", validateListColor); err != nil {
		panic(err)
	}

	return validate
}

func (router *Router) validateStruct(payload any) error {
	err := router.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	result := &validationError{fields: make([]models.FieldError, 0, len(validationErrors))}
	for _, fieldErr := range validationErrors {
		if clearsField(fieldErr) {
			continue
		}
		result.fields = append(result.fields, models.FieldError{
			Field:   fieldErr.Field(),
			Message: fieldMessage(fieldErr),
		})
	}
	if len(result.fields) == 0 {
		return nil
	}

	return result
}

func clearsField(fieldErr validator.FieldError) bool {
	value, isString := fieldErr.Value().(string)

	return isString && value == "" && shapeTags[fieldErr.Tag()]
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fieldErr.Param())
		}
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fieldErr.Param())
		}
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fieldErr.Param())
	case "url":
		return "must be a valid URL"
	case "datetime":
		return fmt.Sprintf("must match the format %s", fieldErr.Param())
	case "listcolor":
		return "must be a hex colour like #22c55e or one of: green yellow pink blue purple orange"
	default:
		return "invalid value"
	}
}
