package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/apiplayground/internal/schema"
	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a struct carrying `validate` tags (configuration, mostly) and reports the
// failures in the same shape as request validation errors. Locations use the namespace of the
// failing field, lower-cased and split on dots.
func Struct(v any) schema.Errors {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return schema.Errors{{Kind: schema.KindTypeMismatch, Msg: err.Error()}}
	}

	out := make(schema.Errors, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, &schema.Error{
			Loc:   namespace(fe),
			Kind:  tagKind(fe.Tag()),
			Msg:   tagMessage(fe),
			Input: fe.Value(),
		})
	}
	return out
}

func namespace(fe validator.FieldError) []any {
	parts := strings.Split(fe.Namespace(), ".")
	// The first segment is the struct type name.
	if len(parts) > 1 {
		parts = parts[1:]
	}
	loc := make([]any, 0, len(parts))
	for _, p := range parts {
		loc = append(loc, strings.ToLower(p))
	}
	return loc
}

func tagKind(tag string) schema.Kind {
	switch tag {
	case "required":
		return schema.KindMissing
	case "min", "gte", "gt", "max", "lte", "lt":
		return schema.KindOutOfRange
	case "oneof":
		return schema.KindInvalidChoice
	}
	return schema.KindPredicate
}

func tagMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "Field required"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("String should have at least %s characters", fe.Param())
		}
		return fmt.Sprintf("Input should be greater than or equal to %s", fe.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("String should have at most %s characters", fe.Param())
		}
		return fmt.Sprintf("Input should be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Input should be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("Input should be less than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Input should be one of: %s", fe.Param())
	case "email":
		return "value is not a valid email address"
	case "url", "http_url":
		return "Input should be a valid URL"
	case "uuid":
		return "Input should be a valid UUID"
	}

	if fe.Param() != "" {
		return fmt.Sprintf("Value error, %s=%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("Value error, %s", fe.Tag())
}
