package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags of the post.
func (p *RecipePost) Validate() error {
	return validate.Struct(p)
}

// Validate checks the struct tags of the comment.
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// MissingFields lists the fields that failed a "required" rule, in
// declaration order. It returns nil when err is not a validation error.
func MissingFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	var out []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			out = append(out, fieldPath(fe))
		}
	}
	return out
}

// DescribeValidation turns validation errors into one readable line.
func DescribeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fieldPath(fe), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fieldPath(fe), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fieldPath(fe), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is %s", fieldPath(fe), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// fieldPath drops the struct name from the namespace: "steps[0].instruction".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
