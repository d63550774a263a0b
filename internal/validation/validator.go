// Package validation checks request structs with go-playground/validator.
//
// Rules live in `validate` struct tags on the request types. Errors are
// reported with the field's JSON (or form) name, so clients see "githubLink"
// rather than "GitHubLink".
//
//	type createProjectRequest struct {
//	    Name string `json:"name" validate:"notblank,max=255"`
//	}
//
//	if err := validation.Struct(&req); err != nil {
//	    return err // *apperror.AppError wrapping ErrValidation
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/hoangchien/portfolio/internal/apperror"
)

// DateLayout is the only date format accepted for albums and posts.
const DateLayout = "2006-01-02"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared instance. It caches struct metadata, so one
// instance is reused for the process lifetime.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		// notblank: required, and not only whitespace
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		validate = v
	})
	return validate
}

// Struct validates s and returns the first failure as an AppError, or nil.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	fe := verrs[0]
	return apperror.ValidationFailed(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", f)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", f)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", f)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", f, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", f, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", f)
	default:
		return fmt.Sprintf("%s is invalid", f)
	}
}
