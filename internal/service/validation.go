package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/member-crm/internal/config"
)

// newValidator reports fields by their JSON names so clients can match errors to inputs.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and converts failures into FieldErrors.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		fe = append(fe, FieldError{Field: e.Field(), Message: message(e)})
	}
	return newInvalidInput(fe)
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return "must be <= " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be >= " + e.Param()
	case "gt":
		return "must be > " + e.Param()
	case "gte":
		return "must be >= " + e.Param()
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must contain digits only"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	default:
		return "is invalid (" + e.Tag() + ")"
	}
}

// normalizePageSize keeps page sizes within the configured bounds. The paginator itself
// rejects non-positive sizes, so this runs before every listing.
func normalizePageSize(size int, cfg config.PaginationConfig) int {
	if size <= 0 {
		size = cfg.DefaultPageSize
	}
	if cfg.MaxPageSize > 0 && size > cfg.MaxPageSize {
		size = cfg.MaxPageSize
	}
	if size <= 0 {
		size = 10
	}
	return size
}
