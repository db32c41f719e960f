package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/util"
)

// MediaExtensions lists the upload extensions accepted by the "mediaext" tag.
var MediaExtensions = []string{"mp3", "mp4", "wav", "m4a", "webm", "ogg", "flac", "mpeg", "mpga"}

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report form field names, falling back to json tags and then snake_case.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return toSnakeCase(fld.Name)
		})

		_ = validate.RegisterValidation("mediaext", func(fl validator.FieldLevel) bool {
			return IsMediaExtension(util.Ext(fl.Field().String()))
		})
	})
	return validate
}

// IsMediaExtension reports whether ext (lowercase, no dot) is an accepted upload type.
func IsMediaExtension(ext string) bool {
	for _, allowed := range MediaExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Struct validates s using `validate` struct tags. A missing required field
// yields MISSING_FIELD; every other violation yields INVALID_INPUT.
func Struct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed")
	}

	v := New()
	for _, e := range validationErrors {
		if e.Tag() == "required" {
			v.missing(e.Field())
			continue
		}
		v.AddError(e.Field(), formatValidationError(e))
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "mediaext":
		return "must have one of the extensions: " + strings.Join(MediaExtensions, ", ")
	case "json":
		return "must be valid JSON"
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
