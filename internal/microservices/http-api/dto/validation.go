package dto

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"yamdb/internal/microservices/http-api/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// ReservedUsername is taken by the self-profile route.
const ReservedUsername = "me"

// RegisterValidations installs the custom rules and json field naming on v.
// It is applied to gin's binding engine and to the standalone validator.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"username": func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		},
		"notme": func(fl validator.FieldLevel) bool {
			return !strings.EqualFold(fl.Field().String(), ReservedUsername)
		},
		"slug": func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

var (
	standalone     *validator.Validate
	standaloneOnce sync.Once
)

// Validator returns a shared validator with the custom rules registered.
func Validator() *validator.Validate {
	standaloneOnce.Do(func() {
		standalone = validator.New(validator.WithRequiredStructEnabled())
		if err := RegisterValidations(standalone); err != nil {
			panic(err)
		}
	})
	return standalone
}

// FieldErrors converts binding and validation failures into a per-field
// validation error. Errors of other shapes become a body-level message.
func FieldErrors(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation("body", err.Error())
	}

	out := apperror.NewValidation()
	for _, fe := range verrs {
		out.With(fe.Field(), describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "min":
		return "ensure this value is at least " + fe.Param()
	case "username":
		return "letters, digits and @/./+/-/_ only"
	case "notme":
		return `"me" cannot be used as a username`
	case "slug":
		return "letters, digits, hyphens and underscores only"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "invalid value (" + fe.Tag() + ")"
	}
}
