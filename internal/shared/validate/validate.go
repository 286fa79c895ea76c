package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"review-service/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	v          = newValidator()
	reUsername = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)
)

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = vv.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return reUsername.MatchString(fl.Field().String())
	})
	return vv
}

// Struct runs the struct's validate tags. The result is nil or a
// *domain.ValidationError keyed by json field name.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &domain.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	}
	return "is invalid (" + fe.Tag() + ")"
}
