package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/uu4k/promotimg-back/internal/entity"
)

var rgbHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// RegisterValidators adds the caption rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return rgbHexPattern.MatchString(fl.Field().String())
	})
}

// toValidationError converts binding errors into the field list returned to clients.
func toValidationError(err error) *entity.ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := &entity.ValidationError{}
		for _, fe := range fieldErrs {
			out.Fields = append(out.Fields, entity.FieldError{
				Field:      fe.Field(),
				Constraint: fe.Tag(),
				Message:    fieldMessage(fe),
			})
		}
		return out
	}

	if errors.Is(err, entity.ErrInvalidTextSize) {
		return singleField("textsize", "number", entity.ErrInvalidTextSize.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return singleField(typeErr.Field, "type", fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type))
	}

	return singleField("body", "json", err.Error())
}

func singleField(field, constraint, message string) *entity.ValidationError {
	return &entity.ValidationError{Fields: []entity.FieldError{{Field: field, Constraint: constraint, Message: message}}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "rgbhex":
		return fmt.Sprintf("%s must be a color like #RRGGBB", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "base64":
		return fmt.Sprintf("%s must be base64 encoded", fe.Field())
	}
	return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
}
