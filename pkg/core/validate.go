package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

func entityValidator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		// Report fields by their JSON names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		// Registration only fails on an empty tag or nil func.
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("icon", func(fl validator.FieldLevel) bool {
			return Icon(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("color", func(fl validator.FieldLevel) bool {
			return Color(fl.Field().String()).Valid()
		})

		validatorInst = v
	})
	return validatorInst
}

func validate(entity string, s any) error {
	err := entityValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", entity, err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = friendlyMessage(fe)
	}
	return &ValidationError{Entity: entity, Fields: fields}
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "icon":
		return fmt.Sprintf("%q is not a known icon", fe.Value())
	case "color":
		return fmt.Sprintf("%q is not a known color", fe.Value())
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
