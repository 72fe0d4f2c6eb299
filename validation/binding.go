package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/djsmacker01/flavour-api/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterBindings adds the custom struct tags used by request types to
// gin's validator engine and reports fields by their JSON names
func RegisterBindings() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}

	engine.RegisterTagNameFunc(jsonFieldName)
	if err := engine.RegisterValidation("menu_category", menuCategory); err != nil {
		return fmt.Errorf("failed to register menu_category: %w", err)
	}
	return nil
}

func menuCategory(fl validator.FieldLevel) bool {
	return models.IsValidCategory(fl.Field().String())
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	}
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

// FieldErrors converts binding errors into field messages; anything that is
// not a validator error (malformed JSON, wrong types) ends up under "body"
func FieldErrors(err error) Errors {
	errs := Errors{}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("body", err.Error())
		return errs
	}

	for _, fe := range validationErrs {
		errs.Add(fe.Field(), describe(fe))
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Please enter a valid email address."
	case "min", "gte":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	case "menu_category":
		return "Unknown menu category."
	default:
		return fmt.Sprintf("Failed the %q check.", fe.Tag())
	}
}
