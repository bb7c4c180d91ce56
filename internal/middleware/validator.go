package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo.Validator.
// Field errors are reported under their json names.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
