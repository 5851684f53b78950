package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/suar-net/suar-relay/internal/service"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// httpmethod accepts the methods the relay is willing to forward.
	if err := v.RegisterValidation("httpmethod", func(fl validator.FieldLevel) bool {
		return service.IsAllowedMethod(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidationError wraps the validators.ValidationErrors to provide a more user-friendly message.
func ValidationError(err error) string {
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	var errorMsgs []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			errorMsgs = append(errorMsgs, fmt.Sprintf("Field '%s' is required", e.Field()))
		case "httpmethod":
			errorMsgs = append(errorMsgs, fmt.Sprintf("Field '%s' must be a valid HTTP method", e.Field()))
		case "max":
			errorMsgs = append(errorMsgs, fmt.Sprintf("Field '%s' must be at most %s characters", e.Field(), e.Param()))
		default:
			errorMsgs = append(errorMsgs, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
		}
	}

	return strings.Join(errorMsgs, ", ")
}
