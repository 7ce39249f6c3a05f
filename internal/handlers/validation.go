package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = "!@#$%^&*"

const weakPasswordMessage = "Password too weak. Password must contain at least one uppercase letter, " +
	"one lowercase letter, one number, and one special character."

// newValidator returns a validator that reports fields by their JSON name
// and knows the strongpassword and maxbytes rules.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("strongpassword", strongPassword); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

// strongPassword requires an ASCII upper case letter, an ASCII lower case
// letter, an ASCII digit and one of !@#$%^&*.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// maxBytes bounds the encoded length of a string. The built-in max counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("maxbytes: bad parameter %q", fl.Param()))
	}
	return len(fl.Field().String()) <= limit
}

// validationErrors flattens validator output into field -> reason.
func validationErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = describe(e)
	}
	return out, true
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", e.Field())
	case "email":
		return fmt.Sprintf("%s must be an email", e.Field())
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", e.Field(), e.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes long", e.Field(), e.Param())
	case "strongpassword":
		return weakPasswordMessage
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}
