// Package validators holds the request validator registered on echo and the
// board's custom validation rules.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/anonto42/celebration-board/internal/models"
	"github.com/go-playground/validator/v10"
)

// PasswordSymbols is the punctuation set a password must draw at least one character from.
const PasswordSymbols = `!@#$%^&*(),.?":{}|<>`

// PasswordMinLength is the shortest accepted password.
const PasswordMinLength = 8

// PasswordMaxBytes is the longest password bcrypt can digest, in bytes.
const PasswordMaxBytes = 72

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns a validator with the board's rules registered.
// Field names in errors are taken from the form tag.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return len(PasswordProblems(fl.Field().String())) == 0
	})
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return slices.Contains(models.Departments, fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// PasswordProblems lists every way password breaks the complexity policy.
// The username rule is checked separately because it needs the username.
func PasswordProblems(password string) []string {
	var problems []string
	if len([]rune(password)) < PasswordMinLength {
		problems = append(problems, fmt.Sprintf("Password must be at least %d characters!", PasswordMinLength))
	}
	if len(password) > PasswordMaxBytes {
		problems = append(problems, fmt.Sprintf("Password cannot be longer than %d bytes!", PasswordMaxBytes))
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		problems = append(problems, "Password must contain at least one uppercase letter!")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		problems = append(problems, "Password must contain at least one number!")
	}
	if !strings.ContainsAny(password, PasswordSymbols) {
		problems = append(problems, "Password must contain at least one special character!")
	}
	return problems
}

// PasswordContainsUsername reports whether the username appears in the password, ignoring case.
func PasswordContainsUsername(password, username string) bool {
	if username == "" {
		return false
	}
	return strings.Contains(strings.ToLower(password), strings.ToLower(username))
}

// FieldErrors turns a validation error into one message per form field.
// It returns nil when err is not a validator.ValidationErrors.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "department" {
			return "Please select your department"
		}
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "eqfield":
		return "Both passwords must match!"
	case "department":
		return "Please select your department"
	case "password_policy":
		return strings.Join(PasswordProblems(fmt.Sprint(fe.Value())), " ")
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
