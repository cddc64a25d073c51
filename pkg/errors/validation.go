package errors

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct checks s against its `validate` struct tags.
// Field failures are joined into a single *Error carrying code.
func ValidateStruct(code Code, s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Wrap(ErrCodeInternal, err, "validate %T", s)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return New(code, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return field + " must be at least " + e.Param()
	case "max", "lte":
		return field + " must be at most " + e.Param()
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "ltefield":
		return field + " must not exceed " + strings.ToLower(e.Param())
	default:
		return field + " is invalid"
	}
}

// ValidateID validates an item or category identifier.
// IDs are opaque, but they end up in file names, cache keys and DOT output,
// so empty values, control characters and overly long values are rejected.
func ValidateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "%s too long (max 256 characters)", kind)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s %q contains control characters", kind, id)
		}
	}
	return nil
}
