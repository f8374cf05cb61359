package social

import (
	"fmt"
	"strings"

	"arbor/internal/domain"
	models "arbor/internal/domain/models/social"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// notBlank rejects strings that are empty after trimming.
// Works on string and *string; nil pointers pass.
var notBlank = validation.By(func(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return fmt.Errorf("must be a string")
	}

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
})

// trimmed returns a trimmed copy of s, or nil
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func validateTarget(target models.Target) error {
	if !target.Kind.Valid() {
		return fmt.Errorf("%w: unknown target kind %q", domain.ErrValidation, target.Kind)
	}
	if err := validation.Validate(target.ID, validation.Required); err != nil {
		return fmt.Errorf("%w: target id: %v", domain.ErrValidation, err)
	}
	return nil
}
