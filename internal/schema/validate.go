// internal/schema/validate.go
package schema

import (
	"fmt"
	"strings"
)

// FieldError is a user-correctable validation failure. It never aborts
// a session; callers re-issue the pending question alongside it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Message
}

// Validate runs the full pipeline for one field: required/empty check,
// minimum bounds (hard errors), maximum-length truncation (silent),
// pattern and custom checks on the truncated value, normalizer last.
// Pure function of the registry entry and input.
func (r *Registry) Validate(fieldName, rawValue string) (string, error) {
	def, ok := r.fields[fieldName]
	if !ok {
		return "", &FieldError{Field: fieldName, Message: fmt.Sprintf("Unknown field %q.", fieldName)}
	}

	value := strings.TrimSpace(rawValue)

	if value == "" {
		if def.Required {
			return "", &FieldError{Field: fieldName, Message: fmt.Sprintf("%s is required.", def.Label)}
		}
		return "", nil
	}

	if def.MinLength > 0 && len([]rune(value)) < def.MinLength {
		return "", &FieldError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be at least %d characters.", def.Label, def.MinLength),
		}
	}

	if def.MinWords > 0 && len(strings.Fields(value)) < def.MinWords {
		return "", &FieldError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be at least %d words.", def.Label, def.MinWords),
		}
	}

	// Exceeding the maximum is never an error: the value is cut down
	// and accepted. Minimums stay strict.
	if def.MaxLength > 0 {
		if runes := []rune(value); len(runes) > def.MaxLength {
			value = strings.TrimSpace(string(runes[:def.MaxLength]))
		}
	}

	if def.Pattern != nil && !def.Pattern.MatchString(value) {
		msg := def.PatternMsg
		if msg == "" {
			msg = fmt.Sprintf("%s has an invalid format.", def.Label)
		}
		return "", &FieldError{Field: fieldName, Message: msg}
	}

	if def.Check != nil && !def.Check(value) {
		msg := def.CheckMsg
		if msg == "" {
			msg = fmt.Sprintf("%s has an invalid value.", def.Label)
		}
		return "", &FieldError{Field: fieldName, Message: msg}
	}

	if def.Normalizer != nil {
		value = def.Normalizer(value)
	}

	return value, nil
}
