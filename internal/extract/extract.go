// Package extract resolves single typed values out of a list of OCR fields.
// Every lookup returns a result.Result so callers can gather the errors of
// all their lookups before deciding anything.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/result"
	"bulkscan-adjudicator/internal/schema"
)

// Coercer turns the trimmed text of a field into a typed value.
type Coercer[T any] func(string) (T, error)

// Get looks up name in fields. A missing or blank field is an error only when
// required, and yields nil otherwise. More than one occurrence is always an error.
func Get[T any](fields []domain.Field, name schema.FieldName, required bool, coerce Coercer[T]) result.Result[*T] {
	var matches []domain.Field
	for _, f := range fields {
		if f.Name == string(name) {
			matches = append(matches, f)
		}
	}

	switch {
	case len(matches) == 0:
		if required {
			return result.Fail[*T](fmt.Sprintf("%s is missing", name))
		}
		return result.Ok[*T](nil)
	case len(matches) > 1:
		return result.Fail[*T](fmt.Sprintf("There must be only one field named %s", name))
	}

	field := matches[0]
	if field.Blank() {
		if required {
			return result.Fail[*T](fmt.Sprintf("%s must have a value", name))
		}
		return result.Ok[*T](nil)
	}

	v, err := coerce(strings.TrimSpace(*field.Value))
	if err != nil {
		return result.Fail[*T](fmt.Sprintf("%s has invalid format", name))
	}
	return result.Ok(&v)
}

// Required is Get for fields that must be present, unwrapped to a value.
func Required[T any](fields []domain.Field, name schema.FieldName, coerce Coercer[T]) result.Result[T] {
	return result.Map(Get(fields, name, true, coerce), func(v *T) T { return *v })
}

// Optional is Get for fields that may be absent or blank.
func Optional[T any](fields []domain.Field, name schema.FieldName, coerce Coercer[T]) result.Result[*T] {
	return Get(fields, name, false, coerce)
}

// String accepts any text.
func String(s string) (string, error) {
	return s, nil
}

// Date parses a yyyy-MM-dd calendar day.
func Date(s string) (domain.Date, error) {
	return domain.ParseDate(s)
}

// Int parses a base-10 integer.
func Int(s string) (int, error) {
	return strconv.Atoi(s)
}

// Bool parses the forms strconv.ParseBool accepts.
func Bool(s string) (bool, error) {
	return strconv.ParseBool(s)
}
