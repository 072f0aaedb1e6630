package schema

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"bulkscan-adjudicator/internal/domain"
)

const (
	MessageInvalidEmail = "Invalid email address"
	MessageInvalidPhone = "Invalid phone number"
)

// Rule is a form-specific format check. Rules run on every validation,
// independently of the presence checks, and report at most one message.
type Rule interface {
	Field() FieldName
	Check(value *string) (message string, ok bool)
}

var (
	validate     = validator.New()
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

type EmailRule struct {
	Name FieldName
}

func (r EmailRule) Field() FieldName { return r.Name }

func (r EmailRule) Check(value *string) (string, bool) {
	if value == nil || validate.Var(*value, "required,email") != nil {
		return MessageInvalidEmail, false
	}
	return "", true
}

// PhoneRule accepts exactly ten digits.
type PhoneRule struct {
	Name FieldName
}

func (r PhoneRule) Field() FieldName { return r.Name }

func (r PhoneRule) Check(value *string) (string, bool) {
	if value == nil || !phonePattern.MatchString(*value) {
		return MessageInvalidPhone, false
	}
	return "", true
}

// RuleValue picks the value a rule should see. Absent fields check as nil.
func RuleValue(fields []domain.Field, name FieldName) *string {
	for _, f := range fields {
		if f.Name == string(name) {
			return f.Value
		}
	}
	return nil
}

func newRule(kind string, field FieldName) (Rule, error) {
	switch kind {
	case "email":
		return EmailRule{Name: field}, nil
	case "phone":
		return PhoneRule{Name: field}, nil
	default:
		return nil, fmt.Errorf("%w: unknown rule kind %q", ErrInvalidSchema, kind)
	}
}
