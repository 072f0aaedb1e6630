// Package ocrvalidation checks raw OCR fields against a form schema and
// classifies the outcome as a verdict.
package ocrvalidation

import (
	"fmt"
	"sort"
	"strings"

	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/schema"
)

const duplicateMessagePrefix = "Invalid OCR data. Duplicate fields exist: "

type Validator struct {
	registry *schema.Registry
}

func New(registry *schema.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate runs the duplicate check and, only when it passes, the mandatory
// and optional checks. An unregistered form type has no requirements, so any
// input passes. Validate is pure: equal inputs give equal verdicts.
func (v *Validator) Validate(formType schema.FormType, fields []domain.Field) domain.Verdict {
	if dups := Duplicates(fields); len(dups) > 0 {
		return domain.NewVerdict([]string{duplicateMessagePrefix + strings.Join(dups, ",")}, nil)
	}

	form := v.registry.SchemaFor(formType)
	return domain.NewVerdict(mandatoryErrors(form, fields), optionalWarnings(form, fields))
}

// Duplicates returns the sorted names that occur more than once.
func Duplicates(fields []domain.Field) []string {
	counts := make(map[string]int, len(fields))
	for _, f := range fields {
		counts[f.Name]++
	}
	var dups []string
	for name, n := range counts {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

// IsDuplicateVerdict reports whether a verdict came from the duplicate short-circuit.
func IsDuplicateVerdict(v domain.Verdict) bool {
	return len(v.Errors) == 1 && strings.HasPrefix(v.Errors[0], duplicateMessagePrefix)
}

func mandatoryErrors(form schema.FormSchema, fields []domain.Field) []string {
	byName := index(fields)
	errs := make([]string, 0)
	for _, name := range form.Mandatory {
		f, ok := byName[string(name)]
		if !ok || f.Blank() {
			errs = append(errs, missing(name))
		}
	}
	for _, rule := range form.Rules {
		if msg, ok := rule.Check(schema.RuleValue(fields, rule.Field())); !ok {
			errs = append(errs, msg)
		}
	}
	return errs
}

// Optional fields are judged on presence alone; a blank value counts as present.
func optionalWarnings(form schema.FormSchema, fields []domain.Field) []string {
	byName := index(fields)
	warnings := make([]string, 0)
	for _, name := range form.Optional {
		if _, ok := byName[string(name)]; !ok {
			warnings = append(warnings, missing(name))
		}
	}
	return warnings
}

func index(fields []domain.Field) map[string]domain.Field {
	m := make(map[string]domain.Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}

func missing(name schema.FieldName) string {
	return fmt.Sprintf("%s is missing", name)
}
