// Package schema holds the immutable registry of form schemas shared by the
// OCR validator and the record transformer.
package schema

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownForm   = errors.New("unknown form type")
	ErrInvalidSchema = errors.New("invalid form schema")
)

// FormSchema declares which fields a form must and may carry. Mandatory and
// Optional are disjoint and keep their declared order, which is also the
// order errors and warnings are reported in.
type FormSchema struct {
	Type      FormType
	Mandatory []FieldName
	Optional  []FieldName
	Rules     []Rule
}

type Registry struct {
	forms        map[FormType]FormSchema
	order        []FormType
	caseRequired []FieldName
}

type Option func(*Registry)

// WithCaseRequired sets the field names every exception record must carry
// before it can become a case.
func WithCaseRequired(names ...FieldName) Option {
	return func(r *Registry) {
		r.caseRequired = append([]FieldName(nil), names...)
	}
}

func NewRegistry(schemas []FormSchema, opts ...Option) (*Registry, error) {
	r := &Registry{forms: make(map[FormType]FormSchema, len(schemas))}
	for _, opt := range opts {
		opt(r)
	}

	for _, name := range r.caseRequired {
		if !name.Known() {
			return nil, fmt.Errorf("%w: case-required field %q is not a known field", ErrInvalidSchema, name)
		}
	}

	for _, s := range schemas {
		if s.Type == "" {
			return nil, fmt.Errorf("%w: form type is empty", ErrInvalidSchema)
		}
		if _, dup := r.forms[s.Type]; dup {
			return nil, fmt.Errorf("%w: form %s declared twice", ErrInvalidSchema, s.Type)
		}
		if err := checkSchema(s); err != nil {
			return nil, err
		}
		r.forms[s.Type] = FormSchema{
			Type:      s.Type,
			Mandatory: slices.Clone(s.Mandatory),
			Optional:  slices.Clone(s.Optional),
			Rules:     slices.Clone(s.Rules),
		}
		r.order = append(r.order, s.Type)
	}
	return r, nil
}

func checkSchema(s FormSchema) error {
	seen := make(map[FieldName]string)
	for _, group := range []struct {
		label string
		names []FieldName
	}{{"mandatory", s.Mandatory}, {"optional", s.Optional}} {
		for _, name := range group.names {
			if !name.Known() {
				return fmt.Errorf("%w: form %s: unknown field %q", ErrInvalidSchema, s.Type, name)
			}
			if prev, ok := seen[name]; ok {
				return fmt.Errorf("%w: form %s: field %q is listed as %s and %s", ErrInvalidSchema, s.Type, name, prev, group.label)
			}
			seen[name] = group.label
		}
	}
	for _, rule := range s.Rules {
		if !rule.Field().Known() {
			return fmt.Errorf("%w: form %s: rule on unknown field %q", ErrInvalidSchema, s.Type, rule.Field())
		}
	}
	return nil
}

func (r *Registry) Lookup(t FormType) (FormSchema, bool) {
	s, ok := r.forms[t]
	return s, ok
}

// SchemaFor returns the schema for t, or an empty one when t is not
// registered. An empty schema accepts any input.
func (r *Registry) SchemaFor(t FormType) FormSchema {
	if s, ok := r.forms[t]; ok {
		return s
	}
	return FormSchema{Type: t}
}

// Resolve parses a form type as it arrives on the wire.
func (r *Registry) Resolve(raw string) (FormType, error) {
	t := FormType(raw)
	if _, ok := r.forms[t]; !ok {
		return t, fmt.Errorf("%w: %s", ErrUnknownForm, raw)
	}
	return t, nil
}

func (r *Registry) FormTypes() []FormType {
	return slices.Clone(r.order)
}

func (r *Registry) CaseRequired() []FieldName {
	return slices.Clone(r.caseRequired)
}

// Default is the built-in registry.
func Default() *Registry {
	r, err := NewRegistry([]FormSchema{
		{
			Type:      FormPersonal,
			Mandatory: []FieldName{FirstName, LastName},
			Optional:  []FieldName{DateOfBirth},
		},
		{
			Type:      FormContact,
			Mandatory: []FieldName{AddressLine1, Email, PostCode, Country, ContactNumber},
			Optional:  []FieldName{AddressLine2, AddressLine3, PostTown, County},
			Rules:     []Rule{EmailRule{Name: Email}, PhoneRule{Name: ContactNumber}},
		},
	}, WithCaseRequired(FirstName, LastName))
	if err != nil {
		panic(err)
	}
	return r
}
