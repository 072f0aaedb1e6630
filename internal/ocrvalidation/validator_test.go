package ocrvalidation

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/schema"
)

func f(name, value string) domain.Field {
	return domain.Field{Name: name, Value: &value}
}

func null(name string) domain.Field {
	return domain.Field{Name: name}
}

func validContactFields() []domain.Field {
	return []domain.Field{
		f("address_line_1", "1 High Street"),
		f("address_line_2", ""),
		f("address_line_3", ""),
		f("post_code", "AB1 2CD"),
		f("post_town", "London"),
		f("county", "Greater London"),
		f("country", "UK"),
		f("email", "jane@example.com"),
		f("contact_number", "0123456789"),
	}
}

func TestValidate(t *testing.T) {
	v := New(schema.Default())

	tests := []struct {
		name   string
		form   schema.FormType
		fields []domain.Field
		want   domain.Verdict
	}{
		{
			name:   "missing mandatory and optional",
			form:   schema.FormPersonal,
			fields: []domain.Field{f("first_name", "John")},
			want: domain.Verdict{
				Errors:   []string{"last_name is missing"},
				Warnings: []string{"date_of_birth is missing"},
				Status:   domain.StatusErrors,
			},
		},
		{
			name:   "complete personal form",
			form:   schema.FormPersonal,
			fields: []domain.Field{f("first_name", "John"), f("last_name", "Smith"), f("date_of_birth", "1990-01-01")},
			want:   domain.Verdict{Errors: []string{}, Warnings: []string{}, Status: domain.StatusSuccess},
		},
		{
			name:   "duplicate fields short-circuit",
			form:   schema.FormPersonal,
			fields: []domain.Field{f("last_name", "A"), f("last_name", "B")},
			want: domain.Verdict{
				Errors:   []string{"Invalid OCR data. Duplicate fields exist: last_name"},
				Warnings: []string{},
				Status:   domain.StatusErrors,
			},
		},
		{
			name: "duplicate names are sorted and joined without spaces",
			form: schema.FormContact,
			fields: []domain.Field{
				f("post_code", "1"), f("email", "a"), f("post_code", "2"), f("email", "b"), f("shoe_size", "9"), f("shoe_size", "10"),
			},
			want: domain.Verdict{
				Errors:   []string{"Invalid OCR data. Duplicate fields exist: email,post_code,shoe_size"},
				Warnings: []string{},
				Status:   domain.StatusErrors,
			},
		},
		{
			name:   "only optional missing gives warnings",
			form:   schema.FormPersonal,
			fields: []domain.Field{f("first_name", "John"), f("last_name", "Smith")},
			want:   domain.Verdict{Errors: []string{}, Warnings: []string{"date_of_birth is missing"}, Status: domain.StatusWarnings},
		},
		{
			name:   "blank mandatory counts as missing",
			form:   schema.FormPersonal,
			fields: []domain.Field{f("first_name", " "), null("last_name"), f("date_of_birth", "")},
			want: domain.Verdict{
				Errors:   []string{"first_name is missing", "last_name is missing"},
				Warnings: []string{},
				Status:   domain.StatusErrors,
			},
		},
		{
			name:   "blank optional does not warn",
			form:   schema.FormPersonal,
			fields: []domain.Field{f("first_name", "John"), f("last_name", "Smith"), null("date_of_birth")},
			want:   domain.Verdict{Errors: []string{}, Warnings: []string{}, Status: domain.StatusSuccess},
		},
		{
			name:   "errors follow schema order, not input order",
			form:   schema.FormPersonal,
			fields: []domain.Field{},
			want: domain.Verdict{
				Errors:   []string{"first_name is missing", "last_name is missing"},
				Warnings: []string{"date_of_birth is missing"},
				Status:   domain.StatusErrors,
			},
		},
		{
			name:   "unknown form type accepts anything",
			form:   "SOMETHING_ELSE",
			fields: []domain.Field{f("whatever", "x")},
			want:   domain.Verdict{Errors: []string{}, Warnings: []string{}, Status: domain.StatusSuccess},
		},
		{
			name:   "unknown field names are ignored",
			form:   schema.FormPersonal,
			fields: []domain.Field{f("first_name", "John"), f("last_name", "Smith"), f("date_of_birth", "1990-01-01"), f("favourite_colour", "blue")},
			want:   domain.Verdict{Errors: []string{}, Warnings: []string{}, Status: domain.StatusSuccess},
		},
		{
			name:   "valid contact form",
			form:   schema.FormContact,
			fields: validContactFields(),
			want:   domain.Verdict{Errors: []string{}, Warnings: []string{}, Status: domain.StatusSuccess},
		},
		{
			name: "contact format rules",
			form: schema.FormContact,
			fields: []domain.Field{
				f("address_line_1", "1 High Street"),
				f("post_code", "AB1 2CD"),
				f("country", "UK"),
				f("email", "not-an-email"),
				f("contact_number", "12345"),
			},
			want: domain.Verdict{
				Errors:   []string{"Invalid email address", "Invalid phone number"},
				Warnings: []string{"address_line_2 is missing", "address_line_3 is missing", "post_town is missing", "county is missing"},
				Status:   domain.StatusErrors,
			},
		},
		{
			name: "contact format rules run alongside presence checks",
			form: schema.FormContact,
			fields: []domain.Field{
				f("address_line_1", "1 High Street"),
				f("address_line_2", ""),
				f("address_line_3", ""),
				f("post_code", "AB1 2CD"),
				f("post_town", ""),
				f("county", ""),
				f("country", "UK"),
			},
			want: domain.Verdict{
				Errors:   []string{"email is missing", "contact_number is missing", "Invalid email address", "Invalid phone number"},
				Warnings: []string{},
				Status:   domain.StatusErrors,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := v.Validate(tc.form, tc.fields)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("verdict mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	v := New(schema.Default())
	fields := []domain.Field{f("first_name", "John"), f("email", "bad")}

	first, err := json.Marshal(v.Validate(schema.FormContact, fields))
	require.NoError(t, err)
	second, err := json.Marshal(v.Validate(schema.FormContact, fields))
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestDuplicateVerdictDetection(t *testing.T) {
	v := New(schema.Default())
	assert.True(t, IsDuplicateVerdict(v.Validate(schema.FormPersonal, []domain.Field{f("a", "1"), f("a", "2")})))
	assert.False(t, IsDuplicateVerdict(v.Validate(schema.FormPersonal, nil)))
}

func TestValidateWithCustomRegistry(t *testing.T) {
	reg, err := schema.NewRegistry([]schema.FormSchema{{
		Type:      "SHORT",
		Mandatory: []schema.FieldName{schema.Email},
		Rules:     []schema.Rule{schema.EmailRule{Name: schema.Email}},
	}})
	require.NoError(t, err)

	got := New(reg).Validate("SHORT", []domain.Field{f("email", "someone@example.org")})
	assert.Equal(t, domain.StatusSuccess, got.Status)
}
