// Package transform turns exception records into case-creation payloads.
package transform

import (
	"fmt"

	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/extract"
	"bulkscan-adjudicator/internal/result"
	"bulkscan-adjudicator/internal/schema"
)

type Transformer struct {
	registry *schema.Registry
}

func New(registry *schema.Registry) *Transformer {
	return &Transformer{registry: registry}
}

// Transform returns a successful outcome with advisory warnings, or a
// rejection listing every problem found. The error is non-nil only for a
// structural fault, and then wraps ErrMalformedRecord.
func (t *Transformer) Transform(rec domain.ExceptionRecord) (domain.Outcome, error) {
	raw, err := parseRawData(rec.RawData)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("exception record %s: %w", rec.ID, err)
	}
	fields := raw.fields()

	if missing := t.missingRequired(fields); len(missing) > 0 {
		return domain.Rejected(missing), nil
	}

	built := buildCase(rec.ID, fields, raw.Documents)
	c, ok := built.Get()
	if !ok {
		return domain.Rejected(built.Errors()), nil
	}

	return domain.Accepted(c, domain.CaseWarnings(c)), nil
}

// missingRequired looks at names only. A blank required field passes here and
// is reported later by extraction.
func (t *Transformer) missingRequired(fields []domain.Field) []string {
	present := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		present[f.Name] = struct{}{}
	}
	var missing []string
	for _, name := range t.registry.CaseRequired() {
		if _, ok := present[string(name)]; !ok {
			missing = append(missing, fmt.Sprintf("'%s' is required", name))
		}
	}
	return missing
}

func buildCase(recordID string, fields []domain.Field, docs []domain.Item[rawDocument]) result.Result[domain.Case] {
	legacyID := extract.Optional(fields, schema.LegacyID, extract.String)
	firstName := extract.Required(fields, schema.FirstName, extract.String)
	lastName := extract.Required(fields, schema.LastName, extract.String)
	dob := extract.Required(fields, schema.DateOfBirth, extract.Date)
	contactNumber := extract.Required(fields, schema.ContactNumber, extract.String)
	email := extract.Required(fields, schema.Email, extract.String)
	address := extractAddress(fields)
	documents := mapDocuments(recordID, docs)

	errs := result.Collect(legacyID, firstName, lastName, dob, contactNumber, email, address, documents)
	if len(errs) > 0 {
		return result.FailAll[domain.Case](errs)
	}

	return result.Ok(domain.Case{
		LegacyID:         legacyID.MustGet(),
		FirstName:        firstName.MustGet(),
		LastName:         lastName.MustGet(),
		DateOfBirth:      dob.MustGet(),
		ContactNumber:    contactNumber.MustGet(),
		Email:            email.MustGet(),
		Address:          address.MustGet(),
		ScannedDocuments: documents.MustGet(),
	})
}
