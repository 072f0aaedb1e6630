package transform

import (
	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/extract"
	"bulkscan-adjudicator/internal/result"
	"bulkscan-adjudicator/internal/schema"
)

func extractAddress(fields []domain.Field) result.Result[domain.Address] {
	line1 := extract.Required(fields, schema.AddressLine1, extract.String)
	line2 := extract.Optional(fields, schema.AddressLine2, extract.String)
	line3 := extract.Optional(fields, schema.AddressLine3, extract.String)
	postCode := extract.Required(fields, schema.PostCode, extract.String)
	postTown := extract.Required(fields, schema.PostTown, extract.String)
	county := extract.Required(fields, schema.County, extract.String)
	country := extract.Required(fields, schema.Country, extract.String)

	if errs := result.Collect(line1, line2, line3, postCode, postTown, county, country); len(errs) > 0 {
		return result.FailAll[domain.Address](errs)
	}

	return result.Ok(domain.Address{
		AddressLine1: line1.MustGet(),
		AddressLine2: line2.MustGet(),
		AddressLine3: line3.MustGet(),
		PostCode:     postCode.MustGet(),
		PostTown:     postTown.MustGet(),
		County:       county.MustGet(),
		Country:      country.MustGet(),
	})
}
