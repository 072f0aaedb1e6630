package schema

// FieldName identifies an OCR field the service knows how to interpret.
type FieldName string

const (
	LegacyID      FieldName = "legacy_id"
	FirstName     FieldName = "first_name"
	LastName      FieldName = "last_name"
	DateOfBirth   FieldName = "date_of_birth"
	ContactNumber FieldName = "contact_number"
	Email         FieldName = "email"
	AddressLine1  FieldName = "address_line_1"
	AddressLine2  FieldName = "address_line_2"
	AddressLine3  FieldName = "address_line_3"
	PostCode      FieldName = "post_code"
	PostTown      FieldName = "post_town"
	County        FieldName = "county"
	Country       FieldName = "country"
)

var knownFields = map[FieldName]struct{}{
	LegacyID: {}, FirstName: {}, LastName: {}, DateOfBirth: {}, ContactNumber: {}, Email: {},
	AddressLine1: {}, AddressLine2: {}, AddressLine3: {}, PostCode: {}, PostTown: {}, County: {}, Country: {},
}

func (n FieldName) Known() bool {
	_, ok := knownFields[n]
	return ok
}

func (n FieldName) String() string {
	return string(n)
}

// FormType names a family of paper forms sharing one field layout.
type FormType string

const (
	FormPersonal FormType = "PERSONAL"
	FormContact  FormType = "CONTACT"
)
