package domain

import (
	"strings"
	"time"
)

const (
	CaseTypeID          = "Bulk_Scanned"
	CaseCreationEventID = "createCase"
)

// Raw exception-record data keys.
const (
	RawKeyOCRData          = "scanOCRData"
	RawKeyScannedDocuments = "scannedDocuments"
)

// Field is one OCR key/value pair. Value is nil when the scanner produced no text.
type Field struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

// Blank reports whether the field has no usable text.
func (f Field) Blank() bool {
	return f.Value == nil || strings.TrimSpace(*f.Value) == ""
}

type Verdict struct {
	Warnings []string         `json:"warnings"`
	Errors   []string         `json:"errors"`
	Status   ValidationStatus `json:"status"`
}

// NewVerdict derives the status from the two lists so the status can never
// disagree with them. Nil lists are normalised to empty ones.
func NewVerdict(errors, warnings []string) Verdict {
	if errors == nil {
		errors = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	status := StatusSuccess
	switch {
	case len(errors) > 0:
		status = StatusErrors
	case len(warnings) > 0:
		status = StatusWarnings
	}
	return Verdict{Warnings: warnings, Errors: errors, Status: status}
}

type ExceptionRecord struct {
	ID           string         `json:"id"`
	Jurisdiction string         `json:"jurisdiction"`
	CaseTypeID   string         `json:"case_type_id"`
	State        string         `json:"state"`
	RawData      map[string]any `json:"data"`
}

type Address struct {
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	AddressLine3 *string `json:"addressLine3"`
	PostCode     string  `json:"postCode"`
	PostTown     string  `json:"postTown"`
	County       string  `json:"county"`
	Country      string  `json:"country"`
}

// Document is a scanned document copied onto the case. SourceRecordID names
// the exception record it came from.
type Document struct {
	Type           string    `json:"type"`
	Subtype        string    `json:"subtype"`
	URL            string    `json:"url"`
	ControlNumber  string    `json:"controlNumber"`
	FileName       string    `json:"fileName"`
	ScannedDate    *DateTime `json:"scannedDate"`
	DeliveryDate   *DateTime `json:"deliveryDate"`
	SourceRecordID string    `json:"exceptionRecordReference"`
}

// Item wraps collection entries the way the case-management system expects them.
type Item[T any] struct {
	Value T `json:"value"`
}

type Case struct {
	LegacyID         *string          `json:"legacyId"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	DateOfBirth      Date             `json:"dateOfBirth"`
	ContactNumber    string           `json:"contactNumber"`
	Email            string           `json:"email"`
	Address          Address          `json:"address"`
	ScannedDocuments []Item[Document] `json:"scannedDocuments"`
}

type CaseCreationDetails struct {
	CaseTypeID string `json:"case_type_id"`
	EventID    string `json:"event_id"`
	CaseData   Case   `json:"case_data"`
}

// Outcome is the transformer's answer: either case details with advisory
// warnings, or a rejection carrying errors. It marshals to the response body.
type Outcome struct {
	OK       bool                 `json:"-"`
	Details  *CaseCreationDetails `json:"case_creation_details,omitempty"`
	Errors   []string             `json:"errors,omitempty"`
	Warnings []string             `json:"warnings"`
}

func Accepted(c Case, warnings []string) Outcome {
	if warnings == nil {
		warnings = []string{}
	}
	return Outcome{
		OK: true,
		Details: &CaseCreationDetails{
			CaseTypeID: CaseTypeID,
			EventID:    CaseCreationEventID,
			CaseData:   c,
		},
		Warnings: warnings,
	}
}

func Rejected(errors []string) Outcome {
	return Outcome{OK: false, Errors: errors, Warnings: []string{}}
}

type ValidationAudit struct {
	ID        string           `json:"id"`
	FormType  string           `json:"form_type"`
	Status    ValidationStatus `json:"status"`
	Errors    []string         `json:"errors"`
	Warnings  []string         `json:"warnings"`
	Service   string           `json:"service"`
	CreatedAt time.Time        `json:"created_at"`
}

type TransformationAudit struct {
	ID                string               `json:"id"`
	ExceptionRecordID string               `json:"exception_record_id"`
	Result            TransformationResult `json:"result"`
	Errors            []string             `json:"errors"`
	Warnings          []string             `json:"warnings"`
	Service           string               `json:"service"`
	CreatedAt         time.Time            `json:"created_at"`
}
