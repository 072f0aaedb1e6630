package transform

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"bulkscan-adjudicator/internal/domain"
)

// ErrMalformedRecord marks raw data that does not have the shape agreed with
// the scanning pipeline. It is a processing fault, not a rejection.
var ErrMalformedRecord = errors.New("malformed exception record")

// Collections may be null or absent. When present they must be lists of
// {"value": {...}} items with string (or null) leaves.
const rawDataSchemaJSON = `{
  "type": "object",
  "properties": {
    "scanOCRData": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["value"],
        "properties": {
          "value": {
            "type": "object",
            "required": ["key"],
            "properties": {
              "key": {"type": "string"},
              "value": {"type": ["string", "null"]}
            }
          }
        }
      }
    },
    "scannedDocuments": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["value"],
        "properties": {
          "value": {
            "type": "object",
            "properties": {
              "type": {"type": ["string", "null"]},
              "subtype": {"type": ["string", "null"]},
              "url": {"type": ["string", "null"]},
              "controlNumber": {"type": ["string", "null"]},
              "fileName": {"type": ["string", "null"]},
              "scannedDate": {"type": ["string", "null"]},
              "deliveryDate": {"type": ["string", "null"]}
            }
          }
        }
      }
    }
  }
}`

var rawDataSchema = jsonschema.MustCompileString("exception-record-data.json", rawDataSchemaJSON)

type rawOCRField struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

type rawDocument struct {
	Type          string  `json:"type"`
	Subtype       string  `json:"subtype"`
	URL           string  `json:"url"`
	ControlNumber string  `json:"controlNumber"`
	FileName      string  `json:"fileName"`
	ScannedDate   *string `json:"scannedDate"`
	DeliveryDate  *string `json:"deliveryDate"`
}

type rawData struct {
	OCRData   []domain.Item[rawOCRField] `json:"scanOCRData"`
	Documents []domain.Item[rawDocument] `json:"scannedDocuments"`
}

func (r rawData) fields() []domain.Field {
	out := make([]domain.Field, 0, len(r.OCRData))
	for _, item := range r.OCRData {
		out = append(out, domain.Field{Name: item.Value.Key, Value: item.Value.Value})
	}
	return out
}

// parseRawData normalises the loosely typed record data through JSON, checks
// its shape and decodes it. Any failure wraps ErrMalformedRecord.
func parseRawData(data map[string]any) (rawData, error) {
	if data == nil {
		data = map[string]any{}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return rawData{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return rawData{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if err := rawDataSchema.Validate(doc); err != nil {
		return rawData{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	var parsed rawData
	if err := json.Unmarshal(b, &parsed); err != nil {
		return rawData{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return parsed, nil
}
