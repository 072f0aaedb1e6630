package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05.000"
)

// Date is a calendar day without a time of day or zone.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateTime is a timestamp as written by the scanning pipeline. Values without
// a zone are UTC; values with an offset are converted to UTC.
type DateTime struct {
	time.Time
}

// ParseDateTime accepts the pipeline's millisecond layout and RFC 3339.
func ParseDateTime(s string) (DateTime, error) {
	for _, layout := range []string{DateTimeLayout, "2006-01-02T15:04:05", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{t.UTC()}, nil
		}
	}
	return DateTime{}, fmt.Errorf("unrecognised date-time %q", s)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
