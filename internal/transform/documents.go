package transform

import (
	"fmt"

	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/result"
)

// mapDocuments copies every raw document onto the case, tagged with the id of
// the record it came from. A nil collection maps to an empty one.
func mapDocuments(recordID string, docs []domain.Item[rawDocument]) result.Result[[]domain.Item[domain.Document]] {
	return result.Traverse(docs, func(i int, item domain.Item[rawDocument]) result.Result[domain.Item[domain.Document]] {
		raw := item.Value
		scanned := documentDate(i, "scannedDate", raw.ScannedDate)
		delivered := documentDate(i, "deliveryDate", raw.DeliveryDate)

		return result.Combine2(scanned, delivered, func(s, d *domain.DateTime) domain.Item[domain.Document] {
			return domain.Item[domain.Document]{Value: domain.Document{
				Type:           raw.Type,
				Subtype:        raw.Subtype,
				URL:            raw.URL,
				ControlNumber:  raw.ControlNumber,
				FileName:       raw.FileName,
				ScannedDate:    s,
				DeliveryDate:   d,
				SourceRecordID: recordID,
			}}
		})
	})
}

func documentDate(index int, name string, raw *string) result.Result[*domain.DateTime] {
	if raw == nil || *raw == "" {
		return result.Ok[*domain.DateTime](nil)
	}
	dt, err := domain.ParseDateTime(*raw)
	if err != nil {
		return result.Fail[*domain.DateTime](fmt.Sprintf("scanned document %d has invalid %s", index+1, name))
	}
	return result.Ok(&dt)
}
