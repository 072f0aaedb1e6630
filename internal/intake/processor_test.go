package intake

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/events"
	"bulkscan-adjudicator/internal/metrics"
	"bulkscan-adjudicator/internal/schema"
	"bulkscan-adjudicator/internal/transform"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) GetObject(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return b, nil
}

func (f *fakeStore) PutJSON(_ context.Context, key string, v any) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = b
	return nil
}

func (f *fakeStore) outcome(t *testing.T, key string) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.objects[key]
	require.True(t, ok, "no object at %s", key)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type fakeAudit struct {
	rows []domain.TransformationAudit
	err  error
}

func (f *fakeAudit) RecordTransformation(_ context.Context, rec domain.TransformationAudit) error {
	f.rows = append(f.rows, rec)
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const acceptedRecord = `{
  "id": "er-1",
  "data": {
    "scanOCRData": [
      {"value": {"key": "first_name", "value": "John"}},
      {"value": {"key": "last_name", "value": "Smith"}},
      {"value": {"key": "date_of_birth", "value": "1990-01-01"}},
      {"value": {"key": "contact_number", "value": "0123456789"}},
      {"value": {"key": "email", "value": "john@example.com"}},
      {"value": {"key": "address_line_1", "value": "1 High Street"}},
      {"value": {"key": "post_code", "value": "AB1 2CD"}},
      {"value": {"key": "post_town", "value": "London"}},
      {"value": {"key": "county", "value": "Greater London"}},
      {"value": {"key": "country", "value": "UK"}}
    ]
  }
}`

func newProcessor(store *fakeStore, opts ...Option) *Processor {
	return NewProcessor(store, transform.New(schema.Default()), "outcomes/", discardLogger(), opts...)
}

func TestHandleWritesAcceptedOutcome(t *testing.T) {
	store := newFakeStore()
	store.objects["incoming/er-1.json"] = []byte(acceptedRecord)
	audit := &fakeAudit{}
	m := metrics.New()

	err := newProcessor(store, WithAudit(audit), WithMetrics(m)).Handle(context.Background(), events.RecordEvent{ObjectKey: "incoming/er-1.json", Name: "er-1"})
	require.NoError(t, err)

	out := store.outcome(t, "outcomes/er-1.json")
	details := out["case_creation_details"].(map[string]any)
	assert.Equal(t, "Bulk_Scanned", details["case_type_id"])
	assert.Equal(t, []any{"there are no scanned documents"}, out["warnings"])

	require.Len(t, audit.rows, 1)
	assert.Equal(t, domain.TransformationSuccess, audit.rows[0].Result)
	assert.Equal(t, ServiceName, audit.rows[0].Service)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transformations.WithLabelValues("success")))
}

func TestHandleWritesRejection(t *testing.T) {
	store := newFakeStore()
	store.objects["incoming/er-2.json"] = []byte(`{"id":"er-2","data":{"scanOCRData":[{"value":{"key":"first_name","value":"John"}}]}}`)

	err := newProcessor(store).Handle(context.Background(), events.RecordEvent{ObjectKey: "incoming/er-2.json", Name: "er-2"})
	require.NoError(t, err)

	out := store.outcome(t, "outcomes/er-2.json")
	assert.Equal(t, []any{"'last_name' is required"}, out["errors"])
	assert.Equal(t, []any{}, out["warnings"])
	assert.NotContains(t, out, "case_creation_details")
}

func TestHandleWritesFaultForMalformedData(t *testing.T) {
	store := newFakeStore()
	store.objects["incoming/er-3.json"] = []byte(`{"id":"er-3","data":{"scanOCRData":{"first_name":"John"}}}`)
	audit := &fakeAudit{err: errors.New("db down")}
	m := metrics.New()

	err := newProcessor(store, WithAudit(audit), WithMetrics(m)).Handle(context.Background(), events.RecordEvent{ObjectKey: "incoming/er-3.json", Name: "er-3"})
	require.NoError(t, err)

	out := store.outcome(t, "outcomes/er-3.json")
	assert.Contains(t, out["fault"], "malformed exception record")
	require.Len(t, audit.rows, 1)
	assert.Equal(t, domain.TransformationFault, audit.rows[0].Result)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transformations.WithLabelValues("fault")))
}

func TestHandleUndecodableObjectUsesEventName(t *testing.T) {
	store := newFakeStore()
	store.objects["incoming/broken.json"] = []byte(`{not json`)

	err := newProcessor(store).Handle(context.Background(), events.RecordEvent{ObjectKey: "incoming/broken.json", Name: "broken"})
	require.NoError(t, err)
	assert.Contains(t, store.outcome(t, "outcomes/broken.json")["fault"], "decode record")
}

func TestHandleRecordWithoutIDUsesEventName(t *testing.T) {
	store := newFakeStore()
	store.objects["incoming/unnamed.json"] = []byte(`{"data":{}}`)

	require.NoError(t, newProcessor(store).Handle(context.Background(), events.RecordEvent{ObjectKey: "incoming/unnamed.json", Name: "unnamed"}))
	assert.Equal(t, []any{"'first_name' is required", "'last_name' is required"}, store.outcome(t, "outcomes/unnamed.json")["errors"])
}

func TestHandleReturnsStorageErrors(t *testing.T) {
	store := newFakeStore()
	err := newProcessor(store).Handle(context.Background(), events.RecordEvent{ObjectKey: "incoming/missing.json", Name: "missing"})
	require.Error(t, err)

	store.objects["incoming/er-1.json"] = []byte(acceptedRecord)
	store.putErr = errors.New("bucket unavailable")
	err = newProcessor(store).Handle(context.Background(), events.RecordEvent{ObjectKey: "incoming/er-1.json", Name: "er-1"})
	require.ErrorContains(t, err, "bucket unavailable")
}

func TestHandleKeepsOutcomesInsideOutcomePrefix(t *testing.T) {
	for _, id := range []string{"../incoming/a", "nested/a", `..\incoming\a`, "..", "a/../b"} {
		t.Run(id, func(t *testing.T) {
			store := newFakeStore()
			input := []byte(`{"id":` + strconv.Quote(id) + `,"data":{}}`)
			store.objects["incoming/a.json"] = input
			audit := &fakeAudit{}

			err := newProcessor(store, WithAudit(audit)).Handle(context.Background(), events.RecordEvent{ObjectKey: "incoming/a.json", Name: "a"})
			require.NoError(t, err)

			assert.Equal(t, input, store.objects["incoming/a.json"])
			keys := make([]string, 0, len(store.objects))
			for k := range store.objects {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, []string{"incoming/a.json", "outcomes/a.json"}, keys)
			assert.Contains(t, store.outcome(t, "outcomes/a.json")["fault"], "record id cannot name an outcome object")

			require.Len(t, audit.rows, 1)
			assert.Equal(t, "a", audit.rows[0].ExceptionRecordID)
			assert.Equal(t, domain.TransformationFault, audit.rows[0].Result)
		})
	}
}
