// Package intake transforms exception records dropped into object storage
// and writes the outcome next to them.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/events"
	"bulkscan-adjudicator/internal/metrics"
	"bulkscan-adjudicator/internal/transform"
)

// ServiceName is recorded as the caller on audit rows written by intake.
const ServiceName = "bucket_intake"

// ErrUnsafeRecordID marks a record id that cannot be used as an outcome
// object name.
var ErrUnsafeRecordID = errors.New("record id cannot name an outcome object")

type ObjectStore interface {
	GetObject(ctx context.Context, objectKey string) ([]byte, error)
	PutJSON(ctx context.Context, objectKey string, v any) error
}

type TransformationRecorder interface {
	RecordTransformation(ctx context.Context, rec domain.TransformationAudit) error
}

type Transformer interface {
	Transform(rec domain.ExceptionRecord) (domain.Outcome, error)
}

type Processor struct {
	store         ObjectStore
	transformer   Transformer
	outcomePrefix string
	audit         TransformationRecorder
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

type Option func(*Processor)

func WithAudit(audit TransformationRecorder) Option {
	return func(p *Processor) { p.audit = audit }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

func NewProcessor(store ObjectStore, transformer Transformer, outcomePrefix string, logger *slog.Logger, opts ...Option) *Processor {
	p := &Processor{
		store:         store,
		transformer:   transformer,
		outcomePrefix: outcomePrefix,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type faultDocument struct {
	Fault string `json:"fault"`
}

// Handle processes one object-created event. Rejections and faults are
// written as outcomes; only storage failures are returned.
func (p *Processor) Handle(ctx context.Context, event events.RecordEvent) error {
	logger := p.logger.With("object_key", event.ObjectKey)

	body, err := p.store.GetObject(ctx, event.ObjectKey)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", event.ObjectKey, err)
	}

	var rec domain.ExceptionRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return p.writeFault(ctx, logger, event.Name, fmt.Errorf("%w: decode record: %v", transform.ErrMalformedRecord, err))
	}
	recordID := rec.ID
	if recordID == "" {
		recordID = event.Name
		rec.ID = recordID
	}
	if err := checkRecordID(recordID); err != nil {
		return p.writeFault(ctx, logger, event.Name, err)
	}
	logger = logger.With("exception_record_id", recordID)

	start := p.now()
	outcome, err := p.transformer.Transform(rec)
	p.metrics.ObserveDuration("transform", p.now().Sub(start))
	if err != nil {
		return p.writeFault(ctx, logger, recordID, err)
	}

	result := domain.ResultOf(outcome)
	p.metrics.IncrementTransformation(string(result))
	p.record(ctx, logger, recordID, result, outcome.Errors, outcome.Warnings)

	if err := p.store.PutJSON(ctx, p.outcomeKey(recordID), outcome); err != nil {
		return fmt.Errorf("write outcome for %s: %w", recordID, err)
	}
	logger.Info("exception record processed", "result", result, "errors", len(outcome.Errors), "warnings", len(outcome.Warnings))
	return nil
}

func (p *Processor) writeFault(ctx context.Context, logger *slog.Logger, recordID string, cause error) error {
	logger.Error("exception record could not be processed", "error", cause, "malformed", errors.Is(cause, transform.ErrMalformedRecord))
	p.metrics.IncrementTransformation(string(domain.TransformationFault))
	p.record(ctx, logger, recordID, domain.TransformationFault, []string{cause.Error()}, nil)

	if err := p.store.PutJSON(ctx, p.outcomeKey(recordID), faultDocument{Fault: cause.Error()}); err != nil {
		return fmt.Errorf("write fault for %s: %w", recordID, err)
	}
	return nil
}

func (p *Processor) record(ctx context.Context, logger *slog.Logger, recordID string, result domain.TransformationResult, errs, warnings []string) {
	if p.audit == nil {
		return
	}
	err := p.audit.RecordTransformation(ctx, domain.TransformationAudit{
		ID:                uuid.NewString(),
		ExceptionRecordID: recordID,
		Result:            result,
		Errors:            nonNil(errs),
		Warnings:          nonNil(warnings),
		Service:           ServiceName,
		CreatedAt:         p.now().UTC(),
	})
	if err != nil {
		logger.Warn("failed to record transformation audit", "error", err)
	}
}

// checkRecordID keeps outcome keys inside the outcome prefix.
func checkRecordID(id string) error {
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") || path.Clean(id) != id {
		return fmt.Errorf("%w: %q", ErrUnsafeRecordID, id)
	}
	return nil
}

func (p *Processor) outcomeKey(recordID string) string {
	return path.Join(p.outcomePrefix, recordID+".json")
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
