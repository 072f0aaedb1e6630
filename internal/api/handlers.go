package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"bulkscan-adjudicator/internal/auth"
	"bulkscan-adjudicator/internal/config"
	"bulkscan-adjudicator/internal/domain"
	"bulkscan-adjudicator/internal/metrics"
	"bulkscan-adjudicator/internal/ocrvalidation"
	"bulkscan-adjudicator/internal/schema"
	"bulkscan-adjudicator/internal/transform"
)

const historyLimit = 50

// AuditStore persists verdicts and outcomes. Recording failures never change
// the response to the caller.
type AuditStore interface {
	RecordValidation(ctx context.Context, rec domain.ValidationAudit) error
	RecordTransformation(ctx context.Context, rec domain.TransformationAudit) error
	ListTransformations(ctx context.Context, exceptionRecordID string, limit int) ([]domain.TransformationAudit, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	cfg         config.Config
	registry    *schema.Registry
	ocr         *ocrvalidation.Validator
	transformer *transform.Transformer
	auth        Authenticator
	audit       AuditStore
	metrics     *metrics.Metrics
	logger      *slog.Logger
	validate    *validator.Validate
	now         func() time.Time
}

type ocrField struct {
	Name  string  `json:"name" validate:"required"`
	Value *string `json:"value"`
}

type validationRequest struct {
	OCRDataFields []ocrField `json:"ocr_data_fields" validate:"required,min=1,dive"`
}

type legacyValidationRequest struct {
	FormType      string     `json:"form_type" validate:"required"`
	OCRDataFields []ocrField `json:"ocr_data_fields" validate:"required,min=1,dive"`
}

type exceptionRecordRequest struct {
	ID           string         `json:"id" validate:"required"`
	Jurisdiction string         `json:"jurisdiction"`
	CaseTypeID   string         `json:"case_type_id"`
	State        string         `json:"state"`
	Data         map[string]any `json:"data"`
}

// NewHandler wires the HTTP surface. audit may be nil when persistence is disabled.
func NewHandler(cfg config.Config, registry *schema.Registry, authenticator Authenticator, audit AuditStore, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:         cfg,
		registry:    registry,
		ocr:         ocrvalidation.New(registry),
		transformer: transform.New(registry),
		auth:        authenticator,
		audit:       audit,
		metrics:     m,
		logger:      logger,
		validate:    newRequestValidator(),
		now:         time.Now,
	}
}

func (h *Handler) ValidateOCR(w http.ResponseWriter, r *http.Request, rawFormType string) {
	formType, err := h.registry.Resolve(rawFormType)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Form type '%s' not found", rawFormType))
		return
	}

	var req validationRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.runValidation(r.Context(), formType, req.OCRDataFields))
}

// ValidateOCRLegacy serves callers that send the form type in the body.
func (h *Handler) ValidateOCRLegacy(w http.ResponseWriter, r *http.Request) {
	var req legacyValidationRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	formType, err := h.registry.Resolve(req.FormType)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Form type '%s' not found", req.FormType))
		return
	}

	writeJSON(w, http.StatusOK, h.runValidation(r.Context(), formType, req.OCRDataFields))
}

func (h *Handler) runValidation(ctx context.Context, formType schema.FormType, in []ocrField) domain.Verdict {
	fields := make([]domain.Field, 0, len(in))
	for _, f := range in {
		fields = append(fields, domain.Field{Name: f.Name, Value: f.Value})
	}

	start := h.now()
	verdict := h.ocr.Validate(formType, fields)
	h.metrics.ObserveDuration("validate", h.now().Sub(start))
	h.metrics.IncrementValidation(string(formType), string(verdict.Status))

	logger := h.logger.With("request_id", middleware.GetReqID(ctx), "form_type", formType)
	if ocrvalidation.IsDuplicateVerdict(verdict) {
		logger.Info("found duplicate fields in OCR data", "duplicates", ocrvalidation.Duplicates(fields))
	} else {
		logger.Info("ocr data validated", "status", verdict.Status, "errors", len(verdict.Errors), "warnings", len(verdict.Warnings))
	}

	if h.audit != nil {
		err := h.audit.RecordValidation(ctx, domain.ValidationAudit{
			ID:        uuid.NewString(),
			FormType:  string(formType),
			Status:    verdict.Status,
			Errors:    verdict.Errors,
			Warnings:  verdict.Warnings,
			Service:   auth.ServiceName(ctx),
			CreatedAt: h.now().UTC(),
		})
		if err != nil {
			logger.Warn("failed to record validation audit", "error", err)
		}
	}
	return verdict
}

func (h *Handler) TransformExceptionRecord(w http.ResponseWriter, r *http.Request) {
	var req exceptionRecordRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	ctx := r.Context()
	logger := h.logger.With("request_id", middleware.GetReqID(ctx), "exception_record_id", req.ID)

	outcome, err := h.runTransformation(ctx, logger, domain.ExceptionRecord{
		ID:           req.ID,
		Jurisdiction: req.Jurisdiction,
		CaseTypeID:   req.CaseTypeID,
		State:        req.State,
		RawData:      req.Data,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process exception record")
		return
	}

	if !outcome.OK {
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// runTransformation transforms rec and records the result in metrics, logs
// and the audit store. A non-nil error is a structural fault.
func (h *Handler) runTransformation(ctx context.Context, logger *slog.Logger, rec domain.ExceptionRecord) (domain.Outcome, error) {
	start := h.now()
	outcome, err := h.transformer.Transform(rec)
	h.metrics.ObserveDuration("transform", h.now().Sub(start))
	if err != nil {
		logger.Error("exception record could not be processed", "error", err, "malformed", errors.Is(err, transform.ErrMalformedRecord))
		h.metrics.IncrementTransformation(string(domain.TransformationFault))
		h.recordTransformation(ctx, logger, rec.ID, domain.TransformationFault, []string{err.Error()}, nil)
		return domain.Outcome{}, err
	}

	result := domain.ResultOf(outcome)
	h.metrics.IncrementTransformation(string(result))
	h.recordTransformation(ctx, logger, rec.ID, result, outcome.Errors, outcome.Warnings)
	if outcome.OK {
		logger.Info("exception record transformed", "warnings", len(outcome.Warnings))
	} else {
		logger.Info("exception record rejected", "errors", outcome.Errors)
	}
	return outcome, nil
}

func (h *Handler) recordTransformation(ctx context.Context, logger *slog.Logger, recordID string, result domain.TransformationResult, errs, warnings []string) {
	if h.audit == nil {
		return
	}
	if errs == nil {
		errs = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	err := h.audit.RecordTransformation(ctx, domain.TransformationAudit{
		ID:                uuid.NewString(),
		ExceptionRecordID: recordID,
		Result:            result,
		Errors:            errs,
		Warnings:          warnings,
		Service:           auth.ServiceName(ctx),
		CreatedAt:         h.now().UTC(),
	})
	if err != nil {
		logger.Warn("failed to record transformation audit", "error", err)
	}
}

func (h *Handler) TransformationHistory(w http.ResponseWriter, r *http.Request, recordID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.audit.ListTransformations(ctx, recordID, historyLimit)
	if err != nil {
		h.logger.Error("failed to list transformations", "exception_record_id", recordID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch transformation history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.audit.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
