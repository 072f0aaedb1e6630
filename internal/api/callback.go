package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"bulkscan-adjudicator/internal/domain"
)

const (
	// UserIDHeader names the case worker who triggered the callback.
	UserIDHeader = "user-id"

	messageMissingRecordID = "Exception record ID is missing"
)

// callbackCaseDetails is the exception record as the case-management system
// sends it. The id arrives as a JSON number.
type callbackCaseDetails struct {
	ID           *json.Number   `json:"id"`
	Jurisdiction string         `json:"jurisdiction"`
	CaseTypeID   string         `json:"case_type_id"`
	State        string         `json:"state"`
	Data         map[string]any `json:"case_data"`
}

type callbackRequest struct {
	EventID        string               `json:"event_id"`
	CaseDetails    *callbackCaseDetails `json:"case_details" validate:"required"`
	IgnoreWarnings bool                 `json:"ignore_warning"`
}

// NewApplicationCallback adjudicates a request to create a case from an
// exception record. The answer is always 200 with errors and warnings unless
// the request itself is unusable.
func (h *Handler) NewApplicationCallback(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Invalid request: missing "+UserIDHeader+" header")
		return
	}
	if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
		writeError(w, http.StatusBadRequest, "Invalid request: missing Authorization header")
		return
	}

	var req callbackRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	details := req.CaseDetails
	if details.ID == nil || details.ID.String() == "" {
		writeError(w, http.StatusBadRequest, messageMissingRecordID)
		return
	}

	ctx := r.Context()
	recordID := details.ID.String()
	logger := h.logger.With(
		"request_id", middleware.GetReqID(ctx),
		"exception_record_id", recordID,
		"event_id", req.EventID,
		"user", userID,
		"ignore_warnings", req.IgnoreWarnings,
	)
	logger.Info("handling case creation callback", "jurisdiction", details.Jurisdiction, "case_type_id", details.CaseTypeID)

	outcome, err := h.runTransformation(ctx, logger, domain.ExceptionRecord{
		ID:           recordID,
		Jurisdiction: details.Jurisdiction,
		CaseTypeID:   details.CaseTypeID,
		State:        details.State,
		RawData:      details.Data,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process exception record")
		return
	}

	result := domain.Adjudicate(outcome, req.IgnoreWarnings)
	if result.Data == nil {
		logger.Warn("case creation callback rejected", "errors", result.Errors, "warnings", result.Warnings)
	}
	writeJSON(w, http.StatusOK, result)
}
