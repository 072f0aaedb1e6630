package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bulkscan-adjudicator/internal/api"
	"bulkscan-adjudicator/internal/auth"
	"bulkscan-adjudicator/internal/config"
	"bulkscan-adjudicator/internal/metrics"
	"bulkscan-adjudicator/internal/schema"
)

type verdictResponse struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Status   string   `json:"status"`
}

type transformResponse struct {
	CaseCreationDetails *struct {
		CaseTypeID string         `json:"case_type_id"`
		EventID    string         `json:"event_id"`
		CaseData   map[string]any `json:"case_data"`
	} `json:"case_creation_details"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

var _ = Describe("bulk-scan adjudicator API", func() {
	var (
		server *httptest.Server
		token  string
	)

	BeforeEach(func() {
		authSvc := auth.NewService("blackbox-key", []string{"bulk_scan_orchestrator"})
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		h := api.NewHandler(config.Config{MaxBodyBytes: 1 << 20}, schema.Default(), authSvc, nil, metrics.New(), logger)
		server = httptest.NewServer(api.NewRouter(h))

		var err error
		token, err = authSvc.Issue("bulk_scan_orchestrator", time.Minute)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	post := func(path string, payload any) (int, []byte) {
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())
		req, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(auth.HeaderName, "Bearer "+token)

		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, raw
	}

	field := func(name string, value any) map[string]any {
		return map[string]any{"name": name, "value": value}
	}

	ocrItem := func(key, value string) map[string]any {
		return map[string]any{"value": map[string]any{"key": key, "value": value}}
	}

	Describe("OCR validation", func() {
		DescribeTable("personal form verdicts",
			func(fields []map[string]any, want verdictResponse) {
				status, raw := post("/forms/PERSONAL/validate-ocr", map[string]any{"ocr_data_fields": fields})
				Expect(status).To(Equal(http.StatusOK))

				var got verdictResponse
				Expect(json.Unmarshal(raw, &got)).To(Succeed())
				Expect(got).To(Equal(want))
			},
			Entry("missing mandatory and optional fields",
				[]map[string]any{field("first_name", "John")},
				verdictResponse{Errors: []string{"last_name is missing"}, Warnings: []string{"date_of_birth is missing"}, Status: "ERRORS"}),
			Entry("complete form",
				[]map[string]any{field("first_name", "John"), field("last_name", "Smith"), field("date_of_birth", "1990-01-01")},
				verdictResponse{Errors: []string{}, Warnings: []string{}, Status: "SUCCESS"}),
			Entry("duplicate names",
				[]map[string]any{field("last_name", "A"), field("last_name", "B")},
				verdictResponse{Errors: []string{"Invalid OCR data. Duplicate fields exist: last_name"}, Warnings: []string{}, Status: "ERRORS"}),
			Entry("empty mandatory value is missing",
				[]map[string]any{field("first_name", ""), field("last_name", "Smith"), field("date_of_birth", "1990-01-01")},
				verdictResponse{Errors: []string{"first_name is missing"}, Warnings: []string{}, Status: "ERRORS"}),
			Entry("empty optional value is present",
				[]map[string]any{field("first_name", "John"), field("last_name", "Smith"), field("date_of_birth", "")},
				verdictResponse{Errors: []string{}, Warnings: []string{}, Status: "SUCCESS"}),
			Entry("null optional value is present",
				[]map[string]any{field("first_name", "John"), field("last_name", "Smith"), field("date_of_birth", nil)},
				verdictResponse{Errors: []string{}, Warnings: []string{}, Status: "SUCCESS"}),
		)

		It("returns byte-identical verdicts for identical requests", func() {
			payload := map[string]any{"ocr_data_fields": []map[string]any{field("email", "x"), field("post_code", "")}}
			_, first := post("/forms/CONTACT/validate-ocr", payload)
			_, second := post("/forms/CONTACT/validate-ocr", payload)
			Expect(second).To(Equal(first))
		})

		It("rejects unknown form types with 404", func() {
			status, raw := post("/forms/DIVORCE/validate-ocr", map[string]any{"ocr_data_fields": []map[string]any{field("a", "b")}})
			Expect(status).To(Equal(http.StatusNotFound))
			Expect(string(raw)).To(ContainSubstring("Form type 'DIVORCE' not found"))
		})
	})

	Describe("exception record transformation", func() {
		It("rejects records missing a required OCR field", func() {
			status, raw := post("/transform-exception-record", map[string]any{
				"id":   "er-1",
				"data": map[string]any{"scanOCRData": []any{ocrItem("first_name", "John")}},
			})
			Expect(status).To(Equal(http.StatusUnprocessableEntity))

			var got transformResponse
			Expect(json.Unmarshal(raw, &got)).To(Succeed())
			Expect(got.Errors).To(Equal([]string{"'last_name' is required"}))
			Expect(got.Warnings).To(BeEmpty())
			Expect(got.CaseCreationDetails).To(BeNil())
		})

		It("creates a case with advisory warnings", func() {
			status, raw := post("/transform-exception-record", map[string]any{
				"id": "er-2",
				"data": map[string]any{
					"scanOCRData": []any{
						ocrItem("first_name", "John"),
						ocrItem("last_name", "Smith"),
						ocrItem("date_of_birth", "1899-12-31"),
						ocrItem("contact_number", "0123456789"),
						ocrItem("email", "john@example.com"),
						ocrItem("address_line_1", "1 High Street"),
						ocrItem("post_code", "AB1 2CD"),
						ocrItem("post_town", "London"),
						ocrItem("county", "Greater London"),
						ocrItem("country", "UK"),
					},
				},
			})
			Expect(status).To(Equal(http.StatusOK))

			var got transformResponse
			Expect(json.Unmarshal(raw, &got)).To(Succeed())
			Expect(got.Warnings).To(Equal([]string{"date of birth is from before year 1900", "there are no scanned documents"}))
			Expect(got.CaseCreationDetails).NotTo(BeNil())
			Expect(got.CaseCreationDetails.CaseTypeID).To(Equal("Bulk_Scanned"))
			Expect(got.CaseCreationDetails.EventID).To(Equal("createCase"))
			Expect(got.CaseCreationDetails.CaseData).To(HaveKeyWithValue("firstName", "John"))
			Expect(got.CaseCreationDetails.CaseData).To(HaveKeyWithValue("scannedDocuments", BeEmpty()))
		})

		It("treats structurally malformed data as a server fault", func() {
			status, _ := post("/transform-exception-record", map[string]any{
				"id":   "er-3",
				"data": map[string]any{"scannedDocuments": map[string]any{"not": "a list"}},
			})
			Expect(status).To(Equal(http.StatusInternalServerError))
		})
	})
})
