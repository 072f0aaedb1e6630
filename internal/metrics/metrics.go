package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts verdicts, transformation outcomes and rejected callers.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	OCRValidations  *prometheus.CounterVec
	Transformations *prometheus.CounterVec
	AuthFailures    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers every metric on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		OCRValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bulkscan_ocr_validations_total",
			Help: "OCR validation verdicts by form type and status",
		}, []string{"form_type", "status"}),

		Transformations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bulkscan_transformations_total",
			Help: "Exception record transformations by result",
		}, []string{"result"}), // success, rejected, fault

		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bulkscan_auth_failures_total",
			Help: "Rejected service-to-service calls by reason",
		}, []string{"reason"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bulkscan_operation_duration_seconds",
			Help:    "Duration of validation and transformation operations",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementValidation(formType, status string) {
	if m != nil {
		m.OCRValidations.WithLabelValues(formType, status).Inc()
	}
}

func (m *Metrics) IncrementTransformation(result string) {
	if m != nil {
		m.Transformations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementAuthFailure(reason string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveDuration(operation string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
