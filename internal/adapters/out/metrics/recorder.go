// Package metrics exports invoice lifecycle signals to Prometheus.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "claims_ebilling"

const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeConflict     = "conflict"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeAuditFailure = "audit_failure"
	OutcomeTimeout      = "timeout"
	OutcomeError        = "error"
)

var _ ports.EventRecorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder implements ports.EventRecorder.
type PrometheusRecorder struct {
	transitions      *prometheus.CounterVec
	exceptionsRaised *prometheus.CounterVec
	commands         *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	exported         prometheus.Counter
}

// NewPrometheusRecorder registers the collectors on registerer, or on the
// default registerer when nil.
func NewPrometheusRecorder(registerer prometheus.Registerer) (*PrometheusRecorder, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	r := &PrometheusRecorder{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_transitions_total",
			Help:      "Invoice state transitions.",
		}, []string{"from", "to"}),
		exceptionsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exceptions_raised_total",
			Help:      "Exceptions opened by the validation pass, by validation type.",
		}, []string{"validation_type"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Handled commands by outcome.",
		}, []string{"command", "outcome"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command latency including lock wait. run_validation is the validation pass.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"command"}),
		exported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_exported_total",
			Help:      "Invoices handed to payment.",
		}),
	}

	for _, c := range []prometheus.Collector{r.transitions, r.exceptionsRaised, r.commands, r.commandDuration, r.exported} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) InvoiceTransitioned(from, to string) {
	r.transitions.WithLabelValues(from, to).Inc()
}

func (r *PrometheusRecorder) ExceptionsRaised(validationType string, n int) {
	if n <= 0 {
		return
	}
	r.exceptionsRaised.WithLabelValues(validationType).Add(float64(n))
}

func (r *PrometheusRecorder) CommandHandled(command string, err error, elapsed time.Duration) {
	r.commands.WithLabelValues(command, Outcome(err)).Inc()
	r.commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

func (r *PrometheusRecorder) InvoiceExported() {
	r.exported.Inc()
}

// Outcome maps a command error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return OutcomeTimeout
	case errors.Is(err, errs.ErrObjectNotFound):
		return OutcomeNotFound
	case errors.Is(err, errs.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, errs.ErrAuditWriteFailure):
		return OutcomeAuditFailure
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrNotOpen),
		errors.Is(err, errs.ErrAlreadyExported),
		errors.Is(err, errs.ErrStaleVersion):
		return OutcomeConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
