// Package metrics records health-check outcomes as Prometheus series and
// renders them in the text exposition format.
package metrics

import (
	"bytes"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
)

// ContentType is the media type of the text exposition format.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

const (
	labelURL    = "service_health_checkurl"
	labelName   = "service_name"
	labelResult = "result"
)

// Sink receives every check result. Implementations must be safe for
// concurrent use by many polling loops.
type Sink interface {
	Record(r domain.CheckResult)
}

// Recorder is a Sink backed by its own Prometheus registry.
type Recorder struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	status  *prometheus.GaugeVec
	latency *prometheus.GaugeVec
	checks  *prometheus.CounterVec
}

var _ Sink = (*Recorder)(nil)

func NewRecorder(logger *zap.Logger) *Recorder {
	r := &Recorder{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "service_status",
			Help: "Service health status (1=UP, 0=DOWN)",
		}, []string{labelURL, labelName}),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "service_latency_seconds",
			Help: "Last health check latency in seconds",
		}, []string{labelURL, labelName}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "service_checks_total",
			Help: "Total number of health checks",
		}, []string{labelURL, labelName, labelResult}),
	}
	r.registry.MustRegister(r.status, r.latency, r.checks)
	return r
}

// Record overwrites the status and latency gauges for the service and bumps
// the counter for its UP/DOWN outcome.
func (r *Recorder) Record(res domain.CheckResult) {
	status := 0.0
	if res.Up {
		status = 1
	}
	r.status.WithLabelValues(res.URL, res.Name).Set(status)
	r.latency.WithLabelValues(res.URL, res.Name).Set(res.Latency.Seconds())
	r.checks.WithLabelValues(res.URL, res.Name, res.Result()).Inc()
}

// Gather renders the current state of every series. Errors are logged and
// whatever was encoded before them is returned.
func (r *Recorder) Gather() []byte {
	families, err := r.registry.Gather()
	if err != nil {
		r.logger.Warn("metrics_gather_error", zap.Error(err))
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			r.logger.Warn("metrics_encode_error",
				zap.String("family", mf.GetName()),
				zap.Error(err),
			)
		}
	}
	return buf.Bytes()
}

// Handler serves Gather output.
func (r *Recorder) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ContentType)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(r.Gather()); err != nil {
			r.logger.Debug("metrics_write_error", zap.Error(err))
		}
	}
}
