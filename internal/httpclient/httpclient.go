// Package httpclient builds the outbound clients used for the vendor and booking APIs.
package httpclient

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Metrics measures latency and failures of outbound calls per method and path.
type Metrics struct {
	latency *prometheus.SummaryVec
	errors  *prometheus.CounterVec
}

var _ prometheus.Collector = (*Metrics)(nil)

func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		latency: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name: prometheus.BuildFQName(namespace, subsystem, "api_latency_seconds"),
			Help: "latency of outbound API calls",
		}, []string{"method", "path"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prometheus.BuildFQName(namespace, subsystem, "api_errors_total"),
			Help: "Number of failed outbound API calls",
		}, []string{"method", "path", "code"}),
	}
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.latency.Describe(ch)
	m.errors.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.latency.Collect(ch)
	m.errors.Collect(ch)
}

func (m *Metrics) measure(req *http.Request, resp *http.Response, err error, d time.Duration) {
	path := filterPath(req.URL.Path)
	m.latency.WithLabelValues(req.Method, path).Observe(d.Seconds())
	switch {
	case err != nil:
		m.errors.WithLabelValues(req.Method, path, "transport").Inc()
	case resp.StatusCode >= http.StatusBadRequest:
		m.errors.WithLabelValues(req.Method, path, http.StatusText(resp.StatusCode)).Inc()
	}
}

// filterPath keeps label cardinality bounded.
func filterPath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

type roundTripper struct {
	next    http.RoundTripper
	metrics *Metrics
}

func (r roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := r.next.RoundTrip(req)
	r.metrics.measure(req, resp, err, time.Since(start))
	return resp, err
}

// New returns a client with a per-request timeout, prometheus measurements (when metrics is not nil)
// and an otel span per request named after spanName.
func New(timeout time.Duration, metrics *Metrics, spanName string) *http.Client {
	var rt http.RoundTripper = http.DefaultTransport
	if metrics != nil {
		rt = roundTripper{next: rt, metrics: metrics}
	}
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(
			rt,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return spanName + " " + r.Method + " " + filterPath(r.URL.Path)
			}),
		),
	}
}
