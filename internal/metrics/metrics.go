package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector aggregates the counters the API exposes for scraping. A nil
// *Collector is valid and records nothing, which keeps test wiring small.
type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpLatency      prometheus.Histogram
	checkIns         prometheus.Counter
	checkOuts        prometheus.Counter
	otpIssued        prometheus.Counter
	otpVerifications *prometheus.CounterVec
	emails           *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timexa_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "timexa_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		checkIns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timexa_attendance_check_ins_total",
			Help: "Successful attendance check-ins.",
		}),
		checkOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timexa_attendance_check_outs_total",
			Help: "Successful attendance check-outs.",
		}),
		otpIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timexa_otp_issued_total",
			Help: "One-time passcodes issued.",
		}),
		otpVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timexa_otp_verifications_total",
			Help: "One-time passcode verification attempts by outcome.",
		}, []string{"outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timexa_emails_total",
			Help: "Transactional emails by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.checkIns,
		c.checkOuts,
		c.otpIssued,
		c.otpVerifications,
		c.emails,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordCheckIn() {
	if c == nil {
		return
	}
	c.checkIns.Inc()
}

func (c *Collector) RecordCheckOut() {
	if c == nil {
		return
	}
	c.checkOuts.Inc()
}

func (c *Collector) RecordOTPIssued() {
	if c == nil {
		return
	}
	c.otpIssued.Inc()
}

func (c *Collector) RecordOTPVerification(ok bool) {
	if c == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	c.otpVerifications.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordEmail(kind string, err error) {
	if c == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	c.emails.WithLabelValues(kind, outcome).Inc()
}

// Handler returns the scrape endpoint for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
