package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	messagesSentTotal   *prometheus.CounterVec
	messagesFailedTotal *prometheus.CounterVec
	messageSendDuration *prometheus.HistogramVec

	draftsCreatedTotal *prometheus.CounterVec
	draftsSkippedTotal *prometheus.CounterVec

	membersExpiredTotal prometheus.Counter
	scanDuration        prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gymnotify",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gymnotify",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		messagesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gymnotify",
				Name:      "messages_sent_total",
				Help:      "Total number of messages delivered to a channel provider.",
			},
			[]string{"channel", "type"},
		),
		messagesFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gymnotify",
				Name:      "messages_failed_total",
				Help:      "Total number of message sends that failed.",
			},
			[]string{"channel", "reason"},
		),
		messageSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gymnotify",
				Name:      "message_send_duration_seconds",
				Help:      "Duration of a single provider send call in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"channel"},
		),
		draftsCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gymnotify",
				Name:      "drafts_created_total",
				Help:      "Total number of message drafts created.",
			},
			[]string{"type"},
		),
		draftsSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gymnotify",
				Name:      "drafts_skipped_total",
				Help:      "Total number of draft candidates skipped because an open draft already existed.",
			},
			[]string{"type"},
		),
		membersExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "gymnotify",
				Name:      "members_expired_total",
				Help:      "Total number of memberships flipped to expired by the scan job.",
			},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "gymnotify",
				Name:      "expiry_scan_duration_seconds",
				Help:      "Duration of a full expiry scan run in seconds.",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.messagesSentTotal,
		m.messagesFailedTotal,
		m.messageSendDuration,
		m.draftsCreatedTotal,
		m.draftsSkippedTotal,
		m.membersExpiredTotal,
		m.scanDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncMessageSent(channel string, messageType string) {
	if m == nil {
		return
	}
	m.messagesSentTotal.WithLabelValues(normalizeLabel(channel), normalizeLabel(messageType)).Inc()
}

func (m *Metrics) IncMessageFailed(channel string, reason string) {
	if m == nil {
		return
	}
	m.messagesFailedTotal.WithLabelValues(normalizeLabel(channel), normalizeLabel(reason)).Inc()
}

func (m *Metrics) ObserveSendDuration(channel string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.messageSendDuration.WithLabelValues(normalizeLabel(channel)).Observe(seconds)
}

func (m *Metrics) AddDraftsCreated(messageType string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.draftsCreatedTotal.WithLabelValues(normalizeLabel(messageType)).Add(float64(count))
}

func (m *Metrics) AddDraftsSkipped(messageType string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.draftsSkippedTotal.WithLabelValues(normalizeLabel(messageType)).Add(float64(count))
}

func (m *Metrics) AddMembersExpired(count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.membersExpiredTotal.Add(float64(count))
}

func (m *Metrics) ObserveScanDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.scanDuration.Observe(seconds)
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
