package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Rate limiting
	RateLimitExceededTotal *prometheus.CounterVec

	// Domain metrics
	FeedbackCreatedTotal  *prometheus.CounterVec
	FeedbackUpvotesTotal  prometheus.Counter
	StatusChangesTotal    *prometheus.CounterVec
	CommentsCreatedTotal  *prometheus.CounterVec
	IntakeEventsTotal     *prometheus.CounterVec
	AttachmentUploadBytes prometheus.Histogram
	NotificationsTotal    *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all collectors with the default registry
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"path"},
			),
			FeedbackCreatedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feedback_created_total",
					Help: "Feedback items created",
				},
				[]string{"type", "origin"},
			),
			FeedbackUpvotesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "feedback_upvotes_total",
					Help: "Upvotes recorded",
				},
			),
			StatusChangesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feedback_status_changes_total",
					Help: "Workflow status changes by target status",
				},
				[]string{"status"},
			),
			CommentsCreatedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feedback_comments_created_total",
					Help: "Comments created by author role",
				},
				[]string{"role"},
			),
			IntakeEventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feedback_intake_events_total",
					Help: "Intake operations by outcome",
				},
				[]string{"operation"},
			),
			AttachmentUploadBytes: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "attachment_upload_size_bytes",
					Help:    "Size of accepted attachment uploads",
					Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
				},
			),
			NotificationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_sent_total",
					Help: "Notification emails by event and result",
				},
				[]string{"event", "result"},
			),
		}
	})
	return instance
}

// Get returns the metrics singleton, creating it on first use
func Get() *Metrics {
	return Initialize()
}
