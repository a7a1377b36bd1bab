package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RentalsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driveeasy_rentals_submitted_total",
		Help: "Rentals created through the intake form",
	})
	RentalTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driveeasy_rental_transitions_total",
		Help: "Admin rental transitions by target status",
	}, []string{"status"})
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driveeasy_validation_failures_total",
		Help: "Rejected form fields",
	}, []string{"form", "field"})
	RentalRevenueCents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driveeasy_rental_revenue_cents_total",
		Help: "Sum of total prices of submitted rentals, in cents",
	})
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driveeasy_emails_sent_total",
		Help: "Outgoing emails by kind and result",
	}, []string{"kind", "result"})
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driveeasy_events_published_total",
		Help: "Domain events written to Kafka",
	}, []string{"type"})
	EventPublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driveeasy_event_publish_errors_total",
		Help: "Failed Kafka writes",
	}, []string{"type"})
	GRPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driveeasy_grpc_requests_total",
		Help: "Handled gRPC calls by method and status code",
	}, []string{"method", "code"})
	GRPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "driveeasy_grpc_request_duration_seconds",
		Help:    "gRPC handler latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	IdempotentReplays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driveeasy_idempotent_replays_total",
		Help: "Responses served from the idempotency cache",
	}, []string{"method"})
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driveeasy_job_runs_total",
		Help: "Scheduled job executions by result",
	}, []string{"job", "result"})
	ExpiredActiveRentals = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "driveeasy_expired_active_rentals",
		Help: "Active rentals past their end time at the last report",
	})
)
