package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "properly"
)

var (
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "auth", "events_total"),
		Help: "Authentication events by kind and outcome",
	}, []string{"event", "outcome"})
	ListingsModerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "listing", "moderated_total"),
		Help: "Listings passed through moderation, by resulting action",
	}, []string{"action"})
	CheckoutSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "billing", "checkout_sessions_total"),
		Help: "Checkout sessions created, by plan and billing cycle",
	}, []string{"plan", "cycle"})
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "billing", "webhook_events_total"),
		Help: "Payment provider webhook events received, by type and outcome",
	}, []string{"type", "outcome"})
	SubscriptionsSwept = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "billing", "swept_total"),
		Help: "Rows changed by the subscription sweeper",
	}, []string{"kind"})
	MailDelivery = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "mail", "delivery_total"),
		Help: "Mail jobs processed by kind and outcome",
	}, []string{"kind", "outcome"})
	MailDeliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "mail", "delivery_duration_seconds"),
		Help:    "Duration of mail delivery in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"kind"})
	MailConsumeMessagingLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "mail", "consume_messaging_latency_seconds"),
		Help:    "Messaging latency of mail jobs in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{})
)
