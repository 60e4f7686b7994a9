package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sync_http_requests_total",
			Help: "Total number of HTTP requests processed by the realtime gateway.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_sync_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	pushEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sync_push_events_total",
			Help: "Total number of change events dispatched by the push channel.",
		},
		[]string{"scope", "type"},
	)
	reloadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sync_conversation_reloads_total",
			Help: "Total number of coarse conversation-list reloads.",
		},
	)
	statusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sync_status_transitions_total",
			Help: "Total number of message status transition calls issued.",
		},
		[]string{"target"},
	)
	droppedFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sync_dropped_failures_total",
			Help: "Total number of best-effort operations that failed and were dropped.",
		},
		[]string{"op"},
	)
	wsActiveSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chat_sync_ws_active_subscriptions",
			Help: "Number of active gateway websocket subscriptions.",
		},
		[]string{"scope"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sync_ws_events_total",
			Help: "Total number of gateway websocket lifecycle events.",
		},
		[]string{"scope", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sync_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		pushEventsTotal,
		reloadsTotal,
		statusTransitionsTotal,
		droppedFailuresTotal,
		wsActiveSubscriptions,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncPushEvent(scope, eventType string) {
	pushEventsTotal.WithLabelValues(scope, eventType).Inc()
}

func IncReload() {
	reloadsTotal.Inc()
}

func IncStatusTransition(target string) {
	statusTransitionsTotal.WithLabelValues(target).Inc()
}

func IncDroppedFailure(op string) {
	droppedFailuresTotal.WithLabelValues(op).Inc()
}

func IncWSActive(scope string) {
	wsActiveSubscriptions.WithLabelValues(scope).Inc()
}

func DecWSActive(scope string) {
	wsActiveSubscriptions.WithLabelValues(scope).Dec()
}

func IncWSEvent(scope, event string) {
	wsEventsTotal.WithLabelValues(scope, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
