package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	checksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lookout_checks_total",
		Help: "Total number of completed monitor checks by result",
	}, []string{"result"})
	checkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lookout_check_duration_seconds",
		Help:    "Wall-clock duration of monitor probes",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lookout_notifications_total",
		Help: "Total number of notification attempts by channel and result",
	}, []string{"channel", "result"})
	scheduledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lookout_scheduler_enqueued_total",
		Help: "Total number of check tasks enqueued by the scheduler",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(checksTotal, checkDuration, notificationsTotal, scheduledTotal)
}

// IncCheck counts one completed check with its result label.
func IncCheck(result string) { checksTotal.WithLabelValues(result).Inc() }

// ObserveCheckDuration records how long one probe took.
func ObserveCheckDuration(seconds float64) { checkDuration.Observe(seconds) }

// IncNotification counts one notification attempt.
func IncNotification(channel, result string) {
	notificationsTotal.WithLabelValues(channel, result).Inc()
}

// IncScheduled counts check tasks handed to the work queue.
func IncScheduled() { scheduledTotal.Inc() }
