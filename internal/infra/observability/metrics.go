package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the loyalty API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can serve it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	visitsTotal     prometheus.Counter
	redemptionsTotal prometheus.Counter
	goalReachedTotal prometheus.Counter
	notifications   *prometheus.CounterVec
}

// NotifSnapshot is the counter snapshot served by GET /api/admin/metrics.
type NotifSnapshot struct {
	VisitsRegistered int64 `json:"visits_registered"`
	Redemptions      int64 `json:"redemptions"`
	GoalReached      int64 `json:"goal_reached"`
	EmailSent        int64 `json:"email_sent"`
	EmailFailed      int64 `json:"email_failed"`
	EmailSkipped     int64 `json:"email_skipped"`
	WhatsAppLinks    int64 `json:"whatsapp_links"`
	WhatsAppSkipped  int64 `json:"whatsapp_skipped"`
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fidelidade_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		visitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fidelidade_visits_registered_total",
			Help: "Total visits recorded.",
		}),
		redemptionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fidelidade_redemptions_total",
			Help: "Total gift redemptions.",
		}),
		goalReachedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "fidelidade_goal_reached_total",
			Help: "Visits whose derived count reached the store goal.",
		}),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fidelidade_notifications_total",
				Help: "Notification dispatch attempts by channel and status.",
			},
			[]string{"channel", "status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrVisit counts one recorded visit; eligible marks goal-reached visits.
func (m *Metrics) IncrVisit(eligible bool) {
	m.visitsTotal.Inc()
	if eligible {
		m.goalReachedTotal.Inc()
	}
}

// IncrRedemption counts one successful redemption.
func (m *Metrics) IncrRedemption() {
	m.redemptionsTotal.Inc()
}

// IncrNotification counts a dispatch attempt.
// status is one of "sent", "failed", "skipped".
func (m *Metrics) IncrNotification(channel, status string) {
	m.notifications.WithLabelValues(channel, status).Inc()
}

// Snapshot returns the cumulative counters for the admin metrics endpoint.
func (m *Metrics) Snapshot() NotifSnapshot {
	return NotifSnapshot{
		VisitsRegistered: counterValue(m.visitsTotal),
		Redemptions:      counterValue(m.redemptionsTotal),
		GoalReached:      counterValue(m.goalReachedTotal),
		EmailSent:        vecValue(m.notifications, "email", "sent"),
		EmailFailed:      vecValue(m.notifications, "email", "failed"),
		EmailSkipped:     vecValue(m.notifications, "email", "skipped"),
		WhatsAppLinks:    vecValue(m.notifications, "whatsapp", "sent"),
		WhatsAppSkipped:  vecValue(m.notifications, "whatsapp", "skipped"),
	}
}

func counterValue(c prometheus.Counter) int64 {
	msg := &dto.Metric{}
	if err := c.Write(msg); err != nil {
		return 0
	}
	if msg.Counter != nil && msg.Counter.Value != nil {
		return int64(*msg.Counter.Value)
	}
	return 0
}

func vecValue(cv *prometheus.CounterVec, labels ...string) int64 {
	counter, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	return counterValue(counter)
}
