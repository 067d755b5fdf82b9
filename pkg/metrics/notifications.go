package metrics

import "github.com/prometheus/client_golang/prometheus"

// NotificationMetrics counts notification dispatch outcomes.
type NotificationMetrics struct {
	dispatched *prometheus.CounterVec
	messages   *prometheus.CounterVec
}

// NewNotificationMetrics registers the notification metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tatame_notifications_dispatched_total",
		Help: "Notification dispatch attempts by channel and resulting status.",
	}, []string{"channel", "status"})
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tatame_push_messages_total",
		Help: "Individual push messages by outcome (sent, failed, skipped).",
	}, []string{"outcome"})
	reg.MustRegister(dispatched, messages)
	return &NotificationMetrics{dispatched: dispatched, messages: messages}
}

// IncDispatch records the final status of one dispatch attempt.
func (n *NotificationMetrics) IncDispatch(channel, status string) {
	if n == nil || n.dispatched == nil {
		return
	}
	n.dispatched.WithLabelValues(normalizeLabel(channel), normalizeLabel(status)).Inc()
}

// AddMessages records count push messages with the given outcome.
func (n *NotificationMetrics) AddMessages(outcome string, count int) {
	if n == nil || n.messages == nil || count <= 0 {
		return
	}
	n.messages.WithLabelValues(normalizeLabel(outcome)).Add(float64(count))
}
