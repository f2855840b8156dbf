package services

import "github.com/prometheus/client_golang/prometheus"

const (
	SyncCreated = "created"
	SyncUpdated = "updated"
	SyncDeleted = "deleted"
	SyncNone    = "none"
)

// Metrics counts ledger synchronisation outcomes and notification sends.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ledgerSync    *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ledgerSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oficina",
			Name:      "ledger_sync_total",
			Help:      "Work order revenue synchronisations by action.",
		}, []string{"action"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "oficina",
			Name:      "notifications_total",
			Help:      "Order notifications by channel and status.",
		}, []string{"channel", "status"}),
	}
	reg.MustRegister(m.ledgerSync, m.notifications)
	return m
}

func (m *Metrics) LedgerSync(action string) {
	if m == nil {
		return
	}
	m.ledgerSync.WithLabelValues(action).Inc()
}

func (m *Metrics) Notification(channel, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, status).Inc()
}
