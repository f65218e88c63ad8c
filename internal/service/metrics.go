package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 业务计数器；reg 为 nil 时只创建不注册（测试用）
type Metrics struct {
	TicketsIssued prometheus.Counter
	Rejections    *prometheus.CounterVec
	Payouts       prometheus.Counter
	EventsDeleted prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TicketsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "eventlink_tickets_issued_total",
			Help: "Ticket quantity issued",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "eventlink_ticket_rejections_total",
			Help: "Failed issue_ticket calls by reason",
		}, []string{"reason"}),
		Payouts: f.NewCounter(prometheus.CounterOpts{
			Name: "eventlink_payout_requests_total",
			Help: "Payout requests recorded",
		}),
		EventsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "eventlink_events_deleted_total",
			Help: "Events removed together with their tickets",
		}),
	}
}
