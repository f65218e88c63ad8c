package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"eventlink/internal/core/clock"
	"eventlink/internal/domain"
	"eventlink/pkg/utils"
)

// Revenue 单个活动的收入；Fees = Gross - Net
type Revenue struct {
	EventID       string             `json:"eventId"`
	Title         string             `json:"title"`
	DateTime      time.Time          `json:"dateTime"`
	Status        domain.EventStatus `json:"status"`
	TicketCount   int64              `json:"ticketCount"`
	TotalQuantity int64              `json:"totalQuantity"`
	Gross         decimal.Decimal    `json:"gross"`
	Net           decimal.Decimal    `json:"net"`
	Fees          decimal.Decimal    `json:"fees"`
}

// Summary 总额只由 PerEvent 累加得出
type Summary struct {
	PerEvent   []Revenue       `json:"perEvent"`
	TotalGross decimal.Decimal `json:"totalGross"`
	TotalNet   decimal.Decimal `json:"totalNet"`
	TotalFees  decimal.Decimal `json:"totalFees"`
}

type PayoutReceipt struct {
	ID          string              `json:"id"`
	Amount      decimal.Decimal     `json:"amount"`
	Destination string              `json:"destination"`
	Status      domain.PayoutStatus `json:"status"`
	RequestedAt time.Time           `json:"requestedAt"`
	Message     string              `json:"message"`
}

type Settlement struct {
	events  EventStore
	tickets TicketStore
	payouts PayoutStore
	clock   clock.Clock
	log     *zap.Logger
	metrics *Metrics
}

type SettlementOption func(*Settlement)

func WithSettlementClock(c clock.Clock) SettlementOption {
	return func(s *Settlement) { s.clock = c }
}

func WithSettlementMetrics(m *Metrics) SettlementOption {
	return func(s *Settlement) { s.metrics = m }
}

func NewSettlement(events EventStore, tickets TicketStore, payouts PayoutStore, l *zap.Logger, opts ...SettlementOption) *Settlement {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Settlement{
		events:  events,
		tickets: tickets,
		payouts: payouts,
		clock:   clock.NewSystem(),
		log:     l,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func revenueOf(e domain.Event, sales domain.EventSales) Revenue {
	gross := domain.Gross(e.Price, int(sales.TotalQuantity))
	net := domain.Net(gross)
	return Revenue{
		EventID:       e.ID,
		Title:         e.Title,
		DateTime:      e.DateTime,
		Status:        e.Status,
		TicketCount:   sales.TicketCount,
		TotalQuantity: sales.TotalQuantity,
		Gross:         gross,
		Net:           net,
		Fees:          gross.Sub(net),
	}
}

func (s *Settlement) EventRevenue(ctx context.Context, eventID string) (Revenue, error) {
	e, err := s.events.Get(ctx, eventID)
	if err != nil {
		return Revenue{}, err
	}
	sales, err := s.tickets.Sales(ctx, []string{e.ID})
	if err != nil {
		return Revenue{}, err
	}
	return revenueOf(e, sales[e.ID]), nil
}

// OwnedEventRevenue 只允许活动 owner 查看
func (s *Settlement) OwnedEventRevenue(ctx context.Context, p domain.Principal, eventID string) (Revenue, error) {
	if !p.IsOrganizer() {
		return Revenue{}, domain.ErrNotFoundOrUnauthorized
	}
	e, err := s.events.Get(ctx, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		return Revenue{}, domain.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return Revenue{}, err
	}
	if e.OrganizerID != p.UserID {
		return Revenue{}, domain.ErrNotFoundOrUnauthorized
	}
	sales, err := s.tickets.Sales(ctx, []string{e.ID})
	if err != nil {
		return Revenue{}, err
	}
	return revenueOf(e, sales[e.ID]), nil
}

func (s *Settlement) OrganizerSummary(ctx context.Context, p domain.Principal) (Summary, error) {
	if !p.IsOrganizer() {
		return Summary{}, domain.ErrUnauthorized
	}
	events, err := s.events.ListByOrganizer(ctx, p.UserID)
	if err != nil {
		return Summary{}, err
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	sales, err := s.tickets.Sales(ctx, ids)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		PerEvent:   make([]Revenue, 0, len(events)),
		TotalGross: decimal.Zero,
		TotalNet:   decimal.Zero,
	}
	for _, e := range events {
		r := revenueOf(e, sales[e.ID])
		sum.PerEvent = append(sum.PerEvent, r)
		sum.TotalGross = sum.TotalGross.Add(r.Gross)
		sum.TotalNet = sum.TotalNet.Add(r.Net)
	}
	sum.TotalFees = sum.TotalGross.Sub(sum.TotalNet)
	return sum, nil
}

// RequestPayout 只落一条申请记录；不校验可提现余额
func (s *Settlement) RequestPayout(ctx context.Context, p domain.Principal, amount decimal.Decimal, destination string) (PayoutReceipt, error) {
	if !p.IsOrganizer() {
		return PayoutReceipt{}, domain.ErrUnauthorized
	}
	if !amount.IsPositive() {
		return PayoutReceipt{}, domain.ErrInvalidAmount
	}
	if amount.LessThan(domain.MinimumPayout) {
		return PayoutReceipt{}, domain.ErrBelowMinimum
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return PayoutReceipt{}, domain.Invalid("destination", "required")
	}

	req := domain.PayoutRequest{
		ID:          utils.NewID(),
		OrganizerID: p.UserID,
		Amount:      amount,
		Destination: destination,
		Status:      domain.PayoutStatusRequested,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.payouts.Create(ctx, &req); err != nil {
		return PayoutReceipt{}, err
	}
	if s.metrics != nil {
		s.metrics.Payouts.Inc()
	}
	s.log.Info("payout requested",
		zap.String("payout_id", req.ID),
		zap.String("organizer_id", p.UserID),
		zap.String("amount", amount.StringFixed(2)))

	return PayoutReceipt{
		ID:          req.ID,
		Amount:      req.Amount,
		Destination: req.Destination,
		Status:      req.Status,
		RequestedAt: req.CreatedAt,
		Message: fmt.Sprintf("Payout request for $%s to %s submitted. Funds will be transferred within 3-5 business days.",
			amount.StringFixed(2), destination),
	}, nil
}

func (s *Settlement) Payouts(ctx context.Context, p domain.Principal) ([]domain.PayoutRequest, error) {
	if !p.IsOrganizer() {
		return nil, domain.ErrUnauthorized
	}
	return s.payouts.ListByOrganizer(ctx, p.UserID)
}
