package service

import (
	"context"
	"errors"
	"iter"
	"strings"

	"go.uber.org/zap"

	"eventlink/internal/core/clock"
	"eventlink/internal/domain"
	"eventlink/pkg/utils"
)

const (
	defaultQRAttempts  = 5
	defaultMaxQuantity = 10
	maxIdempotencyKey  = 64
)

// IssueInput 一次购票请求；IdempotencyKey 可选，同一用户重复提交返回首次出的票
type IssueInput struct {
	EventID        string
	Quantity       int
	Payment        domain.PaymentDetails
	IdempotencyKey string
}

type Ledger struct {
	tx       TxRunner
	events   EventStore
	tickets  TicketStore
	gateway  PaymentGateway
	clock    clock.Clock
	log      *zap.Logger
	metrics  *Metrics
	segment  func() (string, error)
	attempts int
	maxQty   int
}

type LedgerOption func(*Ledger)

// WithQRSegmentSource 替换随机段生成器（测试碰撞重试）
func WithQRSegmentSource(f func() (string, error)) LedgerOption {
	return func(l *Ledger) { l.segment = f }
}

func WithQRAttempts(n int) LedgerOption {
	return func(l *Ledger) {
		if n > 0 {
			l.attempts = n
		}
	}
}

// WithMaxQuantity 单次购票数量上限
func WithMaxQuantity(n int) LedgerOption {
	return func(l *Ledger) {
		if n > 0 {
			l.maxQty = n
		}
	}
}

func WithLedgerClock(c clock.Clock) LedgerOption {
	return func(l *Ledger) { l.clock = c }
}

func WithLedgerMetrics(m *Metrics) LedgerOption {
	return func(l *Ledger) { l.metrics = m }
}

func NewLedger(tx TxRunner, events EventStore, tickets TicketStore, gateway PaymentGateway, lg *zap.Logger, opts ...LedgerOption) *Ledger {
	if lg == nil {
		lg = zap.NewNop()
	}
	l := &Ledger{
		tx:       tx,
		events:   events,
		tickets:  tickets,
		gateway:  gateway,
		clock:    clock.NewSystem(),
		log:      lg,
		segment:  domain.NewQRSegment,
		attempts: defaultQRAttempts,
		maxQty:   defaultMaxQuantity,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Ledger) validate(p domain.Principal, in *IssueInput) error {
	if p.UserID == "" || p.Role == domain.RolePending || !p.Role.Valid() {
		return domain.ErrUnauthorized
	}
	if strings.TrimSpace(in.EventID) == "" {
		return domain.Invalid("eventId", "required")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 || in.Quantity > l.maxQty {
		return domain.Invalid("quantity", "out of range")
	}
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	if len(in.IdempotencyKey) > maxIdempotencyKey {
		return domain.Invalid("idempotencyKey", "too long")
	}
	return in.Payment.Validate()
}

// IssueTicket 锁活动行 -> 状态 -> 容量 -> 支付 -> QR -> 写入，全部在同一事务内；
// 同一活动的并发出票在行锁上排队，不会超卖
func (l *Ledger) IssueTicket(ctx context.Context, p domain.Principal, in IssueInput) (domain.Ticket, error) {
	if err := l.validate(p, &in); err != nil {
		l.reject(err)
		return domain.Ticket{}, err
	}

	var out domain.Ticket
	replayed := false
	err := l.tx.WithTx(ctx, func(ctx context.Context) error {
		e, err := l.events.GetForUpdate(ctx, in.EventID)
		if err != nil {
			return err
		}

		if in.IdempotencyKey != "" {
			prev, err := l.tickets.FindByIdempotencyKey(ctx, p.UserID, in.IdempotencyKey)
			if err != nil {
				return err
			}
			if prev != nil {
				if prev.EventID != e.ID || prev.Quantity != in.Quantity {
					return domain.ErrIdempotencyConflict
				}
				out, replayed = *prev, true
				return nil
			}
		}

		if !e.Bookable() {
			return domain.ErrEventNotBookable
		}
		if e.Capacity != nil {
			issued, err := l.tickets.SumQuantity(ctx, e.ID)
			if err != nil {
				return err
			}
			if !e.Admits(issued, in.Quantity) {
				return domain.ErrCapacityExceeded
			}
		}

		amount := domain.Gross(e.Price, in.Quantity)
		if err := l.gateway.Authorize(ctx, in.Payment, amount); err != nil {
			l.log.Warn("payment rejected",
				zap.String("event_id", e.ID),
				zap.String("user_id", p.UserID),
				zap.Error(err))
			return domain.ErrPaymentRejected
		}

		code, err := l.uniqueQRCode(ctx, p.UserID, e.ID)
		if err != nil {
			return err
		}
		t := domain.Ticket{
			ID:           utils.NewID(),
			UserID:       p.UserID,
			EventID:      e.ID,
			PurchaseDate: l.clock.Now(),
			Quantity:     in.Quantity,
			QRCode:       code,
		}
		if in.IdempotencyKey != "" {
			key := in.IdempotencyKey
			t.IdempotencyKey = &key
		}
		if err := l.tickets.Create(ctx, &t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		l.reject(err)
		return domain.Ticket{}, err
	}

	if replayed {
		l.log.Info("ticket replayed",
			zap.String("ticket_id", out.ID),
			zap.String("idempotency_key", in.IdempotencyKey))
		return out, nil
	}
	if l.metrics != nil {
		l.metrics.TicketsIssued.Add(float64(out.Quantity))
	}
	l.log.Info("ticket issued",
		zap.String("ticket_id", out.ID),
		zap.String("event_id", out.EventID),
		zap.String("user_id", out.UserID),
		zap.Int("quantity", out.Quantity))
	return out, nil
}

// uniqueQRCode 先查重再返回；写入时唯一索引兜底
func (l *Ledger) uniqueQRCode(ctx context.Context, userID, eventID string) (string, error) {
	for i := 0; i < l.attempts; i++ {
		seg, err := l.segment()
		if err != nil {
			return "", err
		}
		code := domain.FormatQRCode(seg, userID, eventID)
		taken, err := l.tickets.QRCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
		l.log.Warn("qr code collision", zap.Int("attempt", i+1))
	}
	return "", domain.ErrDuplicateQRCode
}

func (l *Ledger) reject(err error) {
	if l.metrics == nil {
		return
	}
	l.metrics.Rejections.WithLabelValues(rejectReason(err)).Inc()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEventNotBookable):
		return "not_bookable"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity"
	case errors.Is(err, domain.ErrPaymentRejected):
		return "payment"
	case errors.Is(err, domain.ErrIdempotencyConflict):
		return "idempotency"
	}
	return "internal"
}

// TicketsForUser 按活动时间倒序的惰性序列
func (l *Ledger) TicketsForUser(ctx context.Context, userID string) iter.Seq2[domain.TicketView, error] {
	return l.tickets.IterateForUser(ctx, userID)
}

func (l *Ledger) TicketsForEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	return l.tickets.ListByEvent(ctx, eventID)
}

func (l *Ledger) IssuedQuantity(ctx context.Context, eventID string) (int, error) {
	return l.tickets.SumQuantity(ctx, eventID)
}
