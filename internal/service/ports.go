package service

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"eventlink/internal/domain"
)

// TxRunner 在同一个事务里执行 fn；事务通过 ctx 传递给各 store
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventStore interface {
	Create(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, id string) (domain.Event, error)
	// GetView 带主办方名称
	GetView(ctx context.Context, id string) (domain.EventView, error)
	// GetForUpdate 锁住活动行直到事务结束；同一活动的出票在这里串行化
	GetForUpdate(ctx context.Context, id string) (domain.Event, error)
	Update(ctx context.Context, e *domain.Event) error
	Delete(ctx context.Context, id string) error
	Iterate(ctx context.Context, f domain.EventFilter) iter.Seq2[domain.EventView, error]
	ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
	Count(ctx context.Context) (int64, error)
}

type TicketStore interface {
	Create(ctx context.Context, t *domain.Ticket) error
	SumQuantity(ctx context.Context, eventID string) (int, error)
	QRCodeExists(ctx context.Context, code string) (bool, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Ticket, error)
	HasTicket(ctx context.Context, userID, eventID string) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error)
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
	IterateForUser(ctx context.Context, userID string) iter.Seq2[domain.TicketView, error]
	Sales(ctx context.Context, eventIDs []string) (map[string]domain.EventSales, error)
	UserStats(ctx context.Context, userID string) (domain.UserStats, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]domain.Category, error)
	Seed(ctx context.Context, cats []domain.Category) error
}

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateRoleFromPending 只在当前角色为 pending 时生效
	UpdateRoleFromPending(ctx context.Context, id string, role domain.Role) (bool, error)
	UpdatePaymentMethod(ctx context.Context, id, masked, lastFour string) error
}

type PayoutStore interface {
	Create(ctx context.Context, p *domain.PayoutRequest) error
	ListByOrganizer(ctx context.Context, organizerID string) ([]domain.PayoutRequest, error)
}

// EventCache 活动详情的读穿缓存，活动变更后失效
type EventCache interface {
	GetEvent(ctx context.Context, id string, load func(ctx context.Context) (*domain.EventView, error)) (*domain.EventView, error)
	ForgetEvent(ctx context.Context, id string)
}

// PaymentGateway 外部支付方，只作为出票前的闸门
type PaymentGateway interface {
	Authorize(ctx context.Context, details domain.PaymentDetails, amount decimal.Decimal) error
}
