package service

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"eventlink/internal/core/clock"
	"eventlink/internal/domain"
	"eventlink/pkg/utils"
)

const (
	maxTitleLen    = 200
	maxLocationLen = 255
	maxImageURLLen = 500
)

// EventInput 创建活动的入参；Price 必填（0 为免费），Capacity 为 nil 表示不限量
type EventInput struct {
	Title       string
	Description string
	Location    string
	DateTime    time.Time
	Price       *decimal.Decimal
	Capacity    *int
	Category    string
	ImageURL    string
}

// EventPatch 只应用非 nil 字段；Unlimited=true 时清空容量上限
type EventPatch struct {
	Title       *string
	Description *string
	Location    *string
	DateTime    *time.Time
	Price       *decimal.Decimal
	Capacity    *int
	Unlimited   bool
	Category    *string
	ImageURL    *string
	Status      *domain.EventStatus
}

// EventDetail 活动详情页：活动 + 已售 + 剩余 + 当前用户是否已购
type EventDetail struct {
	Event         domain.Event `json:"event"`
	OrganizerName string       `json:"organizerName"`
	Issued        int          `json:"issued"`
	Remaining     *int         `json:"remaining"`
	HasTicket     bool         `json:"hasTicket"`
	Bookable      bool         `json:"bookable"`
}

type Catalog struct {
	tx         TxRunner
	events     EventStore
	tickets    TicketStore
	categories CategoryStore
	cache      EventCache
	clock      clock.Clock
	log        *zap.Logger
	metrics    *Metrics
}

type CatalogOption func(*Catalog)

// WithEventCache GetEvent 走读穿缓存
func WithEventCache(c EventCache) CatalogOption {
	return func(s *Catalog) { s.cache = c }
}

func WithCatalogClock(c clock.Clock) CatalogOption {
	return func(s *Catalog) { s.clock = c }
}

func WithCatalogMetrics(m *Metrics) CatalogOption {
	return func(s *Catalog) { s.metrics = m }
}

func NewCatalog(tx TxRunner, events EventStore, tickets TicketStore, categories CategoryStore, l *zap.Logger, opts ...CatalogOption) *Catalog {
	if l == nil {
		l = zap.NewNop()
	}
	s := &Catalog{
		tx:         tx,
		events:     events,
		tickets:    tickets,
		categories: categories,
		clock:      clock.NewSystem(),
		log:        l,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func validateEventFields(title, location string, dt time.Time, price *decimal.Decimal, capacity *int, imageURL string) error {
	switch {
	case strings.TrimSpace(title) == "":
		return domain.Invalid("title", "required")
	case len(title) > maxTitleLen:
		return domain.Invalid("title", "too long")
	case strings.TrimSpace(location) == "":
		return domain.Invalid("location", "required")
	case len(location) > maxLocationLen:
		return domain.Invalid("location", "too long")
	case dt.IsZero():
		return domain.Invalid("dateTime", "required")
	case price == nil:
		return domain.Invalid("price", "required")
	case price.IsNegative():
		return domain.Invalid("price", "must not be negative")
	case capacity != nil && *capacity < 0:
		return domain.Invalid("capacity", "must not be negative")
	case len(imageURL) > maxImageURLLen:
		return domain.Invalid("imageUrl", "too long")
	}
	return nil
}

func (s *Catalog) CreateEvent(ctx context.Context, p domain.Principal, in EventInput) (domain.Event, error) {
	if !p.IsOrganizer() {
		return domain.Event{}, domain.ErrUnauthorized
	}
	imageURL := strings.TrimSpace(in.ImageURL)
	if err := validateEventFields(in.Title, in.Location, in.DateTime, in.Price, in.Capacity, imageURL); err != nil {
		return domain.Event{}, err
	}
	var capacity *int
	if in.Capacity != nil {
		c := *in.Capacity
		capacity = &c
	}
	now := s.clock.Now()
	e := domain.Event{
		ID:          utils.NewID(),
		OrganizerID: p.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Location:    strings.TrimSpace(in.Location),
		DateTime:    in.DateTime.UTC(),
		Price:       *in.Price,
		Capacity:    capacity,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    imageURL,
		Status:      domain.EventStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Create(ctx, &e); err != nil {
		return domain.Event{}, err
	}
	s.log.Info("event created",
		zap.String("event_id", e.ID),
		zap.String("organizer_id", p.UserID))
	return e, nil
}

// OwnedEvent 非 owner 与不存在返回同一个错误，不泄露活动是否存在
func (s *Catalog) OwnedEvent(ctx context.Context, p domain.Principal, eventID string) (domain.Event, error) {
	if !p.IsOrganizer() {
		return domain.Event{}, domain.ErrNotFoundOrUnauthorized
	}
	e, err := s.events.Get(ctx, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Event{}, domain.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return domain.Event{}, err
	}
	if e.OrganizerID != p.UserID {
		return domain.Event{}, domain.ErrNotFoundOrUnauthorized
	}
	return e, nil
}

func (s *Catalog) UpdateEvent(ctx context.Context, p domain.Principal, eventID string, patch EventPatch) (domain.Event, error) {
	if !p.IsOrganizer() {
		return domain.Event{}, domain.ErrNotFoundOrUnauthorized
	}
	var out domain.Event
	s.forget(ctx, eventID)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		e, err := s.events.GetForUpdate(ctx, eventID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFoundOrUnauthorized
		}
		if err != nil {
			return err
		}
		if e.OrganizerID != p.UserID {
			return domain.ErrNotFoundOrUnauthorized
		}

		if patch.Title != nil {
			e.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			e.Description = *patch.Description
		}
		if patch.Location != nil {
			e.Location = strings.TrimSpace(*patch.Location)
		}
		if patch.DateTime != nil {
			e.DateTime = patch.DateTime.UTC()
		}
		if patch.Price != nil {
			e.Price = *patch.Price
		}
		if patch.Category != nil {
			e.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.ImageURL != nil {
			e.ImageURL = strings.TrimSpace(*patch.ImageURL)
		}
		switch {
		case patch.Unlimited:
			e.Capacity = nil
		case patch.Capacity != nil:
			c := *patch.Capacity
			e.Capacity = &c
		}
		if err := validateEventFields(e.Title, e.Location, e.DateTime, &e.Price, e.Capacity, e.ImageURL); err != nil {
			return err
		}
		if patch.Status != nil {
			if err := domain.CanTransition(e.Status, *patch.Status); err != nil {
				return err
			}
			e.Status = *patch.Status
		}

		// 容量不能低于已售数量；行锁保证期间没有新出票
		if patch.Capacity != nil && !patch.Unlimited {
			issued, err := s.tickets.SumQuantity(ctx, e.ID)
			if err != nil {
				return err
			}
			if issued > *e.Capacity {
				return domain.ErrCapacityViolation
			}
		}

		e.UpdatedAt = s.clock.Now()
		if err := s.events.Update(ctx, &e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	s.forget(ctx, eventID)
	s.log.Info("event updated",
		zap.String("event_id", out.ID),
		zap.String("status", string(out.Status)))
	return out, nil
}

// SetStatus 生命周期迁移（cancel / complete）
func (s *Catalog) SetStatus(ctx context.Context, p domain.Principal, eventID string, status domain.EventStatus) (domain.Event, error) {
	return s.UpdateEvent(ctx, p, eventID, EventPatch{Status: &status})
}

// DeleteEvent 先逐张删除票再删除活动，同一事务；返回删除的票数
func (s *Catalog) DeleteEvent(ctx context.Context, p domain.Principal, eventID string) (int64, error) {
	if !p.IsOrganizer() {
		return 0, domain.ErrNotFoundOrUnauthorized
	}
	var removed int64
	s.forget(ctx, eventID)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		e, err := s.events.GetForUpdate(ctx, eventID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFoundOrUnauthorized
		}
		if err != nil {
			return err
		}
		if e.OrganizerID != p.UserID {
			return domain.ErrNotFoundOrUnauthorized
		}
		n, err := s.tickets.DeleteByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if err := s.events.Delete(ctx, eventID); err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.forget(ctx, eventID)
	if s.metrics != nil {
		s.metrics.EventsDeleted.Inc()
	}
	s.log.Info("event deleted",
		zap.String("event_id", eventID),
		zap.Int64("tickets_removed", removed))
	return removed, nil
}

// ListEvents 惰性序列，每次 range 都会重新查询
func (s *Catalog) ListEvents(ctx context.Context, f domain.EventFilter) iter.Seq2[domain.EventView, error] {
	if f.Status == "" {
		f.Status = domain.EventStatusActive
	}
	if !f.Status.Valid() {
		return func(yield func(domain.EventView, error) bool) {
			yield(domain.EventView{}, domain.Invalid("status", "unknown status "+string(f.Status)))
		}
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit < 0 {
		f.Limit = 0
	}
	f.Search = strings.TrimSpace(f.Search)
	f.Category = strings.TrimSpace(f.Category)
	return s.events.Iterate(ctx, f)
}

func (s *Catalog) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	v, err := s.eventView(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	return v.Event, nil
}

func (s *Catalog) eventView(ctx context.Context, id string) (domain.EventView, error) {
	if s.cache == nil {
		return s.events.GetView(ctx, id)
	}
	v, err := s.cache.GetEvent(ctx, id, func(ctx context.Context) (*domain.EventView, error) {
		v, err := s.events.GetView(ctx, id)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
	if err != nil {
		return domain.EventView{}, err
	}
	if v == nil {
		return domain.EventView{}, domain.ErrNotFound
	}
	return *v, nil
}

// EventDetail p 可以为空 Principal（匿名浏览）
func (s *Catalog) EventDetail(ctx context.Context, p domain.Principal, id string) (EventDetail, error) {
	v, err := s.eventView(ctx, id)
	if err != nil {
		return EventDetail{}, err
	}
	e := v.Event
	issued, err := s.tickets.SumQuantity(ctx, id)
	if err != nil {
		return EventDetail{}, err
	}
	d := EventDetail{Event: e, OrganizerName: v.OrganizerName, Issued: issued, Bookable: e.Bookable()}
	if n, ok := e.Remaining(issued); ok {
		d.Remaining = &n
		d.Bookable = d.Bookable && n > 0
	}
	if p.UserID != "" {
		if d.HasTicket, err = s.tickets.HasTicket(ctx, p.UserID, id); err != nil {
			return EventDetail{}, err
		}
	}
	return d, nil
}

func (s *Catalog) OrganizerEvents(ctx context.Context, p domain.Principal) ([]domain.Event, error) {
	if !p.IsOrganizer() {
		return nil, domain.ErrUnauthorized
	}
	return s.events.ListByOrganizer(ctx, p.UserID)
}

func (s *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// SeedCategories 幂等，启动时调用
func (s *Catalog) SeedCategories(ctx context.Context) error {
	return s.categories.Seed(ctx, domain.DefaultCategories)
}

// forget 在事务前后各删一次：事务前删掉已有的缓存，事务后删掉期间回源写回的旧行。
// 提交后才完成的回源仍可能写回旧行，最长保留一个 ttl
func (s *Catalog) forget(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.ForgetEvent(ctx, id)
	}
}
