// Package memory 进程内存储，实现与 gorm repo 相同的接口。
// 用于 db.driver=memory 的本地运行和测试；所有访问串行化，事务失败时整体回滚。
package memory

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"eventlink/internal/domain"
)

type txKey struct{}

type Store struct {
	mu sync.Mutex
	// undo 当前事务的回滚动作，按登记的逆序执行
	undo []func()

	users      map[string]domain.User
	categories []domain.Category
	events     map[string]domain.Event
	tickets    map[string]domain.Ticket
	qrCodes    map[string]string
	payouts    map[string]domain.PayoutRequest
}

func New() *Store {
	return &Store{
		users:   map[string]domain.User{},
		events:  map[string]domain.Event{},
		tickets: map[string]domain.Ticket{},
		qrCodes: map[string]string{},
		payouts: map[string]domain.PayoutRequest{},
	}
}

func inTx(ctx context.Context) bool { return ctx.Value(txKey{}) != nil }

// WithTx 整个事务期间持有锁，效果等同 serializable；fn 出错或 panic 时回滚
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = nil
	committed := false
	defer func() {
		if !committed {
			for i := len(s.undo) - 1; i >= 0; i-- {
				s.undo[i]()
			}
		}
		s.undo = nil
	}()
	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		return err
	}
	committed = true
	return nil
}

// onRollback 只在事务内登记；调用方已持锁
func (s *Store) onRollback(ctx context.Context, fn func()) {
	if inTx(ctx) {
		s.undo = append(s.undo, fn)
	}
}

// lock 事务内已持锁，事务外单条操作自己加锁
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Users 各个 store 视图共享同一份数据
func (s *Store) Users() *UserStore { return &UserStore{s} }
func (s *Store) Events() *EventStore { return &EventStore{s} }
func (s *Store) Tickets() *TicketStore { return &TicketStore{s} }
func (s *Store) Categories() *CategoryStore { return &CategoryStore{s} }
func (s *Store) Payouts() *PayoutStore { return &PayoutStore{s} }

type UserStore struct{ s *Store }

func (u *UserStore) Create(ctx context.Context, user *domain.User) error {
	defer u.s.lock(ctx)()
	for _, existing := range u.s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	u.s.users[user.ID] = *user
	u.s.onRollback(ctx, func() { delete(u.s.users, user.ID) })
	return nil
}

func (u *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	defer u.s.lock(ctx)()
	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (u *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer u.s.lock(ctx)()
	for _, user := range u.s.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, nil
}

func (u *UserStore) UpdateRoleFromPending(ctx context.Context, id string, role domain.Role) (bool, error) {
	defer u.s.lock(ctx)()
	user, ok := u.s.users[id]
	if !ok || user.Role != domain.RolePending {
		return false, nil
	}
	prev := user
	user.Role = role
	u.s.users[id] = user
	u.s.onRollback(ctx, func() { u.s.users[id] = prev })
	return true, nil
}

func (u *UserStore) UpdatePaymentMethod(ctx context.Context, id, masked, lastFour string) error {
	defer u.s.lock(ctx)()
	user, ok := u.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	prev := user
	user.PaymentMethod, user.CardLastFour = masked, lastFour
	u.s.users[id] = user
	u.s.onRollback(ctx, func() { u.s.users[id] = prev })
	return nil
}

type EventStore struct{ s *Store }

// cloneEvent 存取都复制 Capacity，调用方拿到的指针不能改到存储里的值
func cloneEvent(ev domain.Event) domain.Event {
	if ev.Capacity != nil {
		c := *ev.Capacity
		ev.Capacity = &c
	}
	return ev
}

func (e *EventStore) Create(ctx context.Context, ev *domain.Event) error {
	defer e.s.lock(ctx)()
	id := ev.ID
	e.s.events[id] = cloneEvent(*ev)
	e.s.onRollback(ctx, func() { delete(e.s.events, id) })
	return nil
}

func (e *EventStore) Get(ctx context.Context, id string) (domain.Event, error) {
	defer e.s.lock(ctx)()
	ev, ok := e.s.events[id]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	return cloneEvent(ev), nil
}

func (e *EventStore) GetForUpdate(ctx context.Context, id string) (domain.Event, error) {
	return e.Get(ctx, id)
}

func (e *EventStore) GetView(ctx context.Context, id string) (domain.EventView, error) {
	defer e.s.lock(ctx)()
	ev, ok := e.s.events[id]
	if !ok {
		return domain.EventView{}, domain.ErrNotFound
	}
	return e.view(ev), nil
}

// view 调用方已持锁
func (e *EventStore) view(ev domain.Event) domain.EventView {
	return domain.EventView{Event: cloneEvent(ev), OrganizerName: e.s.users[ev.OrganizerID].FullName}
}

func (e *EventStore) Update(ctx context.Context, ev *domain.Event) error {
	defer e.s.lock(ctx)()
	prev, ok := e.s.events[ev.ID]
	if !ok {
		return domain.ErrNotFound
	}
	e.s.events[ev.ID] = cloneEvent(*ev)
	e.s.onRollback(ctx, func() { e.s.events[prev.ID] = prev })
	return nil
}

func (e *EventStore) Delete(ctx context.Context, id string) error {
	defer e.s.lock(ctx)()
	prev, ok := e.s.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(e.s.events, id)
	e.s.onRollback(ctx, func() { e.s.events[id] = prev })
	return nil
}

func (e *EventStore) Count(ctx context.Context) (int64, error) {
	defer e.s.lock(ctx)()
	return int64(len(e.s.events)), nil
}

func (e *EventStore) Iterate(ctx context.Context, f domain.EventFilter) iter.Seq2[domain.EventView, error] {
	return func(yield func(domain.EventView, error) bool) {
		unlock := e.s.lock(ctx)
		var matched []domain.EventView
		for _, ev := range e.s.events {
			if matches(ev, f) {
				matched = append(matched, e.view(ev))
			}
		}
		unlock()

		slices.SortFunc(matched, func(a, b domain.EventView) int {
			if c := a.DateTime.Compare(b.DateTime); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		})
		if f.Offset > 0 {
			matched = matched[min(f.Offset, len(matched)):]
		}
		if f.Limit > 0 && len(matched) > f.Limit {
			matched = matched[:f.Limit]
		}
		for _, v := range matched {
			if !yield(v, nil) {
				return
			}
		}
	}
}

func matches(ev domain.Event, f domain.EventFilter) bool {
	if ev.Status != f.Status {
		return false
	}
	if f.Category != "" && ev.Category != f.Category {
		return false
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		return strings.Contains(strings.ToLower(ev.Title), s) ||
			strings.Contains(strings.ToLower(ev.Description), s) ||
			strings.Contains(strings.ToLower(ev.Location), s)
	}
	return true
}

func (e *EventStore) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	defer e.s.lock(ctx)()
	var out []domain.Event
	for _, ev := range e.s.events {
		if ev.OrganizerID == organizerID {
			out = append(out, cloneEvent(ev))
		}
	}
	slices.SortFunc(out, func(a, b domain.Event) int { return b.DateTime.Compare(a.DateTime) })
	return out, nil
}

type TicketStore struct{ s *Store }

func (t *TicketStore) Create(ctx context.Context, tk *domain.Ticket) error {
	defer t.s.lock(ctx)()
	if _, ok := t.s.qrCodes[tk.QRCode]; ok {
		return domain.ErrDuplicateQRCode
	}
	if tk.IdempotencyKey != nil {
		for _, existing := range t.s.tickets {
			if existing.IdempotencyKey != nil &&
				existing.UserID == tk.UserID && *existing.IdempotencyKey == *tk.IdempotencyKey {
				return domain.ErrIdempotencyConflict
			}
		}
	}
	id, code := tk.ID, tk.QRCode
	t.s.tickets[id] = *tk
	t.s.qrCodes[code] = id
	t.s.onRollback(ctx, func() {
		delete(t.s.tickets, id)
		delete(t.s.qrCodes, code)
	})
	return nil
}

func (t *TicketStore) SumQuantity(ctx context.Context, eventID string) (int, error) {
	defer t.s.lock(ctx)()
	total := 0
	for _, tk := range t.s.tickets {
		if tk.EventID == eventID {
			total += tk.Quantity
		}
	}
	return total, nil
}

func (t *TicketStore) QRCodeExists(ctx context.Context, code string) (bool, error) {
	defer t.s.lock(ctx)()
	_, ok := t.s.qrCodes[code]
	return ok, nil
}

func (t *TicketStore) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Ticket, error) {
	defer t.s.lock(ctx)()
	for _, tk := range t.s.tickets {
		if tk.UserID == userID && tk.IdempotencyKey != nil && *tk.IdempotencyKey == key {
			return &tk, nil
		}
	}
	return nil, nil
}

func (t *TicketStore) HasTicket(ctx context.Context, userID, eventID string) (bool, error) {
	defer t.s.lock(ctx)()
	for _, tk := range t.s.tickets {
		if tk.UserID == userID && tk.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (t *TicketStore) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	defer t.s.lock(ctx)()
	var out []domain.Ticket
	for _, tk := range t.s.tickets {
		if tk.EventID == eventID {
			out = append(out, tk)
		}
	}
	slices.SortFunc(out, func(a, b domain.Ticket) int { return a.PurchaseDate.Compare(b.PurchaseDate) })
	return out, nil
}

func (t *TicketStore) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	defer t.s.lock(ctx)()
	var n int64
	for id, tk := range t.s.tickets {
		if tk.EventID == eventID {
			delete(t.s.tickets, id)
			delete(t.s.qrCodes, tk.QRCode)
			t.s.onRollback(ctx, func() {
				t.s.tickets[id] = tk
				t.s.qrCodes[tk.QRCode] = id
			})
			n++
		}
	}
	return n, nil
}

func (t *TicketStore) IterateForUser(ctx context.Context, userID string) iter.Seq2[domain.TicketView, error] {
	return func(yield func(domain.TicketView, error) bool) {
		unlock := t.s.lock(ctx)
		var views []domain.TicketView
		for _, tk := range t.s.tickets {
			if tk.UserID != userID {
				continue
			}
			ev, ok := t.s.events[tk.EventID]
			if !ok {
				continue
			}
			views = append(views, domain.TicketView{
				Ticket:        tk,
				EventTitle:    ev.Title,
				EventDateTime: ev.DateTime,
				EventLocation: ev.Location,
				EventPrice:    ev.Price,
				EventStatus:   ev.Status,
				OrganizerName: t.s.users[ev.OrganizerID].FullName,
			})
		}
		unlock()

		slices.SortFunc(views, func(a, b domain.TicketView) int {
			if c := b.EventDateTime.Compare(a.EventDateTime); c != 0 {
				return c
			}
			return b.PurchaseDate.Compare(a.PurchaseDate)
		})
		for _, v := range views {
			if !yield(v, nil) {
				return
			}
		}
	}
}

func (t *TicketStore) Sales(ctx context.Context, eventIDs []string) (map[string]domain.EventSales, error) {
	defer t.s.lock(ctx)()
	out := make(map[string]domain.EventSales, len(eventIDs))
	for _, tk := range t.s.tickets {
		if !slices.Contains(eventIDs, tk.EventID) {
			continue
		}
		s := out[tk.EventID]
		s.TicketCount++
		s.TotalQuantity += int64(tk.Quantity)
		out[tk.EventID] = s
	}
	return out, nil
}

func (t *TicketStore) UserStats(ctx context.Context, userID string) (domain.UserStats, error) {
	defer t.s.lock(ctx)()
	stats := domain.UserStats{TotalSpent: decimal.Zero}
	for _, tk := range t.s.tickets {
		if tk.UserID != userID {
			continue
		}
		ev, ok := t.s.events[tk.EventID]
		if !ok {
			continue
		}
		stats.TotalTickets++
		stats.TotalSpent = stats.TotalSpent.Add(domain.Gross(ev.Price, tk.Quantity))
	}
	return stats, nil
}

type CategoryStore struct{ s *Store }

func (c *CategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	defer c.s.lock(ctx)()
	return slices.Clone(c.s.categories), nil
}

func (c *CategoryStore) Seed(ctx context.Context, cats []domain.Category) error {
	defer c.s.lock(ctx)()
	prev := slices.Clone(c.s.categories)
	c.s.onRollback(ctx, func() { c.s.categories = prev })
	for _, cat := range cats {
		if slices.ContainsFunc(c.s.categories, func(x domain.Category) bool { return x.Name == cat.Name }) {
			continue
		}
		cat.ID = uint(len(c.s.categories) + 1)
		c.s.categories = append(c.s.categories, cat)
	}
	return nil
}

type PayoutStore struct{ s *Store }

func (p *PayoutStore) Create(ctx context.Context, req *domain.PayoutRequest) error {
	defer p.s.lock(ctx)()
	id := req.ID
	p.s.payouts[id] = *req
	p.s.onRollback(ctx, func() { delete(p.s.payouts, id) })
	return nil
}

func (p *PayoutStore) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.PayoutRequest, error) {
	defer p.s.lock(ctx)()
	var out []domain.PayoutRequest
	for _, req := range p.s.payouts {
		if req.OrganizerID == organizerID {
			out = append(out, req)
		}
	}
	slices.SortFunc(out, func(a, b domain.PayoutRequest) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}
