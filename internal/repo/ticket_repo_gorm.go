package repo

import (
	"context"
	"errors"
	"iter"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"eventlink/internal/domain"
)

type TicketRepo struct{ db *gorm.DB }

func NewTicketRepo(db *gorm.DB) *TicketRepo { return &TicketRepo{db: db} }

func (r *TicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	if err := conn(ctx, r.db).Create(t).Error; err != nil {
		if isDupKey(err) {
			if strings.Contains(err.Error(), "idx_ticket_idem") {
				return domain.ErrIdempotencyConflict
			}
			return domain.ErrDuplicateQRCode
		}
		return pkgerrors.Wrap(err, "create ticket")
	}
	return nil
}

func (r *TicketRepo) SumQuantity(ctx context.Context, eventID string) (int, error) {
	var total int
	err := conn(ctx, r.db).Model(&domain.Ticket{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, pkgerrors.Wrap(err, "sum issued quantity")
}

func (r *TicketRepo) QRCodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Ticket{}).Where("qr_code = ?", code).Count(&n).Error
	return n > 0, pkgerrors.Wrap(err, "check qr code")
}

func (r *TicketRepo) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Ticket, error) {
	var t domain.Ticket
	err := conn(ctx, r.db).First(&t, "user_id = ? AND idempotency_key = ?", userID, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find ticket by idempotency key")
	}
	return &t, nil
}

func (r *TicketRepo) HasTicket(ctx context.Context, userID, eventID string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Ticket{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Limit(1).Count(&n).Error
	return n > 0, pkgerrors.Wrap(err, "has ticket")
}

func (r *TicketRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := conn(ctx, r.db).Where("event_id = ?", eventID).Order("purchase_date ASC").Find(&out).Error
	return out, pkgerrors.Wrap(err, "list event tickets")
}

func (r *TicketRepo) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	res := conn(ctx, r.db).Where("event_id = ?", eventID).Delete(&domain.Ticket{})
	return res.RowsAffected, pkgerrors.Wrap(res.Error, "delete event tickets")
}

const ticketViewSelect = `tickets.*,
	events.title AS event_title,
	events.date_time AS event_date_time,
	events.location AS event_location,
	events.price AS event_price,
	events.status AS event_status,
	users.full_name AS organizer_name`

func (r *TicketRepo) IterateForUser(ctx context.Context, userID string) iter.Seq2[domain.TicketView, error] {
	return func(yield func(domain.TicketView, error) bool) {
		q := conn(ctx, r.db).Table("tickets").
			Select(ticketViewSelect).
			Joins("JOIN events ON events.id = tickets.event_id").
			Joins("LEFT JOIN users ON users.id = events.organizer_id").
			Where("tickets.user_id = ?", userID).
			Order("events.date_time DESC").Order("tickets.purchase_date DESC")

		rows, err := q.Rows()
		if err != nil {
			yield(domain.TicketView{}, pkgerrors.Wrap(err, "list user tickets"))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var v domain.TicketView
			if err := q.ScanRows(rows, &v); err != nil {
				yield(domain.TicketView{}, pkgerrors.Wrap(err, "scan ticket"))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.TicketView{}, pkgerrors.Wrap(err, "iterate tickets"))
		}
	}
}

type salesRow struct {
	EventID       string
	TicketCount   int64
	TotalQuantity int64
}

func (r *TicketRepo) Sales(ctx context.Context, eventIDs []string) (map[string]domain.EventSales, error) {
	out := make(map[string]domain.EventSales, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	var rows []salesRow
	err := conn(ctx, r.db).Model(&domain.Ticket{}).
		Select("event_id, COUNT(*) AS ticket_count, COALESCE(SUM(quantity), 0) AS total_quantity").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "aggregate sales")
	}
	for _, row := range rows {
		out[row.EventID] = domain.EventSales{TicketCount: row.TicketCount, TotalQuantity: row.TotalQuantity}
	}
	return out, nil
}

func (r *TicketRepo) UserStats(ctx context.Context, userID string) (domain.UserStats, error) {
	var row struct {
		TotalTickets int64
		TotalSpent   decimal.Decimal
	}
	err := conn(ctx, r.db).Table("tickets").
		Select("COUNT(tickets.id) AS total_tickets, COALESCE(SUM(events.price * tickets.quantity), 0) AS total_spent").
		Joins("JOIN events ON events.id = tickets.event_id").
		Where("tickets.user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return domain.UserStats{}, pkgerrors.Wrap(err, "user stats")
	}
	return domain.UserStats{TotalTickets: row.TotalTickets, TotalSpent: row.TotalSpent}, nil
}
