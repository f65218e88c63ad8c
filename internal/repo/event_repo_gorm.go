package repo

import (
	"context"
	"errors"
	"iter"
	"math"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventlink/internal/domain"
)

type EventRepo struct{ db *gorm.DB }

func NewEventRepo(db *gorm.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	return pkgerrors.Wrap(conn(ctx, r.db).Create(e).Error, "create event")
}

func (r *EventRepo) Get(ctx context.Context, id string) (domain.Event, error) {
	return r.first(ctx, conn(ctx, r.db), id)
}

// GetForUpdate SELECT ... FOR UPDATE，必须在事务中调用
func (r *EventRepo) GetForUpdate(ctx context.Context, id string) (domain.Event, error) {
	return r.first(ctx, conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *EventRepo) first(_ context.Context, q *gorm.DB, id string) (domain.Event, error) {
	var e domain.Event
	err := q.First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Event{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Event{}, pkgerrors.Wrap(err, "get event")
	}
	return e, nil
}

func (r *EventRepo) Update(ctx context.Context, e *domain.Event) error {
	// Select("*") 保证 capacity=nil 之类的零值也会写回
	res := conn(ctx, r.db).Model(e).Select("*").Omit("id", "organizer_id", "created_at").Updates(e)
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "update event")
	}
	return nil
}

func (r *EventRepo) Delete(ctx context.Context, id string) error {
	res := conn(ctx, r.db).Where("id = ?", id).Delete(&domain.Event{})
	if res.Error != nil {
		return pkgerrors.Wrap(res.Error, "delete event")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const eventViewSelect = "events.*, users.full_name AS organizer_name"

func (r *EventRepo) views(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Table("events").
		Select(eventViewSelect).
		Joins("LEFT JOIN users ON users.id = events.organizer_id")
}

func (r *EventRepo) GetView(ctx context.Context, id string) (domain.EventView, error) {
	var v domain.EventView
	res := r.views(ctx).Where("events.id = ?", id).Limit(1).Scan(&v)
	if res.Error != nil {
		return domain.EventView{}, pkgerrors.Wrap(res.Error, "get event view")
	}
	if res.RowsAffected == 0 {
		return domain.EventView{}, domain.ErrNotFound
	}
	return v, nil
}

func (r *EventRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.Event{}).Count(&n).Error
	return n, pkgerrors.Wrap(err, "count events")
}

// Iterate 惰性游标：每次 range 重新查询，可重复遍历
func (r *EventRepo) Iterate(ctx context.Context, f domain.EventFilter) iter.Seq2[domain.EventView, error] {
	return func(yield func(domain.EventView, error) bool) {
		q := r.views(ctx).Where("events.status = ?", f.Status)
		if f.Category != "" {
			q = q.Where("events.category = ?", f.Category)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			like := likePattern(s)
			q = q.Where("(LOWER(events.title) LIKE ? OR LOWER(events.description) LIKE ? OR LOWER(events.location) LIKE ?)", like, like, like)
		}
		q = q.Order("events.date_time ASC").Order("events.id ASC")
		if f.Limit > 0 {
			q = q.Limit(f.Limit)
		} else if f.Offset > 0 {
			// mysql 不支持只有 OFFSET
			q = q.Limit(math.MaxInt32)
		}
		if f.Offset > 0 {
			q = q.Offset(f.Offset)
		}

		rows, err := q.Rows()
		if err != nil {
			yield(domain.EventView{}, pkgerrors.Wrap(err, "list events"))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var v domain.EventView
			if err := q.ScanRows(rows, &v); err != nil {
				yield(domain.EventView{}, pkgerrors.Wrap(err, "scan event"))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.EventView{}, pkgerrors.Wrap(err, "iterate events"))
		}
	}
}

func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	var out []domain.Event
	err := conn(ctx, r.db).Where("organizer_id = ?", organizerID).
		Order("date_time DESC").Find(&out).Error
	return out, pkgerrors.Wrap(err, "list organizer events")
}
