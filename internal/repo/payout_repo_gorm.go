package repo

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"eventlink/internal/domain"
)

type PayoutRepo struct{ db *gorm.DB }

func NewPayoutRepo(db *gorm.DB) *PayoutRepo { return &PayoutRepo{db: db} }

func (r *PayoutRepo) Create(ctx context.Context, p *domain.PayoutRequest) error {
	return pkgerrors.Wrap(conn(ctx, r.db).Create(p).Error, "create payout request")
}

func (r *PayoutRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.PayoutRequest, error) {
	var out []domain.PayoutRequest
	err := conn(ctx, r.db).Where("organizer_id = ?", organizerID).Order("created_at DESC").Find(&out).Error
	return out, pkgerrors.Wrap(err, "list payout requests")
}
