package repo

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventlink/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := conn(ctx, r.db).Order("id ASC").Find(&out).Error
	return out, pkgerrors.Wrap(err, "list categories")
}

// Seed 已存在的分类（按 name 唯一）直接跳过
func (r *CategoryRepo) Seed(ctx context.Context, cats []domain.Category) error {
	if len(cats) == 0 {
		return nil
	}
	rows := make([]domain.Category, len(cats))
	copy(rows, cats)
	err := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	return pkgerrors.Wrap(err, "seed categories")
}
